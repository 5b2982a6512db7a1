package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/models"
	"backoffice-service/internal/permissions"
	"backoffice-service/internal/service"
	"backoffice-service/internal/util"
)

// AuthHandler handles signup, sign-in, the current-user lookup and the
// password flows.
type AuthHandler struct {
	accounts *service.AccountService
	otp      *service.OtpFlow
	gate     *service.AuthorizationGate
	logger   *zap.Logger
}

func NewAuthHandler(accounts *service.AccountService, otp *service.OtpFlow, gate *service.AuthorizationGate, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, otp: otp, gate: gate, logger: logger}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/signup", h.Signup)
	router.Post("/signin", h.SignIn)
	router.Get("/user", h.CurrentUser)
	router.Put("/profile", h.UpdateProfile)
	router.Post("/change-password", h.ChangePassword)
	router.Route("/forgot-password", func(r chi.Router) {
		r.Post("/send-otp", h.SendOtp)
		r.Post("/verify-otp", h.VerifyOtp)
	})
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req struct {
		Name        string             `json:"name"`
		Email       string             `json:"email"`
		Password    string             `json:"password"`
		Role        string             `json:"role"`
		Permissions permissions.Matrix `json:"permissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	// Signup stays open for the bootstrap account, but a bearer token is
	// resolved when present so a privileged caller can assign a role and
	// permissions to the new account.
	var caller *models.Account
	if token := bearerToken(r); token != "" {
		resolved, err := h.gate.Authenticate(ctx, token)
		if err != nil {
			respondWithError(w, h.logger, getStatusCode(err), err, "Failed to resolve account")
			return
		}
		caller = resolved
	}

	result, err := h.accounts.Signup(ctx, caller, service.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Permissions: req.Permissions,
	}, clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create account")
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, successResponse(map[string]interface{}{
		"token":   result.Token,
		"account": result.Account,
	}, "Account created successfully"))
	h.logger.Info("Account signup via HTTP",
		util.String("account_id", result.Account.AccountID),
		util.Duration("duration", time.Since(startTime)),
	)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.accounts.SignIn(ctx, req.Email, req.Password, clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to sign in")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, successResponse(map[string]interface{}{
		"token":   result.Token,
		"account": result.Account,
	}, "Signed in successfully"))
}

func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	account, err := h.gate.Authenticate(r.Context(), bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to resolve account")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(account, "Account retrieved successfully"))
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := h.gate.Authenticate(ctx, bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to resolve account")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	updated, err := h.accounts.UpdateProfile(ctx, account, req.Name, clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update profile")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(updated, "Profile updated successfully"))
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	account, err := h.gate.Authenticate(ctx, bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to resolve account")
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.accounts.ChangePassword(ctx, account, req.CurrentPassword, req.NewPassword, clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to change password")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Password changed successfully"))
}

func (h *AuthHandler) SendOtp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.otp.Request(r.Context(), req.Email)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to send verification code")
		return
	}

	data := map[string]interface{}{
		"delivered": result.Delivered,
		"expiresAt": result.ExpiresAt,
	}
	message := "Verification code sent"
	if result.DebugCode != "" {
		data["otp"] = result.DebugCode
		message = "Email delivery unavailable, code returned for development use"
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(data, message))
}

func (h *AuthHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Otp         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if err := h.otp.Verify(r.Context(), req.Email, req.Otp, req.NewPassword, clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to verify code")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Password reset successfully"))
}
