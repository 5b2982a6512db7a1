package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/permissions"
	"backoffice-service/internal/service"
)

type StaffHandler struct {
	accounts *service.AccountService
	gate     *service.AuthorizationGate
	logger   *zap.Logger
}

func NewStaffHandler(accounts *service.AccountService, gate *service.AuthorizationGate, logger *zap.Logger) *StaffHandler {
	return &StaffHandler{accounts: accounts, gate: gate, logger: logger}
}

func (h *StaffHandler) RegisterRoutes(router chi.Router) {
	router.Route("/staff", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{accountID}", h.Get)
		r.Put("/{accountID}", h.Update)
		r.Delete("/{accountID}", h.Delete)
	})
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionView); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list staff")
		return
	}
	staff, err := h.accounts.ListStaff(ctx)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list staff")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(staff, "Staff retrieved successfully"))
}

func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionView); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get staff member")
		return
	}
	account, err := h.accounts.GetStaff(ctx, chi.URLParam(r, "accountID"))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get staff member")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(account, "Staff member retrieved successfully"))
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionEdit)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update staff member")
		return
	}

	var req struct {
		Name        *string            `json:"name"`
		Email       *string            `json:"email"`
		Role        *string            `json:"role"`
		Status      *string            `json:"status"`
		Archived    *bool              `json:"archived"`
		Permissions permissions.Matrix `json:"permissions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	updated, err := h.accounts.UpdateStaff(ctx, caller, chi.URLParam(r, "accountID"), service.StaffUpdate{
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Status:      req.Status,
		Archived:    req.Archived,
		Permissions: req.Permissions,
	}, clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update staff member")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(updated, "Staff member updated successfully"))
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionDelete)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete staff member")
		return
	}
	if err := h.accounts.DeleteStaff(ctx, caller, chi.URLParam(r, "accountID"), clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete staff member")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Staff member deleted successfully"))
}
