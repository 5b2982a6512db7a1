package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/permissions"
	"backoffice-service/internal/service"
)

type DepositHandler struct {
	deposits *service.DepositService
	gate     *service.AuthorizationGate
	logger   *zap.Logger
}

func NewDepositHandler(deposits *service.DepositService, gate *service.AuthorizationGate, logger *zap.Logger) *DepositHandler {
	return &DepositHandler{deposits: deposits, gate: gate, logger: logger}
}

func (h *DepositHandler) RegisterRoutes(router chi.Router) {
	router.Route("/deposits", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{depositID}", h.Get)
		r.Put("/{depositID}", h.Update)
		r.Delete("/{depositID}", h.Delete)
	})
}

type depositRequest struct {
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Note     string  `json:"note"`
}

func (req depositRequest) input() service.DepositInput {
	return service.DepositInput{
		Type:     req.Type,
		Amount:   req.Amount,
		Currency: req.Currency,
		Note:     req.Note,
	}
}

func (h *DepositHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceDeposits, permissions.ActionView)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list deposits")
		return
	}
	deposits, err := h.deposits.List(ctx, caller)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list deposits")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(deposits, "Deposits retrieved successfully"))
}

func (h *DepositHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceDeposits, permissions.ActionAdd)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create deposit")
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	deposit, err := h.deposits.Create(ctx, caller, req.input(), clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, successResponse(deposit, "Deposit created successfully"))
}

func (h *DepositHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceDeposits, permissions.ActionView)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get deposit")
		return
	}
	deposit, err := h.deposits.Get(ctx, caller, chi.URLParam(r, "depositID"))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(deposit, "Deposit retrieved successfully"))
}

func (h *DepositHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceDeposits, permissions.ActionEdit)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update deposit")
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	deposit, err := h.deposits.Update(ctx, caller, chi.URLParam(r, "depositID"), req.input(), clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(deposit, "Deposit updated successfully"))
}

func (h *DepositHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceDeposits, permissions.ActionDelete)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete deposit")
		return
	}
	if err := h.deposits.Delete(ctx, caller, chi.URLParam(r, "depositID"), clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Deposit deleted successfully"))
}
