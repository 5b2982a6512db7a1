package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/permissions"
	"backoffice-service/internal/service"
)

type BankDepositHandler struct {
	deposits *service.BankDepositService
	gate     *service.AuthorizationGate
	logger   *zap.Logger
}

func NewBankDepositHandler(deposits *service.BankDepositService, gate *service.AuthorizationGate, logger *zap.Logger) *BankDepositHandler {
	return &BankDepositHandler{deposits: deposits, gate: gate, logger: logger}
}

func (h *BankDepositHandler) RegisterRoutes(router chi.Router) {
	router.Route("/bank-deposits", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{depositID}", h.Get)
		r.Put("/{depositID}", h.Update)
		r.Delete("/{depositID}", h.Delete)
	})
}

type bankDepositRequest struct {
	BankID    string  `json:"bankId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Reference string  `json:"reference"`
	Note      string  `json:"note"`
}

func (req bankDepositRequest) input() service.BankDepositInput {
	return service.BankDepositInput{
		BankID:    req.BankID,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reference: req.Reference,
		Note:      req.Note,
	}
}

func (h *BankDepositHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionView)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list bank deposits")
		return
	}
	deposits, err := h.deposits.List(ctx, caller)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list bank deposits")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(deposits, "Bank deposits retrieved successfully"))
}

func (h *BankDepositHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionAdd)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create bank deposit")
		return
	}
	var req bankDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	deposit, err := h.deposits.Create(ctx, caller, req.input(), clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create bank deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, successResponse(deposit, "Bank deposit created successfully"))
}

func (h *BankDepositHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionView)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get bank deposit")
		return
	}
	deposit, err := h.deposits.Get(ctx, caller, chi.URLParam(r, "depositID"))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get bank deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(deposit, "Bank deposit retrieved successfully"))
}

func (h *BankDepositHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionEdit)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update bank deposit")
		return
	}
	var req bankDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	deposit, err := h.deposits.Update(ctx, caller, chi.URLParam(r, "depositID"), req.input(), clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update bank deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(deposit, "Bank deposit updated successfully"))
}

func (h *BankDepositHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionDelete)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete bank deposit")
		return
	}
	if err := h.deposits.Delete(ctx, caller, chi.URLParam(r, "depositID"), clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete bank deposit")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Bank deposit deleted successfully"))
}
