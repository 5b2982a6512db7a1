package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/permissions"
	"backoffice-service/internal/service"
)

// BankHandler serves the bank registry. Reads ride on the bankDeposits
// grants; writes are additionally restricted to privileged roles in the
// service.
type BankHandler struct {
	banks  *service.BankService
	gate   *service.AuthorizationGate
	logger *zap.Logger
}

func NewBankHandler(banks *service.BankService, gate *service.AuthorizationGate, logger *zap.Logger) *BankHandler {
	return &BankHandler{banks: banks, gate: gate, logger: logger}
}

func (h *BankHandler) RegisterRoutes(router chi.Router) {
	router.Route("/banks", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{bankID}", h.Get)
		r.Put("/{bankID}", h.Update)
		r.Delete("/{bankID}", h.Delete)
	})
}

type bankRequest struct {
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
	Branch        string `json:"branch"`
}

func (req bankRequest) input() service.BankInput {
	return service.BankInput{
		Name:          req.Name,
		AccountNumber: req.AccountNumber,
		Branch:        req.Branch,
	}
}

func (h *BankHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionView); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list banks")
		return
	}
	banks, err := h.banks.List(ctx)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list banks")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(banks, "Banks retrieved successfully"))
}

func (h *BankHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionView); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get bank")
		return
	}
	bank, err := h.banks.Get(ctx, chi.URLParam(r, "bankID"))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get bank")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(bank, "Bank retrieved successfully"))
}

func (h *BankHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionAdd)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create bank")
		return
	}
	var req bankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	bank, err := h.banks.Create(ctx, caller, req.input(), clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create bank")
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, successResponse(bank, "Bank created successfully"))
}

func (h *BankHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionEdit)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update bank")
		return
	}
	var req bankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	bank, err := h.banks.Update(ctx, caller, chi.URLParam(r, "bankID"), req.input(), clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update bank")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(bank, "Bank updated successfully"))
}

func (h *BankHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceBankDeposits, permissions.ActionDelete)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete bank")
		return
	}
	if err := h.banks.Delete(ctx, caller, chi.URLParam(r, "bankID"), clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete bank")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Bank deleted successfully"))
}
