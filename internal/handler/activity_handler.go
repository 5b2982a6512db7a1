package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/service"
)

// ActivityHandler serves the audit trail. Every authenticated account may
// read (scoped to its own entries unless privileged); deletion is gated to
// the Super Admin inside the service.
type ActivityHandler struct {
	activity *service.ActivityLog
	gate     *service.AuthorizationGate
	logger   *zap.Logger
}

func NewActivityHandler(activity *service.ActivityLog, gate *service.AuthorizationGate, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{activity: activity, gate: gate, logger: logger}
}

func (h *ActivityHandler) RegisterRoutes(router chi.Router) {
	router.Route("/activities", func(r chi.Router) {
		r.Get("/", h.List)
		r.Delete("/", h.Purge)
		r.Post("/bulk-delete", h.BulkDelete)
		r.Delete("/{entryID}", h.Delete)
	})
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authenticate(ctx, bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list activities")
		return
	}
	entries, err := h.activity.List(ctx, caller, service.ActivityFilter{
		Action:  r.URL.Query().Get("action"),
		ActorID: r.URL.Query().Get("actorId"),
	})
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list activities")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(entries, "Activities retrieved successfully"))
}

func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authenticate(ctx, bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete activity")
		return
	}
	if err := h.activity.Delete(ctx, caller, chi.URLParam(r, "entryID")); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete activity")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Activity deleted successfully"))
}

func (h *ActivityHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authenticate(ctx, bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete activities")
		return
	}
	var req struct {
		EntryIDs []string `json:"entryIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	if err := h.activity.BulkDelete(ctx, caller, req.EntryIDs); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete activities")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Activities deleted successfully"))
}

func (h *ActivityHandler) Purge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authenticate(ctx, bearerToken(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to clear activities")
		return
	}
	if err := h.activity.Purge(ctx, caller, clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to clear activities")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Activity log cleared successfully"))
}
