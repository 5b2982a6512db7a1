package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/permissions"
	"backoffice-service/internal/service"
)

type DashboardHandler struct {
	dashboard *service.DashboardService
	gate      *service.AuthorizationGate
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *service.DashboardService, gate *service.AuthorizationGate, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, gate: gate, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(router chi.Router) {
	router.Get("/dashboard/metrics", h.Metrics)
}

func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceDashboard, permissions.ActionView); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to load dashboard metrics")
		return
	}
	metrics, err := h.dashboard.Metrics(ctx)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to load dashboard metrics")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(metrics, "Dashboard metrics retrieved successfully"))
}
