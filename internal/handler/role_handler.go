package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"backoffice-service/internal/permissions"
	"backoffice-service/internal/service"
)

// RoleHandler serves role CRUD. Roles ride under staff management in the
// permission matrix.
type RoleHandler struct {
	roles  *service.RoleService
	gate   *service.AuthorizationGate
	logger *zap.Logger
}

func NewRoleHandler(roles *service.RoleService, gate *service.AuthorizationGate, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{roles: roles, gate: gate, logger: logger}
}

func (h *RoleHandler) RegisterRoutes(router chi.Router) {
	router.Route("/roles", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{roleID}", h.Get)
		r.Put("/{roleID}", h.Update)
		r.Delete("/{roleID}", h.Delete)
	})
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionView); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list roles")
		return
	}
	roles, err := h.roles.List(ctx)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to list roles")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(roles, "Roles retrieved successfully"))
}

func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionView); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get role")
		return
	}
	role, err := h.roles.Get(ctx, chi.URLParam(r, "roleID"))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to get role")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(role, "Role retrieved successfully"))
}

func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionAdd)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create role")
		return
	}
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	role, err := h.roles.Create(ctx, caller, service.RoleInput{Name: req.Name, Description: req.Description}, clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to create role")
		return
	}
	respondWithJSON(w, h.logger, http.StatusCreated, successResponse(role, "Role created successfully"))
}

func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionEdit)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update role")
		return
	}
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	role, err := h.roles.Update(ctx, caller, chi.URLParam(r, "roleID"), service.RoleInput{Name: req.Name, Description: req.Description}, clientIP(r))
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to update role")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(role, "Role updated successfully"))
}

func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, err := h.gate.Authorize(ctx, bearerToken(r), permissions.ResourceStaffManagement, permissions.ActionDelete)
	if err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete role")
		return
	}
	if err := h.roles.Delete(ctx, caller, chi.URLParam(r, "roleID"), clientIP(r)); err != nil {
		respondWithError(w, h.logger, getStatusCode(err), err, "Failed to delete role")
		return
	}
	respondWithJSON(w, h.logger, http.StatusOK, successResponse(nil, "Role deleted successfully"))
}
