package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type RBACHandler struct {
	RBAC  *service.RBACService
	Guard *middleware.Guard
}

func NewRBACHandler(rbac *service.RBACService, guard *middleware.Guard) *RBACHandler {
	return &RBACHandler{RBAC: rbac, Guard: guard}
}

func (h *RBACHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)

	r.Group(func(r chi.Router) {
		r.Use(h.Guard.RequireAdmin)
		r.Get("/roles", h.listRoles)
		r.Post("/roles", h.createRole)
		r.Get("/permissions", h.listPermissions)
		r.Post("/permissions", h.createPermission)
		r.Post("/roles/permissions", h.grantPermission)
		r.Delete("/roles/permissions", h.revokePermission)
		r.Post("/users/roles", h.assignRole)
		r.Delete("/users/roles", h.removeRole)
	})
	r.Get("/check", h.check)
	return r
}

func (h *RBACHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RBAC.ListRoles(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, roles)
}

func (h *RBACHandler) createRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	role, err := h.RBAC.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, role)
}

func (h *RBACHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.RBAC.ListPermissions(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, perms)
}

func (h *RBACHandler) createPermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Resource    string  `json:"resource"`
		Action      string  `json:"action"`
		Description *string `json:"description,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	perm, err := h.RBAC.CreatePermission(r.Context(), req.Resource, req.Action, req.Description)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, perm)
}

func (h *RBACHandler) grantPermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoleID       int64 `json:"roleId"`
		PermissionID int64 `json:"permissionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.RBAC.GrantPermission(r.Context(), req.RoleID, req.PermissionID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "permission granted"})
}

func (h *RBACHandler) revokePermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoleID       int64 `json:"roleId"`
		PermissionID int64 `json:"permissionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.RBAC.RevokePermission(r.Context(), req.RoleID, req.PermissionID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "permission revoked"})
}

func (h *RBACHandler) assignRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)
	var req struct {
		UserID int64  `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		response.BadRequest(w, "userId and role are required")
		return
	}
	if err := h.RBAC.AssignRole(r.Context(), actorID, req.UserID, req.Role); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "role assigned"})
}

func (h *RBACHandler) removeRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserID(r)
	var req struct {
		UserID int64  `json:"userId"`
		Role   string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		response.BadRequest(w, "userId and role are required")
		return
	}
	if err := h.RBAC.RemoveRole(r.Context(), actorID, req.UserID, req.Role); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "role removed"})
}

func (h *RBACHandler) check(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	permission := r.URL.Query().Get("permission")
	if permission == "" {
		response.BadRequest(w, "permission query parameter is required")
		return
	}
	allowed, err := h.RBAC.Can(r.Context(), userID, permission)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
}
