package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type AuditLogsHandler struct {
	Logs  *service.AuditLogService
	Guard *middleware.Guard
}

func NewAuditLogsHandler(logs *service.AuditLogService, guard *middleware.Guard) *AuditLogsHandler {
	return &AuditLogsHandler{Logs: logs, Guard: guard}
}

func (h *AuditLogsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)
	r.With(h.Guard.RequireAdmin).Get("/", h.list)
	return r
}

func (h *AuditLogsHandler) list(w http.ResponseWriter, r *http.Request) {
	var f domain.AuditLogFilter
	q := r.URL.Query()
	if id, ok := queryInt64(r, "userId"); ok {
		f.UserID = &id
	}
	if v := q.Get("action"); v != "" {
		f.Action = &v
	}
	if v := q.Get("resourceType"); v != "" {
		f.ResourceType = &v
	}
	if v, ok := queryInt64(r, "limit"); ok {
		f.Limit = int(v)
	}
	if v, ok := queryInt64(r, "offset"); ok {
		f.Offset = int(v)
	}
	logs, err := h.Logs.List(r.Context(), f)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, logs)
}
