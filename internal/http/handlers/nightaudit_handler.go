package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type NightAuditHandler struct {
	Audit *service.NightAuditService
	Guard *middleware.Guard
}

func NewNightAuditHandler(audit *service.NightAuditService, guard *middleware.Guard) *NightAuditHandler {
	return &NightAuditHandler{Audit: audit, Guard: guard}
}

func (h *NightAuditHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)
	r.With(h.Guard.RequirePermission("night_audit:run")).Post("/run", h.run)
	r.With(h.Guard.RequirePermission("night_audit:read")).Get("/preview", h.preview)
	r.With(h.Guard.RequirePermission("night_audit:read")).Get("/runs", h.listRuns)
	return r
}

// auditDate reads the optional ?date=YYYY-MM-DD query. A zero time tells
// the service to default to yesterday.
func auditDate(r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse("2006-01-02", raw)
	return t, err == nil
}

func (h *NightAuditHandler) run(w http.ResponseWriter, r *http.Request) {
	date, ok := auditDate(r)
	if !ok {
		response.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	userID, _ := middleware.UserID(r)
	run, err := h.Audit.Run(r.Context(), date, &userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, run)
}

func (h *NightAuditHandler) preview(w http.ResponseWriter, r *http.Request) {
	date, ok := auditDate(r)
	if !ok {
		response.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}
	preview, err := h.Audit.Preview(r.Context(), date)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, preview)
}

func (h *NightAuditHandler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, offset := 0, 0
	if v, ok := queryInt64(r, "limit"); ok {
		limit = int(v)
	}
	if v, ok := queryInt64(r, "offset"); ok {
		offset = int(v)
	}
	runs, err := h.Audit.ListRuns(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, runs)
}
