package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type SettingsHandler struct {
	Settings *service.SettingsService
	Guard    *middleware.Guard
}

func NewSettingsHandler(settings *service.SettingsService, guard *middleware.Guard) *SettingsHandler {
	return &SettingsHandler{Settings: settings, Guard: guard}
}

func (h *SettingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)
	r.With(h.Guard.RequirePermission("settings:read")).Get("/", h.get)
	r.With(h.Guard.RequireAdmin).Put("/", h.update)
	return r
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	var settings domain.SystemSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	updated, err := h.Settings.Update(r.Context(), userID, settings)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
