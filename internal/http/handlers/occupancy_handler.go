package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type OccupancyHandler struct {
	Occupancy *service.OccupancyService
	Guard     *middleware.Guard
}

func NewOccupancyHandler(occupancy *service.OccupancyService, guard *middleware.Guard) *OccupancyHandler {
	return &OccupancyHandler{Occupancy: occupancy, Guard: guard}
}

func (h *OccupancyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)
	r.With(h.Guard.RequirePermission("rooms:read")).Get("/rooms", h.rooms)
	r.With(h.Guard.RequirePermission("rooms:read")).Get("/summary", h.summary)
	return r
}

func (h *OccupancyHandler) rooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Occupancy.Rooms(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rooms)
}

func (h *OccupancyHandler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Occupancy.Summary(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}
