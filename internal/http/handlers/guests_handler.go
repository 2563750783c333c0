package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type GuestsHandler struct {
	Guests *service.GuestService
	Guard  *middleware.Guard
}

func NewGuestsHandler(guests *service.GuestService, guard *middleware.Guard) *GuestsHandler {
	return &GuestsHandler{Guests: guests, Guard: guard}
}

func (h *GuestsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)

	r.With(h.Guard.RequirePermission("guests:read")).Get("/", h.list)
	r.With(h.Guard.RequirePermission("guests:create")).Post("/", h.create)
	r.With(h.Guard.RequirePermission("guests:read")).Get("/{id}", h.get)
	r.With(h.Guard.RequirePermission("guests:update")).Put("/{id}", h.update)
	r.With(h.Guard.RequirePermission("guests:delete")).Delete("/{id}", h.delete)
	r.With(h.Guard.RequirePermission("guests:read")).Get("/{id}/loyalty", h.loyalty)
	return r
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *GuestsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	guests, err := h.Guests.List(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, guests)
}

func (h *GuestsHandler) create(w http.ResponseWriter, r *http.Request) {
	var in domain.GuestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	g, err := h.Guests.Create(r.Context(), &in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, g)
}

func (h *GuestsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	g, err := h.Guests.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g)
}

func (h *GuestsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	var in domain.GuestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	g, err := h.Guests.Update(r.Context(), id, &in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, g)
}

func (h *GuestsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Guests.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "guest deleted"})
}

func (h *GuestsHandler) loyalty(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	m, err := h.Guests.Loyalty(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, m)
}
