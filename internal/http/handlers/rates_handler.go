package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type RatesHandler struct {
	Rates *service.RatePlanService
	Guard *middleware.Guard
}

func NewRatesHandler(rates *service.RatePlanService, guard *middleware.Guard) *RatesHandler {
	return &RatesHandler{Rates: rates, Guard: guard}
}

func (h *RatesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)

	r.With(h.Guard.RequirePermission("rates:read")).Get("/", h.listPlans)
	r.With(h.Guard.RequirePermission("rates:create")).Post("/", h.createPlan)
	r.With(h.Guard.RequirePermission("rates:delete")).Delete("/{id}", h.deactivatePlan)
	r.With(h.Guard.RequirePermission("rates:read")).Get("/{id}/room-rates", h.ratesForPlan)
	r.With(h.Guard.RequirePermission("rates:create")).Post("/room-rates", h.createRoomRate)
	r.With(h.Guard.RequirePermission("rates:read")).Get("/quote", h.quote)
	return r
}

func (h *RatesHandler) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.Rates.ListPlans(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, plans)
}

func (h *RatesHandler) createPlan(w http.ResponseWriter, r *http.Request) {
	var plan domain.RatePlan
	if err := json.NewDecoder(r.Body).Decode(&plan); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	out, err := h.Rates.CreatePlan(r.Context(), &plan)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, out)
}

func (h *RatesHandler) deactivatePlan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Rates.DeactivatePlan(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "rate plan deactivated"})
}

func (h *RatesHandler) ratesForPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	rates, err := h.Rates.RatesForPlan(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rates)
}

func (h *RatesHandler) createRoomRate(w http.ResponseWriter, r *http.Request) {
	var rr domain.RoomRate
	if err := json.NewDecoder(r.Body).Decode(&rr); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	out, err := h.Rates.CreateRoomRate(r.Context(), &rr)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, out)
}

func (h *RatesHandler) quote(w http.ResponseWriter, r *http.Request) {
	roomTypeID, ok := queryInt64(r, "roomTypeId")
	if !ok {
		response.BadRequest(w, "roomTypeId is required")
		return
	}
	checkIn, err1 := time.Parse("2006-01-02", r.URL.Query().Get("checkIn"))
	checkOut, err2 := time.Parse("2006-01-02", r.URL.Query().Get("checkOut"))
	if err1 != nil || err2 != nil {
		response.BadRequest(w, "checkIn and checkOut must be YYYY-MM-DD")
		return
	}
	quote, err := h.Rates.Quote(r.Context(), roomTypeID, checkIn, checkOut)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, quote)
}
