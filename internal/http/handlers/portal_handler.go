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

// PortalHandler is the public pre-check-in surface. Access is by booking
// number plus email, then by the minted token; no JWT involved.
type PortalHandler struct {
	Reservations *service.ReservationService
	Limiter      *middleware.RateLimiter
}

func NewPortalHandler(reservations *service.ReservationService, limiter *middleware.RateLimiter) *PortalHandler {
	return &PortalHandler{Reservations: reservations, Limiter: limiter}
}

func (h *PortalHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Limiter.Limit("portal"))
	r.Post("/verify", h.verify)
	r.Get("/booking/{token}", h.get)
	r.Post("/pre-checkin/{token}", h.submit)
	return r
}

func (h *PortalHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookingNumber string `json:"bookingNumber"`
		Email         string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BookingNumber == "" || req.Email == "" {
		response.BadRequest(w, "bookingNumber and email are required")
		return
	}
	token, err := h.Reservations.PortalVerify(r.Context(), req.BookingNumber, req.Email)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *PortalHandler) get(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Reservations.PortalGet(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}

func (h *PortalHandler) submit(w http.ResponseWriter, r *http.Request) {
	var update domain.PreCheckinUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	booking, err := h.Reservations.PortalSubmit(r.Context(), chi.URLParam(r, "token"), &update)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}
