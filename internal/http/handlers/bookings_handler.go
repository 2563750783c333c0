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

type BookingsHandler struct {
	Reservations *service.ReservationService
	Guard        *middleware.Guard
}

func NewBookingsHandler(reservations *service.ReservationService, guard *middleware.Guard) *BookingsHandler {
	return &BookingsHandler{Reservations: reservations, Guard: guard}
}

func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)

	r.With(h.Guard.RequirePermission("bookings:read")).Get("/", h.list)
	r.With(h.Guard.RequirePermission("bookings:create")).Post("/", h.create)
	r.With(h.Guard.RequirePermission("bookings:read")).Get("/{id}", h.get)
	r.With(h.Guard.RequirePermission("bookings:update")).Post("/{id}/confirm", h.confirm)
	r.With(h.Guard.RequirePermission("bookings:update")).Post("/{id}/checkin", h.checkIn)
	r.With(h.Guard.RequirePermission("bookings:update")).Post("/{id}/checkout", h.checkOut)
	r.With(h.Guard.RequirePermission("bookings:update")).Post("/{id}/cancel", h.cancel)
	r.With(h.Guard.RequirePermission("bookings:update")).Post("/{id}/no-show", h.noShow)
	r.With(h.Guard.RequirePermission("bookings:manage")).Post("/{id}/complimentary", h.markComplimentary)
	r.With(h.Guard.RequirePermission("bookings:manage")).Post("/{id}/convert-credits", h.convertCredits)
	r.With(h.Guard.RequirePermission("bookings:create")).Post("/book-with-credits", h.bookWithCredits)
	return r
}

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	var f domain.BookingFilter
	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		st := domain.BookingStatus(v)
		f.Status = &st
	}
	if id, ok := queryInt64(r, "guestId"); ok {
		f.GuestID = &id
	}
	if id, ok := queryInt64(r, "roomId"); ok {
		f.RoomID = &id
	}
	if d, ok := queryDate(r, "from"); ok {
		f.DateFrom = &d
	}
	if d, ok := queryDate(r, "to"); ok {
		f.DateTo = &d
	}
	if v, ok := queryInt64(r, "limit"); ok {
		f.Limit = int(v)
	}
	if v, ok := queryInt64(r, "offset"); ok {
		f.Offset = int(v)
	}

	bookings, err := h.Reservations.List(r.Context(), f)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, bookings)
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	var req domain.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	booking, err := h.Reservations.Create(r.Context(), &req, &userID, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, booking)
}

func (h *BookingsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	booking, err := h.Reservations.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}

func (h *BookingsHandler) transitionHandler(fn func(r *http.Request, id int64, actorID *int64) (*domain.Booking, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			response.BadRequest(w, "invalid id")
			return
		}
		userID, _ := middleware.UserID(r)
		booking, err := fn(r, id, &userID)
		if err != nil {
			response.Error(w, err)
			return
		}
		response.JSON(w, http.StatusOK, booking)
	}
}

func (h *BookingsHandler) confirm(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(func(r *http.Request, id int64, actorID *int64) (*domain.Booking, error) {
		return h.Reservations.Confirm(r.Context(), id, actorID)
	})(w, r)
}

func (h *BookingsHandler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(func(r *http.Request, id int64, actorID *int64) (*domain.Booking, error) {
		return h.Reservations.CheckIn(r.Context(), id, actorID)
	})(w, r)
}

func (h *BookingsHandler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(func(r *http.Request, id int64, actorID *int64) (*domain.Booking, error) {
		return h.Reservations.CheckOut(r.Context(), id, actorID)
	})(w, r)
}

func (h *BookingsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(func(r *http.Request, id int64, actorID *int64) (*domain.Booking, error) {
		return h.Reservations.Cancel(r.Context(), id, actorID)
	})(w, r)
}

func (h *BookingsHandler) noShow(w http.ResponseWriter, r *http.Request) {
	h.transitionHandler(func(r *http.Request, id int64, actorID *int64) (*domain.Booking, error) {
		return h.Reservations.MarkNoShow(r.Context(), id, actorID)
	})(w, r)
}

func (h *BookingsHandler) markComplimentary(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	userID, _ := middleware.UserID(r)
	var req struct {
		Reason string    `json:"reason"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	booking, err := h.Reservations.MarkComplimentary(r.Context(), id, req.Reason, req.Start, req.End, &userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, booking)
}

func (h *BookingsHandler) convertCredits(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	userID, _ := middleware.UserID(r)
	guest, err := h.Reservations.ConvertToCredits(r.Context(), id, &userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, guest)
}

func (h *BookingsHandler) bookWithCredits(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	var req struct {
		GuestID  int64     `json:"guestId"`
		RoomID   int64     `json:"roomId"`
		CheckIn  time.Time `json:"checkInDate"`
		CheckOut time.Time `json:"checkOutDate"`
		Adults   int       `json:"adults"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	booking, err := h.Reservations.BookWithCredits(r.Context(), req.GuestID, req.RoomID, req.CheckIn, req.CheckOut, req.Adults, &userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, booking)
}
