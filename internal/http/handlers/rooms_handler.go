package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type RoomsHandler struct {
	Rooms *service.RoomService
	Guard *middleware.Guard
}

func NewRoomsHandler(rooms *service.RoomService, guard *middleware.Guard) *RoomsHandler {
	return &RoomsHandler{Rooms: rooms, Guard: guard}
}

func (h *RoomsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)

	r.With(h.Guard.RequirePermission("rooms:read")).Get("/", h.list)
	r.With(h.Guard.RequirePermission("rooms:create")).Post("/", h.create)
	r.With(h.Guard.RequirePermission("rooms:read")).Get("/{id}", h.get)
	r.With(h.Guard.RequirePermission("rooms:update")).Put("/{id}/status", h.updateStatus)
	r.With(h.Guard.RequirePermission("rooms:delete")).Delete("/{id}", h.delete)
	return r
}

func (h *RoomsHandler) list(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Rooms.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rooms)
}

func (h *RoomsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomNumber    string          `json:"roomNumber"`
		RoomTypeID    int64           `json:"roomTypeId"`
		PricePerNight decimal.Decimal `json:"pricePerNight"`
		MaxOccupancy  int             `json:"maxOccupancy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	room, err := h.Rooms.Create(r.Context(), req.RoomNumber, req.RoomTypeID, req.PricePerNight, req.MaxOccupancy)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, room)
}

func (h *RoomsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	room, err := h.Rooms.Get(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, room)
}

func (h *RoomsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	var req struct {
		Status domain.RoomStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	room, err := h.Rooms.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, room)
}

func (h *RoomsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		response.BadRequest(w, "invalid id")
		return
	}
	if err := h.Rooms.Delete(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "room deleted"})
}

type RoomTypesHandler struct {
	Rooms *service.RoomService
	Guard *middleware.Guard
}

func NewRoomTypesHandler(rooms *service.RoomService, guard *middleware.Guard) *RoomTypesHandler {
	return &RoomTypesHandler{Rooms: rooms, Guard: guard}
}

func (h *RoomTypesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.Guard.RequireAuth)
	r.With(h.Guard.RequirePermission("rooms:read")).Get("/", h.list)
	r.With(h.Guard.RequirePermission("rooms:create")).Post("/", h.create)
	return r
}

func (h *RoomTypesHandler) list(w http.ResponseWriter, r *http.Request) {
	types, err := h.Rooms.ListRoomTypes(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, types)
}

func (h *RoomTypesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string          `json:"name"`
		Code         string          `json:"code"`
		BasePrice    decimal.Decimal `json:"basePrice"`
		MaxOccupancy int             `json:"maxOccupancy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	rt, err := h.Rooms.CreateRoomType(r.Context(), req.Name, req.Code, req.BasePrice, req.MaxOccupancy)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, rt)
}
