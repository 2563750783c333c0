package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomAvailable  RoomStatus = "available"
	RoomOccupied   RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomCleaning   RoomStatus = "cleaning"
	RoomOutOfOrder RoomStatus = "out_of_order"
	RoomReserved   RoomStatus = "reserved"
)

// Available reports whether a room in this status can take a new booking.
// rooms.available is a cached copy of this derivation.
func (s RoomStatus) Available() bool {
	return s == RoomAvailable
}

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomMaintenance, RoomCleaning, RoomOutOfOrder, RoomReserved:
		return true
	}
	return false
}

type Room struct {
	ID            int64           `json:"id"`
	RoomNumber    string          `json:"roomNumber"`
	RoomTypeID    int64           `json:"roomTypeId"`
	PricePerNight decimal.Decimal `json:"pricePerNight"`
	Status        RoomStatus      `json:"status"`
	Available     bool            `json:"available"`
	MaxOccupancy  int             `json:"maxOccupancy"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	DeletedAt     *time.Time      `json:"-"`
}

type RoomType struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	BasePrice    decimal.Decimal `json:"basePrice"`
	MaxOccupancy int             `json:"maxOccupancy"`
	IsActive     bool            `json:"isActive"`
}
