package domain

// RoomOccupancy is one row of the occupancy read model: a room and, when
// occupied, its current booking.
type RoomOccupancy struct {
	RoomID            int64          `json:"roomId"`
	RoomNumber        string         `json:"roomNumber"`
	RoomStatus        RoomStatus     `json:"roomStatus"`
	MaxOccupancy      int            `json:"maxOccupancy"`
	BookingID         *int64         `json:"bookingId,omitempty"`
	BookingNumber     *string        `json:"bookingNumber,omitempty"`
	BookingStatus     *BookingStatus `json:"bookingStatus,omitempty"`
	Adults            int            `json:"adults"`
	Children          int            `json:"children"`
	OccupancyPercent  float64        `json:"occupancyPercent"`
}

type OccupancySummary struct {
	TotalRooms    int     `json:"totalRooms"`
	OccupiedRooms int     `json:"occupiedRooms"`
	OccupancyRate float64 `json:"occupancyRate"`
	TotalAdults   int     `json:"totalAdults"`
	TotalChildren int     `json:"totalChildren"`
	TotalGuests   int     `json:"totalGuests"`
}
