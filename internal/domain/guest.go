package domain

import "time"

type Guest struct {
	ID                      int64      `json:"id"`
	FirstName               string     `json:"firstName"`
	LastName                string     `json:"lastName"`
	Email                   *string    `json:"email,omitempty"`
	Phone                   *string    `json:"phone,omitempty"`
	ICNumber                *string    `json:"icNumber,omitempty"`
	Nationality             *string    `json:"nationality,omitempty"`
	AddressLine1            *string    `json:"addressLine1,omitempty"`
	City                    *string    `json:"city,omitempty"`
	StateProvince           *string    `json:"stateProvince,omitempty"`
	PostalCode              *string    `json:"postalCode,omitempty"`
	Country                 *string    `json:"country,omitempty"`
	ComplimentaryNightsCredit int      `json:"complimentaryNightsCredit"`
	IsActive                bool       `json:"isActive"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
	DeletedAt               *time.Time `json:"-"`
}

func (g *Guest) FullName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}

type GuestInput struct {
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	ICNumber      *string `json:"icNumber,omitempty"`
	Nationality   *string `json:"nationality,omitempty"`
	AddressLine1  *string `json:"addressLine1,omitempty"`
	City          *string `json:"city,omitempty"`
	StateProvince *string `json:"stateProvince,omitempty"`
	PostalCode    *string `json:"postalCode,omitempty"`
	Country       *string `json:"country,omitempty"`
}

// UserGuestLink connects a portal user to a guest profile they may act for.
type UserGuestLink struct {
	UserID          int64 `json:"userId"`
	GuestID         int64 `json:"guestId"`
	CanBookFor      bool  `json:"canBookFor"`
	CanViewBookings bool  `json:"canViewBookings"`
	CanModify       bool  `json:"canModify"`
}
