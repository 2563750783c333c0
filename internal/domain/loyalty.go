package domain

import "time"

type LoyaltyProgram struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Tier     int    `json:"tier"`
	IsActive bool   `json:"isActive"`
}

type LoyaltyMembership struct {
	ID               int64     `json:"id"`
	GuestID          int64     `json:"guestId"`
	ProgramID        int64     `json:"programId"`
	MembershipNumber string    `json:"membershipNumber"`
	Points           int       `json:"points"`
	EnrolledAt       time.Time `json:"enrolledAt"`
}
