package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdjustmentType string

const (
	AdjustFixed    AdjustmentType = "fixed"
	AdjustPercent  AdjustmentType = "percent"
	AdjustOverride AdjustmentType = "override"
)

func (a AdjustmentType) Valid() bool {
	switch a {
	case AdjustFixed, AdjustPercent, AdjustOverride:
		return true
	}
	return false
}

// DayMask is a bitset over Monday..Sunday; bit 0 is Monday.
type DayMask uint8

const AllDays DayMask = 0x7F

// Includes reports whether the mask covers the given weekday.
func (m DayMask) Includes(d time.Weekday) bool {
	// time.Weekday has Sunday == 0; our bit 0 is Monday.
	idx := (int(d) + 6) % 7
	return m&(1<<idx) != 0
}

type RatePlan struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	PlanType          string          `json:"planType"`
	AdjustmentType    AdjustmentType  `json:"adjustmentType"`
	AdjustmentValue   decimal.Decimal `json:"adjustmentValue"`
	ValidFrom         *time.Time      `json:"validFrom,omitempty"`
	ValidTo           *time.Time      `json:"validTo,omitempty"`
	DayMask           DayMask         `json:"dayMask"`
	MinNights         int             `json:"minNights"`
	MaxNights         *int            `json:"maxNights,omitempty"`
	MinAdvanceBooking int             `json:"minAdvanceBooking"`
	MaxAdvanceBooking *int            `json:"maxAdvanceBooking,omitempty"`
	Priority          int             `json:"priority"`
	IsActive          bool            `json:"isActive"`
}

// RoomRate links a rate plan to a room type with a price and an
// effective window.
type RoomRate struct {
	ID            int64           `json:"id"`
	RatePlanID    int64           `json:"ratePlanId"`
	RoomTypeID    int64           `json:"roomTypeId"`
	Price         decimal.Decimal `json:"price"`
	EffectiveFrom *time.Time      `json:"effectiveFrom,omitempty"`
	EffectiveTo   *time.Time      `json:"effectiveTo,omitempty"`
}

// RateQuote is the rate-plan engine's answer for a stay.
type RateQuote struct {
	RatePlanID   int64           `json:"ratePlanId"`
	RatePlanName string          `json:"ratePlanName"`
	NightlyRate  decimal.Decimal `json:"nightlyRate"`
	Nights       int             `json:"nights"`
	Total        decimal.Decimal `json:"total"`
}
