package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending       BookingStatus = "pending"
	BookingConfirmed     BookingStatus = "confirmed"
	BookingCheckedIn     BookingStatus = "checked_in"
	BookingAutoCheckedIn BookingStatus = "auto_checked_in"
	BookingLateCheckout  BookingStatus = "late_checkout"
	BookingCheckedOut    BookingStatus = "checked_out"
	BookingCancelled     BookingStatus = "cancelled"
	BookingNoShow        BookingStatus = "no_show"
)

// Terminal statuses admit no further transitions.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingCheckedOut, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// InHouse reports whether the guest currently occupies the room.
func (s BookingStatus) InHouse() bool {
	switch s {
	case BookingCheckedIn, BookingAutoCheckedIn, BookingLateCheckout:
		return true
	}
	return false
}

// transitions is the permitted (from, to) set of the booking state machine.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:       {BookingConfirmed, BookingCheckedIn, BookingCancelled},
	BookingConfirmed:     {BookingCheckedIn, BookingAutoCheckedIn, BookingCancelled, BookingNoShow},
	BookingCheckedIn:     {BookingCheckedOut, BookingLateCheckout},
	BookingAutoCheckedIn: {BookingCheckedIn, BookingCheckedOut, BookingLateCheckout},
	BookingLateCheckout:  {BookingCheckedOut},
}

// CanTransition reports whether from -> to appears in the permitted set.
func CanTransition(from, to BookingStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PayUnpaid        PaymentStatus = "unpaid"
	PayUnpaidDeposit PaymentStatus = "unpaid_deposit"
	PayPaid          PaymentStatus = "paid"
	PayRefunded      PaymentStatus = "refunded"
)

type Booking struct {
	ID                       int64           `json:"id"`
	BookingNumber            string          `json:"bookingNumber"`
	GuestID                  int64           `json:"guestId"`
	RoomID                   int64           `json:"roomId"`
	CheckInDate              time.Time       `json:"checkInDate"`
	CheckOutDate             time.Time       `json:"checkOutDate"`
	RoomRate                 decimal.Decimal `json:"roomRate"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
	TaxAmount                decimal.Decimal `json:"taxAmount"`
	DiscountAmount           decimal.Decimal `json:"discountAmount"`
	TotalAmount              decimal.Decimal `json:"totalAmount"`
	Status                   BookingStatus   `json:"status"`
	PaymentStatus            PaymentStatus   `json:"paymentStatus"`
	Adults                   int             `json:"adults"`
	Children                 int             `json:"children"`
	MarketCode               *string         `json:"marketCode,omitempty"`
	SpecialRequests          *string         `json:"specialRequests,omitempty"`
	PreCheckinCompleted      bool            `json:"preCheckinCompleted"`
	PreCheckinCompletedAt    *time.Time      `json:"preCheckinCompletedAt,omitempty"`
	PreCheckinToken          *string         `json:"-"`
	PreCheckinTokenExpiresAt *time.Time      `json:"-"`
	IsComplimentary          bool            `json:"isComplimentary"`
	ComplimentaryReason      *string         `json:"complimentaryReason,omitempty"`
	ComplimentaryStartDate   *time.Time      `json:"complimentaryStartDate,omitempty"`
	ComplimentaryEndDate     *time.Time      `json:"complimentaryEndDate,omitempty"`
	ComplimentaryNights      *int            `json:"complimentaryNights,omitempty"`
	OriginalTotalAmount      *decimal.Decimal `json:"originalTotalAmount,omitempty"`
	CreditsConverted         bool            `json:"creditsConverted"`
	DepositPaid              bool            `json:"depositPaid"`
	DepositAmount            *decimal.Decimal `json:"depositAmount,omitempty"`
	CompanyID                *int64          `json:"companyId,omitempty"`
	ActualCheckOut           *time.Time      `json:"actualCheckOut,omitempty"`
	CreatedBy                *int64          `json:"createdBy,omitempty"`
	CreatedAt                time.Time       `json:"createdAt"`
	UpdatedAt                time.Time       `json:"updatedAt"`
}

// Nights counts calendar days in [check_in, check_out).
func (b *Booking) Nights() int {
	return Nights(b.CheckInDate, b.CheckOutDate)
}

func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

type CreateBookingRequest struct {
	GuestID         int64            `json:"guestId"`
	RoomID          int64            `json:"roomId"`
	CheckInDate     time.Time        `json:"checkInDate"`
	CheckOutDate    time.Time        `json:"checkOutDate"`
	Adults          int              `json:"adults"`
	Children        int              `json:"children"`
	RateOverride    *decimal.Decimal `json:"rateOverride,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discountAmount,omitempty"`
	MarketCode      *string          `json:"marketCode,omitempty"`
	SpecialRequests *string          `json:"specialRequests,omitempty"`
	CompanyID       *int64           `json:"companyId,omitempty"`
}

// PreCheckinUpdate carries the whitelisted fields a guest may submit
// through the pre-check-in portal.
type PreCheckinUpdate struct {
	Guest           GuestInput `json:"guest"`
	MarketCode      *string    `json:"marketCode,omitempty"`
	SpecialRequests *string    `json:"specialRequests,omitempty"`
}

type BookingFilter struct {
	Status   *BookingStatus
	GuestID  *int64
	RoomID   *int64
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
