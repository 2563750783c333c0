package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuditRunStatus string

const (
	AuditRunning   AuditRunStatus = "running"
	AuditCompleted AuditRunStatus = "completed"
	AuditFailed    AuditRunStatus = "failed"
)

type NightAuditRun struct {
	ID                int64           `json:"id"`
	AuditDate         time.Time       `json:"auditDate"`
	StartedAt         time.Time       `json:"startedAt"`
	FinishedAt        *time.Time      `json:"finishedAt,omitempty"`
	RunBy             *int64          `json:"runBy,omitempty"`
	BookingsPosted    int             `json:"bookingsPosted"`
	TotalAmountPosted decimal.Decimal `json:"totalAmountPosted"`
	Status            AuditRunStatus  `json:"status"`
}

// BookingPosting records that a room charge was posted for a booking on a
// given audit date; the (BookingID, AuditDate) pair is unique.
type BookingPosting struct {
	ID        int64           `json:"id"`
	BookingID int64           `json:"bookingId"`
	AuditDate time.Time       `json:"auditDate"`
	Amount    decimal.Decimal `json:"amount"`
	LedgerID  *int64          `json:"ledgerId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type NightAuditPreview struct {
	AuditDate    time.Time       `json:"auditDate"`
	BookingCount int             `json:"bookingCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}
