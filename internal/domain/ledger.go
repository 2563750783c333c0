package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerStatus string

const (
	LedgerPending   LedgerStatus = "pending"
	LedgerPartial   LedgerStatus = "partial"
	LedgerPaid      LedgerStatus = "paid"
	LedgerOverdue   LedgerStatus = "overdue"
	LedgerCancelled LedgerStatus = "cancelled"
	LedgerVoid      LedgerStatus = "void"
	LedgerReversed  LedgerStatus = "reversed"
)

// AcceptsPayments reports whether further receipts may be recorded.
func (s LedgerStatus) AcceptsPayments() bool {
	switch s {
	case LedgerPending, LedgerPartial, LedgerOverdue:
		return true
	}
	return false
}

type CustomerLedger struct {
	ID                    int64           `json:"id"`
	CompanyName           string          `json:"companyName"`
	Description           string          `json:"description"`
	ExpenseType           string          `json:"expenseType"`
	Amount                decimal.Decimal `json:"amount"`
	PaidAmount            decimal.Decimal `json:"paidAmount"`
	BalanceDue            decimal.Decimal `json:"balanceDue"`
	Status                LedgerStatus    `json:"status"`
	BookingID             *int64          `json:"bookingId,omitempty"`
	IsReversal            bool            `json:"isReversal"`
	OriginalTransactionID *int64          `json:"originalTransactionId,omitempty"`
	VoidAt                *time.Time      `json:"voidAt,omitempty"`
	VoidBy                *int64          `json:"voidBy,omitempty"`
	VoidReason            *string         `json:"voidReason,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

type CustomerLedgerPayment struct {
	ID         int64           `json:"id"`
	LedgerID   int64           `json:"ledgerId"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  *string         `json:"reference,omitempty"`
	ReceivedBy *int64          `json:"receivedBy,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type CreateLedgerRequest struct {
	CompanyName string          `json:"companyName"`
	Description string          `json:"description"`
	ExpenseType string          `json:"expenseType"`
	Amount      decimal.Decimal `json:"amount"`
	BookingID   *int64          `json:"bookingId,omitempty"`
}

type LedgerPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference *string         `json:"reference,omitempty"`
}
