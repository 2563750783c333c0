package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentState string

const (
	PaymentPending    PaymentState = "pending"
	PaymentProcessing PaymentState = "processing"
	PaymentCompleted  PaymentState = "completed"
	PaymentFailed     PaymentState = "failed"
	PaymentRefunded   PaymentState = "refunded"
	PaymentCancelled  PaymentState = "cancelled"
)

type Payment struct {
	ID                   int64           `json:"id"`
	BookingID            int64           `json:"bookingId"`
	UserID               *int64          `json:"userId,omitempty"`
	Method               string          `json:"method"`
	Status               PaymentState    `json:"status"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	ServiceCharge        decimal.Decimal `json:"serviceCharge"`
	TaxAmount            decimal.Decimal `json:"taxAmount"`
	KeycardDeposit       decimal.Decimal `json:"keycardDeposit"`
	TotalAmount          decimal.Decimal `json:"totalAmount"`
	TransactionReference *string         `json:"transactionReference,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// PaymentSummary is the composition arithmetic for a booking's bill.
type PaymentSummary struct {
	BookingID           int64           `json:"bookingId"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	ServiceCharge       decimal.Decimal `json:"serviceCharge"`
	ServiceChargePct    decimal.Decimal `json:"serviceChargePercentage"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	TaxPct              decimal.Decimal `json:"taxPercentage"`
	KeycardDeposit      decimal.Decimal `json:"keycardDeposit"`
	TotalAmount         decimal.Decimal `json:"totalAmount"`
}

type RecordPaymentRequest struct {
	BookingID            int64   `json:"bookingId"`
	Method               string  `json:"method"`
	TransactionReference *string `json:"transactionReference,omitempty"`
}

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

type Invoice struct {
	ID             int64           `json:"id"`
	UUID           string          `json:"uuid"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	BookingID      int64           `json:"bookingId"`
	BillingName    string          `json:"billingName"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        *time.Time      `json:"dueDate,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	BalanceDue     decimal.Decimal `json:"balanceDue"`
	Currency       string          `json:"currency"`
	Status         InvoiceStatus   `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
}
