package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/harborcrest/pms/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

// Subjects. Consumers (housekeeping boards, reporting) subscribe by prefix.
const (
	BookingCreated     = "booking.created"
	BookingConfirmed   = "booking.confirmed"
	BookingCheckedIn   = "booking.checked_in"
	BookingCheckedOut  = "booking.checked_out"
	BookingCancelled   = "booking.cancelled"
	PaymentRecorded    = "payment.recorded"
	InvoiceIssued      = "invoice.issued"
	NightAuditComplete = "night_audit.completed"
)

type BookingEvent struct {
	BookingID     int64  `json:"bookingId"`
	BookingNumber string `json:"bookingNumber"`
	GuestID       int64  `json:"guestId"`
	RoomID        int64  `json:"roomId"`
	Status        string `json:"status"`
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	logger.DebugContext(ctx, "Publishing event", "subject", subject)
	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher is used when NATS is not configured; publishing is always
// best-effort so core operations never depend on the bus.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
