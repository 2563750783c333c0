package domain

import (
	"encoding/json"
	"time"
)

// Canonical audit actions. Keep string values stable; reports key on them.
const (
	ActionLoginSuccess        = "login_success"
	ActionLoginFailure        = "login_failure"
	ActionRoleAssigned        = "role_assigned"
	ActionRoleRemoved         = "role_removed"
	ActionBookingCreated      = "booking_created"
	ActionBookingUpdated      = "booking_updated"
	ActionBookingCancelled    = "booking_cancelled"
	ActionPasswordChanged     = "password_changed"
	ActionSettingsChanged     = "settings_changed"
	ActionLedgerVoided        = "ledger_voided"
	ActionLedgerReversed      = "ledger_reversed"
	ActionNightAuditCompleted = "night_audit_completed"
)

type AuditLog struct {
	ID           int64           `json:"id"`
	UserID       *int64          `json:"userId,omitempty"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resourceType"`
	ResourceID   *int64          `json:"resourceId,omitempty"`
	Details      json.RawMessage `json:"details,omitempty"`
	IP           *string         `json:"ip,omitempty"`
	UserAgent    *string         `json:"userAgent,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type AuditLogFilter struct {
	UserID       *int64
	Action       *string
	ResourceType *string
	Limit        int
	Offset       int
}
