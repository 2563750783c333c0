package domain

import "github.com/shopspring/decimal"

// SystemSettings holds the operational knobs read by billing and the
// scheduled sweeps. Persisted as key/value rows; defaults apply when a key
// is absent.
type SystemSettings struct {
	ServiceChargePct   decimal.Decimal `json:"serviceChargePercentage"`
	TaxPct             decimal.Decimal `json:"taxPercentage"`
	KeycardDeposit     decimal.Decimal `json:"keycardDeposit"`
	AutoCheckinEnabled bool            `json:"autoCheckinEnabled"`
	CheckInTime        string          `json:"checkInTime"`  // "15:00"
	CheckOutTime       string          `json:"checkOutTime"` // "12:00"
	LateCheckoutEnabled bool           `json:"lateCheckoutEnabled"`
}

func DefaultSettings() SystemSettings {
	return SystemSettings{
		ServiceChargePct:    decimal.NewFromInt(10),
		TaxPct:              decimal.NewFromInt(6),
		KeycardDeposit:      decimal.Zero,
		AutoCheckinEnabled:  false,
		CheckInTime:         "15:00",
		CheckOutTime:        "12:00",
		LateCheckoutEnabled: false,
	}
}
