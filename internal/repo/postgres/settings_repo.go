package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
)

const (
	keyServiceChargePct    = "service_charge_percentage"
	keyTaxPct              = "tax_percentage"
	keyKeycardDeposit      = "keycard_deposit"
	keyAutoCheckinEnabled  = "auto_checkin_enabled"
	keyCheckInTime         = "check_in_time"
	keyCheckOutTime        = "check_out_time"
	keyLateCheckoutEnabled = "late_checkout_enabled"
)

type SettingsRepo interface {
	Load(ctx context.Context) (domain.SystemSettings, error)
	Save(ctx context.Context, q Querier, s domain.SystemSettings) error
}

type SettingsRepoImpl struct{ pool *pgxpool.Pool }

func NewSettingsRepo(pool *pgxpool.Pool) *SettingsRepoImpl { return &SettingsRepoImpl{pool: pool} }

// Load reads all setting rows and overlays them on the defaults, so a
// missing key never breaks billing.
func (r *SettingsRepoImpl) Load(ctx context.Context) (domain.SystemSettings, error) {
	const q = `SELECT key, value FROM system_settings`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	s := domain.DefaultSettings()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return s, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return s, err
		}
		switch key {
		case keyServiceChargePct:
			if d, err := decimal.NewFromString(value); err == nil {
				s.ServiceChargePct = d
			}
		case keyTaxPct:
			if d, err := decimal.NewFromString(value); err == nil {
				s.TaxPct = d
			}
		case keyKeycardDeposit:
			if d, err := decimal.NewFromString(value); err == nil {
				s.KeycardDeposit = d
			}
		case keyAutoCheckinEnabled:
			if b, err := strconv.ParseBool(value); err == nil {
				s.AutoCheckinEnabled = b
			}
		case keyCheckInTime:
			s.CheckInTime = value
		case keyCheckOutTime:
			s.CheckOutTime = value
		case keyLateCheckoutEnabled:
			if b, err := strconv.ParseBool(value); err == nil {
				s.LateCheckoutEnabled = b
			}
		}
	}
	return s, rows.Err()
}

func (r *SettingsRepoImpl) Save(ctx context.Context, q Querier, s domain.SystemSettings) error {
	q = orPool(q, r.pool)
	const query = `INSERT INTO system_settings (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	pairs := []struct{ k, v string }{
		{keyServiceChargePct, s.ServiceChargePct.String()},
		{keyTaxPct, s.TaxPct.String()},
		{keyKeycardDeposit, s.KeycardDeposit.String()},
		{keyAutoCheckinEnabled, strconv.FormatBool(s.AutoCheckinEnabled)},
		{keyCheckInTime, s.CheckInTime},
		{keyCheckOutTime, s.CheckOutTime},
		{keyLateCheckoutEnabled, strconv.FormatBool(s.LateCheckoutEnabled)},
	}
	for _, p := range pairs {
		if _, err := q.Exec(ctx, query, p.k, p.v); err != nil {
			return err
		}
	}
	return nil
}

var _ SettingsRepo = (*SettingsRepoImpl)(nil)
