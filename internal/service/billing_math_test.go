package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func TestComposeSummaryDefaults(t *testing.T) {
	b := &domain.Booking{ID: 1, TotalAmount: mustDec(t, "500.00")}
	settings := domain.DefaultSettings() // 10% service charge, 6% tax, no deposit

	s := composeSummary(b, settings)

	if !s.ServiceCharge.Equal(mustDec(t, "50.00")) {
		t.Errorf("service charge = %s, want 50.00", s.ServiceCharge)
	}
	// tax applies to subtotal plus service charge
	if !s.TaxAmount.Equal(mustDec(t, "33.00")) {
		t.Errorf("tax = %s, want 33.00", s.TaxAmount)
	}
	if !s.TotalAmount.Equal(mustDec(t, "583.00")) {
		t.Errorf("total = %s, want 583.00", s.TotalAmount)
	}
}

func TestComposeSummaryWithDeposit(t *testing.T) {
	b := &domain.Booking{ID: 1, TotalAmount: mustDec(t, "200.00")}
	settings := domain.SystemSettings{
		ServiceChargePct: mustDec(t, "10"),
		TaxPct:           mustDec(t, "6"),
		KeycardDeposit:   mustDec(t, "50.00"),
	}

	s := composeSummary(b, settings)

	// 200 + 20 + 13.20 + 50
	if !s.TotalAmount.Equal(mustDec(t, "283.20")) {
		t.Errorf("total = %s, want 283.20", s.TotalAmount)
	}
	if !s.KeycardDeposit.Equal(mustDec(t, "50.00")) {
		t.Errorf("deposit = %s, want 50.00", s.KeycardDeposit)
	}
}

func TestComposeSummaryBankersRounding(t *testing.T) {
	// 33.35 * 10% = 3.335, which banker's rounding takes to 3.34.
	b := &domain.Booking{ID: 1, TotalAmount: mustDec(t, "33.35")}
	settings := domain.SystemSettings{
		ServiceChargePct: mustDec(t, "10"),
		TaxPct:           decimal.Zero,
		KeycardDeposit:   decimal.Zero,
	}

	s := composeSummary(b, settings)
	if !s.ServiceCharge.Equal(mustDec(t, "3.34")) {
		t.Errorf("service charge = %s, want 3.34 (round half to even)", s.ServiceCharge)
	}
}

func TestSettlementTargetUsesLatestInvoice(t *testing.T) {
	// Invoice lists come back newest first.
	invoices := []domain.Invoice{
		{ID: 3, TotalAmount: mustDec(t, "620.00")},
		{ID: 1, TotalAmount: mustDec(t, "583.00")},
	}

	if got := settlementTarget(mustDec(t, "500.00"), invoices); !got.Equal(mustDec(t, "620.00")) {
		t.Errorf("target = %s, want latest invoice total 620.00", got)
	}
	if got := settlementTarget(mustDec(t, "500.00"), nil); !got.Equal(mustDec(t, "500.00")) {
		t.Errorf("target = %s, want summary total 500.00", got)
	}
}
