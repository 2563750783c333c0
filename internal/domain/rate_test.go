package domain_test

import (
	"testing"
	"time"

	"github.com/harborcrest/pms/internal/domain"
)

func TestDayMaskIncludes(t *testing.T) {
	// bit 0 is Monday, bit 6 is Sunday
	weekdays := domain.DayMask(0x1F)
	weekend := domain.DayMask(0x60)

	if !weekdays.Includes(time.Monday) || !weekdays.Includes(time.Friday) {
		t.Error("weekday mask should cover Monday and Friday")
	}
	if weekdays.Includes(time.Saturday) || weekdays.Includes(time.Sunday) {
		t.Error("weekday mask should not cover the weekend")
	}

	if !weekend.Includes(time.Saturday) || !weekend.Includes(time.Sunday) {
		t.Error("weekend mask should cover Saturday and Sunday")
	}
	if weekend.Includes(time.Wednesday) {
		t.Error("weekend mask should not cover Wednesday")
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		if !domain.AllDays.Includes(d) {
			t.Errorf("AllDays should include %s", d)
		}
	}
}

func TestAdjustmentTypeValid(t *testing.T) {
	for _, a := range []domain.AdjustmentType{domain.AdjustFixed, domain.AdjustPercent, domain.AdjustOverride} {
		if !a.Valid() {
			t.Errorf("%s should be valid", a)
		}
	}
	if domain.AdjustmentType("markup").Valid() {
		t.Error("unknown adjustment type should be invalid")
	}
}
