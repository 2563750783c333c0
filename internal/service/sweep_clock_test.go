package service

import (
	"testing"
	"time"
)

func TestPastClockTime(t *testing.T) {
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time {
		return time.Date(2026, 4, 2, h, m, 0, 0, time.UTC)
	}

	if pastClockTime(at(13, 59), day, "14:00") {
		t.Error("13:59 is before the 14:00 cutoff")
	}
	if !pastClockTime(at(14, 0), day, "14:00") {
		t.Error("14:00 is at the cutoff")
	}
	if !pastClockTime(at(23, 30), day, "14:00") {
		t.Error("23:30 is past the cutoff")
	}
	// a malformed setting must disable the sweep, not fire it
	if pastClockTime(at(23, 30), day, "2pm") {
		t.Error("malformed cutoff should never report past")
	}
	if pastClockTime(at(23, 30), day, "") {
		t.Error("empty cutoff should never report past")
	}
}
