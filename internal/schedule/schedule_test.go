package schedule

import (
	"testing"
	"time"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestGenerateSlotsWeekday(t *testing.T) {
	loc := mustLoadLoc(t)
	slots, err := GenerateSlots("2026-02-03", loc)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(slots))
	}
	if slots[0] != "09:00" || slots[len(slots)-1] != "17:30" {
		t.Fatalf("unexpected boundary slots: %v", slots)
	}
}

func TestGenerateSlotsSaturday(t *testing.T) {
	loc := mustLoadLoc(t)
	slots, err := GenerateSlots("2026-02-07", loc)
	if err != nil {
		t.Fatalf("GenerateSlots error: %v", err)
	}
	if len(slots) != 7 {
		t.Fatalf("expected 7 slots, got %d", len(slots))
	}
	if slots[0] != "09:00" || slots[len(slots)-1] != "15:00" {
		t.Fatalf("unexpected boundary slots: %v", slots)
	}
}

func TestGenerateSlotsClosedDays(t *testing.T) {
	loc := mustLoadLoc(t)
	for _, date := range []string{"2026-02-01", "2026-02-02"} {
		slots, err := GenerateSlots(date, loc)
		if err != nil {
			t.Fatalf("GenerateSlots error: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("expected 0 slots on %s, got %d", date, len(slots))
		}
	}
}

func TestGenerateSlotsInvalidDate(t *testing.T) {
	loc := mustLoadLoc(t)
	if _, err := GenerateSlots("03/02/2026", loc); err != ErrInvalidDate {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestIsDatePast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, loc)
	past, err := IsDatePast("2026-02-03", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if !past {
		t.Fatalf("expected date to be past")
	}

	past, err = IsDatePast("2026-02-04", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if past {
		t.Fatalf("expected date to be not past")
	}
}

func TestFilterReserved(t *testing.T) {
	slots := []string{"09:00", "10:00", "11:00"}
	reserved := map[string]bool{"10:00": true}
	filtered := FilterReserved(slots, reserved)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(filtered))
	}
	if filtered[1] != "11:00" {
		t.Fatalf("unexpected slots: %v", filtered)
	}
}

func TestIsSlotPast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, loc)
	past, err := IsSlotPast("2026-02-04", "09:00", loc, now)
	if err != nil {
		t.Fatalf("IsSlotPast error: %v", err)
	}
	if !past {
		t.Fatalf("expected slot to be past")
	}
	past, err = IsSlotPast("2026-02-04", "10:30", loc, now)
	if err != nil {
		t.Fatalf("IsSlotPast error: %v", err)
	}
	if past {
		t.Fatalf("expected slot to be future")
	}
}

func TestIsSlotAllowed(t *testing.T) {
	loc := mustLoadLoc(t)
	ok, err := IsSlotAllowed("2026-02-04", "14:30", loc)
	if err != nil {
		t.Fatalf("IsSlotAllowed error: %v", err)
	}
	if !ok {
		t.Fatalf("expected slot to be allowed")
	}

	ok, err = IsSlotAllowed("2026-02-04", "12:30", loc)
	if err != nil {
		t.Fatalf("IsSlotAllowed error: %v", err)
	}
	if ok {
		t.Fatalf("expected slot to be rejected")
	}
}

func TestFilterPastSlots(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 30, 0, 0, loc)
	slots := []string{"09:00", "10:00", "11:00", "13:30"}
	filtered, err := FilterPastSlots("2026-02-04", slots, loc, now)
	if err != nil {
		t.Fatalf("FilterPastSlots error: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 slots, got %v", filtered)
	}
	if filtered[0] != "11:00" {
		t.Fatalf("unexpected slots: %v", filtered)
	}
}
