package validation

import "testing"

type bookingForm struct {
	Date  string `validate:"required,date"`
	Time  string `validate:"required,clock"`
	Phone string `validate:"omitempty,phone"`
}

func TestCustomDateTag(t *testing.T) {
	v := New()

	if err := v.Struct(bookingForm{Date: "2026-09-01", Time: "10:00"}); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
	if err := v.Struct(bookingForm{Date: "01/09/2026", Time: "10:00"}); err == nil {
		t.Fatalf("expected date format error")
	}
}

func TestCustomClockTag(t *testing.T) {
	v := New()

	if err := v.Struct(bookingForm{Date: "2026-09-01", Time: "25:00"}); err == nil {
		t.Fatalf("expected clock format error")
	}
}

func TestCustomPhoneTag(t *testing.T) {
	v := New()

	if err := v.Struct(bookingForm{Date: "2026-09-01", Time: "10:00", Phone: "+33612345678"}); err != nil {
		t.Fatalf("expected valid phone, got %v", err)
	}
	if err := v.Struct(bookingForm{Date: "2026-09-01", Time: "10:00", Phone: "not-a-phone"}); err == nil {
		t.Fatalf("expected phone format error")
	}
}

func TestValidationErrorsHelper(t *testing.T) {
	v := New()

	err := v.Struct(bookingForm{})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	errs := v.ValidationErrors(err)
	if len(errs) == 0 {
		t.Fatalf("expected field errors")
	}
}
