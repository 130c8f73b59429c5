package phone_test

import (
	"testing"

	"reservation-agent/internal/fault"
	"reservation-agent/internal/phone"
)

func TestNormalizeEquivalentForms(t *testing.T) {
	// the same caller, transcribed four different ways
	forms := []string{
		"+91 98765 43210",
		"+919876543210",
		"98765-43210",
		"9876543210",
	}
	want := "9876543210"
	for _, f := range forms {
		got, err := phone.Normalize(f)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", f, err)
		}
		if got != want {
			t.Errorf("Normalize(%q) = %q, want %q", f, got, want)
		}
	}
}

func TestNormalizeKeepsLastTenDigits(t *testing.T) {
	got, err := phone.Normalize("91 98765 43210")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got != "9876543210" {
		t.Errorf("got %q, want country code stripped", got)
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	for _, raw := range []string{"", "12345", "call me maybe", "123456789"} {
		if _, err := phone.Normalize(raw); err == nil {
			t.Errorf("Normalize(%q): expected error", raw)
		} else if !fault.IsValidation(err) {
			t.Errorf("Normalize(%q): expected validation error, got %v", raw, err)
		}
	}
}
