// Package phone normalizes caller contact numbers to the stored
// 10-digit form. Numbers arrive in whatever shape the speech pipeline
// transcribed them ("+91 98765-43210", "nine eight seven..." already
// digit-mapped, etc).
package phone

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"reservation-agent/internal/fault"
)

// Digits is the expected length of a normalized contact number.
const Digits = 10

const defaultRegion = "IN"

// Normalize strips a raw contact number down to its 10 significant digits.
// A parseable full number ("+91 98765 43210") and its bare national form
// ("9876543210") normalize to the same value.
func Normalize(raw string) (string, error) {
	digits := ""
	if num, err := phonenumbers.Parse(raw, defaultRegion); err == nil && phonenumbers.IsValidNumber(num) {
		digits = phonenumbers.GetNationalSignificantNumber(num)
	} else {
		digits = stripNonDigits(raw)
	}

	// keep the last 10 when a country code survived
	if len(digits) > Digits {
		digits = digits[len(digits)-Digits:]
	}
	if len(digits) != Digits {
		return "", fault.Validationf("%q is not a valid %d-digit phone number", raw, Digits)
	}
	return digits, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
