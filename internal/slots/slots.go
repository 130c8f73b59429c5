// Package slots derives candidate appointment start times from the
// restaurant's fixed hourly schedule.
package slots

import (
	"context"
	"time"

	"reservation-agent/internal/model"
)

// Hours are the bookable start hours offered for today and tomorrow.
var Hours = []int{10, 14, 17, 18, 19, 20, 21}

// SuggestionHours is the reduced set searched when proposing an
// alternative after a conflict.
var SuggestionHours = []int{10, 14, 17, 18, 19}

const (
	// OpeningHour and ClosingHour bound acceptable start times.
	OpeningHour = 10
	ClosingHour = 22

	// How far ahead NextAvailable searches for an alternative.
	searchDays = 7
)

// Calendar computes slots relative to a clock. The zero value uses
// time.Now; tests inject a fixed clock.
type Calendar struct {
	Now func() time.Time
}

func (c *Calendar) now() time.Time {
	if c != nil && c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Time exposes the calendar's clock to callers that validate against it.
func (c *Calendar) Time() time.Time { return c.now() }

// Candidates returns the full slot grid for today and tomorrow in
// chronological order: one entry per hour in Hours per day, 14 total.
// Pure function of the clock; slots already in the past are included,
// callers that present slots to a caller filter them out.
func (c *Calendar) Candidates() []model.Slot {
	now := c.now()
	out := make([]model.Slot, 0, 2*len(Hours))
	for dayOffset := 0; dayOffset < 2; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		label := "Today"
		if dayOffset == 1 {
			label = "Tomorrow"
		}
		for _, h := range Hours {
			start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, now.Location())
			out = append(out, model.Slot{
				Start:   start,
				Display: label + " at " + start.Format("03:04 PM"),
			})
		}
	}
	return out
}

// WithinHours reports whether t starts inside opening hours.
func WithinHours(t time.Time) bool {
	return t.Hour() >= OpeningHour && t.Hour() < ClosingHour
}

// NextAvailable finds the first slot strictly after `after` (and after
// now) for which taken reports false, scanning SuggestionHours over the
// next searchDays days. The second return is false when nothing is free
// in the window.
func (c *Calendar) NextAvailable(ctx context.Context, after time.Time, taken func(ctx context.Context, start time.Time) (bool, error)) (time.Time, bool, error) {
	now := c.now()
	ref := after
	if now.After(ref) {
		ref = now
	}

	for dayOffset := 0; dayOffset < searchDays; dayOffset++ {
		day := ref.AddDate(0, 0, dayOffset)
		for _, h := range SuggestionHours {
			start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, ref.Location())
			if !start.After(ref) {
				continue
			}
			busy, err := taken(ctx, start)
			if err != nil {
				return time.Time{}, false, err
			}
			if !busy {
				return start, true, nil
			}
		}
	}
	return time.Time{}, false, nil
}
