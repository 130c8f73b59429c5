package slots_test

import (
	"context"
	"testing"
	"time"

	"reservation-agent/internal/slots"
)

func fixedCalendar(now time.Time) *slots.Calendar {
	return &slots.Calendar{Now: func() time.Time { return now }}
}

func TestCandidatesGrid(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	got := fixedCalendar(now).Candidates()

	if len(got) != 2*len(slots.Hours) {
		t.Fatalf("got %d slots, want %d", len(got), 2*len(slots.Hours))
	}

	seen := map[time.Time]bool{}
	for i, s := range got {
		if seen[s.Start] {
			t.Errorf("duplicate slot %v", s.Start)
		}
		seen[s.Start] = true

		wantDay := now.Day()
		if i >= len(slots.Hours) {
			wantDay = now.AddDate(0, 0, 1).Day()
		}
		if s.Start.Day() != wantDay {
			t.Errorf("slot %d on day %d, want %d", i, s.Start.Day(), wantDay)
		}
		if s.Start.Hour() != slots.Hours[i%len(slots.Hours)] {
			t.Errorf("slot %d at hour %d, want %d", i, s.Start.Hour(), slots.Hours[i%len(slots.Hours)])
		}
	}

	if got[4].Display != "Today at 07:00 PM" {
		t.Errorf("display = %q", got[4].Display)
	}
	if got[7].Display != "Tomorrow at 10:00 AM" {
		t.Errorf("display = %q", got[7].Display)
	}
}

func TestWithinHours(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		hour int
		want bool
	}{
		{9, false},
		{10, true},
		{21, true},
		{22, false},
		{23, false},
	}
	for _, c := range cases {
		if got := slots.WithinHours(day.Add(time.Duration(c.hour) * time.Hour)); got != c.want {
			t.Errorf("WithinHours(%02d:00) = %v, want %v", c.hour, got, c.want)
		}
	}
}

func TestNextAvailableSkipsTaken(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	after := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)
	busy := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)

	next, ok, err := fixedCalendar(now).NextAvailable(context.Background(), after,
		func(ctx context.Context, start time.Time) (bool, error) {
			return start.Equal(busy), nil
		})
	if err != nil || !ok {
		t.Fatalf("NextAvailable: ok=%v err=%v", ok, err)
	}
	want := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextAvailableNeverSuggestsPast(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	after := now.AddDate(0, 0, -1) // requested slot was yesterday

	next, ok, err := fixedCalendar(now).NextAvailable(context.Background(), after,
		func(ctx context.Context, start time.Time) (bool, error) { return false, nil })
	if err != nil || !ok {
		t.Fatalf("NextAvailable: ok=%v err=%v", ok, err)
	}
	want := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}

func TestNextAvailableFullWindow(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	_, ok, err := fixedCalendar(now).NextAvailable(context.Background(), now,
		func(ctx context.Context, start time.Time) (bool, error) { return true, nil })
	if err != nil {
		t.Fatalf("NextAvailable: %v", err)
	}
	if ok {
		t.Error("expected no slot when everything is taken")
	}
}
