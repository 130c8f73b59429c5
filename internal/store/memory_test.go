package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"reservation-agent/internal/fault"
	"reservation-agent/internal/model"
	"reservation-agent/internal/store"
)

func seed(t *testing.T, m *store.Memory, userID string, start time.Time) *model.Appointment {
	t.Helper()
	a := &model.Appointment{
		ID:        "apt-" + start.Format("150405"),
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.StatusBooked,
		Details:   "Guests: 2. General Reservation",
	}
	if err := m.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	return a
}

func TestOverlapBoundaries(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	seed(t, m, "u1", start)

	cases := []struct {
		name string
		from time.Time
		want bool
	}{
		{"identical", start, true},
		{"half overlap", start.Add(30 * time.Minute), true},
		{"adjacent after", start.Add(time.Hour), false},
		{"adjacent before", start.Add(-time.Hour), false},
	}
	for _, c := range cases {
		got, err := m.HasOverlap(ctx, "u1", c.from, c.from.Add(time.Hour), "")
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: overlap = %v, want %v", c.name, got, c.want)
		}
	}

	// a different user never conflicts
	if got, _ := m.HasOverlap(ctx, "u2", start, start.Add(time.Hour), ""); got {
		t.Error("overlap across users")
	}
}

func TestOverlapIgnoresNonBooked(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	a := seed(t, m, "u1", start)

	if err := m.CancelAppointment(ctx, a.ID); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if got, _ := m.HasOverlap(ctx, "u1", start, start.Add(time.Hour), ""); got {
		t.Error("cancelled appointment still blocks the slot")
	}
}

func TestCreateAppointmentRejectsDoubleBooking(t *testing.T) {
	m := store.NewMemory()
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	seed(t, m, "u1", start)

	err := m.CreateAppointment(context.Background(), &model.Appointment{
		ID: "dup", UserID: "u1",
		StartTime: start.Add(30 * time.Minute),
		EndTime:   start.Add(90 * time.Minute),
		Status:    model.StatusBooked,
	})
	var ce *fault.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConflictError", err)
	}
}

func TestRescheduleExcludesSelf(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()
	start := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	a := seed(t, m, "u1", start)

	// shifting within its own window is fine
	if err := m.RescheduleAppointment(ctx, a.ID, start.Add(15*time.Minute), start.Add(75*time.Minute), a.Details); err != nil {
		t.Fatalf("RescheduleAppointment: %v", err)
	}

	b := seed(t, m, "u1", start.Add(2*time.Hour))
	err := m.RescheduleAppointment(ctx, b.ID, start, start.Add(time.Hour), b.Details)
	var ce *fault.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConflictError", err)
	}
}

func TestListSummariesNewestFirst(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"summary_1", "summary_2", "summary_3"} {
		tick := now.Add(time.Duration(i) * time.Minute)
		m.SetClock(func() time.Time { return tick })
		if err := m.CreateSummary(ctx, &model.Summary{ID: id, Content: id}); err != nil {
			t.Fatalf("CreateSummary: %v", err)
		}
	}

	all, err := m.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(all) != 3 || all[0].ID != "summary_3" || all[2].ID != "summary_1" {
		t.Errorf("order = %v", []string{all[0].ID, all[1].ID, all[2].ID})
	}
	if all[0].Bookings == nil {
		t.Error("nil snapshot stored; want empty slice")
	}
}
