package store_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"reservation-agent/internal/fault"
	"reservation-agent/internal/model"
	"reservation-agent/internal/store"
)

func setupPG(t *testing.T) *store.Postgres {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)
	if migration, err := os.ReadFile("../../db/migrations/001_init.sql"); err == nil {
		_, _ = pool.Exec(context.Background(), string(migration))
	}
	return store.NewPostgres(pool)
}

func testUser(t *testing.T, pg *store.Postgres) *model.User {
	t.Helper()
	u := &model.User{
		ID:            uuid.New().String(),
		ContactNumber: fmt.Sprintf("9%09d", time.Now().UnixNano()%1_000_000_000),
		Name:          "Test Caller",
	}
	if err := pg.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestPostgresUserLookup(t *testing.T) {
	pg := setupPG(t)
	ctx := context.Background()
	u := testUser(t, pg)

	got, err := pg.UserByContact(ctx, u.ContactNumber)
	if err != nil {
		t.Fatalf("UserByContact: %v", err)
	}
	if got.ID != u.ID || got.Name != u.Name {
		t.Errorf("got %+v, want %+v", got, u)
	}

	if err := pg.UpdateUserName(ctx, u.ID, "Renamed"); err != nil {
		t.Fatalf("UpdateUserName: %v", err)
	}
	got, _ = pg.UserByContact(ctx, u.ContactNumber)
	if got.Name != "Renamed" {
		t.Errorf("name = %q", got.Name)
	}

	if _, err := pg.UserByContact(ctx, "0000000000"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}

func TestPostgresBookingLifecycle(t *testing.T) {
	pg := setupPG(t)
	ctx := context.Background()
	u := testUser(t, pg)

	start := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	a := &model.Appointment{
		ID:        uuid.New().String(),
		UserID:    u.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    model.StatusBooked,
		Details:   "Guests: 2. General Reservation",
	}
	if err := pg.CreateAppointment(ctx, a); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}

	busy, err := pg.HasOverlap(ctx, u.ID, start.Add(30*time.Minute), start.Add(90*time.Minute), "")
	if err != nil || !busy {
		t.Errorf("HasOverlap = %v, %v; want true", busy, err)
	}
	if busy, _ := pg.HasOverlap(ctx, u.ID, start.Add(30*time.Minute), start.Add(90*time.Minute), a.ID); busy {
		t.Error("overlap reported against excluded id")
	}

	dup := &model.Appointment{
		ID: uuid.New().String(), UserID: u.ID,
		StartTime: start, EndTime: start.Add(time.Hour),
		Status: model.StatusBooked,
	}
	var ce *fault.ConflictError
	if err := pg.CreateAppointment(ctx, dup); !errors.As(err, &ce) {
		t.Errorf("double booking: got %v, want ConflictError", err)
	}

	moved := start.Add(3 * time.Hour)
	if err := pg.RescheduleAppointment(ctx, a.ID, moved, moved.Add(time.Hour), a.Details); err != nil {
		t.Fatalf("RescheduleAppointment: %v", err)
	}
	if err := pg.UpdateDetails(ctx, a.ID, "Guests: 4. Birthday"); err != nil {
		t.Fatalf("UpdateDetails: %v", err)
	}

	got, err := pg.GetAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if !got.StartTime.Equal(moved) || got.Details != "Guests: 4. Birthday" {
		t.Errorf("got %+v", got)
	}

	if err := pg.CancelAppointment(ctx, a.ID); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if err := pg.CancelAppointment(ctx, a.ID); !errors.Is(err, fault.ErrInvalidState) {
		t.Errorf("double cancel: got %v", err)
	}

	apts, err := pg.AppointmentsByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("AppointmentsByUser: %v", err)
	}
	if len(apts) != 1 || apts[0].Status != model.StatusCancelled {
		t.Errorf("apts = %+v", apts)
	}
}

func TestPostgresSummaries(t *testing.T) {
	pg := setupPG(t)
	ctx := context.Background()
	u := testUser(t, pg)

	sum := &model.Summary{
		ID:        "summary_" + time.Now().Format("20060102150405.000"),
		UserID:    &u.ID,
		Content:   "test call",
		Bookings:  []model.Appointment{},
		Timestamp: time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := pg.CreateSummary(ctx, sum); err != nil {
		t.Fatalf("CreateSummary: %v", err)
	}

	all, err := pg.ListSummaries(ctx)
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	found := false
	for _, s := range all {
		if s.ID == sum.ID {
			found = true
			if s.UserID == nil || *s.UserID != u.ID {
				t.Errorf("user id = %v", s.UserID)
			}
		}
	}
	if !found {
		t.Error("stored summary not listed")
	}
}
