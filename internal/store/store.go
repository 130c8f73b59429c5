// Package store persists users, appointments and call summaries.
//
// Two implementations exist: Postgres (production) and Memory, used when
// no DATABASE_URL is configured and by the unit tests.
package store

import (
	"context"
	"time"

	"reservation-agent/internal/model"
)

// Store is the persistence surface the reservation service works against.
// Implementations map their driver's "no rows" onto fault.ErrNotFound and
// report slot races as *fault.ConflictError.
type Store interface {
	Ping(ctx context.Context) error
	Close()

	// users
	UserByContact(ctx context.Context, contactNumber string) (*model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUserName(ctx context.Context, id, name string) error

	// appointments
	//
	// CreateAppointment runs its overlap check and insert in one
	// transaction so two sessions cannot double-book the same user.
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error)
	AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id string) error
	RescheduleAppointment(ctx context.Context, id string, start, end time.Time, details string) error
	UpdateDetails(ctx context.Context, id, details string) error
	// CompletePast marks booked appointments whose end time passed as
	// completed. Not reachable from any tool; meant for an operator job.
	CompletePast(ctx context.Context, before time.Time) (int64, error)

	// summaries
	CreateSummary(ctx context.Context, s *model.Summary) error
	ListSummaries(ctx context.Context) ([]model.Summary, error)
}
