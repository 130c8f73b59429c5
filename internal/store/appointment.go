package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"reservation-agent/internal/fault"
	"reservation-agent/internal/model"
)

// CreateAppointment inserts a booking after re-checking for overlaps in
// the same transaction. Candidate rows are locked so a concurrent session
// booking the same user cannot slip between the check and the insert.
func (s *Postgres) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var conflictID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM appointments
		 WHERE user_id = $1
		   AND status = 'booked'
		   AND start_time < $3
		   AND end_time > $2
		 LIMIT 1
		 FOR UPDATE`,
		a.UserID, a.StartTime, a.EndTime,
	).Scan(&conflictID)
	if err == nil {
		return &fault.ConflictError{Requested: a.StartTime}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO appointments (id, user_id, start_time, end_time, status, details)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at`,
		a.ID, a.UserID, a.StartTime, a.EndTime, a.Status, a.Details,
	).Scan(&a.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Postgres) HasOverlap(ctx context.Context, userID string, start, end time.Time, excludeID string) (bool, error) {
	q := `SELECT EXISTS(
		SELECT 1 FROM appointments
		WHERE user_id = $1
		  AND status = 'booked'
		  AND start_time < $3
		  AND end_time > $2`

	args := []any{userID, start, end}

	if excludeID != "" {
		q += ` AND id != $4`
		args = append(args, excludeID)
	}
	q += `)`

	var exists bool
	err := s.pool.QueryRow(ctx, q, args...).Scan(&exists)
	return exists, err
}

func (s *Postgres) AppointmentsByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, start_time, end_time, status, details, created_at
		 FROM appointments
		 WHERE user_id = $1
		 ORDER BY start_time`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.StartTime, &a.EndTime,
			&a.Status, &a.Details, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, start_time, end_time, status, details, created_at
		 FROM appointments WHERE id = $1`, id,
	).Scan(&a.ID, &a.UserID, &a.StartTime, &a.EndTime, &a.Status, &a.Details, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CancelAppointment moves booked -> cancelled. Cancelled and completed are
// terminal, so anything else is an invalid transition.
func (s *Postgres) CancelAppointment(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM appointments WHERE id = $1 FOR UPDATE`, id,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status != model.StatusBooked {
		return fault.ErrInvalidState
	}

	if _, err := tx.Exec(ctx,
		`UPDATE appointments SET status = 'cancelled' WHERE id = $1`, id,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RescheduleAppointment updates time and details in place, re-running the
// overlap check (excluding the appointment itself) inside the transaction.
// Status is left untouched.
func (s *Postgres) RescheduleAppointment(ctx context.Context, id string, start, end time.Time, details string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var userID string
	err = tx.QueryRow(ctx,
		`SELECT user_id FROM appointments WHERE id = $1 FOR UPDATE`, id,
	).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return fault.ErrNotFound
	}
	if err != nil {
		return err
	}

	var conflictID string
	err = tx.QueryRow(ctx,
		`SELECT id FROM appointments
		 WHERE user_id = $1
		   AND status = 'booked'
		   AND id != $2
		   AND start_time < $4
		   AND end_time > $3
		 LIMIT 1
		 FOR UPDATE`,
		userID, id, start, end,
	).Scan(&conflictID)
	if err == nil {
		return &fault.ConflictError{Requested: start}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE appointments SET start_time = $1, end_time = $2, details = $3 WHERE id = $4`,
		start, end, details, id,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Postgres) UpdateDetails(ctx context.Context, id, details string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET details = $1 WHERE id = $2`, details, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}
	return nil
}

func (s *Postgres) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE appointments SET status = 'completed'
		 WHERE status = 'booked' AND end_time < $1`, before,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
