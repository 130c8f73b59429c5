package store

import (
	"context"
	"encoding/json"

	"reservation-agent/internal/model"
)

func (s *Postgres) CreateSummary(ctx context.Context, sum *model.Summary) error {
	snapshot := sum.Bookings
	if snapshot == nil {
		snapshot = []model.Appointment{}
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO summaries (id, user_id, content, bookings_snapshot, "timestamp")
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at`,
		sum.ID, sum.UserID, sum.Content, b, sum.Timestamp,
	).Scan(&sum.CreatedAt)
}

func (s *Postgres) ListSummaries(ctx context.Context) ([]model.Summary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, content, bookings_snapshot, "timestamp", created_at
		 FROM summaries
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Summary
	for rows.Next() {
		var sum model.Summary
		var snapshot []byte
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.Content, &snapshot, &sum.Timestamp, &sum.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(snapshot, &sum.Bookings); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
