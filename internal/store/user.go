package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"reservation-agent/internal/fault"
	"reservation-agent/internal/model"
)

func (s *Postgres) UserByContact(ctx context.Context, contactNumber string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, contact_number, name, created_at
		 FROM users WHERE contact_number = $1`, contactNumber,
	).Scan(&u.ID, &u.ContactNumber, &u.Name, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO users (id, contact_number, name) VALUES ($1,$2,$3)
		 RETURNING created_at`,
		u.ID, u.ContactNumber, u.Name,
	).Scan(&u.CreatedAt)
}

func (s *Postgres) UpdateUserName(ctx context.Context, id, name string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $1 WHERE id = $2`, name, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.ErrNotFound
	}
	return nil
}
