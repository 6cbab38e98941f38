package storage

import (
	"context"
	"fmt"

	"finboard/internal/core"
)

// UpsertUser records the identity provider's view of a user. Empty profile
// fields never overwrite known values.
func (r *Repository) UpsertUser(ctx context.Context, u core.User) error {
	now := r.timestamp()
	_, err := r.exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE users.email END,
			first_name = CASE WHEN excluded.first_name <> '' THEN excluded.first_name ELSE users.first_name END,
			last_name = CASE WHEN excluded.last_name <> '' THEN excluded.last_name ELSE users.last_name END,
			updated_at = excluded.updated_at`,
		u.ID, u.Email, u.FirstName, u.LastName, now, now)
	if err != nil {
		return fmt.Errorf("upsert user %s: %w", u.ID, err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	var u core.User
	err := r.queryRow(ctx, `
		SELECT id, email, first_name, last_name, created_at, updated_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, timeCol{&u.CreatedAt}, timeCol{&u.UpdatedAt})
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, notFound(err))
	}
	return u, nil
}
