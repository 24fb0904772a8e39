package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ports.ProfileRepository with pgx.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// RefByUser returns the profile reference for a user, or "" when the user
// has no profile row.
func (r *ProfileRepo) RefByUser(ctx context.Context, userRef string) (string, error) {
	var ref string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id FROM profiles WHERE user_ref = $1`, userRef).Scan(&ref)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ref, nil
}
