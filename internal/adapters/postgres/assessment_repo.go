package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// AssessmentRepo implements ports.AssessmentRepository with pgx.
type AssessmentRepo struct {
	db *DB
}

// NewAssessmentRepo creates a new AssessmentRepo.
func NewAssessmentRepo(db *DB) *AssessmentRepo {
	return &AssessmentRepo{db: db}
}

// LatestByUser returns the user's most recent assessment, or nil when the
// user has none.
func (r *AssessmentRepo) LatestByUser(ctx context.Context, userRef string) (*domain.Assessment, error) {
	var a domain.Assessment
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, user_ref, COALESCE(summary, ''), created_at
		FROM assessments
		WHERE user_ref = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userRef).Scan(&a.ID, &a.UserRef, &a.Summary, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
