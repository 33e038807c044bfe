package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// BootstrapMarkRepository records one-time setup steps so startup seeding
// stays idempotent across restarts.
type BootstrapMarkRepository interface {
	// Claim marks the step as done. It returns true exactly once per id.
	Claim(ctx context.Context, id string) (bool, error)
}

type bootstrapMarkRepository struct {
	pool *pgxpool.Pool
}

// NewBootstrapMarkRepository instantiates repository.
func NewBootstrapMarkRepository(pool *pgxpool.Pool) BootstrapMarkRepository {
	return &bootstrapMarkRepository{pool: pool}
}

func (r *bootstrapMarkRepository) Claim(ctx context.Context, id string) (bool, error) {
	cmd, err := r.pool.Exec(ctx,
		`INSERT INTO bootstrap_marks (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}
