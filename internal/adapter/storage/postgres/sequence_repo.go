package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SequenceRepo implements ports.SequenceRepository. One counter row per
// key; the row lock serializes concurrent allocations across service
// instances.
type SequenceRepo struct {
	pool Pool
}

// NewSequenceRepo creates a new SequenceRepo.
func NewSequenceRepo(pool Pool) *SequenceRepo {
	return &SequenceRepo{pool: pool}
}

// NextValue advances the counter row for key and returns the new value.
// The upsert creates the row on first allocation and takes the row lock
// in the same statement, so two concurrent first allocations serialize
// instead of racing the insert.
func (r *SequenceRepo) NextValue(ctx context.Context, tx pgx.Tx, key string) (int, error) {
	var next int
	err := tx.QueryRow(ctx,
		`INSERT INTO code_sequences (key, last_value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET last_value = code_sequences.last_value + 1
		RETURNING last_value`, key,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("advance sequence: %w", err)
	}
	return next, nil
}
