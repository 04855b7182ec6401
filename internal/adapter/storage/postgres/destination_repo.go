package postgres

import (
	"context"
	"errors"
	"fmt"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const destinationColumns = `id, operator_id, wallet_kind, type, reference, verified, created_at, updated_at`

// DestinationRepo implements ports.DestinationRepository.
type DestinationRepo struct {
	pool Pool
}

// NewDestinationRepo creates a new DestinationRepo.
func NewDestinationRepo(pool Pool) *DestinationRepo {
	return &DestinationRepo{pool: pool}
}

// Upsert writes the destination for an (operator, kind) pair. A changed
// reference resets verification.
func (r *DestinationRepo) Upsert(ctx context.Context, d *domain.PayoutDestination) error {
	query := `INSERT INTO payout_destinations (` + destinationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (operator_id, wallet_kind) DO UPDATE
		SET type = EXCLUDED.type,
			reference = EXCLUDED.reference,
			verified = CASE WHEN payout_destinations.reference = EXCLUDED.reference
				THEN payout_destinations.verified ELSE FALSE END,
			updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.OperatorID, d.WalletKind, d.Type, d.Reference,
		d.Verified, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert destination: %w", err)
	}
	return nil
}

// Get fetches the destination for an (operator, kind) pair.
func (r *DestinationRepo) Get(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind) (*domain.PayoutDestination, error) {
	query := `SELECT ` + destinationColumns + ` FROM payout_destinations
		WHERE operator_id = $1 AND wallet_kind = $2`

	d := &domain.PayoutDestination{}
	err := r.pool.QueryRow(ctx, query, operatorID, kind).Scan(
		&d.ID, &d.OperatorID, &d.WalletKind, &d.Type, &d.Reference,
		&d.Verified, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get destination: %w", err)
	}
	return d, nil
}

// SetVerified flips the verification flag.
func (r *DestinationRepo) SetVerified(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind, verified bool) error {
	query := `UPDATE payout_destinations SET verified = $1, updated_at = NOW()
		WHERE operator_id = $2 AND wallet_kind = $3`

	tag, err := r.pool.Exec(ctx, query, verified, operatorID, kind)
	if err != nil {
		return fmt.Errorf("set destination verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("destination not found for operator %s kind %s", operatorID, kind)
	}
	return nil
}
