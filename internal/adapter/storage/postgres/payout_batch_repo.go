package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const batchColumns = `id, operator_id, period_start, period_end, status, total_amount, auto_draft, created_by, created_at, updated_at`

// PayoutBatchRepo implements ports.PayoutBatchRepository. A unique index
// on (operator_id, period_start, period_end, auto_draft) backs draft
// idempotency.
type PayoutBatchRepo struct {
	pool Pool
}

// NewPayoutBatchRepo creates a new PayoutBatchRepo.
func NewPayoutBatchRepo(pool Pool) *PayoutBatchRepo {
	return &PayoutBatchRepo{pool: pool}
}

func scanBatch(row pgx.Row) (*domain.PayoutBatch, error) {
	b := &domain.PayoutBatch{}
	err := row.Scan(
		&b.ID, &b.OperatorID, &b.PeriodStart, &b.PeriodEnd, &b.Status,
		&b.TotalAmount, &b.AutoDraft, &b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// Create inserts a batch within a transaction.
func (r *PayoutBatchRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.PayoutBatch) error {
	query := `INSERT INTO payout_batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		b.ID, b.OperatorID, b.PeriodStart, b.PeriodEnd, b.Status,
		b.TotalAmount, b.AutoDraft, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout batch: %w", err)
	}
	return nil
}

// GetByID fetches a batch (without locking).
func (r *PayoutBatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM payout_batches WHERE id = $1`

	b, err := scanBatch(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get batch by id: %w", err)
	}
	return b, nil
}

// GetByIDForUpdate fetches a batch with pessimistic locking. Must run
// inside a transaction.
func (r *PayoutBatchRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PayoutBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM payout_batches WHERE id = $1 FOR UPDATE`

	b, err := scanBatch(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get batch for update: %w", err)
	}
	return b, nil
}

// Exists reports whether a batch already covers this draft identity.
func (r *PayoutBatchRepo) Exists(ctx context.Context, operatorID uuid.UUID, periodStart, periodEnd time.Time, autoDraft bool) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM payout_batches
		WHERE operator_id = $1 AND period_start = $2 AND period_end = $3 AND auto_draft = $4
	)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, operatorID, periodStart, periodEnd, autoDraft).Scan(&exists); err != nil {
		return false, fmt.Errorf("check batch exists: %w", err)
	}
	return exists, nil
}

// UpdateStatus transitions a batch's status within a transaction.
func (r *PayoutBatchRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BatchStatus) error {
	query := `UPDATE payout_batches SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("batch not found: %s", id)
	}
	return nil
}
