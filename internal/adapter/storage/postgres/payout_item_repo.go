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

const itemColumns = `id, batch_id, wallet_id, wallet_kind, amount, destination_type, destination_ref, status, block_reason, idempotency_key, provider_request_id, provider_receipt, failure_reason, attempts, next_attempt_at, created_at, updated_at`

// PayoutItemRepo implements ports.PayoutItemRepository.
type PayoutItemRepo struct {
	pool Pool
}

// NewPayoutItemRepo creates a new PayoutItemRepo.
func NewPayoutItemRepo(pool Pool) *PayoutItemRepo {
	return &PayoutItemRepo{pool: pool}
}

func scanItemFrom(scan func(dest ...any) error) (*domain.PayoutItem, error) {
	i := &domain.PayoutItem{}
	err := scan(
		&i.ID, &i.BatchID, &i.WalletID, &i.WalletKind, &i.Amount,
		&i.DestinationType, &i.DestinationRef, &i.Status, &i.BlockReason,
		&i.IdempotencyKey, &i.ProviderRequestID, &i.ProviderReceipt,
		&i.FailureReason, &i.Attempts, &i.NextAttemptAt, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return i, nil
}

// Create inserts an item within a transaction.
func (r *PayoutItemRepo) Create(ctx context.Context, tx pgx.Tx, i *domain.PayoutItem) error {
	query := `INSERT INTO payout_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	_, err := tx.Exec(ctx, query,
		i.ID, i.BatchID, i.WalletID, i.WalletKind, i.Amount,
		i.DestinationType, i.DestinationRef, i.Status, i.BlockReason,
		i.IdempotencyKey, i.ProviderRequestID, i.ProviderReceipt,
		i.FailureReason, i.Attempts, i.NextAttemptAt, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payout item: %w", err)
	}
	return nil
}

// GetByID fetches an item (without locking).
func (r *PayoutItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutItem, error) {
	query := `SELECT ` + itemColumns + ` FROM payout_items WHERE id = $1`

	i, err := scanItemFrom(r.pool.QueryRow(ctx, query, id).Scan)
	if err != nil {
		return nil, fmt.Errorf("get payout item: %w", err)
	}
	return i, nil
}

// GetByIdempotencyKey fetches and locks the item matching a provider
// originator id. Must run inside a transaction: result callbacks
// serialize on this lock.
func (r *PayoutItemRepo) GetByIdempotencyKey(ctx context.Context, tx pgx.Tx, key string) (*domain.PayoutItem, error) {
	query := `SELECT ` + itemColumns + ` FROM payout_items WHERE idempotency_key = $1 FOR UPDATE`

	i, err := scanItemFrom(tx.QueryRow(ctx, query, key).Scan)
	if err != nil {
		return nil, fmt.Errorf("get payout item by key: %w", err)
	}
	return i, nil
}

// ListByBatch returns all items in a batch.
func (r *PayoutItemRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.PayoutItem, error) {
	query := `SELECT ` + itemColumns + ` FROM payout_items WHERE batch_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list payout items: %w", err)
	}
	defer rows.Close()

	var items []domain.PayoutItem
	for rows.Next() {
		i, err := scanItemFrom(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan payout item: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// ClaimNextDue atomically selects and claims the next dispatchable item.
// FOR UPDATE SKIP LOCKED lets parallel workers claim distinct rows; the
// attempt counter is bumped in the same statement so a crash mid-call
// shows the item as in-flight rather than silently lost.
func (r *PayoutItemRepo) ClaimNextDue(ctx context.Context, batchID *uuid.UUID, now time.Time) (*domain.PayoutItem, error) {
	query := `UPDATE payout_items SET attempts = attempts + 1, updated_at = NOW()
		WHERE id = (
			SELECT i.id FROM payout_items i
			JOIN payout_batches b ON b.id = i.batch_id
			WHERE i.status = 'PENDING'
			AND b.status = 'PROCESSING'
			AND (i.next_attempt_at IS NULL OR i.next_attempt_at <= $1)
			AND ($2::uuid IS NULL OR i.batch_id = $2)
			ORDER BY i.created_at
			FOR UPDATE OF i SKIP LOCKED
			LIMIT 1
		)
		RETURNING ` + itemColumns

	i, err := scanItemFrom(r.pool.QueryRow(ctx, query, now, batchID).Scan)
	if err != nil {
		return nil, fmt.Errorf("claim payout item: %w", err)
	}
	return i, nil
}

// MarkSent records provider dispatch acceptance. Guarded by status so a
// replayed acceptance cannot regress a terminal item.
func (r *PayoutItemRepo) MarkSent(ctx context.Context, id uuid.UUID, providerRequestID string) error {
	query := `UPDATE payout_items
		SET status = 'SENT', provider_request_id = $1, next_attempt_at = NULL, updated_at = NOW()
		WHERE id = $2 AND status = 'PENDING'`

	if _, err := r.pool.Exec(ctx, query, providerRequestID, id); err != nil {
		return fmt.Errorf("mark payout item sent: %w", err)
	}
	return nil
}

// ScheduleRetry reschedules a PENDING item after a failed dispatch.
func (r *PayoutItemRepo) ScheduleRetry(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, reason string) error {
	query := `UPDATE payout_items
		SET next_attempt_at = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'PENDING'`

	if _, err := r.pool.Exec(ctx, query, nextAttemptAt, reason, id); err != nil {
		return fmt.Errorf("schedule payout retry: %w", err)
	}
	return nil
}

// MarkFailed finalizes an item as FAILED within a transaction.
func (r *PayoutItemRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string) error {
	query := `UPDATE payout_items
		SET status = 'FAILED', failure_reason = $1, updated_at = NOW()
		WHERE id = $2 AND status IN ('PENDING', 'SENT')`

	if _, err := tx.Exec(ctx, query, reason, id); err != nil {
		return fmt.Errorf("mark payout item failed: %w", err)
	}
	return nil
}

// MarkConfirmed finalizes an item as CONFIRMED within a transaction.
func (r *PayoutItemRepo) MarkConfirmed(ctx context.Context, tx pgx.Tx, id uuid.UUID, providerReceipt string) error {
	query := `UPDATE payout_items
		SET status = 'CONFIRMED', provider_receipt = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'SENT'`

	tag, err := tx.Exec(ctx, query, providerReceipt, id)
	if err != nil {
		return fmt.Errorf("mark payout item confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payout item %s not in SENT state", id)
	}
	return nil
}

// CountUnverifiedDestinations counts items whose destination is not yet
// verified, used by batch approval.
func (r *PayoutItemRepo) CountUnverifiedDestinations(ctx context.Context, batchID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM payout_items i
		LEFT JOIN payout_destinations d
			ON d.operator_id = (SELECT operator_id FROM payout_batches WHERE id = i.batch_id)
			AND d.wallet_kind = i.wallet_kind
		WHERE i.batch_id = $1 AND (d.id IS NULL OR NOT d.verified)`

	var count int64
	if err := r.pool.QueryRow(ctx, query, batchID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unverified destinations: %w", err)
	}
	return count, nil
}
