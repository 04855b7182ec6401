package postgres

import (
	"context"
	"fmt"
	"time"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, wallet_id, direction, amount, balance_before, balance_after, entry_type, reference_type, reference_id, description, created_at`

// LedgerRepo implements ports.LedgerRepository. It is structurally
// append-only: no update or delete statement exists here or anywhere
// else in the module.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Insert appends a ledger entry within a transaction.
func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.WalletID, e.Direction, e.Amount, e.BalanceBefore, e.BalanceAfter,
		e.EntryType, e.ReferenceType, e.ReferenceID, e.Description, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ExistsByReference reports whether an entry already exists for an
// external reference, in the calling transaction's snapshot.
func (r *LedgerRepo) ExistsByReference(ctx context.Context, tx pgx.Tx, direction domain.EntryDirection, referenceType, referenceID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM ledger_entries WHERE direction = $1 AND reference_type = $2 AND reference_id = $3
	)`

	var exists bool
	if err := tx.QueryRow(ctx, query, direction, referenceType, referenceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ledger reference: %w", err)
	}
	return exists, nil
}

// ListByWallet returns a wallet's entries newest first, paginated.
func (r *LedgerRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	var total int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM ledger_entries WHERE wallet_id = $1`, walletID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE wallet_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, walletID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.WalletID, &e.Direction, &e.Amount, &e.BalanceBefore, &e.BalanceAfter,
			&e.EntryType, &e.ReferenceType, &e.ReferenceID, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// SumCollected totals COLLECTION credits for a wallet within a period.
func (r *LedgerRepo) SumCollected(ctx context.Context, walletID uuid.UUID, from, to time.Time) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE wallet_id = $1 AND direction = 'CREDIT' AND entry_type = $2
		AND created_at >= $3 AND created_at < $4`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, walletID, domain.EntryTypeCollection, from, to).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum collected: %w", err)
	}
	return sum, nil
}
