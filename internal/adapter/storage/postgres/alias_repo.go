package postgres

import (
	"context"
	"errors"
	"fmt"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const aliasColumns = `id, wallet_id, alias, type, active, created_at, deactivated_at`

// AliasRepo implements ports.AliasRepository. A partial unique index on
// (type, alias) WHERE active guards concurrent inserts of the same
// value.
type AliasRepo struct {
	pool Pool
}

// NewAliasRepo creates a new AliasRepo.
func NewAliasRepo(pool Pool) *AliasRepo {
	return &AliasRepo{pool: pool}
}

func scanAlias(row pgx.Row) (*domain.WalletAlias, error) {
	a := &domain.WalletAlias{}
	err := row.Scan(&a.ID, &a.WalletID, &a.Alias, &a.Type, &a.Active, &a.CreatedAt, &a.DeactivatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Insert writes a new alias within a transaction.
func (r *AliasRepo) Insert(ctx context.Context, tx pgx.Tx, alias *domain.WalletAlias) error {
	query := `INSERT INTO wallet_aliases (` + aliasColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		alias.ID, alias.WalletID, alias.Alias, alias.Type,
		alias.Active, alias.CreatedAt, alias.DeactivatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alias: %w", err)
	}
	return nil
}

// GetActive fetches the active alias for a (type, value) pair.
func (r *AliasRepo) GetActive(ctx context.Context, aliasType domain.AliasType, value string) (*domain.WalletAlias, error) {
	query := `SELECT ` + aliasColumns + ` FROM wallet_aliases WHERE type = $1 AND alias = $2 AND active`

	a, err := scanAlias(r.pool.QueryRow(ctx, query, aliasType, value))
	if err != nil {
		return nil, fmt.Errorf("get active alias: %w", err)
	}
	return a, nil
}

// GetActiveForWallet fetches a wallet's active alias of one type,
// locking it for the calling transaction.
func (r *AliasRepo) GetActiveForWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, aliasType domain.AliasType) (*domain.WalletAlias, error) {
	query := `SELECT ` + aliasColumns + ` FROM wallet_aliases
		WHERE wallet_id = $1 AND type = $2 AND active FOR UPDATE`

	a, err := scanAlias(tx.QueryRow(ctx, query, walletID, aliasType))
	if err != nil {
		return nil, fmt.Errorf("get active alias for wallet: %w", err)
	}
	return a, nil
}

// Deactivate marks an alias inactive. Aliases are never deleted.
func (r *AliasRepo) Deactivate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE wallet_aliases SET active = FALSE, deactivated_at = NOW() WHERE id = $1 AND active`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deactivate alias: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("active alias not found: %s", id)
	}
	return nil
}
