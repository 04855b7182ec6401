package postgres

import (
	"context"
	"testing"
	"time"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(walletID uuid.UUID) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:            uuid.New(),
		WalletID:      walletID,
		Direction:     domain.DirectionCredit,
		Amount:        50000,
		BalanceBefore: 100000,
		BalanceAfter:  150000,
		EntryType:     domain.EntryTypeCollection,
		ReferenceType: domain.RefTypeIncomingPayment,
		ReferenceID:   uuid.NewString(),
		Description:   "daily fee collection",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestLedgerRepo_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	e := newTestEntry(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ledger_entries").
		WithArgs(e.ID, e.WalletID, e.Direction, e.Amount, e.BalanceBefore, e.BalanceAfter,
			e.EntryType, e.ReferenceType, e.ReferenceID, e.Description, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Insert(context.Background(), tx, e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ExistsByReference(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	refID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(domain.DirectionCredit, domain.RefTypeIncomingPayment, refID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	exists, err := repo.ExistsByReference(context.Background(), tx, domain.DirectionCredit, domain.RefTypeIncomingPayment, refID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_SumCollected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()
	from := time.Now().Add(-24 * time.Hour)
	to := time.Now()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM ledger_entries`).
		WithArgs(walletID, domain.EntryTypeCollection, from, to).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(730000)))

	sum, err := repo.SumCollected(context.Background(), walletID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(730000), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewLedgerRepo(mock)
	walletID := uuid.New()
	e := newTestEntry(walletID)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM ledger_entries`).
		WithArgs(walletID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT .+ FROM ledger_entries").
		WithArgs(walletID, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "wallet_id", "direction", "amount", "balance_before", "balance_after",
			"entry_type", "reference_type", "reference_id", "description", "created_at",
		}).AddRow(
			e.ID, e.WalletID, e.Direction, e.Amount, e.BalanceBefore, e.BalanceAfter,
			e.EntryType, e.ReferenceType, e.ReferenceID, e.Description, e.CreatedAt,
		))

	entries, total, err := repo.ListByWallet(context.Background(), walletID, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, e.BalanceAfter, entries[0].BalanceAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}
