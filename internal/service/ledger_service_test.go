package service

import (
	"context"
	"testing"
	"time"

	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerTestDeps struct {
	svc        *LedgerServiceImpl
	walletRepo *memWalletRepo
	ledgerRepo *memLedgerRepo
}

func setupLedgerService(t *testing.T) *ledgerTestDeps {
	t.Helper()
	d := &ledgerTestDeps{
		walletRepo: newMemWalletRepo(),
		ledgerRepo: newMemLedgerRepo(),
	}
	d.svc = NewLedgerService(d.walletRepo, d.ledgerRepo, &memTransactor{}, zerolog.Nop())
	return d
}

func (d *ledgerTestDeps) seedWallet(t *testing.T, balance int64) *domain.Wallet {
	t.Helper()
	w := &domain.Wallet{
		ID:          uuid.New(),
		OwnerType:   domain.OwnerTypeVehicle,
		OwnerID:     uuid.New(),
		OperatorID:  uuid.New(),
		Kind:        domain.WalletKindDailyFee,
		Balance:     balance,
		Currency:    "KES",
		RoutingCode: "1000011",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, d.walletRepo.Create(context.Background(), w))
	return w
}

func TestLedgerService_Credit_Success(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	w := d.seedWallet(t, 10_000)

	change, err := d.svc.Credit(ctx, ports.LedgerRequest{
		WalletID:      w.ID,
		Amount:        5_000,
		EntryType:     domain.EntryTypeCollection,
		ReferenceType: domain.RefTypeIncomingPayment,
		ReferenceID:   uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), change.BalanceBefore)
	assert.Equal(t, int64(15_000), change.BalanceAfter)

	got, err := d.walletRepo.GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), got.Balance)

	entries := d.ledgerRepo.forWallet(w.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DirectionCredit, entries[0].Direction)
	assert.Equal(t, int64(5_000), entries[0].Amount)
	assert.Equal(t, int64(10_000), entries[0].BalanceBefore)
	assert.Equal(t, int64(15_000), entries[0].BalanceAfter)
}

func TestLedgerService_Debit_Success(t *testing.T) {
	d := setupLedgerService(t)
	w := d.seedWallet(t, 10_000)

	change, err := d.svc.Debit(context.Background(), ports.LedgerRequest{
		WalletID:      w.ID,
		Amount:        4_000,
		EntryType:     domain.EntryTypeDisbursement,
		ReferenceType: domain.RefTypePayoutItem,
		ReferenceID:   uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6_000), change.BalanceAfter)

	entries := d.ledgerRepo.forWallet(w.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.DirectionDebit, entries[0].Direction)
}

func TestLedgerService_Debit_InsufficientFunds(t *testing.T) {
	d := setupLedgerService(t)
	w := d.seedWallet(t, 1_000)

	_, err := d.svc.Debit(context.Background(), ports.LedgerRequest{
		WalletID:  w.ID,
		Amount:    2_000,
		EntryType: domain.EntryTypeDisbursement,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CNF_001", appErr.Code)

	// Balance untouched, no entry written.
	got, _ := d.walletRepo.GetByID(context.Background(), w.ID)
	assert.Equal(t, int64(1_000), got.Balance)
	assert.Equal(t, 0, d.ledgerRepo.count())
}

func TestLedgerService_Credit_RejectsNonPositiveAmount(t *testing.T) {
	d := setupLedgerService(t)
	w := d.seedWallet(t, 0)

	for _, amount := range []int64{0, -500} {
		_, err := d.svc.Credit(context.Background(), ports.LedgerRequest{
			WalletID:  w.ID,
			Amount:    amount,
			EntryType: domain.EntryTypeCollection,
		})
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VAL_001", appErr.Code)
	}
	assert.Equal(t, 0, d.ledgerRepo.count())
}

func TestLedgerService_Credit_WalletNotFound(t *testing.T) {
	d := setupLedgerService(t)

	_, err := d.svc.Credit(context.Background(), ports.LedgerRequest{
		WalletID:  uuid.New(),
		Amount:    100,
		EntryType: domain.EntryTypeCollection,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_002", appErr.Code)
}

func TestLedgerService_CreditWithFeeSplit_Success(t *testing.T) {
	d := setupLedgerService(t)
	ctx := context.Background()
	principal := d.seedWallet(t, 0)
	feeWallet := d.seedWallet(t, 0)

	change, err := d.svc.CreditWithFeeSplit(ctx, ports.LedgerRequest{
		WalletID:      principal.ID,
		Amount:        10_000,
		EntryType:     domain.EntryTypeCollection,
		ReferenceType: domain.RefTypeIncomingPayment,
		ReferenceID:   uuid.NewString(),
	}, []domain.FeeRule{
		{WalletID: feeWallet.ID, Amount: 250, Description: "service fee"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9_750), change.BalanceAfter)

	gotPrincipal, _ := d.walletRepo.GetByID(ctx, principal.ID)
	gotFee, _ := d.walletRepo.GetByID(ctx, feeWallet.ID)
	assert.Equal(t, int64(9_750), gotPrincipal.Balance)
	assert.Equal(t, int64(250), gotFee.Balance)

	feeEntries := d.ledgerRepo.forWallet(feeWallet.ID)
	require.Len(t, feeEntries, 1)
	assert.Equal(t, domain.EntryTypeFeeShare, feeEntries[0].EntryType)
}

func TestLedgerService_CreditWithFeeSplit_FeesExceedGross(t *testing.T) {
	d := setupLedgerService(t)
	principal := d.seedWallet(t, 0)
	feeWallet := d.seedWallet(t, 0)

	_, err := d.svc.CreditWithFeeSplit(context.Background(), ports.LedgerRequest{
		WalletID:  principal.ID,
		Amount:    100,
		EntryType: domain.EntryTypeCollection,
	}, []domain.FeeRule{
		{WalletID: feeWallet.ID, Amount: 100},
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CNF_004", appErr.Code)
	assert.Equal(t, 0, d.ledgerRepo.count())
}
