package service

import (
	"context"
	"testing"

	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/paycode"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationTestDeps struct {
	svc        *RegistrationServiceImpl
	walletRepo *memWalletRepo
	aliasRepo  *memAliasRepo
	destRepo   *memDestinationRepo
	aliasSvc   *AliasServiceImpl
}

func setupRegistrationService(t *testing.T) *registrationTestDeps {
	t.Helper()
	d := &registrationTestDeps{
		walletRepo: newMemWalletRepo(),
		aliasRepo:  newMemAliasRepo(),
		destRepo:   newMemDestinationRepo(),
	}
	transactor := &memTransactor{}
	log := zerolog.Nop()
	allocator := NewCodeAllocator(newMemSequenceRepo(), newMemAlertRepo(), transactor, testPrefixes, log)
	d.aliasSvc = NewAliasService(d.aliasRepo, transactor, log)
	auditSvc := NewAuditService(newMemAuditRepo(), log)
	d.svc = NewRegistrationService(d.walletRepo, d.destRepo, allocator, d.aliasSvc, auditSvc, log)
	return d
}

func TestRegistrationService_RegisterWallet(t *testing.T) {
	d := setupRegistrationService(t)
	ctx := context.Background()

	wallet, err := d.svc.RegisterWallet(ctx, ports.RegisterWalletRequest{
		OwnerType:  domain.OwnerTypeVehicle,
		OwnerID:    uuid.New(),
		OperatorID: uuid.New(),
		Kind:       domain.WalletKindDailyFee,
		Plate:      "KDA 123X",
	})
	require.NoError(t, err)
	assert.Equal(t, "KES", wallet.Currency)
	assert.True(t, paycode.Validate(wallet.RoutingCode))
	assert.Equal(t, "20", wallet.RoutingCode[:2])

	// Both the routing code and the plate resolve to the wallet.
	byCode, err := d.aliasSvc.Resolve(ctx, wallet.RoutingCode)
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, wallet.ID, *byCode)

	byPlate, err := d.aliasSvc.Resolve(ctx, "kda 123x")
	require.NoError(t, err)
	require.NotNil(t, byPlate)
	assert.Equal(t, wallet.ID, *byPlate)
}

func TestRegistrationService_RegisterWallet_Idempotent(t *testing.T) {
	d := setupRegistrationService(t)
	ctx := context.Background()
	req := ports.RegisterWalletRequest{
		OwnerType:  domain.OwnerTypeDriver,
		OwnerID:    uuid.New(),
		OperatorID: uuid.New(),
		Kind:       domain.WalletKindSavings,
	}

	first, err := d.svc.RegisterWallet(ctx, req)
	require.NoError(t, err)
	second, err := d.svc.RegisterWallet(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.RoutingCode, second.RoutingCode)
}

func TestRegistrationService_RegisterWallet_DistinctCodes(t *testing.T) {
	d := setupRegistrationService(t)
	ctx := context.Background()
	seen := make(map[string]bool)

	for i := 0; i < 10; i++ {
		wallet, err := d.svc.RegisterWallet(ctx, ports.RegisterWalletRequest{
			OwnerType:  domain.OwnerTypeVehicle,
			OwnerID:    uuid.New(),
			OperatorID: uuid.New(),
			Kind:       domain.WalletKindDailyFee,
		})
		require.NoError(t, err)
		assert.False(t, seen[wallet.RoutingCode], "routing code %s repeated", wallet.RoutingCode)
		seen[wallet.RoutingCode] = true
	}
}

func TestRegistrationService_RegisterWallet_MissingIDs(t *testing.T) {
	d := setupRegistrationService(t)

	_, err := d.svc.RegisterWallet(context.Background(), ports.RegisterWalletRequest{
		OwnerType: domain.OwnerTypeVehicle,
		Kind:      domain.WalletKindDailyFee,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_002", appErr.Code)
}

func TestRegistrationService_Destinations(t *testing.T) {
	d := setupRegistrationService(t)
	ctx := context.Background()
	operatorID := uuid.New()

	dest := &domain.PayoutDestination{
		OperatorID: operatorID,
		WalletKind: domain.WalletKindDailyFee,
		Type:       domain.DestinationTypePhone,
		Reference:  "254711000001",
	}
	require.NoError(t, d.svc.UpsertDestination(ctx, dest))
	assert.NotEqual(t, uuid.Nil, dest.ID)

	require.NoError(t, d.svc.VerifyDestination(ctx, operatorID, domain.WalletKindDailyFee, "ops@example.com"))
	got, _ := d.destRepo.Get(ctx, operatorID, domain.WalletKindDailyFee)
	assert.True(t, got.Verified)

	// Re-verify no-ops.
	require.NoError(t, d.svc.VerifyDestination(ctx, operatorID, domain.WalletKindDailyFee, "ops@example.com"))

	// Replacing the reference resets verification.
	require.NoError(t, d.svc.UpsertDestination(ctx, &domain.PayoutDestination{
		OperatorID: operatorID,
		WalletKind: domain.WalletKindDailyFee,
		Type:       domain.DestinationTypePhone,
		Reference:  "254722000002",
	}))
	got, _ = d.destRepo.Get(ctx, operatorID, domain.WalletKindDailyFee)
	assert.False(t, got.Verified)
}

func TestRegistrationService_VerifyDestination_NotFound(t *testing.T) {
	d := setupRegistrationService(t)

	err := d.svc.VerifyDestination(context.Background(), uuid.New(), domain.WalletKindLoan, "ops@example.com")
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SYS_002", appErr.Code)
}

func TestRegistrationService_UpsertDestination_MissingReference(t *testing.T) {
	d := setupRegistrationService(t)

	err := d.svc.UpsertDestination(context.Background(), &domain.PayoutDestination{
		OperatorID: uuid.New(),
		WalletKind: domain.WalletKindDailyFee,
	})
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VAL_002", appErr.Code)
}
