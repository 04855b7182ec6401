package service

import (
	"context"
	"fmt"
	"time"

	"transit-settlement/internal/adapter/storage/postgres"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/paycode"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// sequenceAlertMargin is how many allocations may remain in a key's
// range before ops get a heads-up alert.
const sequenceAlertMargin = 100

// CodeAllocatorImpl implements ports.CodeAllocator. Each key maps to a
// 2-digit prefix; sequence numbers come from a locked counter row so
// concurrent allocations never collide.
type CodeAllocatorImpl struct {
	seqRepo    ports.SequenceRepository
	alertRepo  ports.AlertRepository
	transactor ports.DBTransactor
	prefixes   map[string]string
	log        zerolog.Logger
}

// NewCodeAllocator creates a new CodeAllocatorImpl.
func NewCodeAllocator(
	seqRepo ports.SequenceRepository,
	alertRepo ports.AlertRepository,
	transactor ports.DBTransactor,
	prefixes map[string]string,
	log zerolog.Logger,
) *CodeAllocatorImpl {
	return &CodeAllocatorImpl{
		seqRepo:    seqRepo,
		alertRepo:  alertRepo,
		transactor: transactor,
		prefixes:   prefixes,
		log:        log,
	}
}

// Allocate mints the next routing code for key.
func (s *CodeAllocatorImpl) Allocate(ctx context.Context, key string) (string, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	code, err := s.AllocateInTx(ctx, dbTx, key)
	if err != nil {
		return "", err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return "", apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return code, nil
}

// AllocateInTx mints a routing code inside a caller-owned transaction.
func (s *CodeAllocatorImpl) AllocateInTx(ctx context.Context, dbTx pgx.Tx, key string) (string, error) {
	prefix, ok := s.prefixes[key]
	if !ok {
		return "", apperror.ErrUnknownSequenceKey(key)
	}

	seq, err := s.seqRepo.NextValue(ctx, dbTx, key)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("next sequence value: %w", err))
	}
	if seq > paycode.MaxSequence {
		return "", apperror.ErrSequenceExhausted(key)
	}
	if remaining := paycode.MaxSequence - seq; remaining < sequenceAlertMargin {
		s.raiseNearExhaustion(ctx, key, remaining)
	}

	code, err := paycode.Format(prefix, seq)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("format routing code: %w", err))
	}

	s.log.Debug().Str("key", key).Int("sequence", seq).Str("code", code).Msg("routing code allocated")
	return code, nil
}

// raiseNearExhaustion warns ops that a key's code range is running out.
// Best effort: a failed alert never blocks the allocation.
func (s *CodeAllocatorImpl) raiseNearExhaustion(ctx context.Context, key string, remaining int) {
	alert := &domain.OpsAlert{
		ID:         uuid.New(),
		Type:       domain.AlertTypeSequenceNearExhausted,
		Severity:   domain.AlertSeverityWarning,
		EntityType: "sequence",
		EntityID:   key,
		Message:    fmt.Sprintf("routing code sequence %q has %d allocations left", key, remaining),
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.alertRepo.InsertUnique(ctx, alert); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("near-exhaustion alert failed")
	}
	s.log.Warn().Str("key", key).Int("remaining", remaining).Msg("routing code sequence near exhaustion")
}

// AliasServiceImpl implements ports.AliasService.
type AliasServiceImpl struct {
	aliasRepo  ports.AliasRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewAliasService creates a new AliasServiceImpl.
func NewAliasService(
	aliasRepo ports.AliasRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *AliasServiceImpl {
	return &AliasServiceImpl{
		aliasRepo:  aliasRepo,
		transactor: transactor,
		log:        log,
	}
}

// Resolve maps a raw inbound reference to a wallet id. Nil with nil
// error means the reference does not resolve to any wallet; callers
// treat that as a quarantine trigger, not a failure.
func (s *AliasServiceImpl) Resolve(ctx context.Context, rawRef string) (*uuid.UUID, error) {
	ref := paycode.Normalize(rawRef)

	var aliasType domain.AliasType
	switch paycode.Classify(ref) {
	case paycode.RefClassRoutingCode:
		aliasType = domain.AliasTypeRoutingCode
	case paycode.RefClassPlate:
		aliasType = domain.AliasTypePlate
	default:
		return nil, nil
	}

	alias, err := s.aliasRepo.GetActive(ctx, aliasType, ref)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup alias: %w", err))
	}
	if alias == nil {
		return nil, nil
	}
	walletID := alias.WalletID
	return &walletID, nil
}

// EnsureAlias idempotently binds value to the wallet. A value already
// bound to another wallet fails with an alias conflict; binding the same
// value again is a no-op. Any prior active alias of the same type on the
// wallet is deactivated, never deleted.
func (s *AliasServiceImpl) EnsureAlias(ctx context.Context, walletID uuid.UUID, aliasType domain.AliasType, value string) error {
	value = paycode.Normalize(value)
	if value == "" {
		return apperror.Validation("alias value must not be empty")
	}

	existing, err := s.aliasRepo.GetActive(ctx, aliasType, value)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lookup alias: %w", err))
	}
	if existing != nil {
		if existing.WalletID == walletID {
			return nil
		}
		return apperror.ErrAliasConflict(value)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.EnsureAliasInTx(ctx, dbTx, walletID, aliasType, value); err != nil {
		return err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// EnsureAliasInTx binds value to the wallet inside a caller-owned
// transaction. The insert runs under a savepoint so a concurrent bind of
// the same value surfaces as a conflict without aborting the outer
// transaction.
func (s *AliasServiceImpl) EnsureAliasInTx(ctx context.Context, dbTx pgx.Tx, walletID uuid.UUID, aliasType domain.AliasType, value string) error {
	current, err := s.aliasRepo.GetActiveForWallet(ctx, dbTx, walletID, aliasType)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wallet alias: %w", err))
	}
	if current != nil {
		if current.Alias == value {
			return nil
		}
		if err := s.aliasRepo.Deactivate(ctx, dbTx, current.ID); err != nil {
			return apperror.InternalError(fmt.Errorf("deactivate alias: %w", err))
		}
	}

	alias := &domain.WalletAlias{
		ID:        uuid.New(),
		WalletID:  walletID,
		Alias:     value,
		Type:      aliasType,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	err = postgres.WithSavepointRetry(ctx, dbTx, "sp_alias", 1, func() error {
		return s.aliasRepo.Insert(ctx, dbTx, alias)
	})
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			// Lost the race to another wallet binding the same value.
			return apperror.ErrAliasConflict(value)
		}
		return apperror.InternalError(fmt.Errorf("insert alias: %w", err))
	}

	s.log.Info().
		Str("wallet_id", walletID.String()).
		Str("type", string(aliasType)).
		Str("alias", value).
		Msg("alias bound")

	return nil
}
