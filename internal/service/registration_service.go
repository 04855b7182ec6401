package service

import (
	"context"
	"fmt"
	"time"

	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegistrationServiceImpl implements ports.RegistrationService: wallet
// onboarding with routing code minting and alias binding, plus the
// payout destination registry.
type RegistrationServiceImpl struct {
	walletRepo ports.WalletRepository
	destRepo   ports.DestinationRepository
	allocator  ports.CodeAllocator
	aliasSvc   ports.AliasService
	auditSvc   ports.AuditService
	log        zerolog.Logger
}

// NewRegistrationService creates a new RegistrationServiceImpl.
func NewRegistrationService(
	walletRepo ports.WalletRepository,
	destRepo ports.DestinationRepository,
	allocator ports.CodeAllocator,
	aliasSvc ports.AliasService,
	auditSvc ports.AuditService,
	log zerolog.Logger,
) *RegistrationServiceImpl {
	return &RegistrationServiceImpl{
		walletRepo: walletRepo,
		destRepo:   destRepo,
		allocator:  allocator,
		aliasSvc:   aliasSvc,
		auditSvc:   auditSvc,
		log:        log,
	}
}

// RegisterWallet creates a wallet for (owner, kind) with a freshly
// minted routing code and binds the code as its alias. Idempotent: an
// existing wallet for the pair is returned as-is.
func (s *RegistrationServiceImpl) RegisterWallet(ctx context.Context, req ports.RegisterWalletRequest) (*domain.Wallet, error) {
	if req.OwnerID == uuid.Nil || req.OperatorID == uuid.Nil {
		return nil, apperror.Validation("owner id and operator id are required")
	}

	existing, err := s.walletRepo.GetByOwner(ctx, req.OwnerType, req.OwnerID, req.Kind)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup wallet: %w", err))
	}
	if existing != nil {
		return existing, nil
	}

	code, err := s.allocator.Allocate(ctx, string(req.OwnerType))
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:          uuid.New(),
		OwnerType:   req.OwnerType,
		OwnerID:     req.OwnerID,
		OperatorID:  req.OperatorID,
		Kind:        req.Kind,
		Currency:    currency,
		RoutingCode: code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	if err := s.aliasSvc.EnsureAlias(ctx, wallet.ID, domain.AliasTypeRoutingCode, code); err != nil {
		return nil, err
	}
	if req.Plate != "" {
		if err := s.aliasSvc.EnsureAlias(ctx, wallet.ID, domain.AliasTypePlate, req.Plate); err != nil {
			return nil, err
		}
	}

	s.auditSvc.Record(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      "system",
		Action:       domain.AuditActionRegisterWallet,
		ResourceType: "wallet",
		ResourceID:   wallet.ID.String(),
		Details:      fmt.Sprintf(`{"owner_type":%q,"kind":%q,"routing_code":%q}`, req.OwnerType, req.Kind, code),
		CreatedAt:    now,
	})

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("owner_type", string(req.OwnerType)).
		Str("kind", string(req.Kind)).
		Str("routing_code", code).
		Msg("wallet registered")

	return wallet, nil
}

// UpsertDestination registers or replaces the settlement destination for
// (operator, wallet kind). A changed reference resets verification.
func (s *RegistrationServiceImpl) UpsertDestination(ctx context.Context, dest *domain.PayoutDestination) error {
	if dest.Reference == "" {
		return apperror.Validation("destination reference is required")
	}
	if dest.ID == uuid.Nil {
		dest.ID = uuid.New()
	}
	now := time.Now().UTC()
	if dest.CreatedAt.IsZero() {
		dest.CreatedAt = now
	}
	dest.UpdatedAt = now

	if err := s.destRepo.Upsert(ctx, dest); err != nil {
		return apperror.InternalError(fmt.Errorf("upsert destination: %w", err))
	}
	return nil
}

// VerifyDestination marks a destination verified, unblocking future
// drafts for its wallet kind.
func (s *RegistrationServiceImpl) VerifyDestination(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind, actor string) error {
	dest, err := s.destRepo.Get(ctx, operatorID, kind)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load destination: %w", err))
	}
	if dest == nil {
		return apperror.ErrNotFound("payout destination")
	}
	if dest.Verified {
		return nil
	}

	if err := s.destRepo.SetVerified(ctx, operatorID, kind, true); err != nil {
		return apperror.InternalError(fmt.Errorf("verify destination: %w", err))
	}

	s.auditSvc.Record(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      actor,
		Action:       domain.AuditActionVerifyDestination,
		ResourceType: "payout_destination",
		ResourceID:   dest.ID.String(),
		Details:      fmt.Sprintf(`{"operator_id":%q,"kind":%q}`, operatorID, kind),
		CreatedAt:    time.Now().UTC(),
	})

	s.log.Info().
		Str("operator_id", operatorID.String()).
		Str("kind", string(kind)).
		Str("actor", actor).
		Msg("payout destination verified")
	return nil
}
