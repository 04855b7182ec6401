package service

import (
	"context"
	"fmt"
	"time"

	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. Every balance
// mutation locks the wallet row, writes one immutable journal entry and
// updates the cached balance in the same transaction.
type LedgerServiceImpl struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
		transactor: transactor,
		log:        log,
	}
}

// Credit adds funds to a wallet.
func (s *LedgerServiceImpl) Credit(ctx context.Context, req ports.LedgerRequest) (*domain.BalanceChange, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	change, err := s.creditInTx(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", req.WalletID.String()).
		Int64("amount", req.Amount).
		Str("entry_type", req.EntryType).
		Int64("balance_after", change.BalanceAfter).
		Msg("wallet credited")

	return change, nil
}

// Debit removes funds from a wallet. Rejected atomically if the balance
// would go negative.
func (s *LedgerServiceImpl) Debit(ctx context.Context, req ports.LedgerRequest) (*domain.BalanceChange, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	change, err := s.debitInTx(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", req.WalletID.String()).
		Int64("amount", req.Amount).
		Str("entry_type", req.EntryType).
		Int64("balance_after", change.BalanceAfter).
		Msg("wallet debited")

	return change, nil
}

// CreditWithFeeSplit credits the principal wallet with gross minus fees
// and each beneficiary with its share, all inside one transaction.
func (s *LedgerServiceImpl) CreditWithFeeSplit(ctx context.Context, req ports.LedgerRequest, feeRules []domain.FeeRule) (*domain.BalanceChange, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	var totalFees int64
	for _, rule := range feeRules {
		if rule.Amount <= 0 {
			return nil, apperror.ErrInvalidAmount()
		}
		totalFees += rule.Amount
	}
	// The principal must keep a strictly positive net.
	if totalFees >= req.Amount {
		return nil, apperror.ErrFeesExceedGross()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	principal := req
	principal.Amount = req.Amount - totalFees

	change, err := s.creditInTx(ctx, dbTx, principal)
	if err != nil {
		return nil, err
	}

	for _, rule := range feeRules {
		feeReq := ports.LedgerRequest{
			WalletID:      rule.WalletID,
			Amount:        rule.Amount,
			EntryType:     domain.EntryTypeFeeShare,
			ReferenceType: req.ReferenceType,
			ReferenceID:   req.ReferenceID,
			Description:   rule.Description,
		}
		if _, err := s.creditInTx(ctx, dbTx, feeReq); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", req.WalletID.String()).
		Int64("gross", req.Amount).
		Int64("fees", totalFees).
		Int("fee_rules", len(feeRules)).
		Msg("wallet credited with fee split")

	return change, nil
}

// CreditInTx credits a wallet inside a caller-owned transaction. Used by
// flows that must couple a credit with other state changes atomically.
func (s *LedgerServiceImpl) CreditInTx(ctx context.Context, dbTx pgx.Tx, req ports.LedgerRequest) (*domain.BalanceChange, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	return s.creditInTx(ctx, dbTx, req)
}

// DebitInTx debits a wallet inside a caller-owned transaction.
func (s *LedgerServiceImpl) DebitInTx(ctx context.Context, dbTx pgx.Tx, req ports.LedgerRequest) (*domain.BalanceChange, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	return s.debitInTx(ctx, dbTx, req)
}

func (s *LedgerServiceImpl) creditInTx(ctx context.Context, dbTx pgx.Tx, req ports.LedgerRequest) (*domain.BalanceChange, error) {
	return s.applyInTx(ctx, dbTx, req, domain.DirectionCredit)
}

func (s *LedgerServiceImpl) debitInTx(ctx context.Context, dbTx pgx.Tx, req ports.LedgerRequest) (*domain.BalanceChange, error) {
	return s.applyInTx(ctx, dbTx, req, domain.DirectionDebit)
}

func (s *LedgerServiceImpl) applyInTx(ctx context.Context, dbTx pgx.Tx, req ports.LedgerRequest, direction domain.EntryDirection) (*domain.BalanceChange, error) {
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, req.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	balanceBefore := wallet.Balance
	var balanceAfter int64
	if direction == domain.DirectionCredit {
		balanceAfter = balanceBefore + req.Amount
	} else {
		if balanceBefore < req.Amount {
			return nil, apperror.ErrInsufficientFunds()
		}
		balanceAfter = balanceBefore - req.Amount
	}

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		WalletID:      wallet.ID,
		Direction:     direction,
		Amount:        req.Amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		EntryType:     req.EntryType,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.ledgerRepo.Insert(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("insert ledger entry: %w", err))
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, balanceAfter); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet balance: %w", err))
	}

	return &domain.BalanceChange{
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
	}, nil
}
