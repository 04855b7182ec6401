package service

import (
	"context"
	"fmt"

	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/google/uuid"
)

// reportingService implements ports.ReportingService: read-only views
// over the ledger.
type reportingService struct {
	walletRepo ports.WalletRepository
	ledgerRepo ports.LedgerRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
) ports.ReportingService {
	return &reportingService{
		walletRepo: walletRepo,
		ledgerRepo: ledgerRepo,
	}
}

// WalletStatement returns a page of the wallet's ledger, newest first.
func (s *reportingService) WalletStatement(ctx context.Context, walletID uuid.UUID, page, pageSize int) (*ports.WalletStatement, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	wallet, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}

	entries, total, err := s.ledgerRepo.ListByWallet(ctx, walletID, page, pageSize)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ledger entries: %w", err))
	}

	return &ports.WalletStatement{
		Wallet:  *wallet,
		Entries: entries,
		Total:   total,
	}, nil
}
