package service

import (
	"context"
	"fmt"
	"time"

	"transit-settlement/config"
	"transit-settlement/internal/adapter/storage/postgres"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/paycode"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"
	"transit-settlement/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ledgerTx is the in-transaction slice of the ledger used by flows that
// must couple a balance change with other writes atomically.
type ledgerTx interface {
	CreditInTx(ctx context.Context, dbTx pgx.Tx, req ports.LedgerRequest) (*domain.BalanceChange, error)
	DebitInTx(ctx context.Context, dbTx pgx.Tx, req ports.LedgerRequest) (*domain.BalanceChange, error)
}

// CollectionServiceImpl implements ports.CollectionService: the webhook
// side of the settlement flow. Receives provider collection events,
// resolves the reference, scores risk and credits or quarantines.
type CollectionServiceImpl struct {
	paymentRepo  ports.PaymentRepository
	ledgerRepo   ports.LedgerRepository
	aliasSvc     ports.AliasService
	riskSvc      ports.RiskService
	ledger       ledgerTx
	receiptCache ports.ReceiptCache
	auditSvc     ports.AuditService
	transactor   ports.DBTransactor
	metrics      *metrics.Metrics
	shortCode    string
	receiptTTL   time.Duration
	riskWindow   time.Duration
	feeBps       int
	feeWalletID  uuid.UUID
	log          zerolog.Logger
}

// NewCollectionService creates a new CollectionServiceImpl.
func NewCollectionService(
	paymentRepo ports.PaymentRepository,
	ledgerRepo ports.LedgerRepository,
	aliasSvc ports.AliasService,
	riskSvc ports.RiskService,
	ledger ledgerTx,
	receiptCache ports.ReceiptCache,
	auditSvc ports.AuditService,
	transactor ports.DBTransactor,
	m *metrics.Metrics,
	cfg *config.Config,
	log zerolog.Logger,
) *CollectionServiceImpl {
	feeWalletID, _ := uuid.Parse(cfg.Fees.ServiceFeeWallet)
	return &CollectionServiceImpl{
		paymentRepo:  paymentRepo,
		ledgerRepo:   ledgerRepo,
		aliasSvc:     aliasSvc,
		riskSvc:      riskSvc,
		ledger:       ledger,
		receiptCache: receiptCache,
		auditSvc:     auditSvc,
		transactor:   transactor,
		metrics:      m,
		shortCode:    cfg.Provider.ShortCode,
		receiptTTL:   cfg.Payout.ReceiptTTL,
		riskWindow:   cfg.Risk.Window,
		feeBps:       cfg.Fees.ServiceFeeBps,
		feeWalletID:  feeWalletID,
		log:          log,
	}
}

// HandleCollection processes one provider collection webhook. Always
// returns a business outcome rather than failing the webhook: duplicate
// receipts no-op, suspicious payments quarantine.
func (s *CollectionServiceImpl) HandleCollection(ctx context.Context, event ports.CollectionEvent) (*ports.CollectionResult, error) {
	s.metrics.CollectionReceived()

	if event.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if event.ReceiptID == "" {
		return nil, apperror.Validation("receipt id is required")
	}

	// Fast path: Redis has seen this receipt. Errors degrade to the DB
	// check, which stays authoritative.
	cacheHit, err := s.receiptCache.Seen(ctx, event.ReceiptID)
	if err != nil {
		s.log.Warn().Err(err).Str("receipt_id", event.ReceiptID).Msg("receipt cache unavailable, falling through to DB")
		cacheHit = false
	}

	existing, err := s.paymentRepo.GetByReceipt(ctx, event.ReceiptID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup receipt: %w", err))
	}
	if existing != nil {
		return s.handleReplay(ctx, existing)
	}
	if cacheHit {
		// Marked but no row: a stale mark from an attempt that died
		// before persisting. The row is authoritative, so reprocess.
		s.log.Warn().Str("receipt_id", event.ReceiptID).Msg("stale receipt mark, reprocessing")
	}

	walletID, signals, err := s.resolveReference(ctx, event)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.IncomingPayment{
		ID:                uuid.New(),
		SenderPhone:       event.SenderPhone,
		Reference:         paycode.Normalize(event.Reference),
		DeclaredShortCode: event.DeclaredShortCode,
		Amount:            event.Amount,
		ReceiptID:         event.ReceiptID,
		WalletID:          walletID,
		Status:            domain.PaymentStatusReceived,
		RiskLevel:         domain.RiskLevelLow,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if postgres.IsUniqueViolation(err) {
			// Lost the race to a concurrent delivery of the same receipt.
			winner, lookupErr := s.paymentRepo.GetByReceipt(ctx, event.ReceiptID)
			if lookupErr == nil && winner != nil {
				return s.handleReplay(ctx, winner)
			}
		}
		return nil, apperror.InternalError(fmt.Errorf("create payment: %w", err))
	}
	// Mark only after the row exists; marking before the insert would
	// swallow the provider's retry when the insert fails.
	if err := s.receiptCache.MarkSeen(ctx, event.ReceiptID, s.receiptTTL); err != nil {
		s.log.Warn().Err(err).Str("receipt_id", event.ReceiptID).Msg("receipt cache mark failed")
	}

	recent, err := s.paymentRepo.RecentBySender(ctx, event.SenderPhone, now.Add(-s.riskWindow))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load sender history: %w", err))
	}

	assessment := s.riskSvc.Score(payment, recent, signals)
	s.metrics.ObserveRiskScore(assessment.Score)
	if err := s.riskSvc.Apply(ctx, payment, assessment); err != nil {
		return nil, err
	}

	if payment.Status == domain.PaymentStatusQuarantined {
		s.metrics.CollectionQuarantined()
		s.log.Warn().
			Str("payment_id", payment.ID.String()).
			Str("receipt_id", event.ReceiptID).
			Int("risk_score", payment.RiskScore).
			Msg("collection quarantined")
		return &ports.CollectionResult{PaymentID: payment.ID, Status: payment.Status}, nil
	}

	if payment.WalletID == nil {
		// Resolved to no wallet but not risky enough to quarantine.
		// Holds as RECEIVED until ops sort out the reference.
		s.log.Warn().
			Str("payment_id", payment.ID.String()).
			Str("reference", payment.Reference).
			Msg("collection held, reference unresolved")
		return &ports.CollectionResult{PaymentID: payment.ID, Status: payment.Status}, nil
	}

	if err := s.creditPayment(ctx, payment); err != nil {
		return nil, err
	}
	s.metrics.CollectionCredited()

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("receipt_id", event.ReceiptID).
		Int64("amount", event.Amount).
		Msg("collection credited")

	return &ports.CollectionResult{PaymentID: payment.ID, Status: payment.Status}, nil
}

// handleReplay re-scores the original payment with a duplicate-receipt
// signal. The replay itself creates no row and no ledger entry.
func (s *CollectionServiceImpl) handleReplay(ctx context.Context, payment *domain.IncomingPayment) (*ports.CollectionResult, error) {
	s.metrics.CollectionDuplicate()

	assessment := s.riskSvc.Score(payment, nil, ports.RiskSignals{DuplicateReceipt: true})
	if err := s.riskSvc.Apply(ctx, payment, assessment); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("receipt_id", payment.ReceiptID).
		Msg("duplicate receipt ignored")

	return &ports.CollectionResult{PaymentID: payment.ID, Status: payment.Status, Duplicate: true}, nil
}

// resolveReference classifies the inbound reference and builds the risk
// signals observable at receipt time.
func (s *CollectionServiceImpl) resolveReference(ctx context.Context, event ports.CollectionEvent) (*uuid.UUID, ports.RiskSignals, error) {
	signals := ports.RiskSignals{
		AuthMismatch:    !event.AuthOK,
		PaybillMismatch: event.DeclaredShortCode != "" && event.DeclaredShortCode != s.shortCode,
	}

	ref := paycode.Normalize(event.Reference)
	switch paycode.Classify(ref) {
	case paycode.RefClassRoutingCode, paycode.RefClassPlate:
		// parseable, resolution decides
	default:
		if paycode.LooksNumeric(ref) {
			signals.BadChecksum = true
		} else {
			signals.InvalidReference = true
		}
	}

	walletID, err := s.aliasSvc.Resolve(ctx, ref)
	if err != nil {
		return nil, signals, err
	}
	if walletID == nil {
		signals.Unresolved = true
	}
	return walletID, signals, nil
}

// creditPayment writes the ledger credit and the CREDITED status flip in
// one transaction, guarded against a second entry for the same payment.
func (s *CollectionServiceImpl) creditPayment(ctx context.Context, payment *domain.IncomingPayment) error {
	if payment.WalletID == nil {
		return apperror.InternalError(fmt.Errorf("credit attempted with unresolved wallet for payment %s", payment.ID))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	exists, err := s.ledgerRepo.ExistsByReference(ctx, dbTx, domain.DirectionCredit, domain.RefTypeIncomingPayment, payment.ID.String())
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check ledger reference: %w", err))
	}
	if exists {
		// Already credited by a concurrent delivery.
		payment.Status = domain.PaymentStatusCredited
		return nil
	}

	req := ports.LedgerRequest{
		WalletID:      *payment.WalletID,
		Amount:        payment.Amount,
		EntryType:     domain.EntryTypeCollection,
		ReferenceType: domain.RefTypeIncomingPayment,
		ReferenceID:   payment.ID.String(),
		Description:   fmt.Sprintf("Collection %s from %s", payment.ReceiptID, payment.SenderPhone),
	}

	fee := s.serviceFee(payment.Amount)
	if fee > 0 {
		req.Amount = payment.Amount - fee
		if _, err := s.ledger.CreditInTx(ctx, dbTx, req); err != nil {
			return err
		}
		feeReq := ports.LedgerRequest{
			WalletID:      s.feeWalletID,
			Amount:        fee,
			EntryType:     domain.EntryTypeFeeShare,
			ReferenceType: domain.RefTypeIncomingPayment,
			ReferenceID:   payment.ID.String(),
			Description:   fmt.Sprintf("Service fee on collection %s", payment.ReceiptID),
		}
		if _, err := s.ledger.CreditInTx(ctx, dbTx, feeReq); err != nil {
			return err
		}
	} else {
		if _, err := s.ledger.CreditInTx(ctx, dbTx, req); err != nil {
			return err
		}
	}

	if err := s.paymentRepo.UpdateStatus(ctx, dbTx, payment.ID, domain.PaymentStatusCredited); err != nil {
		return apperror.InternalError(fmt.Errorf("mark payment credited: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	payment.Status = domain.PaymentStatusCredited
	return nil
}

// serviceFee computes the basis-point platform fee, zero when disabled
// or when the fee would consume the whole amount.
func (s *CollectionServiceImpl) serviceFee(amount int64) int64 {
	if s.feeBps <= 0 || s.feeWalletID == uuid.Nil {
		return 0
	}
	fee := amount * int64(s.feeBps) / 10000
	if fee >= amount {
		return 0
	}
	return fee
}

// ResolveQuarantine applies an operator decision on a quarantined
// payment. CREDIT re-runs the credit flow; REJECT is terminal. Both
// replay as no-ops, and nothing may credit a payment after rejection.
func (s *CollectionServiceImpl) ResolveQuarantine(ctx context.Context, paymentID uuid.UUID, action ports.QuarantineAction, actor string) (*domain.IncomingPayment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment: %w", err))
	}
	if payment == nil {
		return nil, apperror.ErrNotFound("payment")
	}

	switch payment.Status {
	case domain.PaymentStatusCredited:
		if action == ports.QuarantineActionCredit {
			return payment, nil // replay
		}
		return nil, apperror.ErrPaymentNotQuarantined()
	case domain.PaymentStatusRejected:
		if action == ports.QuarantineActionReject {
			return payment, nil // replay
		}
		return nil, apperror.ErrPaymentRejected()
	case domain.PaymentStatusReceived:
		return nil, apperror.ErrPaymentNotQuarantined()
	}

	switch action {
	case ports.QuarantineActionCredit:
		if payment.WalletID == nil {
			// The operator may have registered the alias since receipt.
			walletID, err := s.aliasSvc.Resolve(ctx, payment.Reference)
			if err != nil {
				return nil, err
			}
			if walletID == nil {
				return nil, apperror.Validation("payment reference still resolves to no wallet")
			}
			payment.WalletID = walletID
		}
		if err := s.creditPayment(ctx, payment); err != nil {
			return nil, err
		}
		s.metrics.CollectionCredited()
	case ports.QuarantineActionReject:
		if err := s.rejectPayment(ctx, payment); err != nil {
			return nil, err
		}
	default:
		return nil, apperror.Validation(fmt.Sprintf("unknown quarantine action %q", action))
	}

	s.auditSvc.Record(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      actor,
		Action:       domain.AuditActionResolvePayment,
		ResourceType: "incoming_payment",
		ResourceID:   payment.ID.String(),
		Details:      fmt.Sprintf(`{"action":%q}`, action),
		CreatedAt:    time.Now().UTC(),
	})

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("action", string(action)).
		Str("actor", actor).
		Msg("quarantined payment resolved")

	return payment, nil
}

func (s *CollectionServiceImpl) rejectPayment(ctx context.Context, payment *domain.IncomingPayment) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.paymentRepo.GetByIDForUpdate(ctx, dbTx, payment.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock payment: %w", err))
	}
	if locked == nil || locked.Status != domain.PaymentStatusQuarantined {
		payment.Status = domain.PaymentStatusRejected
		return nil
	}

	if err := s.paymentRepo.UpdateStatus(ctx, dbTx, payment.ID, domain.PaymentStatusRejected); err != nil {
		return apperror.InternalError(fmt.Errorf("reject payment: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	payment.Status = domain.PaymentStatusRejected
	return nil
}
