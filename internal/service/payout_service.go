package service

import (
	"context"
	"fmt"
	"time"

	"transit-settlement/config"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"
	"transit-settlement/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PayoutServiceImpl implements ports.PayoutService: the batch state
// machine DRAFT -> SUBMITTED -> APPROVED -> PROCESSING with idempotent
// provider dispatch and bounded backoff retry.
type PayoutServiceImpl struct {
	batchRepo   ports.PayoutBatchRepository
	itemRepo    ports.PayoutItemRepository
	walletRepo  ports.WalletRepository
	ledgerRepo  ports.LedgerRepository
	destRepo    ports.DestinationRepository
	paymentRepo ports.PaymentRepository
	alertRepo   ports.AlertRepository
	ledger      ledgerTx
	disburser   ports.DisburserClient
	auditSvc    ports.AuditService
	transactor  ports.DBTransactor
	metrics     *metrics.Metrics
	maxAttempts int
	log         zerolog.Logger
}

// NewPayoutService creates a new PayoutServiceImpl.
func NewPayoutService(
	batchRepo ports.PayoutBatchRepository,
	itemRepo ports.PayoutItemRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	destRepo ports.DestinationRepository,
	paymentRepo ports.PaymentRepository,
	alertRepo ports.AlertRepository,
	ledger ledgerTx,
	disburser ports.DisburserClient,
	auditSvc ports.AuditService,
	transactor ports.DBTransactor,
	m *metrics.Metrics,
	cfg config.PayoutConfig,
	log zerolog.Logger,
) *PayoutServiceImpl {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 7
	}
	return &PayoutServiceImpl{
		batchRepo:   batchRepo,
		itemRepo:    itemRepo,
		walletRepo:  walletRepo,
		ledgerRepo:  ledgerRepo,
		destRepo:    destRepo,
		paymentRepo: paymentRepo,
		alertRepo:   alertRepo,
		ledger:      ledger,
		disburser:   disburser,
		auditSvc:    auditSvc,
		transactor:  transactor,
		metrics:     m,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Draft computes one payout item per funded (wallet, kind) for the
// period and creates the batch. Idempotent per (operator, period,
// draft origin): a repeat request reports zero created batches.
func (s *PayoutServiceImpl) Draft(ctx context.Context, req ports.DraftRequest) (*ports.DraftResult, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, apperror.Validation("period end must be after period start")
	}
	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = []domain.WalletKind{domain.WalletKindDailyFee, domain.WalletKindSavings, domain.WalletKindLoan}
	}

	exists, err := s.batchRepo.Exists(ctx, req.OperatorID, req.PeriodStart, req.PeriodEnd, req.AutoDraft)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check existing batch: %w", err))
	}
	if exists {
		if !req.AutoDraft {
			return nil, apperror.ErrDuplicateBatch()
		}
		// The periodic auto-draft re-runs; an existing batch is a no-op.
		s.log.Info().
			Str("operator_id", req.OperatorID.String()).
			Time("period_start", req.PeriodStart).
			Msg("batch already drafted for period, skipping")
		return &ports.DraftResult{BatchesCreated: 0}, nil
	}

	wallets, err := s.walletRepo.ListByOperator(ctx, req.OperatorID, kinds)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wallets: %w", err))
	}

	now := time.Now().UTC()
	batch := &domain.PayoutBatch{
		ID:          uuid.New(),
		OperatorID:  req.OperatorID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Status:      domain.BatchStatusDraft,
		AutoDraft:   req.AutoDraft,
		CreatedBy:   req.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var items []*domain.PayoutItem
	blocked := 0
	for _, w := range wallets {
		amount, err := s.ledgerRepo.SumCollected(ctx, w.ID, req.PeriodStart, req.PeriodEnd)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("sum collections for wallet %s: %w", w.ID, err))
		}
		if amount <= 0 {
			continue
		}

		item := &domain.PayoutItem{
			ID:         uuid.New(),
			BatchID:    batch.ID,
			WalletID:   w.ID,
			WalletKind: w.Kind,
			Amount:     amount,
			Status:     domain.ItemStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		dest, err := s.destRepo.Get(ctx, req.OperatorID, w.Kind)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load destination: %w", err))
		}
		switch {
		case dest == nil || !dest.Verified:
			reason := domain.BlockReasonDestinationNotVerified
			item.Status = domain.ItemStatusBlocked
			item.BlockReason = &reason
			if dest != nil {
				item.DestinationType = dest.Type
				item.DestinationRef = dest.Reference
			}
		case !s.disburser.SupportsDestination(dest.Type):
			reason := domain.BlockReasonB2BNotSupported
			item.Status = domain.ItemStatusBlocked
			item.BlockReason = &reason
			item.DestinationType = dest.Type
			item.DestinationRef = dest.Reference
		default:
			item.DestinationType = dest.Type
			item.DestinationRef = dest.Reference
		}
		if item.Status == domain.ItemStatusBlocked {
			blocked++
		}

		item.IdempotencyKey = domain.BuildPayoutIdempotencyKey(batch.ID, w.ID, w.Kind, amount, item.DestinationRef)
		batch.TotalAmount += amount
		items = append(items, item)
	}

	if len(items) == 0 {
		s.log.Info().
			Str("operator_id", req.OperatorID.String()).
			Time("period_start", req.PeriodStart).
			Msg("no funded wallets in period, nothing to draft")
		return &ports.DraftResult{BatchesCreated: 0}, nil
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.batchRepo.Create(ctx, dbTx, batch); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create batch: %w", err))
	}
	for _, item := range items {
		if err := s.itemRepo.Create(ctx, dbTx, item); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create item: %w", err))
		}
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.audit(ctx, req.RequestedBy, domain.AuditActionDraftBatch, batch.ID,
		fmt.Sprintf(`{"items":%d,"blocked":%d,"total":%d,"auto_draft":%t}`, len(items), blocked, batch.TotalAmount, req.AutoDraft))

	s.log.Info().
		Str("batch_id", batch.ID.String()).
		Str("operator_id", req.OperatorID.String()).
		Int("items", len(items)).
		Int("blocked", blocked).
		Int64("total", batch.TotalAmount).
		Msg("payout batch drafted")

	batchID := batch.ID
	return &ports.DraftResult{
		BatchesCreated: 1,
		BatchID:        &batchID,
		ItemsCreated:   len(items),
		ItemsBlocked:   blocked,
	}, nil
}

// Submit moves DRAFT to SUBMITTED. Requires at least one non-blocked
// item. Replaying on an already-SUBMITTED batch no-ops.
func (s *PayoutServiceImpl) Submit(ctx context.Context, batchID uuid.UUID, actor string) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	batch, err := s.batchRepo.GetByIDForUpdate(ctx, dbTx, batchID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock batch: %w", err))
	}
	if batch == nil {
		return apperror.ErrNotFound("payout batch")
	}
	if batch.Status == domain.BatchStatusSubmitted {
		return nil
	}
	if batch.Status != domain.BatchStatusDraft {
		return apperror.ErrInvalidTransition(string(batch.Status), string(domain.BatchStatusSubmitted))
	}

	items, err := s.itemRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("list items: %w", err))
	}
	dispatchable := 0
	for _, item := range items {
		if item.Status == domain.ItemStatusPending {
			dispatchable++
		}
	}
	if dispatchable == 0 {
		return apperror.ErrNoDispatchableItems()
	}

	if err := s.batchRepo.UpdateStatus(ctx, dbTx, batchID, domain.BatchStatusSubmitted); err != nil {
		return apperror.InternalError(fmt.Errorf("update batch status: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.audit(ctx, actor, domain.AuditActionSubmitBatch, batchID, "")
	s.log.Info().Str("batch_id", batchID.String()).Str("actor", actor).Msg("payout batch submitted")
	return nil
}

// Approve moves SUBMITTED to APPROVED. Blocked with a structured reason
// list when any destination is unverified or the operator has unresolved
// high-risk inbound payments.
func (s *PayoutServiceImpl) Approve(ctx context.Context, batchID uuid.UUID, actor string) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	batch, err := s.batchRepo.GetByIDForUpdate(ctx, dbTx, batchID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock batch: %w", err))
	}
	if batch == nil {
		return apperror.ErrNotFound("payout batch")
	}
	if batch.Status == domain.BatchStatusApproved {
		return nil
	}
	if batch.Status != domain.BatchStatusSubmitted {
		return apperror.ErrInvalidTransition(string(batch.Status), string(domain.BatchStatusApproved))
	}

	var reasons []string
	unverified, err := s.itemRepo.CountUnverifiedDestinations(ctx, batchID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count unverified destinations: %w", err))
	}
	if unverified > 0 {
		reasons = append(reasons, fmt.Sprintf("%s: %d items", domain.BlockReasonDestinationNotVerified, unverified))
	}

	unresolved, err := s.paymentRepo.CountUnresolvedHighRiskForOperator(ctx, batch.OperatorID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count unresolved high-risk payments: %w", err))
	}
	if unresolved > 0 {
		reasons = append(reasons, fmt.Sprintf("UNRESOLVED_HIGH_RISK_PAYMENTS: %d", unresolved))
	}

	if len(reasons) > 0 {
		return apperror.ErrApprovalBlocked(reasons)
	}

	if err := s.batchRepo.UpdateStatus(ctx, dbTx, batchID, domain.BatchStatusApproved); err != nil {
		return apperror.InternalError(fmt.Errorf("update batch status: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.audit(ctx, actor, domain.AuditActionApproveBatch, batchID, "")
	s.log.Info().Str("batch_id", batchID.String()).Str("actor", actor).Msg("payout batch approved")
	return nil
}

// Process moves APPROVED to PROCESSING and dispatches the batch's due
// items. Safe to re-invoke: already-SENT items are never re-dispatched.
func (s *PayoutServiceImpl) Process(ctx context.Context, batchID uuid.UUID, actor string) (*ports.DispatchResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	batch, err := s.batchRepo.GetByIDForUpdate(ctx, dbTx, batchID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock batch: %w", err))
	}
	if batch == nil {
		return nil, apperror.ErrNotFound("payout batch")
	}

	switch batch.Status {
	case domain.BatchStatusApproved:
		if err := s.batchRepo.UpdateStatus(ctx, dbTx, batchID, domain.BatchStatusProcessing); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("update batch status: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}
	case domain.BatchStatusProcessing:
		// Re-invocation on a partially processed batch.
		dbTx.Rollback(ctx) //nolint:errcheck
	default:
		return nil, apperror.ErrInvalidTransition(string(batch.Status), string(domain.BatchStatusProcessing))
	}

	result := s.dispatchLoop(ctx, &batchID)

	s.audit(ctx, actor, domain.AuditActionProcessBatch, batchID,
		fmt.Sprintf(`{"dispatched":%d,"retried":%d,"failed":%d}`, result.Dispatched, result.Retried, result.Failed))
	return result, nil
}

// DispatchDue claims and dispatches due items across all PROCESSING
// batches. Called by the background worker.
func (s *PayoutServiceImpl) DispatchDue(ctx context.Context) (*ports.DispatchResult, error) {
	return s.dispatchLoop(ctx, nil), nil
}

// dispatchLoop drains the due-item queue one claim at a time. The claim
// both selects and marks the item in-flight, so concurrent workers never
// double-dispatch.
func (s *PayoutServiceImpl) dispatchLoop(ctx context.Context, batchID *uuid.UUID) *ports.DispatchResult {
	result := &ports.DispatchResult{}
	for {
		if ctx.Err() != nil {
			return result
		}
		item, err := s.itemRepo.ClaimNextDue(ctx, batchID, time.Now().UTC())
		if err != nil {
			s.log.Error().Err(err).Msg("claiming payout item failed")
			return result
		}
		if item == nil {
			return result
		}
		s.dispatchItem(ctx, item, result)
	}
}

func (s *PayoutServiceImpl) dispatchItem(ctx context.Context, item *domain.PayoutItem, result *ports.DispatchResult) {
	resp, err := s.disburser.Disburse(ctx, ports.DisburseRequest{
		OriginatorID:    item.IdempotencyKey,
		DestinationType: item.DestinationType,
		DestinationRef:  item.DestinationRef,
		Amount:          item.Amount,
		Remarks:         fmt.Sprintf("%s settlement", item.WalletKind),
	})
	if err != nil {
		s.handleDispatchFailure(ctx, item, err.Error(), result)
		return
	}
	if !resp.Accepted {
		s.handleDispatchFailure(ctx, item, resp.Description, result)
		return
	}

	if err := s.itemRepo.MarkSent(ctx, item.ID, resp.ProviderRequestID); err != nil {
		// The dispatch went out; the claim keeps the item in-flight and
		// the deterministic originator id makes a re-send harmless.
		s.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("marking item sent failed")
		return
	}

	s.metrics.RecordDispatch("sent")
	result.Dispatched++
	s.log.Info().
		Str("item_id", item.ID.String()).
		Str("provider_request_id", resp.ProviderRequestID).
		Int64("amount", item.Amount).
		Int("attempt", item.Attempts).
		Msg("payout item dispatched")
}

func (s *PayoutServiceImpl) handleDispatchFailure(ctx context.Context, item *domain.PayoutItem, reason string, result *ports.DispatchResult) {
	if item.Attempts >= s.maxAttempts {
		s.finalizeFailed(ctx, item, fmt.Sprintf("dispatch failed after %d attempts: %s", item.Attempts, reason))
		s.metrics.RecordDispatch("failed")
		result.Failed++
		return
	}

	next := time.Now().UTC().Add(nextBackoff(item.Attempts))
	if err := s.itemRepo.ScheduleRetry(ctx, item.ID, next, reason); err != nil {
		s.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("scheduling retry failed")
		return
	}
	s.metrics.RecordDispatch("retried")
	result.Retried++
	s.log.Warn().
		Str("item_id", item.ID.String()).
		Int("attempt", item.Attempts).
		Time("next_attempt_at", next).
		Str("reason", reason).
		Msg("payout dispatch failed, retry scheduled")
}

func (s *PayoutServiceImpl) finalizeFailed(ctx context.Context, item *domain.PayoutItem, reason string) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("begin tx for item failure")
		return
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.itemRepo.MarkFailed(ctx, dbTx, item.ID, reason); err != nil {
		s.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("marking item failed")
		return
	}
	if err := dbTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("commit item failure")
		return
	}

	s.metrics.PayoutFailed()
	s.raiseItemAlert(ctx, item, reason)
	s.log.Error().
		Str("item_id", item.ID.String()).
		Str("reason", reason).
		Msg("payout item terminally failed")
}

// HandleProviderResult applies an asynchronous disbursement result,
// keyed by the item idempotency key. Success debits the source wallet in
// the same transaction as the CONFIRMED flip; replays no-op.
func (s *PayoutServiceImpl) HandleProviderResult(ctx context.Context, result ports.ProviderResult) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	item, err := s.itemRepo.GetByIdempotencyKey(ctx, dbTx, result.OriginatorID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock item by idempotency key: %w", err))
	}
	if item == nil {
		return apperror.ErrNotFound("payout item")
	}
	if item.Status.IsTerminal() {
		// Replayed callback.
		return nil
	}
	if item.Status != domain.ItemStatusSent {
		s.log.Warn().
			Str("item_id", item.ID.String()).
			Str("status", string(item.Status)).
			Msg("provider result for item not yet sent, ignoring")
		return nil
	}

	if result.ResultCode == 0 {
		exists, err := s.ledgerRepo.ExistsByReference(ctx, dbTx, domain.DirectionDebit, domain.RefTypePayoutItem, item.ID.String())
		if err != nil {
			return apperror.InternalError(fmt.Errorf("check ledger reference: %w", err))
		}
		if !exists {
			_, err = s.ledger.DebitInTx(ctx, dbTx, ports.LedgerRequest{
				WalletID:      item.WalletID,
				Amount:        item.Amount,
				EntryType:     domain.EntryTypeDisbursement,
				ReferenceType: domain.RefTypePayoutItem,
				ReferenceID:   item.ID.String(),
				Description:   fmt.Sprintf("Disbursement to %s (%s)", item.DestinationRef, result.ProviderTxnID),
			})
			if err != nil {
				return err
			}
		}
		if err := s.itemRepo.MarkConfirmed(ctx, dbTx, item.ID, result.ProviderTxnID); err != nil {
			return apperror.InternalError(fmt.Errorf("mark item confirmed: %w", err))
		}
		if err := dbTx.Commit(ctx); err != nil {
			return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
		}

		s.metrics.PayoutConfirmed()
		s.log.Info().
			Str("item_id", item.ID.String()).
			Str("provider_txn_id", result.ProviderTxnID).
			Int64("amount", item.Amount).
			Msg("payout item confirmed")
		return nil
	}

	reason := result.Description
	if reason == "" {
		reason = fmt.Sprintf("provider result code %d", result.ResultCode)
	}
	if err := s.itemRepo.MarkFailed(ctx, dbTx, item.ID, reason); err != nil {
		return apperror.InternalError(fmt.Errorf("mark item failed: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.metrics.PayoutFailed()
	s.raiseItemAlert(ctx, item, reason)
	s.log.Warn().
		Str("item_id", item.ID.String()).
		Int("result_code", result.ResultCode).
		Str("reason", reason).
		Msg("payout item failed")
	return nil
}

// GetBatch returns a batch with its items. COMPLETED is derived: a
// PROCESSING batch whose items are all terminal reads as COMPLETED
// without a separate mutation.
func (s *PayoutServiceImpl) GetBatch(ctx context.Context, batchID uuid.UUID) (*ports.BatchView, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load batch: %w", err))
	}
	if batch == nil {
		return nil, apperror.ErrNotFound("payout batch")
	}
	items, err := s.itemRepo.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list items: %w", err))
	}

	if batch.Status == domain.BatchStatusProcessing && len(items) > 0 {
		done := true
		for _, item := range items {
			if !item.Status.IsTerminal() {
				done = false
				break
			}
		}
		if done {
			batch.Status = domain.BatchStatusCompleted
		}
	}

	return &ports.BatchView{Batch: *batch, Items: items}, nil
}

func (s *PayoutServiceImpl) raiseItemAlert(ctx context.Context, item *domain.PayoutItem, reason string) {
	alert := &domain.OpsAlert{
		ID:         uuid.New(),
		Type:       domain.AlertTypeDisbursementFailed,
		Severity:   domain.AlertSeverityCritical,
		EntityType: "payout_item",
		EntityID:   item.ID.String(),
		Message:    reason,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.alertRepo.InsertUnique(ctx, alert); err != nil {
		s.log.Error().Err(err).Str("item_id", item.ID.String()).Msg("failed to write ops alert")
	}
}

func (s *PayoutServiceImpl) audit(ctx context.Context, actor string, action domain.AuditAction, batchID uuid.UUID, details string) {
	s.auditSvc.Record(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		ActorID:      actor,
		Action:       action,
		ResourceType: "payout_batch",
		ResourceID:   batchID.String(),
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	})
}
