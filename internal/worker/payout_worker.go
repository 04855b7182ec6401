// Package worker runs the background payout jobs on a river queue:
// retry dispatch of due items and nightly auto-drafting of settlement
// batches.
package worker

import (
	"context"
	"time"

	"transit-settlement/internal/core/ports"

	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

// DispatchDueArgs triggers one dispatch pass over due payout items.
type DispatchDueArgs struct{}

func (DispatchDueArgs) Kind() string { return "payout_dispatch_due" }

// DispatchDueWorker claims and dispatches payout items whose retry
// backoff has elapsed.
type DispatchDueWorker struct {
	river.WorkerDefaults[DispatchDueArgs]
	payouts ports.PayoutService
	log     zerolog.Logger
}

func NewDispatchDueWorker(payouts ports.PayoutService, log zerolog.Logger) *DispatchDueWorker {
	return &DispatchDueWorker{payouts: payouts, log: log}
}

func (w *DispatchDueWorker) Work(ctx context.Context, job *river.Job[DispatchDueArgs]) error {
	result, err := w.payouts.DispatchDue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("dispatch pass failed")
		return err
	}
	if result.Dispatched+result.Retried+result.Failed > 0 {
		w.log.Info().
			Int("dispatched", result.Dispatched).
			Int("retried", result.Retried).
			Int("failed", result.Failed).
			Msg("dispatch pass complete")
	}
	return nil
}

// AutoDraftArgs triggers drafting of yesterday's settlement batches for
// every operator.
type AutoDraftArgs struct{}

func (AutoDraftArgs) Kind() string { return "payout_auto_draft" }

// AutoDraftWorker drafts a batch per operator for the previous
// settlement day. Drafting is idempotent per (operator, period), so a
// retried job reports zero created batches instead of duplicating.
type AutoDraftWorker struct {
	river.WorkerDefaults[AutoDraftArgs]
	wallets ports.WalletRepository
	payouts ports.PayoutService
	log     zerolog.Logger
}

func NewAutoDraftWorker(wallets ports.WalletRepository, payouts ports.PayoutService, log zerolog.Logger) *AutoDraftWorker {
	return &AutoDraftWorker{wallets: wallets, payouts: payouts, log: log}
}

func (w *AutoDraftWorker) Work(ctx context.Context, job *river.Job[AutoDraftArgs]) error {
	periodStart, periodEnd := previousSettlementDay(time.Now().UTC())

	operatorIDs, err := w.wallets.ListOperatorIDs(ctx)
	if err != nil {
		return err
	}

	var lastErr error
	for _, operatorID := range operatorIDs {
		result, err := w.payouts.Draft(ctx, ports.DraftRequest{
			OperatorID:  operatorID,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			AutoDraft:   true,
			RequestedBy: "auto-draft",
		})
		if err != nil {
			w.log.Error().Err(err).
				Str("operator_id", operatorID.String()).
				Msg("auto-draft failed for operator")
			lastErr = err
			continue
		}
		if result.BatchesCreated > 0 {
			w.log.Info().
				Str("operator_id", operatorID.String()).
				Int("items_created", result.ItemsCreated).
				Int("items_blocked", result.ItemsBlocked).
				Time("period_start", periodStart).
				Msg("auto-drafted settlement batch")
		}
	}
	return lastErr
}

// previousSettlementDay returns the [00:00, 24:00) UTC window of the
// day before now.
func previousSettlementDay(now time.Time) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, 0, -1), end
}
