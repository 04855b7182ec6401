package worker

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"transit-settlement/internal/core/ports"
	"transit-settlement/internal/core/ports/mocks"
	"transit-settlement/pkg/logger"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func testLog() zerolog.Logger {
	return logger.NewWithWriter("error", bytes.NewBuffer(nil))
}

func dispatchJob() *river.Job[DispatchDueArgs] {
	return &river.Job[DispatchDueArgs]{JobRow: &rivertype.JobRow{ID: 1, Attempt: 1}}
}

func autoDraftJob() *river.Job[AutoDraftArgs] {
	return &river.Job[AutoDraftArgs]{JobRow: &rivertype.JobRow{ID: 2, Attempt: 1}}
}

func TestDispatchDueWorker(t *testing.T) {
	ctrl := gomock.NewController(t)
	payouts := mocks.NewMockPayoutService(ctrl)
	w := NewDispatchDueWorker(payouts, testLog())

	t.Run("passes through the dispatch result", func(t *testing.T) {
		payouts.EXPECT().DispatchDue(gomock.Any()).
			Return(&ports.DispatchResult{Dispatched: 2, Retried: 1}, nil)
		require.NoError(t, w.Work(context.Background(), dispatchJob()))
	})

	t.Run("propagates errors for retry", func(t *testing.T) {
		payouts.EXPECT().DispatchDue(gomock.Any()).
			Return(nil, errors.New("database down"))
		assert.Error(t, w.Work(context.Background(), dispatchJob()))
	})
}

func TestAutoDraftWorker_DraftsEveryOperator(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallets := mocks.NewMockWalletRepository(ctrl)
	payouts := mocks.NewMockPayoutService(ctrl)
	w := NewAutoDraftWorker(wallets, payouts, testLog())

	opA, opB := uuid.New(), uuid.New()
	wallets.EXPECT().ListOperatorIDs(gomock.Any()).Return([]uuid.UUID{opA, opB}, nil)

	var requests []ports.DraftRequest
	payouts.EXPECT().
		Draft(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(func(_ context.Context, req ports.DraftRequest) (*ports.DraftResult, error) {
			requests = append(requests, req)
			return &ports.DraftResult{BatchesCreated: 1, ItemsCreated: 2}, nil
		})

	require.NoError(t, w.Work(context.Background(), autoDraftJob()))
	require.Len(t, requests, 2)

	for _, req := range requests {
		assert.True(t, req.AutoDraft)
		assert.Equal(t, "auto-draft", req.RequestedBy)
		assert.Equal(t, 24*time.Hour, req.PeriodEnd.Sub(req.PeriodStart))
		assert.True(t, req.PeriodEnd.Before(time.Now().Add(time.Second)))
	}
	assert.Equal(t, opA, requests[0].OperatorID)
	assert.Equal(t, opB, requests[1].OperatorID)
}

func TestAutoDraftWorker_ContinuesPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	wallets := mocks.NewMockWalletRepository(ctrl)
	payouts := mocks.NewMockPayoutService(ctrl)
	w := NewAutoDraftWorker(wallets, payouts, testLog())

	opA, opB := uuid.New(), uuid.New()
	wallets.EXPECT().ListOperatorIDs(gomock.Any()).Return([]uuid.UUID{opA, opB}, nil)

	gomock.InOrder(
		payouts.EXPECT().Draft(gomock.Any(), gomock.Any()).Return(nil, errors.New("deadlock")),
		payouts.EXPECT().Draft(gomock.Any(), gomock.Any()).Return(&ports.DraftResult{}, nil),
	)

	// The sweep still visits the second operator, then reports the
	// failure so river retries the job. Drafting is idempotent, so the
	// retry cannot duplicate the successful batch.
	assert.Error(t, w.Work(context.Background(), autoDraftJob()))
}

func TestPreviousSettlementDay(t *testing.T) {
	now := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	start, end := previousSettlementDay(now)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), end)
}
