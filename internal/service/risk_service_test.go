package service

import (
	"context"
	"testing"
	"time"

	"transit-settlement/config"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type riskTestDeps struct {
	svc         *RiskServiceImpl
	paymentRepo *memPaymentRepo
	alertRepo   *memAlertRepo
}

func setupRiskService(t *testing.T) *riskTestDeps {
	t.Helper()
	d := &riskTestDeps{
		paymentRepo: newMemPaymentRepo(),
		alertRepo:   newMemAlertRepo(),
	}
	d.svc = NewRiskService(d.paymentRepo, d.alertRepo, &memTransactor{}, config.RiskConfig{
		LargeAmountThreshold: 1_000_000,
		Window:               10 * time.Minute,
		SenderCountThreshold: 3,
		DistinctRefThreshold: 3,
	}, zerolog.Nop())
	return d
}

func newReceivedPayment() *domain.IncomingPayment {
	return &domain.IncomingPayment{
		ID:                uuid.New(),
		SenderPhone:       "254700000001",
		Reference:         "1000012",
		DeclaredShortCode: "600100",
		Amount:            50_000,
		ReceiptID:         "RCP" + uuid.NewString()[:8],
		Status:            domain.PaymentStatusReceived,
		RiskLevel:         domain.RiskLevelLow,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestRiskService_Score_Weights(t *testing.T) {
	d := setupRiskService(t)

	cases := []struct {
		name      string
		signals   ports.RiskSignals
		wantScore int
		wantLevel domain.RiskLevel
		wantFlag  string
	}{
		{"paybill mismatch", ports.RiskSignals{PaybillMismatch: true}, 80, domain.RiskLevelHigh, domain.FlagPaybillMismatch},
		{"invalid reference", ports.RiskSignals{InvalidReference: true}, 50, domain.RiskLevelMedium, domain.FlagInvalidReference},
		{"bad checksum", ports.RiskSignals{BadChecksum: true}, 50, domain.RiskLevelMedium, domain.FlagBadChecksum},
		{"unresolved", ports.RiskSignals{Unresolved: true}, 60, domain.RiskLevelMedium, domain.FlagUnresolvedAccount},
		{"duplicate receipt", ports.RiskSignals{DuplicateReceipt: true}, 40, domain.RiskLevelLow, domain.FlagDuplicateReceipt},
		{"auth mismatch", ports.RiskSignals{AuthMismatch: true}, 90, domain.RiskLevelHigh, domain.FlagAuthMismatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newReceivedPayment()
			got := d.svc.Score(p, nil, tc.signals)
			assert.Equal(t, tc.wantScore, got.Score)
			assert.Equal(t, tc.wantLevel, got.Level)
			require.Len(t, got.Flags, 1)
			assert.Equal(t, tc.wantFlag, got.Flags[0].Code)
			assert.Equal(t, tc.wantScore, got.Flags[0].Weight)
		})
	}
}

func TestRiskService_Score_LargeAmount(t *testing.T) {
	d := setupRiskService(t)
	p := newReceivedPayment()
	p.Amount = 1_000_000

	got := d.svc.Score(p, nil, ports.RiskSignals{})
	assert.Equal(t, 20, got.Score)
	assert.Equal(t, domain.RiskLevelLow, got.Level)
	require.Len(t, got.Flags, 1)
	assert.Equal(t, domain.FlagLargeAmount, got.Flags[0].Code)
}

func TestRiskService_Score_SenderVelocity(t *testing.T) {
	d := setupRiskService(t)
	p := newReceivedPayment()

	// Three prior payments in the window plus this one crosses the
	// threshold of three.
	recent := []domain.IncomingPayment{
		{Reference: "1000012"}, {Reference: "1000012"}, {Reference: "1000012"},
	}
	got := d.svc.Score(p, recent, ports.RiskSignals{})
	assert.Equal(t, 30, got.Score)
	require.Len(t, got.Flags, 1)
	assert.Equal(t, domain.FlagSenderVelocity, got.Flags[0].Code)

	// Two priors is still under it.
	got = d.svc.Score(p, recent[:2], ports.RiskSignals{})
	assert.Zero(t, got.Score)
}

func TestRiskService_Score_SenderManyAccounts(t *testing.T) {
	d := setupRiskService(t)
	p := newReceivedPayment()
	p.Reference = "1000012"

	recent := []domain.IncomingPayment{
		{Reference: "2000013"},
		{Reference: "3000014"},
	}
	got := d.svc.Score(p, recent, ports.RiskSignals{})
	assert.GreaterOrEqual(t, got.Score, 25)
	codes := make([]string, 0, len(got.Flags))
	for _, f := range got.Flags {
		codes = append(codes, f.Code)
	}
	assert.Contains(t, codes, domain.FlagSenderManyAccounts)
}

func TestRiskService_Score_Additive(t *testing.T) {
	d := setupRiskService(t)
	p := newReceivedPayment()
	p.Amount = 2_000_000

	got := d.svc.Score(p, nil, ports.RiskSignals{BadChecksum: true})
	assert.Equal(t, 70, got.Score)
	assert.Equal(t, domain.RiskLevelMedium, got.Level)
	assert.Len(t, got.Flags, 2)
}

func TestRiskService_Apply_QuarantinesHighRiskReceived(t *testing.T) {
	d := setupRiskService(t)
	ctx := context.Background()
	p := newReceivedPayment()
	require.NoError(t, d.paymentRepo.Create(ctx, p))

	assessment := d.svc.Score(p, nil, ports.RiskSignals{PaybillMismatch: true})
	require.NoError(t, d.svc.Apply(ctx, p, assessment))

	assert.Equal(t, domain.PaymentStatusQuarantined, p.Status)
	stored, _ := d.paymentRepo.GetByID(ctx, p.ID)
	assert.Equal(t, domain.PaymentStatusQuarantined, stored.Status)
	assert.Equal(t, domain.RiskLevelHigh, stored.RiskLevel)
	assert.Equal(t, 80, stored.RiskScore)

	assert.Equal(t, 1, d.alertRepo.countByType(domain.AlertTypeHighRiskQuarantined))
	assert.Equal(t, 1, d.alertRepo.countByType(domain.AlertTypePaybillMismatch))
}

func TestRiskService_Apply_AlertOnlyWhenCredited(t *testing.T) {
	d := setupRiskService(t)
	ctx := context.Background()
	p := newReceivedPayment()
	p.Status = domain.PaymentStatusCredited
	require.NoError(t, d.paymentRepo.Create(ctx, p))

	assessment := d.svc.Score(p, nil, ports.RiskSignals{AuthMismatch: true})
	require.NoError(t, d.svc.Apply(ctx, p, assessment))

	stored, _ := d.paymentRepo.GetByID(ctx, p.ID)
	assert.Equal(t, domain.PaymentStatusCredited, stored.Status, "credited payments are never reversed")
	assert.Equal(t, domain.RiskLevelHigh, stored.RiskLevel)
	assert.Equal(t, 1, d.alertRepo.countByType(domain.AlertTypeHighRiskAfterCredit))
	assert.Equal(t, 0, d.alertRepo.countByType(domain.AlertTypeHighRiskQuarantined))
}

func TestRiskService_Apply_MonotonicScore(t *testing.T) {
	d := setupRiskService(t)
	ctx := context.Background()
	p := newReceivedPayment()
	require.NoError(t, d.paymentRepo.Create(ctx, p))

	high := d.svc.Score(p, nil, ports.RiskSignals{Unresolved: true})
	require.NoError(t, d.svc.Apply(ctx, p, high))
	assert.Equal(t, 60, p.RiskScore)
	assert.Equal(t, domain.RiskLevelMedium, p.RiskLevel)

	// A later, milder assessment never lowers the stored score or level.
	mild := d.svc.Score(p, nil, ports.RiskSignals{DuplicateReceipt: true})
	require.NoError(t, d.svc.Apply(ctx, p, mild))
	assert.Equal(t, 60, p.RiskScore)
	assert.Equal(t, domain.RiskLevelMedium, p.RiskLevel)

	// Flags union across assessments.
	codes := make([]string, 0, len(p.RiskFlags))
	for _, f := range p.RiskFlags {
		codes = append(codes, f.Code)
	}
	assert.ElementsMatch(t, []string{domain.FlagUnresolvedAccount, domain.FlagDuplicateReceipt}, codes)
}

func TestRiskService_Apply_AlertWrittenOnce(t *testing.T) {
	d := setupRiskService(t)
	ctx := context.Background()
	p := newReceivedPayment()
	require.NoError(t, d.paymentRepo.Create(ctx, p))

	assessment := d.svc.Score(p, nil, ports.RiskSignals{PaybillMismatch: true})
	require.NoError(t, d.svc.Apply(ctx, p, assessment))
	require.NoError(t, d.svc.Apply(ctx, p, assessment))

	assert.Equal(t, 1, d.alertRepo.countByType(domain.AlertTypePaybillMismatch))
	assert.Equal(t, 1, d.alertRepo.countByType(domain.AlertTypeHighRiskQuarantined))
}
