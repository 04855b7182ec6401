package service

import (
	"context"
	"fmt"
	"time"

	"transit-settlement/config"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Heuristic weights. Additive; level boundaries live in the domain
// package.
const (
	weightPaybillMismatch    = 80
	weightInvalidReference   = 50
	weightBadChecksum        = 50
	weightUnresolvedAccount  = 60
	weightDuplicateReceipt   = 40
	weightAuthMismatch       = 90
	weightLargeAmount        = 20
	weightSenderVelocity     = 30
	weightSenderManyAccounts = 25
)

// RiskServiceImpl implements ports.RiskService.
type RiskServiceImpl struct {
	paymentRepo ports.PaymentRepository
	alertRepo   ports.AlertRepository
	transactor  ports.DBTransactor
	cfg         config.RiskConfig
	log         zerolog.Logger
}

// NewRiskService creates a new RiskServiceImpl.
func NewRiskService(
	paymentRepo ports.PaymentRepository,
	alertRepo ports.AlertRepository,
	transactor ports.DBTransactor,
	cfg config.RiskConfig,
	log zerolog.Logger,
) *RiskServiceImpl {
	return &RiskServiceImpl{
		paymentRepo: paymentRepo,
		alertRepo:   alertRepo,
		transactor:  transactor,
		cfg:         cfg,
		log:         log,
	}
}

// Score evaluates one payment against the heuristics and the sender's
// recent history. Pure: no reads, no writes, deterministic for fixed
// inputs.
func (s *RiskServiceImpl) Score(payment *domain.IncomingPayment, recent []domain.IncomingPayment, signals ports.RiskSignals) ports.RiskAssessment {
	var score int
	var flags []domain.RiskFlag

	add := func(code string, weight int, detail string) {
		if d, ok := signals.DetailByFlag[code]; ok && d != "" {
			detail = d
		}
		score += weight
		flags = append(flags, domain.RiskFlag{Code: code, Weight: weight, Detail: detail})
	}

	if signals.PaybillMismatch {
		add(domain.FlagPaybillMismatch, weightPaybillMismatch,
			fmt.Sprintf("declared short code %s", payment.DeclaredShortCode))
	}
	if signals.InvalidReference {
		add(domain.FlagInvalidReference, weightInvalidReference,
			fmt.Sprintf("reference %q is unparseable", payment.Reference))
	}
	if signals.BadChecksum {
		add(domain.FlagBadChecksum, weightBadChecksum,
			fmt.Sprintf("reference %q fails checksum", payment.Reference))
	}
	if signals.Unresolved {
		add(domain.FlagUnresolvedAccount, weightUnresolvedAccount,
			fmt.Sprintf("reference %q resolves to no wallet", payment.Reference))
	}
	if signals.DuplicateReceipt {
		add(domain.FlagDuplicateReceipt, weightDuplicateReceipt,
			fmt.Sprintf("receipt %s already recorded", payment.ReceiptID))
	}
	if signals.AuthMismatch {
		add(domain.FlagAuthMismatch, weightAuthMismatch, "webhook signature mismatch")
	}

	if s.cfg.LargeAmountThreshold > 0 && payment.Amount >= s.cfg.LargeAmountThreshold {
		add(domain.FlagLargeAmount, weightLargeAmount,
			fmt.Sprintf("amount %d >= threshold %d", payment.Amount, s.cfg.LargeAmountThreshold))
	}

	// History heuristics count the current payment alongside the window.
	if s.cfg.SenderCountThreshold > 0 && len(recent)+1 > s.cfg.SenderCountThreshold {
		add(domain.FlagSenderVelocity, weightSenderVelocity,
			fmt.Sprintf("%d payments from %s within %s", len(recent)+1, payment.SenderPhone, s.cfg.Window))
	}

	if s.cfg.DistinctRefThreshold > 0 {
		refs := map[string]bool{payment.Reference: true}
		for _, p := range recent {
			refs[p.Reference] = true
		}
		if len(refs) >= s.cfg.DistinctRefThreshold {
			add(domain.FlagSenderManyAccounts, weightSenderManyAccounts,
				fmt.Sprintf("%d distinct references from %s within %s", len(refs), payment.SenderPhone, s.cfg.Window))
		}
	}

	return ports.RiskAssessment{
		Score: score,
		Level: domain.LevelForScore(score),
		Flags: flags,
	}
}

// Apply merges an assessment into the stored payment. Monotonic: the
// stored score and level never decrease, flags are unioned. On the first
// transition to HIGH while still RECEIVED the payment is quarantined;
// a HIGH arrived after crediting raises an alert only, crediting is
// one-way.
func (s *RiskServiceImpl) Apply(ctx context.Context, payment *domain.IncomingPayment, assessment ports.RiskAssessment) error {
	newScore := payment.RiskScore
	if assessment.Score > newScore {
		newScore = assessment.Score
	}
	if floor := domain.FloorForLevel(payment.RiskLevel); floor > newScore {
		newScore = floor
	}
	newLevel := domain.LevelForScore(newScore)
	mergedFlags := domain.MergeFlags(payment.RiskFlags, assessment.Flags)

	if err := s.paymentRepo.UpdateRisk(ctx, payment.ID, newScore, newLevel, mergedFlags); err != nil {
		return apperror.InternalError(fmt.Errorf("update payment risk: %w", err))
	}
	payment.RiskScore = newScore
	payment.RiskLevel = newLevel
	payment.RiskFlags = mergedFlags

	if newLevel == domain.RiskLevelHigh {
		switch payment.Status {
		case domain.PaymentStatusReceived:
			if err := s.quarantine(ctx, payment); err != nil {
				return err
			}
			s.raiseAlert(ctx, payment, domain.AlertTypeHighRiskQuarantined, domain.AlertSeverityCritical,
				fmt.Sprintf("payment quarantined at risk score %d", newScore))
		case domain.PaymentStatusCredited:
			// No reversal once credited; ops get told instead.
			s.raiseAlert(ctx, payment, domain.AlertTypeHighRiskAfterCredit, domain.AlertSeverityCritical,
				fmt.Sprintf("payment reached risk score %d after crediting", newScore))
		}
	}

	s.raiseFlagAlerts(ctx, payment, mergedFlags)

	return nil
}

func (s *RiskServiceImpl) quarantine(ctx context.Context, payment *domain.IncomingPayment) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.paymentRepo.GetByIDForUpdate(ctx, dbTx, payment.ID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock payment: %w", err))
	}
	if locked == nil || locked.Status != domain.PaymentStatusReceived {
		// A concurrent scorer got there first, or the payment moved on.
		return nil
	}

	if err := s.paymentRepo.UpdateStatus(ctx, dbTx, payment.ID, domain.PaymentStatusQuarantined); err != nil {
		return apperror.InternalError(fmt.Errorf("quarantine payment: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	payment.Status = domain.PaymentStatusQuarantined
	s.log.Warn().
		Str("payment_id", payment.ID.String()).
		Int("risk_score", payment.RiskScore).
		Msg("payment quarantined")
	return nil
}

// alertForFlag maps flag codes to the ops alert they raise. Flags not
// listed stay internal to the scored payment.
var alertForFlag = map[string]struct {
	alertType string
	severity  domain.AlertSeverity
}{
	domain.FlagPaybillMismatch:   {domain.AlertTypePaybillMismatch, domain.AlertSeverityCritical},
	domain.FlagAuthMismatch:      {domain.AlertTypeAuthMismatch, domain.AlertSeverityCritical},
	domain.FlagUnresolvedAccount: {domain.AlertTypeUnresolvedReference, domain.AlertSeverityWarning},
}

func (s *RiskServiceImpl) raiseFlagAlerts(ctx context.Context, payment *domain.IncomingPayment, flags []domain.RiskFlag) {
	for _, f := range flags {
		mapping, ok := alertForFlag[f.Code]
		if !ok {
			continue
		}
		s.raiseAlert(ctx, payment, mapping.alertType, mapping.severity, f.Detail)
	}
}

// raiseAlert is best-effort: a failed alert write never blocks payment
// processing. The (payment, type) unique index keeps replays to one row.
func (s *RiskServiceImpl) raiseAlert(ctx context.Context, payment *domain.IncomingPayment, alertType string, severity domain.AlertSeverity, message string) {
	paymentID := payment.ID
	alert := &domain.OpsAlert{
		ID:         uuid.New(),
		Type:       alertType,
		Severity:   severity,
		EntityType: "incoming_payment",
		EntityID:   payment.ID.String(),
		PaymentID:  &paymentID,
		Message:    message,
		CreatedAt:  time.Now().UTC(),
	}
	inserted, err := s.alertRepo.InsertUnique(ctx, alert)
	if err != nil {
		s.log.Error().Err(err).
			Str("payment_id", payment.ID.String()).
			Str("alert_type", alertType).
			Msg("failed to write ops alert")
		return
	}
	if inserted {
		s.log.Warn().
			Str("payment_id", payment.ID.String()).
			Str("alert_type", alertType).
			Str("severity", string(severity)).
			Msg("ops alert raised")
	}
}
