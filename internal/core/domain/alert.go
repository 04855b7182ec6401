package domain

import (
	"time"

	"github.com/google/uuid"
)

// AlertSeverity grades an ops alert.
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "INFO"
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// Ops alert types.
const (
	AlertTypeHighRiskQuarantined   = "HIGH_RISK_QUARANTINED"
	AlertTypeHighRiskAfterCredit   = "HIGH_RISK_AFTER_CREDIT"
	AlertTypePaybillMismatch       = "PAYBILL_MISMATCH"
	AlertTypeAuthMismatch          = "AUTH_MISMATCH"
	AlertTypeUnresolvedReference   = "UNRESOLVED_REFERENCE"
	AlertTypeDisbursementFailed    = "DISBURSEMENT_FAILED"
	AlertTypeSequenceNearExhausted = "SEQUENCE_NEAR_EXHAUSTED"
)

// OpsAlert is an operator-facing notification raised by the risk and
// payout engines. Write-once per (payment, type): a repeat occurrence is
// suppressed at insert, not duplicated.
type OpsAlert struct {
	ID         uuid.UUID     `json:"id"`
	Type       string        `json:"type"`
	Severity   AlertSeverity `json:"severity"`
	EntityType string        `json:"entity_type"`
	EntityID   string        `json:"entity_id"`
	PaymentID  *uuid.UUID    `json:"payment_id,omitempty"`
	Message    string        `json:"message"`
	Metadata   string        `json:"metadata,omitempty"` // JSON string
	CreatedAt  time.Time     `json:"created_at"`
}
