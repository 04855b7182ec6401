package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of an inbound collection.
type PaymentStatus string

const (
	PaymentStatusReceived    PaymentStatus = "RECEIVED"
	PaymentStatusCredited    PaymentStatus = "CREDITED"
	PaymentStatusQuarantined PaymentStatus = "QUARANTINED"
	PaymentStatusRejected    PaymentStatus = "REJECTED"
)

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// Risk level score boundaries.
const (
	RiskScoreHighFloor   = 80
	RiskScoreMediumFloor = 50
)

// LevelForScore maps a score to its risk level.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= RiskScoreHighFloor:
		return RiskLevelHigh
	case score >= RiskScoreMediumFloor:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// FloorForLevel is the minimum score implied by an already-assigned level.
// Re-scoring may never drop below it.
func FloorForLevel(level RiskLevel) int {
	switch level {
	case RiskLevelHigh:
		return RiskScoreHighFloor
	case RiskLevelMedium:
		return RiskScoreMediumFloor
	default:
		return 0
	}
}

// Risk flag codes. Closed set: new heuristics add a code here.
const (
	FlagPaybillMismatch    = "PAYBILL_MISMATCH"
	FlagInvalidReference   = "INVALID_REFERENCE"
	FlagBadChecksum        = "BAD_CHECKSUM"
	FlagUnresolvedAccount  = "UNRESOLVED_ACCOUNT"
	FlagDuplicateReceipt   = "DUPLICATE_RECEIPT"
	FlagAuthMismatch       = "AUTH_MISMATCH"
	FlagLargeAmount        = "LARGE_AMOUNT"
	FlagSenderVelocity     = "SENDER_VELOCITY"
	FlagSenderManyAccounts = "SENDER_MANY_ACCOUNTS"
)

// RiskFlag records one matched heuristic with its contribution and
// supporting detail.
type RiskFlag struct {
	Code   string `json:"code"`
	Weight int    `json:"weight"`
	Detail string `json:"detail,omitempty"`
}

// MergeFlags unions two flag sets by code. Existing flags take
// precedence; a flag is added, never overwritten or dropped.
func MergeFlags(existing, incoming []RiskFlag) []RiskFlag {
	seen := make(map[string]bool, len(existing))
	merged := make([]RiskFlag, 0, len(existing)+len(incoming))
	for _, f := range existing {
		seen[f.Code] = true
		merged = append(merged, f)
	}
	for _, f := range incoming {
		if !seen[f.Code] {
			seen[f.Code] = true
			merged = append(merged, f)
		}
	}
	return merged
}

// IncomingPayment is one provider collection notification. Created on
// webhook receipt, mutated only by risk scoring and quarantine
// resolution, never deleted.
type IncomingPayment struct {
	ID                uuid.UUID     `json:"id"`
	SenderPhone       string        `json:"sender_phone"`
	Reference         string        `json:"reference"`
	DeclaredShortCode string        `json:"declared_short_code"`
	Amount            int64         `json:"amount"`
	ReceiptID         string        `json:"receipt_id"`
	WalletID          *uuid.UUID    `json:"wallet_id,omitempty"`
	Status            PaymentStatus `json:"status"`
	RiskScore         int           `json:"risk_score"`
	RiskLevel         RiskLevel     `json:"risk_level"`
	RiskFlags         []RiskFlag    `json:"risk_flags"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// IsResolved reports whether the payment reached a terminal business
// outcome.
func (p *IncomingPayment) IsResolved() bool {
	return p.Status == PaymentStatusCredited || p.Status == PaymentStatusRejected
}
