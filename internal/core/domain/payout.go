package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the payout batch lifecycle state.
type BatchStatus string

const (
	BatchStatusDraft      BatchStatus = "DRAFT"
	BatchStatusSubmitted  BatchStatus = "SUBMITTED"
	BatchStatusApproved   BatchStatus = "APPROVED"
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusCompleted  BatchStatus = "COMPLETED"
)

// ItemStatus is the payout item lifecycle state. Transitions are
// one-directional; FAILED items become eligible for a fresh batch, not
// for in-place retry.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusBlocked   ItemStatus = "BLOCKED"
	ItemStatusSent      ItemStatus = "SENT"
	ItemStatusConfirmed ItemStatus = "CONFIRMED"
	ItemStatusFailed    ItemStatus = "FAILED"
)

// IsTerminal reports whether the item is in a final state.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusConfirmed || s == ItemStatusFailed || s == ItemStatusBlocked
}

// DestinationType identifies how an outbound payment is addressed.
type DestinationType string

const (
	DestinationTypePhone        DestinationType = "PHONE"
	DestinationTypeMerchantCode DestinationType = "MERCHANT_CODE"
)

// Item block reasons.
const (
	BlockReasonDestinationNotVerified = "DESTINATION_NOT_VERIFIED"
	BlockReasonB2BNotSupported        = "B2B_NOT_SUPPORTED"
)

// PayoutBatch groups the outbound disbursements drafted for one operator
// over one settlement period. One batch exists per (operator, period,
// auto-draft flag).
type PayoutBatch struct {
	ID          uuid.UUID   `json:"id"`
	OperatorID  uuid.UUID   `json:"operator_id"`
	PeriodStart time.Time   `json:"period_start"`
	PeriodEnd   time.Time   `json:"period_end"`
	Status      BatchStatus `json:"status"`
	TotalAmount int64       `json:"total_amount"`
	AutoDraft   bool        `json:"auto_draft"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PayoutItem is one outbound disbursement within a batch.
type PayoutItem struct {
	ID                uuid.UUID       `json:"id"`
	BatchID           uuid.UUID       `json:"batch_id"`
	WalletID          uuid.UUID       `json:"wallet_id"`
	WalletKind        WalletKind      `json:"wallet_kind"`
	Amount            int64           `json:"amount"`
	DestinationType   DestinationType `json:"destination_type"`
	DestinationRef    string          `json:"destination_ref"`
	Status            ItemStatus      `json:"status"`
	BlockReason       *string         `json:"block_reason,omitempty"`
	IdempotencyKey    string          `json:"idempotency_key"`
	ProviderRequestID *string         `json:"provider_request_id,omitempty"`
	ProviderReceipt   *string         `json:"provider_receipt,omitempty"`
	FailureReason     *string         `json:"failure_reason,omitempty"`
	Attempts          int             `json:"attempts"`
	NextAttemptAt     *time.Time      `json:"next_attempt_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BuildPayoutIdempotencyKey derives the deterministic originator id for a
// payout item. Re-processing the same item always produces the same key,
// so provider dispatch and result callbacks cannot double-apply. The
// source wallet is part of the derivation: two same-kind wallets settling
// equal amounts to one destination must not share a key, or the result
// callback cannot tell their items apart.
func BuildPayoutIdempotencyKey(batchID, walletID uuid.UUID, kind WalletKind, amount int64, destinationRef string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%d|%s", batchID, walletID, kind, amount, destinationRef))
	return hex.EncodeToString(sum[:])[:32]
}

// PayoutDestination is the registered settlement destination for one
// (operator, wallet kind). Items draft as BLOCKED until it is verified.
type PayoutDestination struct {
	ID         uuid.UUID       `json:"id"`
	OperatorID uuid.UUID       `json:"operator_id"`
	WalletKind WalletKind      `json:"wallet_kind"`
	Type       DestinationType `json:"type"`
	Reference  string          `json:"reference"`
	Verified   bool            `json:"verified"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
