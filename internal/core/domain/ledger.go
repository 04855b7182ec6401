package domain

import (
	"time"

	"github.com/google/uuid"
)

// EntryDirection is the side of a ledger entry.
type EntryDirection string

const (
	DirectionCredit EntryDirection = "CREDIT"
	DirectionDebit  EntryDirection = "DEBIT"
)

// Ledger entry types.
const (
	EntryTypeCollection   = "COLLECTION"
	EntryTypeFeeShare     = "FEE_SHARE"
	EntryTypeDisbursement = "DISBURSEMENT"
	EntryTypeAdjustment   = "ADJUSTMENT"
)

// Ledger reference types.
const (
	RefTypeIncomingPayment = "INCOMING_PAYMENT"
	RefTypePayoutItem      = "PAYOUT_ITEM"
	RefTypeManual          = "MANUAL"
)

// LedgerEntry is one immutable record of a balance change. Rows are
// append-only: no update or delete operation exists anywhere in the
// repository layer, so BalanceAfter of a wallet's latest entry always
// equals the wallet's current balance.
type LedgerEntry struct {
	ID            uuid.UUID      `json:"id"`
	WalletID      uuid.UUID      `json:"wallet_id"`
	Direction     EntryDirection `json:"direction"`
	Amount        int64          `json:"amount"`
	BalanceBefore int64          `json:"balance_before"`
	BalanceAfter  int64          `json:"balance_after"`
	EntryType     string         `json:"entry_type"`
	ReferenceType string         `json:"reference_type"`
	ReferenceID   string         `json:"reference_id"`
	Description   string         `json:"description"`
	CreatedAt     time.Time      `json:"created_at"`
}

// BalanceChange is the result of a ledger credit or debit.
type BalanceChange struct {
	BalanceBefore int64 `json:"balance_before"`
	BalanceAfter  int64 `json:"balance_after"`
}

// FeeRule directs a fixed share of a gross collection to a beneficiary
// wallet during a fee-split credit.
type FeeRule struct {
	WalletID    uuid.UUID `json:"wallet_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
}
