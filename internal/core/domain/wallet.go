package domain

import (
	"time"

	"github.com/google/uuid"
)

// OwnerType identifies the kind of entity that owns a wallet.
type OwnerType string

const (
	OwnerTypeOperator OwnerType = "OPERATOR" // a SACCO / fleet operator
	OwnerTypeVehicle  OwnerType = "VEHICLE"
	OwnerTypeDriver   OwnerType = "DRIVER"
)

// WalletKind distinguishes multiple purses held by the same entity.
type WalletKind string

const (
	WalletKindDailyFee WalletKind = "DAILY_FEE"
	WalletKindSavings  WalletKind = "SAVINGS"
	WalletKindLoan     WalletKind = "LOAN"
)

// Wallet holds the authoritative balance for one (entity, kind) pair.
// Balance is in minor currency units and is mutated only through the
// ledger service; wallets are never hard-deleted.
type Wallet struct {
	ID          uuid.UUID  `json:"id"`
	OwnerType   OwnerType  `json:"owner_type"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	OperatorID  uuid.UUID  `json:"operator_id"`
	Kind        WalletKind `json:"kind"`
	Balance     int64      `json:"balance"`
	Currency    string     `json:"currency"`
	RoutingCode string     `json:"routing_code"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// AliasType classifies how a payer addressed a wallet.
type AliasType string

const (
	AliasTypeRoutingCode AliasType = "ROUTING_CODE"
	AliasTypePlate       AliasType = "PLATE"
)

// WalletAlias maps an inbound payment reference to a wallet. At most one
// active alias per (wallet, type); superseded aliases are deactivated,
// never deleted.
type WalletAlias struct {
	ID            uuid.UUID  `json:"id"`
	WalletID      uuid.UUID  `json:"wallet_id"`
	Alias         string     `json:"alias"`
	Type          AliasType  `json:"type"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}
