package ports

import (
	"context"
	"time"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
)

// LedgerService owns wallet balances. All mutations go through it.
type LedgerService interface {
	Credit(ctx context.Context, req LedgerRequest) (*domain.BalanceChange, error)
	Debit(ctx context.Context, req LedgerRequest) (*domain.BalanceChange, error)
	// CreditWithFeeSplit credits the principal wallet with gross minus
	// fees and each fee beneficiary with its share, atomically.
	CreditWithFeeSplit(ctx context.Context, req LedgerRequest, feeRules []domain.FeeRule) (*domain.BalanceChange, error)
}

// LedgerRequest describes one credit or debit.
type LedgerRequest struct {
	WalletID      uuid.UUID
	Amount        int64
	EntryType     string
	ReferenceType string
	ReferenceID   string
	Description   string
}

// CodeAllocator mints routing codes from per-key sequence counters.
type CodeAllocator interface {
	Allocate(ctx context.Context, key string) (string, error)
}

// AliasService resolves inbound payment references and registers
// aliases.
type AliasService interface {
	// Resolve maps a raw reference to a wallet id. A nil result with nil
	// error means "unknown account reference" (a quarantine trigger, not
	// a hard failure).
	Resolve(ctx context.Context, rawRef string) (*uuid.UUID, error)
	EnsureAlias(ctx context.Context, walletID uuid.UUID, aliasType domain.AliasType, value string) error
}

// RiskSignals carries the collector-observed facts about one inbound
// payment that the risk engine scores.
type RiskSignals struct {
	PaybillMismatch  bool
	InvalidReference bool
	BadChecksum      bool
	Unresolved       bool
	DuplicateReceipt bool
	AuthMismatch     bool
	DetailByFlag     map[string]string
}

// RiskAssessment is the outcome of one scoring run.
type RiskAssessment struct {
	Score int
	Level domain.RiskLevel
	Flags []domain.RiskFlag
}

// RiskService scores inbound payments and applies monotonic re-scoring
// with quarantine and alert side effects.
type RiskService interface {
	Score(payment *domain.IncomingPayment, recent []domain.IncomingPayment, signals RiskSignals) RiskAssessment
	// Apply merges an assessment into the stored payment: score and
	// level never decrease, flags union, quarantine on first HIGH while
	// RECEIVED, alert-only when already CREDITED.
	Apply(ctx context.Context, payment *domain.IncomingPayment, assessment RiskAssessment) error
}

// CollectionEvent is one provider collection webhook, already parsed.
type CollectionEvent struct {
	SenderPhone       string
	DeclaredShortCode string
	Reference         string
	Amount            int64
	ReceiptID         string
	AuthOK            bool
}

// CollectionResult reports the internal business outcome of a webhook.
type CollectionResult struct {
	PaymentID uuid.UUID
	Status    domain.PaymentStatus
	Duplicate bool
}

// QuarantineAction is an operator decision on a quarantined payment.
type QuarantineAction string

const (
	QuarantineActionCredit QuarantineAction = "CREDIT"
	QuarantineActionReject QuarantineAction = "REJECT"
)

// CollectionService orchestrates the inbound collection flow.
type CollectionService interface {
	HandleCollection(ctx context.Context, event CollectionEvent) (*CollectionResult, error)
	ResolveQuarantine(ctx context.Context, paymentID uuid.UUID, action QuarantineAction, actor string) (*domain.IncomingPayment, error)
}

// DraftRequest asks for payout batches covering one settlement period.
type DraftRequest struct {
	OperatorID  uuid.UUID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Kinds       []domain.WalletKind
	AutoDraft   bool
	RequestedBy string
}

// DraftResult reports drafting outcome; a repeat draft for the same
// identity reports zero created batches.
type DraftResult struct {
	BatchesCreated int
	BatchID        *uuid.UUID
	ItemsCreated   int
	ItemsBlocked   int
}

// ApprovalRejection lists the structured reasons an approval was
// blocked.
type ApprovalRejection struct {
	Reasons []string
}

// BatchView is a batch with its items and the derived completion state.
type BatchView struct {
	Batch domain.PayoutBatch
	Items []domain.PayoutItem
}

// DispatchResult reports one processing pass over due payout items.
type DispatchResult struct {
	Dispatched int
	Retried    int
	Failed     int
}

// PayoutService owns the payout batch state machine.
type PayoutService interface {
	Draft(ctx context.Context, req DraftRequest) (*DraftResult, error)
	Submit(ctx context.Context, batchID uuid.UUID, actor string) error
	Approve(ctx context.Context, batchID uuid.UUID, actor string) error
	// Process moves an APPROVED batch to PROCESSING and dispatches its
	// PENDING items. Safe to re-invoke on a partially processed batch.
	Process(ctx context.Context, batchID uuid.UUID, actor string) (*DispatchResult, error)
	// DispatchDue claims and dispatches due items across all batches;
	// called by the background worker.
	DispatchDue(ctx context.Context) (*DispatchResult, error)
	// HandleProviderResult applies an asynchronous disbursement result
	// callback, keyed by the item idempotency key. Replays no-op.
	HandleProviderResult(ctx context.Context, result ProviderResult) error
	GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchView, error)
}

// ProviderResult is a disbursement result callback from the provider.
type ProviderResult struct {
	OriginatorID  string // the item idempotency key
	ResultCode    int    // 0 = success
	Description   string
	ProviderTxnID string
}

// RegistrationService onboards wallets with routing codes and aliases,
// and manages the payout destination registry.
type RegistrationService interface {
	RegisterWallet(ctx context.Context, req RegisterWalletRequest) (*domain.Wallet, error)
	UpsertDestination(ctx context.Context, dest *domain.PayoutDestination) error
	VerifyDestination(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind, actor string) error
}

// RegisterWalletRequest describes a wallet to create.
type RegisterWalletRequest struct {
	OwnerType  domain.OwnerType
	OwnerID    uuid.UUID
	OperatorID uuid.UUID
	Kind       domain.WalletKind
	Currency   string
	Plate      string // optional vehicle plate alias
}

// ReportingService exposes read-side views over the ledger.
type ReportingService interface {
	WalletStatement(ctx context.Context, walletID uuid.UUID, page, pageSize int) (*WalletStatement, error)
}

// WalletStatement is a paginated ledger view for one wallet.
type WalletStatement struct {
	Wallet  domain.Wallet
	Entries []domain.LedgerEntry
	Total   int64
}

// AuditService records administrative actions.
type AuditService interface {
	Record(ctx context.Context, log *domain.AuditLog)
}

// TokenService resolves an opaque bearer token to an actor identity.
type TokenService interface {
	Verify(token string) (*TokenClaims, error)
}

// TokenClaims is the resolved identity behind a bearer token.
type TokenClaims struct {
	UserID string
	Role   string
}

// SignatureService verifies the shared-secret signature on provider
// webhooks. A mismatch is a risk signal, not an HTTP failure.
type SignatureService interface {
	Verify(payload []byte, signature string) bool
}
