package ports

import (
	"context"
	"time"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets. Methods
// accepting pgx.Tx run inside transaction blocks with pessimistic
// locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID, kind domain.WalletKind) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
	ListByOperator(ctx context.Context, operatorID uuid.UUID, kinds []domain.WalletKind) ([]domain.Wallet, error)
	// ListOperatorIDs returns every operator with at least one wallet;
	// the auto-draft worker iterates over it.
	ListOperatorIDs(ctx context.Context) ([]uuid.UUID, error)
}

// AliasRepository defines persistence for wallet aliases. Aliases are
// deactivated when superseded, never deleted.
type AliasRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, alias *domain.WalletAlias) error
	GetActive(ctx context.Context, aliasType domain.AliasType, value string) (*domain.WalletAlias, error)
	GetActiveForWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, aliasType domain.AliasType) (*domain.WalletAlias, error)
	Deactivate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// SequenceRepository allocates per-key routing code sequence numbers
// under a row lock.
type SequenceRepository interface {
	// NextValue locks the counter row for key, increments it and returns
	// the new value. The row is created on first use.
	NextValue(ctx context.Context, tx pgx.Tx, key string) (int, error)
}

// LedgerRepository defines persistence for ledger entries. The interface
// is structurally append-only: there is no update or delete.
type LedgerRepository interface {
	Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	ExistsByReference(ctx context.Context, tx pgx.Tx, direction domain.EntryDirection, referenceType, referenceID string) (bool, error)
	ListByWallet(ctx context.Context, walletID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int64, error)
	// SumCollected totals COLLECTION credits for a wallet within a period,
	// used by payout drafting.
	SumCollected(ctx context.Context, walletID uuid.UUID, from, to time.Time) (int64, error)
}

// PaymentRepository defines persistence for inbound collection payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.IncomingPayment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.IncomingPayment, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.IncomingPayment, error)
	GetByReceipt(ctx context.Context, receiptID string) (*domain.IncomingPayment, error)
	UpdateRisk(ctx context.Context, id uuid.UUID, score int, level domain.RiskLevel, flags []domain.RiskFlag) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus) error
	// RecentBySender returns payments from the same sender newer than
	// `since`, newest first.
	RecentBySender(ctx context.Context, senderPhone string, since time.Time) ([]domain.IncomingPayment, error)
	CountUnresolvedHighRiskForOperator(ctx context.Context, operatorID uuid.UUID) (int64, error)
}

// AlertRepository defines persistence for ops alerts.
type AlertRepository interface {
	// InsertUnique inserts the alert unless one with the same
	// (payment_id, type) already exists. Reports whether a row was
	// written.
	InsertUnique(ctx context.Context, alert *domain.OpsAlert) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]domain.OpsAlert, error)
}

// PayoutBatchRepository defines persistence for payout batches.
type PayoutBatchRepository interface {
	Create(ctx context.Context, tx pgx.Tx, batch *domain.PayoutBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutBatch, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PayoutBatch, error)
	Exists(ctx context.Context, operatorID uuid.UUID, periodStart, periodEnd time.Time, autoDraft bool) (bool, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BatchStatus) error
}

// PayoutItemRepository defines persistence for payout items.
type PayoutItemRepository interface {
	Create(ctx context.Context, tx pgx.Tx, item *domain.PayoutItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutItem, error)
	GetByIdempotencyKey(ctx context.Context, tx pgx.Tx, key string) (*domain.PayoutItem, error)
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.PayoutItem, error)
	// ClaimNextDue atomically selects and claims the next dispatchable
	// item (PENDING, attempt due) using FOR UPDATE SKIP LOCKED, bumping
	// its attempt counter. Returns nil when nothing is due.
	ClaimNextDue(ctx context.Context, batchID *uuid.UUID, now time.Time) (*domain.PayoutItem, error)
	MarkSent(ctx context.Context, id uuid.UUID, providerRequestID string) error
	ScheduleRetry(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, reason string) error
	MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string) error
	MarkConfirmed(ctx context.Context, tx pgx.Tx, id uuid.UUID, providerReceipt string) error
	CountUnverifiedDestinations(ctx context.Context, batchID uuid.UUID) (int64, error)
}

// DestinationRepository defines persistence for payout destinations.
type DestinationRepository interface {
	Upsert(ctx context.Context, dest *domain.PayoutDestination) error
	Get(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind) (*domain.PayoutDestination, error)
	SetVerified(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind, verified bool) error
}

// AuditRepository defines persistence for administrative audit logs.
type AuditRepository interface {
	Insert(ctx context.Context, log *domain.AuditLog) error
	ListByResource(ctx context.Context, resourceType, resourceID string, limit int) ([]domain.AuditLog, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
