package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- Transactor and no-op pgx.Tx ---

type memTransactor struct{}

func (t *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- Wallets ---

type memWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *memWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *memWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *memWalletRepo) GetByOwner(ctx context.Context, ownerType domain.OwnerType, ownerID uuid.UUID, kind domain.WalletKind) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.OwnerType == ownerType && w.OwnerID == ownerID && w.Kind == kind {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memWalletRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	return r.GetByID(ctx, id)
}

func (r *memWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Balance = balance
	w.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memWalletRepo) ListByOperator(ctx context.Context, operatorID uuid.UUID, kinds []domain.WalletKind) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kindSet := make(map[domain.WalletKind]bool, len(kinds))
	for _, k := range kinds {
		kindSet[k] = true
	}
	var out []domain.Wallet
	for _, w := range r.wallets {
		if w.OperatorID != operatorID {
			continue
		}
		if len(kindSet) > 0 && !kindSet[w.Kind] {
			continue
		}
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoutingCode < out[j].RoutingCode })
	return out, nil
}

func (r *memWalletRepo) ListOperatorIDs(ctx context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, w := range r.wallets {
		if !seen[w.OperatorID] {
			seen[w.OperatorID] = true
			ids = append(ids, w.OperatorID)
		}
	}
	return ids, nil
}

// --- Aliases ---

type memAliasRepo struct {
	mu      sync.RWMutex
	aliases map[uuid.UUID]*domain.WalletAlias
}

func newMemAliasRepo() *memAliasRepo {
	return &memAliasRepo{aliases: make(map[uuid.UUID]*domain.WalletAlias)}
}

func (r *memAliasRepo) Insert(ctx context.Context, tx pgx.Tx, a *domain.WalletAlias) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.aliases {
		if x.Active && x.Type == a.Type && x.Alias == a.Alias {
			return &pgconn.PgError{Code: "23505", ConstraintName: "wallet_aliases_type_alias_active_key"}
		}
	}
	cp := *a
	r.aliases[a.ID] = &cp
	return nil
}

func (r *memAliasRepo) GetActive(ctx context.Context, aliasType domain.AliasType, value string) (*domain.WalletAlias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.aliases {
		if a.Active && a.Type == aliasType && a.Alias == value {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAliasRepo) GetActiveForWallet(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, aliasType domain.AliasType) (*domain.WalletAlias, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.aliases {
		if a.Active && a.WalletID == walletID && a.Type == aliasType {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAliasRepo) Deactivate(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.aliases[id]
	if !ok {
		return fmt.Errorf("alias not found")
	}
	now := time.Now().UTC()
	a.Active = false
	a.DeactivatedAt = &now
	return nil
}

// --- Sequences ---

type memSequenceRepo struct {
	mu     sync.Mutex
	values map[string]int
}

func newMemSequenceRepo() *memSequenceRepo {
	return &memSequenceRepo{values: make(map[string]int)}
}

func (r *memSequenceRepo) NextValue(ctx context.Context, tx pgx.Tx, key string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key]++
	return r.values[key], nil
}

func (r *memSequenceRepo) set(key string, value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
}

// --- Ledger ---

type memLedgerRepo struct {
	mu      sync.RWMutex
	entries []domain.LedgerEntry
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{}
}

func (r *memLedgerRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memLedgerRepo) ExistsByReference(ctx context.Context, tx pgx.Tx, direction domain.EntryDirection, referenceType, referenceID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Direction == direction && e.ReferenceType == referenceType && e.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLedgerRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, page, pageSize int) ([]domain.LedgerEntry, int64, error) {
	all := r.forWallet(walletID)
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *memLedgerRepo) SumCollected(ctx context.Context, walletID uuid.UUID, from, to time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum int64
	for _, e := range r.entries {
		if e.WalletID == walletID && e.Direction == domain.DirectionCredit && e.EntryType == domain.EntryTypeCollection &&
			!e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (r *memLedgerRepo) forWallet(walletID uuid.UUID) []domain.LedgerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.LedgerEntry
	for _, e := range r.entries {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out
}

func (r *memLedgerRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// --- Payments ---

type memPaymentRepo struct {
	mu         sync.RWMutex
	payments   map[uuid.UUID]*domain.IncomingPayment
	createErr  error // consumed by the next Create
	receiptGap bool  // next GetByReceipt misses, as if the winner had not committed yet
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*domain.IncomingPayment)}
}

func (r *memPaymentRepo) failNextCreate(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr = err
}

func (r *memPaymentRepo) Create(ctx context.Context, p *domain.IncomingPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	for _, x := range r.payments {
		if x.ReceiptID == p.ReceiptID {
			return &pgconn.PgError{Code: "23505", ConstraintName: "incoming_payments_receipt_id_key"}
		}
	}
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *memPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.IncomingPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.IncomingPayment, error) {
	return r.GetByID(ctx, id)
}

func (r *memPaymentRepo) GetByReceipt(ctx context.Context, receiptID string) (*domain.IncomingPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.receiptGap {
		r.receiptGap = false
		return nil, nil
	}
	for _, p := range r.payments {
		if p.ReceiptID == receiptID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPaymentRepo) UpdateRisk(ctx context.Context, id uuid.UUID, score int, level domain.RiskLevel, flags []domain.RiskFlag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found")
	}
	p.RiskScore = score
	p.RiskLevel = level
	p.RiskFlags = flags
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memPaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found")
	}
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memPaymentRepo) RecentBySender(ctx context.Context, senderPhone string, since time.Time) ([]domain.IncomingPayment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.IncomingPayment
	for _, p := range r.payments {
		if p.SenderPhone == senderPhone && p.CreatedAt.After(since) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) CountUnresolvedHighRiskForOperator(ctx context.Context, operatorID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, p := range r.payments {
		if p.Status == domain.PaymentStatusQuarantined ||
			(p.Status == domain.PaymentStatusReceived && p.RiskLevel == domain.RiskLevelHigh) {
			n++
		}
	}
	return n, nil
}

// --- Alerts ---

type memAlertRepo struct {
	mu     sync.RWMutex
	alerts []domain.OpsAlert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{}
}

func (r *memAlertRepo) InsertUnique(ctx context.Context, a *domain.OpsAlert) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.alerts {
		if x.Type == a.Type && equalUUIDPtr(x.PaymentID, a.PaymentID) && (a.PaymentID != nil || x.EntityID == a.EntityID) {
			return false, nil
		}
	}
	r.alerts = append(r.alerts, *a)
	return true, nil
}

func (r *memAlertRepo) ListRecent(ctx context.Context, limit int) ([]domain.OpsAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.OpsAlert, len(r.alerts))
	copy(out, r.alerts)
	return out, nil
}

func (r *memAlertRepo) countByType(alertType string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, a := range r.alerts {
		if a.Type == alertType {
			n++
		}
	}
	return n
}

func equalUUIDPtr(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// --- Payout batches ---

type memBatchRepo struct {
	mu      sync.RWMutex
	batches map[uuid.UUID]*domain.PayoutBatch
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: make(map[uuid.UUID]*domain.PayoutBatch)}
}

func (r *memBatchRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.PayoutBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.batches[b.ID] = &cp
	return nil
}

func (r *memBatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *memBatchRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.PayoutBatch, error) {
	return r.GetByID(ctx, id)
}

func (r *memBatchRepo) Exists(ctx context.Context, operatorID uuid.UUID, periodStart, periodEnd time.Time, autoDraft bool) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.batches {
		if b.OperatorID == operatorID && b.PeriodStart.Equal(periodStart) && b.PeriodEnd.Equal(periodEnd) && b.AutoDraft == autoDraft {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBatchRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.BatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return fmt.Errorf("batch not found")
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// --- Payout items ---

type memItemRepo struct {
	mu        sync.RWMutex
	items     map[uuid.UUID]*domain.PayoutItem
	batchRepo *memBatchRepo
	destRepo  *memDestinationRepo
}

func newMemItemRepo(batchRepo *memBatchRepo, destRepo *memDestinationRepo) *memItemRepo {
	return &memItemRepo{
		items:     make(map[uuid.UUID]*domain.PayoutItem),
		batchRepo: batchRepo,
		destRepo:  destRepo,
	}
}

func (r *memItemRepo) Create(ctx context.Context, tx pgx.Tx, item *domain.PayoutItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *memItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PayoutItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (r *memItemRepo) GetByIdempotencyKey(ctx context.Context, tx pgx.Tx, key string) (*domain.PayoutItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.IdempotencyKey == key {
			cp := *item
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memItemRepo) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]domain.PayoutItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.PayoutItem
	for _, item := range r.items {
		if item.BatchID == batchID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memItemRepo) ClaimNextDue(ctx context.Context, batchID *uuid.UUID, now time.Time) (*domain.PayoutItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var candidates []*domain.PayoutItem
	for _, item := range r.items {
		if item.Status != domain.ItemStatusPending {
			continue
		}
		if batchID != nil && item.BatchID != *batchID {
			continue
		}
		if item.NextAttemptAt != nil && item.NextAttemptAt.After(now) {
			continue
		}
		batch, _ := r.batchRepo.GetByID(ctx, item.BatchID)
		if batch == nil || batch.Status != domain.BatchStatusProcessing {
			continue
		}
		candidates = append(candidates, item)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].CreatedAt.Before(candidates[j].CreatedAt) })
	claimed := candidates[0]
	claimed.Attempts++
	claimed.UpdatedAt = now
	cp := *claimed
	return &cp, nil
}

func (r *memItemRepo) MarkSent(ctx context.Context, id uuid.UUID, providerRequestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Status != domain.ItemStatusPending {
		return fmt.Errorf("item not pending")
	}
	item.Status = domain.ItemStatusSent
	item.ProviderRequestID = &providerRequestID
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memItemRepo) ScheduleRetry(ctx context.Context, id uuid.UUID, nextAttemptAt time.Time, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("item not found")
	}
	item.NextAttemptAt = &nextAttemptAt
	item.FailureReason = &reason
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memItemRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("item not found")
	}
	item.Status = domain.ItemStatusFailed
	item.FailureReason = &reason
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memItemRepo) MarkConfirmed(ctx context.Context, tx pgx.Tx, id uuid.UUID, providerReceipt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("item not found")
	}
	if item.Status != domain.ItemStatusSent {
		return fmt.Errorf("item not in SENT state")
	}
	item.Status = domain.ItemStatusConfirmed
	item.ProviderReceipt = &providerReceipt
	item.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memItemRepo) CountUnverifiedDestinations(ctx context.Context, batchID uuid.UUID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, item := range r.items {
		if item.BatchID != batchID {
			continue
		}
		batch, _ := r.batchRepo.GetByID(ctx, item.BatchID)
		if batch == nil {
			continue
		}
		dest, _ := r.destRepo.Get(ctx, batch.OperatorID, item.WalletKind)
		if dest == nil || !dest.Verified {
			n++
		}
	}
	return n, nil
}

// --- Destinations ---

type memDestinationRepo struct {
	mu    sync.RWMutex
	dests map[string]*domain.PayoutDestination
}

func newMemDestinationRepo() *memDestinationRepo {
	return &memDestinationRepo{dests: make(map[string]*domain.PayoutDestination)}
}

func destKey(operatorID uuid.UUID, kind domain.WalletKind) string {
	return operatorID.String() + "/" + string(kind)
}

func (r *memDestinationRepo) Upsert(ctx context.Context, d *domain.PayoutDestination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := destKey(d.OperatorID, d.WalletKind)
	if existing, ok := r.dests[key]; ok && existing.Reference != d.Reference {
		d.Verified = false
	}
	cp := *d
	r.dests[key] = &cp
	return nil
}

func (r *memDestinationRepo) Get(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind) (*domain.PayoutDestination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dests[destKey(operatorID, kind)]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDestinationRepo) SetVerified(ctx context.Context, operatorID uuid.UUID, kind domain.WalletKind, verified bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dests[destKey(operatorID, kind)]
	if !ok {
		return fmt.Errorf("destination not found")
	}
	d.Verified = verified
	return nil
}

// --- Audit ---

type memAuditRepo struct {
	mu   sync.RWMutex
	logs []domain.AuditLog
}

func newMemAuditRepo() *memAuditRepo {
	return &memAuditRepo{}
}

func (r *memAuditRepo) Insert(ctx context.Context, l *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *l)
	return nil
}

func (r *memAuditRepo) ListByResource(ctx context.Context, resourceType, resourceID string, limit int) ([]domain.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.AuditLog
	for _, l := range r.logs {
		if l.ResourceType == resourceType && l.ResourceID == resourceID {
			out = append(out, l)
		}
	}
	return out, nil
}

// --- Receipt cache ---

type memReceiptCache struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemReceiptCache() *memReceiptCache {
	return &memReceiptCache{seen: make(map[string]bool)}
}

func (c *memReceiptCache) Seen(ctx context.Context, receiptID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	return c.seen[receiptID], nil
}

func (c *memReceiptCache) MarkSeen(ctx context.Context, receiptID string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.seen[receiptID] = true
	return nil
}

// --- Disburser ---

type disburseCall struct {
	req ports.DisburseRequest
}

// memDisburser is a scriptable provider: responses are consumed in
// order, the last one repeating.
type memDisburser struct {
	mu        sync.Mutex
	calls     []disburseCall
	responses []func(req ports.DisburseRequest) (*ports.DisburseResponse, error)
}

func newMemDisburser() *memDisburser {
	return &memDisburser{}
}

func (d *memDisburser) accept() {
	d.respond(func(req ports.DisburseRequest) (*ports.DisburseResponse, error) {
		return &ports.DisburseResponse{
			ProviderRequestID: "REQ-" + req.OriginatorID[:8],
			Accepted:          true,
		}, nil
	})
}

func (d *memDisburser) fail(err error) {
	d.respond(func(ports.DisburseRequest) (*ports.DisburseResponse, error) {
		return nil, err
	})
}

func (d *memDisburser) respond(fn func(req ports.DisburseRequest) (*ports.DisburseResponse, error)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.responses = append(d.responses, fn)
}

func (d *memDisburser) Disburse(ctx context.Context, req ports.DisburseRequest) (*ports.DisburseResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, disburseCall{req: req})
	if len(d.responses) == 0 {
		return &ports.DisburseResponse{ProviderRequestID: "REQ-DEFAULT", Accepted: true}, nil
	}
	fn := d.responses[0]
	if len(d.responses) > 1 {
		d.responses = d.responses[1:]
	}
	return fn(req)
}

func (d *memDisburser) SupportsDestination(destType domain.DestinationType) bool {
	return destType == domain.DestinationTypePhone
}

func (d *memDisburser) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}
