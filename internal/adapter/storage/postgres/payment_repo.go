package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, sender_phone, reference, declared_short_code, amount, receipt_id, wallet_id, status, risk_score, risk_level, risk_flags, created_at, updated_at`

// PaymentRepo implements ports.PaymentRepository. Risk flags are stored
// as a jsonb array.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func scanPayment(row pgx.Row) (*domain.IncomingPayment, error) {
	p := &domain.IncomingPayment{}
	var flags []byte
	err := row.Scan(
		&p.ID, &p.SenderPhone, &p.Reference, &p.DeclaredShortCode, &p.Amount,
		&p.ReceiptID, &p.WalletID, &p.Status, &p.RiskScore, &p.RiskLevel,
		&flags, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &p.RiskFlags); err != nil {
			return nil, fmt.Errorf("decode risk flags: %w", err)
		}
	}
	return p, nil
}

// Create inserts a new incoming payment.
func (r *PaymentRepo) Create(ctx context.Context, p *domain.IncomingPayment) error {
	flags, err := json.Marshal(p.RiskFlags)
	if err != nil {
		return fmt.Errorf("encode risk flags: %w", err)
	}

	query := `INSERT INTO incoming_payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = r.pool.Exec(ctx, query,
		p.ID, p.SenderPhone, p.Reference, p.DeclaredShortCode, p.Amount,
		p.ReceiptID, p.WalletID, p.Status, p.RiskScore, p.RiskLevel,
		flags, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID fetches a payment (without locking).
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.IncomingPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM incoming_payments WHERE id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payment by id: %w", err)
	}
	return p, nil
}

// GetByIDForUpdate fetches a payment with pessimistic locking. Must run
// inside a transaction.
func (r *PaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.IncomingPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM incoming_payments WHERE id = $1 FOR UPDATE`

	p, err := scanPayment(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payment for update: %w", err)
	}
	return p, nil
}

// GetByReceipt fetches a payment by its provider receipt id.
func (r *PaymentRepo) GetByReceipt(ctx context.Context, receiptID string) (*domain.IncomingPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM incoming_payments WHERE receipt_id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, query, receiptID))
	if err != nil {
		return nil, fmt.Errorf("get payment by receipt: %w", err)
	}
	return p, nil
}

// UpdateRisk persists a re-scored risk state.
func (r *PaymentRepo) UpdateRisk(ctx context.Context, id uuid.UUID, score int, level domain.RiskLevel, flags []domain.RiskFlag) error {
	encoded, err := json.Marshal(flags)
	if err != nil {
		return fmt.Errorf("encode risk flags: %w", err)
	}

	query := `UPDATE incoming_payments
		SET risk_score = $1, risk_level = $2, risk_flags = $3, updated_at = NOW()
		WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, score, level, encoded, id)
	if err != nil {
		return fmt.Errorf("update payment risk: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// UpdateStatus transitions a payment's status within a transaction.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus) error {
	query := `UPDATE incoming_payments SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// RecentBySender returns payments from one sender newer than `since`,
// newest first.
func (r *PaymentRepo) RecentBySender(ctx context.Context, senderPhone string, since time.Time) ([]domain.IncomingPayment, error) {
	query := `SELECT ` + paymentColumns + ` FROM incoming_payments
		WHERE sender_phone = $1 AND created_at >= $2 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, senderPhone, since)
	if err != nil {
		return nil, fmt.Errorf("recent payments by sender: %w", err)
	}
	defer rows.Close()

	var payments []domain.IncomingPayment
	for rows.Next() {
		var p domain.IncomingPayment
		var flags []byte
		if err := rows.Scan(
			&p.ID, &p.SenderPhone, &p.Reference, &p.DeclaredShortCode, &p.Amount,
			&p.ReceiptID, &p.WalletID, &p.Status, &p.RiskScore, &p.RiskLevel,
			&flags, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		if len(flags) > 0 {
			if err := json.Unmarshal(flags, &p.RiskFlags); err != nil {
				return nil, fmt.Errorf("decode risk flags: %w", err)
			}
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// CountUnresolvedHighRiskForOperator counts quarantined or HIGH-risk
// unresolved payments whose resolved wallet belongs to the operator.
// Approval of the operator's payout batches is blocked while it is
// non-zero.
func (r *PaymentRepo) CountUnresolvedHighRiskForOperator(ctx context.Context, operatorID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM incoming_payments p
		JOIN wallets w ON w.id = p.wallet_id
		WHERE w.operator_id = $1
		AND (p.status = 'QUARANTINED' OR (p.status = 'RECEIVED' AND p.risk_level = 'HIGH'))`

	var count int64
	if err := r.pool.QueryRow(ctx, query, operatorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unresolved high risk: %w", err)
	}
	return count, nil
}
