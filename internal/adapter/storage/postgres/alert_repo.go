package postgres

import (
	"context"
	"fmt"

	"transit-settlement/internal/core/domain"
)

const alertColumns = `id, type, severity, entity_type, entity_id, payment_id, message, metadata, created_at`

// AlertRepo implements ports.AlertRepository. A unique index on
// (payment_id, type) makes alerts write-once per payment and reason.
type AlertRepo struct {
	pool Pool
}

// NewAlertRepo creates a new AlertRepo.
func NewAlertRepo(pool Pool) *AlertRepo {
	return &AlertRepo{pool: pool}
}

// InsertUnique inserts the alert unless one with the same (payment_id,
// type) exists. Reports whether a row was written.
func (r *AlertRepo) InsertUnique(ctx context.Context, a *domain.OpsAlert) (bool, error) {
	query := `INSERT INTO ops_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (payment_id, type) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		a.ID, a.Type, a.Severity, a.EntityType, a.EntityID,
		a.PaymentID, a.Message, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert ops alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListRecent returns the newest alerts.
func (r *AlertRepo) ListRecent(ctx context.Context, limit int) ([]domain.OpsAlert, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}
	query := `SELECT ` + alertColumns + ` FROM ops_alerts ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list ops alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.OpsAlert
	for rows.Next() {
		var a domain.OpsAlert
		if err := rows.Scan(
			&a.ID, &a.Type, &a.Severity, &a.EntityType, &a.EntityID,
			&a.PaymentID, &a.Message, &a.Metadata, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ops alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
