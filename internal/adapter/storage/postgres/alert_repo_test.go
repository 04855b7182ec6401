package postgres

import (
	"context"
	"testing"
	"time"

	"transit-settlement/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertRepo_InsertUnique_Inserted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepo(mock)
	paymentID := uuid.New()
	a := &domain.OpsAlert{
		ID:         uuid.New(),
		Type:       domain.AlertTypePaybillMismatch,
		Severity:   domain.AlertSeverityCritical,
		EntityType: "incoming_payment",
		EntityID:   paymentID.String(),
		PaymentID:  &paymentID,
		Message:    "declared paybill 600200 does not match registered 600100",
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO ops_alerts").
		WithArgs(a.ID, a.Type, a.Severity, a.EntityType, a.EntityID,
			a.PaymentID, a.Message, a.Metadata, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := repo.InsertUnique(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepo_InsertUnique_Suppressed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAlertRepo(mock)
	paymentID := uuid.New()
	a := &domain.OpsAlert{
		ID:        uuid.New(),
		Type:      domain.AlertTypePaybillMismatch,
		PaymentID: &paymentID,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO ops_alerts").
		WithArgs(a.ID, a.Type, a.Severity, a.EntityType, a.EntityID,
			a.PaymentID, a.Message, a.Metadata, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.InsertUnique(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate (payment, type) alert is suppressed")
}
