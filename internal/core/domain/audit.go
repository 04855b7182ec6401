package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited administrative action.
type AuditAction string

const (
	AuditActionDraftBatch        AuditAction = "DRAFT_BATCH"
	AuditActionSubmitBatch       AuditAction = "SUBMIT_BATCH"
	AuditActionApproveBatch      AuditAction = "APPROVE_BATCH"
	AuditActionProcessBatch      AuditAction = "PROCESS_BATCH"
	AuditActionResolvePayment    AuditAction = "RESOLVE_PAYMENT"
	AuditActionRegisterWallet    AuditAction = "REGISTER_WALLET"
	AuditActionVerifyDestination AuditAction = "VERIFY_DESTINATION"
)

// AuditLog records a single audited administrative action.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	ActorID      string      `json:"actor_id"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
