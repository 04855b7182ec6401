package dto

import (
	"time"

	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
)

// CollectionWebhook is the provider's C2B confirmation payload.
type CollectionWebhook struct {
	TransactionType   string `json:"TransactionType"`
	TransID           string `json:"TransID" binding:"required"`
	TransTime         string `json:"TransTime"`
	TransAmount       string `json:"TransAmount" binding:"required"`
	BusinessShortCode string `json:"BusinessShortCode"`
	BillRefNumber     string `json:"BillRefNumber"`
	MSISDN            string `json:"MSISDN" binding:"required"`
	FirstName         string `json:"FirstName"`
}

// WebhookAck is the acknowledgement the provider expects back.
type WebhookAck struct {
	ResultCode int    `json:"ResultCode"`
	ResultDesc string `json:"ResultDesc"`
}

// DisbursementResult is the provider's asynchronous B2C result callback.
type DisbursementResult struct {
	Result struct {
		ResultType               int    `json:"ResultType"`
		ResultCode               int    `json:"ResultCode"`
		ResultDesc               string `json:"ResultDesc"`
		OriginatorConversationID string `json:"OriginatorConversationID" binding:"required"`
		ConversationID           string `json:"ConversationID"`
		TransactionID            string `json:"TransactionID"`
	} `json:"Result" binding:"required"`
}

// RegisterWalletRequest is the request body for wallet onboarding.
type RegisterWalletRequest struct {
	OwnerType  string `json:"owner_type" binding:"required,oneof=OPERATOR VEHICLE DRIVER"`
	OwnerID    string `json:"owner_id" binding:"required,uuid"`
	OperatorID string `json:"operator_id" binding:"required,uuid"`
	Kind       string `json:"kind" binding:"required,oneof=DAILY_FEE SAVINGS LOAN"`
	Currency   string `json:"currency" binding:"omitempty,len=3"`
	Plate      string `json:"plate" binding:"omitempty,max=16"`
}

// WalletResponse is the wallet representation returned by the API.
type WalletResponse struct {
	ID          string `json:"id"`
	OwnerType   string `json:"owner_type"`
	OwnerID     string `json:"owner_id"`
	OperatorID  string `json:"operator_id"`
	Kind        string `json:"kind"`
	Balance     int64  `json:"balance"`
	Currency    string `json:"currency"`
	RoutingCode string `json:"routing_code"`
	CreatedAt   string `json:"created_at"`
}

// UpsertDestinationRequest registers a settlement destination.
type UpsertDestinationRequest struct {
	OperatorID string `json:"operator_id" binding:"required,uuid"`
	WalletKind string `json:"wallet_kind" binding:"required,oneof=DAILY_FEE SAVINGS LOAN"`
	Type       string `json:"type" binding:"required,oneof=PHONE MERCHANT_CODE"`
	Reference  string `json:"reference" binding:"required,max=32"`
}

// VerifyDestinationRequest marks a destination verified.
type VerifyDestinationRequest struct {
	OperatorID string `json:"operator_id" binding:"required,uuid"`
	WalletKind string `json:"wallet_kind" binding:"required,oneof=DAILY_FEE SAVINGS LOAN"`
}

// DraftBatchRequest asks for payout batches covering a period.
type DraftBatchRequest struct {
	OperatorID  string    `json:"operator_id" binding:"required,uuid"`
	PeriodStart time.Time `json:"period_start" binding:"required"`
	PeriodEnd   time.Time `json:"period_end" binding:"required"`
	Kinds       []string  `json:"kinds" binding:"omitempty,dive,oneof=DAILY_FEE SAVINGS LOAN"`
}

// DraftBatchResponse reports drafting outcome.
type DraftBatchResponse struct {
	BatchesCreated int     `json:"batches_created"`
	BatchID        *string `json:"batch_id,omitempty"`
	ItemsCreated   int     `json:"items_created"`
	ItemsBlocked   int     `json:"items_blocked"`
}

// DispatchResponse reports one processing pass.
type DispatchResponse struct {
	Dispatched int `json:"dispatched"`
	Retried    int `json:"retried"`
	Failed     int `json:"failed"`
}

// PayoutItemResponse is one item within a batch view.
type PayoutItemResponse struct {
	ID              string  `json:"id"`
	WalletID        string  `json:"wallet_id"`
	WalletKind      string  `json:"wallet_kind"`
	Amount          int64   `json:"amount"`
	DestinationType string  `json:"destination_type,omitempty"`
	DestinationRef  string  `json:"destination_ref,omitempty"`
	Status          string  `json:"status"`
	BlockReason     *string `json:"block_reason,omitempty"`
	FailureReason   *string `json:"failure_reason,omitempty"`
	ProviderReceipt *string `json:"provider_receipt,omitempty"`
	Attempts        int     `json:"attempts"`
	NextAttemptAt   *string `json:"next_attempt_at,omitempty"`
}

// BatchResponse is a payout batch with its items.
type BatchResponse struct {
	ID          string               `json:"id"`
	OperatorID  string               `json:"operator_id"`
	PeriodStart string               `json:"period_start"`
	PeriodEnd   string               `json:"period_end"`
	Status      string               `json:"status"`
	TotalAmount int64                `json:"total_amount"`
	AutoDraft   bool                 `json:"auto_draft"`
	Items       []PayoutItemResponse `json:"items"`
}

// ResolvePaymentRequest is an operator decision on a quarantined payment.
type ResolvePaymentRequest struct {
	Action string `json:"action" binding:"required,oneof=CREDIT REJECT"`
}

// PaymentResponse is an inbound payment representation.
type PaymentResponse struct {
	ID          string            `json:"id"`
	SenderPhone string            `json:"sender_phone"`
	Reference   string            `json:"reference"`
	Amount      int64             `json:"amount"`
	ReceiptID   string            `json:"receipt_id"`
	WalletID    *string           `json:"wallet_id,omitempty"`
	Status      string            `json:"status"`
	RiskScore   int               `json:"risk_score"`
	RiskLevel   string            `json:"risk_level"`
	RiskFlags   []domain.RiskFlag `json:"risk_flags,omitempty"`
}

// AlertResponse is one ops alert.
type AlertResponse struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Severity   string  `json:"severity"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	PaymentID  *string `json:"payment_id,omitempty"`
	Message    string  `json:"message"`
	CreatedAt  string  `json:"created_at"`
}

// LedgerEntryResponse is one statement line.
type LedgerEntryResponse struct {
	ID            string `json:"id"`
	Direction     string `json:"direction"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
	EntryType     string `json:"entry_type"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
	Description   string `json:"description,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// StatementResponse is a paginated wallet statement.
type StatementResponse struct {
	Wallet  WalletResponse        `json:"wallet"`
	Entries []LedgerEntryResponse `json:"entries"`
	Total   int64                 `json:"total"`
}

// ---- Mappers ----

// FromWallet maps a domain wallet to its API shape.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:          w.ID.String(),
		OwnerType:   string(w.OwnerType),
		OwnerID:     w.OwnerID.String(),
		OperatorID:  w.OperatorID.String(),
		Kind:        string(w.Kind),
		Balance:     w.Balance,
		Currency:    w.Currency,
		RoutingCode: w.RoutingCode,
		CreatedAt:   w.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// FromPayment maps a domain payment to its API shape.
func FromPayment(p *domain.IncomingPayment) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID.String(),
		SenderPhone: p.SenderPhone,
		Reference:   p.Reference,
		Amount:      p.Amount,
		ReceiptID:   p.ReceiptID,
		Status:      string(p.Status),
		RiskScore:   p.RiskScore,
		RiskLevel:   string(p.RiskLevel),
		RiskFlags:   p.RiskFlags,
	}
	if p.WalletID != nil {
		id := p.WalletID.String()
		resp.WalletID = &id
	}
	return resp
}

// FromBatchView maps a batch with items to its API shape.
func FromBatchView(view *ports.BatchView) BatchResponse {
	resp := BatchResponse{
		ID:          view.Batch.ID.String(),
		OperatorID:  view.Batch.OperatorID.String(),
		PeriodStart: view.Batch.PeriodStart.UTC().Format(time.RFC3339),
		PeriodEnd:   view.Batch.PeriodEnd.UTC().Format(time.RFC3339),
		Status:      string(view.Batch.Status),
		TotalAmount: view.Batch.TotalAmount,
		AutoDraft:   view.Batch.AutoDraft,
		Items:       make([]PayoutItemResponse, 0, len(view.Items)),
	}
	for i := range view.Items {
		resp.Items = append(resp.Items, fromPayoutItem(&view.Items[i]))
	}
	return resp
}

func fromPayoutItem(item *domain.PayoutItem) PayoutItemResponse {
	resp := PayoutItemResponse{
		ID:              item.ID.String(),
		WalletID:        item.WalletID.String(),
		WalletKind:      string(item.WalletKind),
		Amount:          item.Amount,
		DestinationType: string(item.DestinationType),
		DestinationRef:  item.DestinationRef,
		Status:          string(item.Status),
		BlockReason:     item.BlockReason,
		FailureReason:   item.FailureReason,
		ProviderReceipt: item.ProviderReceipt,
		Attempts:        item.Attempts,
	}
	if item.NextAttemptAt != nil {
		s := item.NextAttemptAt.UTC().Format(time.RFC3339)
		resp.NextAttemptAt = &s
	}
	return resp
}

// FromAlert maps an ops alert to its API shape.
func FromAlert(a *domain.OpsAlert) AlertResponse {
	resp := AlertResponse{
		ID:         a.ID.String(),
		Type:       a.Type,
		Severity:   string(a.Severity),
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Message:    a.Message,
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if a.PaymentID != nil {
		id := a.PaymentID.String()
		resp.PaymentID = &id
	}
	return resp
}

// FromStatement maps a wallet statement to its API shape.
func FromStatement(stmt *ports.WalletStatement) StatementResponse {
	resp := StatementResponse{
		Wallet:  FromWallet(&stmt.Wallet),
		Entries: make([]LedgerEntryResponse, 0, len(stmt.Entries)),
		Total:   stmt.Total,
	}
	for _, e := range stmt.Entries {
		resp.Entries = append(resp.Entries, LedgerEntryResponse{
			ID:            e.ID.String(),
			Direction:     string(e.Direction),
			Amount:        e.Amount,
			BalanceAfter:  e.BalanceAfter,
			EntryType:     e.EntryType,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
			Description:   e.Description,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp
}
