package ports

import (
	"context"
	"time"

	"transit-settlement/internal/core/domain"
)

// DisburseRequest is the stable contract for one outbound disbursement.
type DisburseRequest struct {
	OriginatorID    string // deterministic idempotency key
	DestinationType domain.DestinationType
	DestinationRef  string
	Amount          int64
	Remarks         string
}

// DisburseResponse is the provider's synchronous dispatch acknowledgement.
type DisburseResponse struct {
	ProviderRequestID string
	Accepted          bool
	Description       string
}

// DisburserClient is the outbound mobile-money provider. The payout
// engine treats it as a black box: synchronous dispatch acceptance here,
// asynchronous result via callback.
type DisburserClient interface {
	Disburse(ctx context.Context, req DisburseRequest) (*DisburseResponse, error)
	// SupportsDestination reports whether the provider can pay this
	// destination type (merchant-to-merchant transfers are not offered).
	SupportsDestination(destType domain.DestinationType) bool
}

// ReceiptCache is the fast-path duplicate receipt detector backed by
// Redis. The database remains authoritative; cache errors degrade to the
// DB check, and a receipt is marked only after its payment row exists so
// a failed insert never swallows the provider's retry.
type ReceiptCache interface {
	// Seen reports whether a receipt id has been recorded.
	Seen(ctx context.Context, receiptID string) (bool, error)
	// MarkSeen records a receipt id for ttl.
	MarkSeen(ctx context.Context, receiptID string, ttl time.Duration) error
}
