package handler

import (
	"bytes"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"transit-settlement/internal/adapter/http/dto"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"
	"transit-settlement/pkg/metrics"
	"transit-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookHandler receives provider callbacks. The collection webhook
// always acknowledges business outcomes; only malformed payloads and
// internal failures surface as HTTP errors, so the provider retries
// exactly those.
type WebhookHandler struct {
	collections ports.CollectionService
	payouts     ports.PayoutService
	signatures  ports.SignatureService
	metrics     *metrics.Metrics
	log         zerolog.Logger
}

func NewWebhookHandler(
	collections ports.CollectionService,
	payouts ports.PayoutService,
	signatures ports.SignatureService,
	m *metrics.Metrics,
	log zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		collections: collections,
		payouts:     payouts,
		signatures:  signatures,
		metrics:     m,
		log:         log,
	}
}

// Collection handles the provider's C2B confirmation callback.
// POST /webhooks/collection
func (h *WebhookHandler) Collection(c *gin.Context) {
	start := time.Now()

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("unreadable request body"))
		return
	}
	// Signature mismatch feeds the risk engine instead of rejecting the
	// webhook: money already moved on the provider side.
	authOK := h.signatures.Verify(raw, c.GetHeader("X-Signature"))

	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	var payload dto.CollectionWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := parseShillings(payload.TransAmount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.collections.HandleCollection(c.Request.Context(), ports.CollectionEvent{
		SenderPhone:       payload.MSISDN,
		DeclaredShortCode: payload.BusinessShortCode,
		Reference:         payload.BillRefNumber,
		Amount:            amount,
		ReceiptID:         payload.TransID,
		AuthOK:            authOK,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.ObserveWebhookAck(time.Since(start).Seconds())
	h.log.Info().
		Str("receipt_id", payload.TransID).
		Str("payment_id", result.PaymentID.String()).
		Str("status", string(result.Status)).
		Bool("duplicate", result.Duplicate).
		Msg("collection webhook acknowledged")
	c.JSON(http.StatusOK, dto.WebhookAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// DisbursementResult handles the provider's asynchronous B2C result.
// POST /webhooks/disbursement/result
func (h *WebhookHandler) DisbursementResult(c *gin.Context) {
	var payload dto.DisbursementResult
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	err := h.payouts.HandleProviderResult(c.Request.Context(), ports.ProviderResult{
		OriginatorID:  payload.Result.OriginatorConversationID,
		ResultCode:    payload.Result.ResultCode,
		Description:   payload.Result.ResultDesc,
		ProviderTxnID: payload.Result.TransactionID,
	})
	if err != nil {
		// An unknown originator cannot be fixed by a provider retry, so
		// acknowledge it and leave the trace in the logs.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusNotFound {
			h.log.Warn().
				Str("originator_id", payload.Result.OriginatorConversationID).
				Msg("disbursement result for unknown originator")
			c.JSON(http.StatusOK, dto.WebhookAck{ResultCode: 0, ResultDesc: "Accepted"})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// DisbursementTimeout handles the provider's queue-timeout callback.
// The item stays SENT; the pending result is applied when it arrives or
// the batch is reconciled manually.
// POST /webhooks/disbursement/timeout
func (h *WebhookHandler) DisbursementTimeout(c *gin.Context) {
	var payload dto.DisbursementResult
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	h.log.Warn().
		Str("originator_id", payload.Result.OriginatorConversationID).
		Msg("disbursement request timed out at provider")
	c.JSON(http.StatusOK, dto.WebhookAck{ResultCode: 0, ResultDesc: "Accepted"})
}

// parseShillings converts the provider's decimal amount string to minor
// currency units.
func parseShillings(s string) (int64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	minor := int64(math.Round(f * 100))
	if minor <= 0 {
		return 0, errors.New("non-positive amount")
	}
	return minor, nil
}
