package handler

import (
	"strconv"

	"transit-settlement/internal/adapter/http/dto"
	"transit-settlement/internal/adapter/http/middleware"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"
	"transit-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OpsHandler exposes the manual review surface: quarantined payments
// and the alert feed.
type OpsHandler struct {
	collections ports.CollectionService
	payments    ports.PaymentRepository
	alerts      ports.AlertRepository
}

func NewOpsHandler(collections ports.CollectionService, payments ports.PaymentRepository, alerts ports.AlertRepository) *OpsHandler {
	return &OpsHandler{collections: collections, payments: payments, alerts: alerts}
}

// GetPayment returns one inbound payment with its risk assessment.
// GET /api/v1/payments/:id
func (h *OpsHandler) GetPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment id"))
		return
	}

	payment, err := h.payments.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	if payment == nil {
		response.Error(c, apperror.ErrNotFound("payment"))
		return
	}

	response.OK(c, dto.FromPayment(payment))
}

// ResolvePayment applies an operator decision to a quarantined payment.
// POST /api/v1/payments/:id/resolve
func (h *OpsHandler) ResolvePayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid payment id"))
		return
	}

	var req dto.ResolvePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	actor := c.GetString(middleware.CtxUserID)
	payment, err := h.collections.ResolveQuarantine(c.Request.Context(), paymentID, ports.QuarantineAction(req.Action), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayment(payment))
}

// ListAlerts returns the most recent ops alerts.
// GET /api/v1/alerts?limit=50
func (h *OpsHandler) ListAlerts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	alerts, err := h.alerts.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	resp := make([]dto.AlertResponse, 0, len(alerts))
	for i := range alerts {
		resp = append(resp, dto.FromAlert(&alerts[i]))
	}
	response.OK(c, resp)
}
