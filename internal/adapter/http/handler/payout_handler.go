package handler

import (
	"transit-settlement/internal/adapter/http/dto"
	"transit-settlement/internal/adapter/http/middleware"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"
	"transit-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PayoutHandler drives the payout batch lifecycle.
type PayoutHandler struct {
	payouts ports.PayoutService
}

func NewPayoutHandler(payouts ports.PayoutService) *PayoutHandler {
	return &PayoutHandler{payouts: payouts}
}

// Draft creates payout batches for a settlement period.
// POST /api/v1/payouts
func (h *PayoutHandler) Draft(c *gin.Context) {
	var req dto.DraftBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid operator_id"))
		return
	}

	kinds := make([]domain.WalletKind, 0, len(req.Kinds))
	for _, k := range req.Kinds {
		kinds = append(kinds, domain.WalletKind(k))
	}

	result, err := h.payouts.Draft(c.Request.Context(), ports.DraftRequest{
		OperatorID:  operatorID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Kinds:       kinds,
		RequestedBy: c.GetString(middleware.CtxUserID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.DraftBatchResponse{
		BatchesCreated: result.BatchesCreated,
		ItemsCreated:   result.ItemsCreated,
		ItemsBlocked:   result.ItemsBlocked,
	}
	if result.BatchID != nil {
		id := result.BatchID.String()
		resp.BatchID = &id
	}
	response.Created(c, resp)
}

// Submit moves a DRAFT batch to SUBMITTED.
// POST /api/v1/payouts/:id/submit
func (h *PayoutHandler) Submit(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid batch id"))
		return
	}

	if err := h.payouts.Submit(c.Request.Context(), batchID, c.GetString(middleware.CtxUserID)); err != nil {
		response.Error(c, err)
		return
	}
	h.getBatch(c, batchID)
}

// Approve moves a SUBMITTED batch to APPROVED after the readiness
// checks pass.
// POST /api/v1/payouts/:id/approve
func (h *PayoutHandler) Approve(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid batch id"))
		return
	}

	if err := h.payouts.Approve(c.Request.Context(), batchID, c.GetString(middleware.CtxUserID)); err != nil {
		response.Error(c, err)
		return
	}
	h.getBatch(c, batchID)
}

// Process starts dispatching an APPROVED batch.
// POST /api/v1/payouts/:id/process
func (h *PayoutHandler) Process(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid batch id"))
		return
	}

	result, err := h.payouts.Process(c.Request.Context(), batchID, c.GetString(middleware.CtxUserID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DispatchResponse{
		Dispatched: result.Dispatched,
		Retried:    result.Retried,
		Failed:     result.Failed,
	})
}

// Get returns a batch with its items.
// GET /api/v1/payouts/:id
func (h *PayoutHandler) Get(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid batch id"))
		return
	}
	h.getBatch(c, batchID)
}

func (h *PayoutHandler) getBatch(c *gin.Context, batchID uuid.UUID) {
	view, err := h.payouts.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromBatchView(view))
}
