package handler

import (
	"strconv"

	"transit-settlement/internal/adapter/http/dto"
	"transit-settlement/internal/adapter/http/middleware"
	"transit-settlement/internal/core/domain"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/apperror"
	"transit-settlement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler onboards wallets and manages payout destinations.
type WalletHandler struct {
	registration ports.RegistrationService
	reporting    ports.ReportingService
}

func NewWalletHandler(registration ports.RegistrationService, reporting ports.ReportingService) *WalletHandler {
	return &WalletHandler{registration: registration, reporting: reporting}
}

// Register creates a wallet with a freshly minted routing code.
// POST /api/v1/wallets
func (h *WalletHandler) Register(c *gin.Context) {
	var req dto.RegisterWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid owner_id"))
		return
	}
	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid operator_id"))
		return
	}

	wallet, err := h.registration.RegisterWallet(c.Request.Context(), ports.RegisterWalletRequest{
		OwnerType:  domain.OwnerType(req.OwnerType),
		OwnerID:    ownerID,
		OperatorID: operatorID,
		Kind:       domain.WalletKind(req.Kind),
		Currency:   req.Currency,
		Plate:      req.Plate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromWallet(wallet))
}

// Statement returns a paginated ledger view for one wallet.
// GET /api/v1/wallets/:id/statement?page=1&page_size=20
func (h *WalletHandler) Statement(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid wallet id"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	stmt, err := h.reporting.WalletStatement(c.Request.Context(), walletID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromStatement(stmt))
}

// UpsertDestination registers or replaces a settlement destination.
// POST /api/v1/destinations
func (h *WalletHandler) UpsertDestination(c *gin.Context) {
	var req dto.UpsertDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid operator_id"))
		return
	}

	dest := &domain.PayoutDestination{
		OperatorID: operatorID,
		WalletKind: domain.WalletKind(req.WalletKind),
		Type:       domain.DestinationType(req.Type),
		Reference:  req.Reference,
	}
	if err := h.registration.UpsertDestination(c.Request.Context(), dest); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dest)
}

// VerifyDestination marks a destination verified after an out-of-band
// check.
// POST /api/v1/destinations/verify
func (h *WalletHandler) VerifyDestination(c *gin.Context) {
	var req dto.VerifyDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		response.Error(c, apperror.Validation("invalid operator_id"))
		return
	}

	actor := c.GetString(middleware.CtxUserID)
	if err := h.registration.VerifyDestination(c.Request.Context(), operatorID, domain.WalletKind(req.WalletKind), actor); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"verified": true})
}
