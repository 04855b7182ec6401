package handler

import (
	"transit-settlement/internal/adapter/http/middleware"
	"transit-settlement/internal/core/ports"
	"transit-settlement/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps carries everything the router needs.
type RouterDeps struct {
	Collections  ports.CollectionService
	Payouts      ports.PayoutService
	Registration ports.RegistrationService
	Reporting    ports.ReportingService
	Tokens       ports.TokenService
	Signatures   ports.SignatureService
	Payments     ports.PaymentRepository
	Alerts       ports.AlertRepository
	Metrics      *metrics.Metrics
	Checkers     []ports.HealthChecker
	Log          zerolog.Logger
}

// SetupRouter wires middleware and routes into a gin engine.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Log))
	router.Use(middleware.Recovery(deps.Log))

	webhooks := NewWebhookHandler(deps.Collections, deps.Payouts, deps.Signatures, deps.Metrics, deps.Log)
	payouts := NewPayoutHandler(deps.Payouts)
	wallets := NewWalletHandler(deps.Registration, deps.Reporting)
	ops := NewOpsHandler(deps.Collections, deps.Payments, deps.Alerts)

	router.GET("/health", HealthCheck(deps.Checkers...))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Provider callbacks authenticate by payload signature, not JWT.
	hooks := router.Group("/webhooks")
	{
		hooks.POST("/collection", webhooks.Collection)
		hooks.POST("/disbursement/result", webhooks.DisbursementResult)
		hooks.POST("/disbursement/timeout", webhooks.DisbursementTimeout)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth(deps.Tokens))
	{
		api.POST("/wallets", wallets.Register)
		api.GET("/wallets/:id/statement", wallets.Statement)
		api.POST("/destinations", wallets.UpsertDestination)
		api.POST("/destinations/verify", wallets.VerifyDestination)

		api.POST("/payouts", payouts.Draft)
		api.GET("/payouts/:id", payouts.Get)
		api.POST("/payouts/:id/submit", payouts.Submit)

		api.GET("/payments/:id", ops.GetPayment)
		api.POST("/payments/:id/resolve", ops.ResolvePayment)
		api.GET("/alerts", ops.ListAlerts)

		// Money leaves the platform past this point.
		finance := api.Group("")
		finance.Use(middleware.RequireRole("finance", "admin"))
		{
			finance.POST("/payouts/:id/approve", payouts.Approve)
			finance.POST("/payouts/:id/process", payouts.Process)
		}
	}

	return router
}
