package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transit-settlement/config"
	"transit-settlement/internal/adapter/http/handler"
	"transit-settlement/internal/adapter/provider/daraja"
	pgstorage "transit-settlement/internal/adapter/storage/postgres"
	redisstorage "transit-settlement/internal/adapter/storage/redis"
	"transit-settlement/internal/core/ports"
	"transit-settlement/internal/service"
	"transit-settlement/pkg/logger"
	"transit-settlement/pkg/metrics"

	"github.com/rs/cors"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgstorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	redisClient, err := redisstorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	// Repositories
	walletRepo := pgstorage.NewWalletRepo(pool)
	aliasRepo := pgstorage.NewAliasRepo(pool)
	sequenceRepo := pgstorage.NewSequenceRepo(pool)
	ledgerRepo := pgstorage.NewLedgerRepo(pool)
	paymentRepo := pgstorage.NewPaymentRepo(pool)
	alertRepo := pgstorage.NewAlertRepo(pool)
	batchRepo := pgstorage.NewPayoutBatchRepo(pool)
	itemRepo := pgstorage.NewPayoutItemRepo(pool)
	destRepo := pgstorage.NewDestinationRepo(pool)
	auditRepo := pgstorage.NewAuditRepo(pool)
	transactor := pgstorage.NewTransactor(pool)

	receiptCache := redisstorage.NewReceiptCache(redisClient)
	disburser := daraja.NewClient(cfg.Provider, logger.Component(log, "daraja"))

	m := metrics.New()

	// Services
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))
	ledgerSvc := service.NewLedgerService(walletRepo, ledgerRepo, transactor, logger.Component(log, "ledger"))
	aliasSvc := service.NewAliasService(aliasRepo, transactor, logger.Component(log, "alias"))
	allocator := service.NewCodeAllocator(sequenceRepo, alertRepo, transactor, cfg.Codec.Prefixes, logger.Component(log, "allocator"))
	riskSvc := service.NewRiskService(paymentRepo, alertRepo, transactor, cfg.Risk, logger.Component(log, "risk"))
	collectionSvc := service.NewCollectionService(
		paymentRepo, ledgerRepo, aliasSvc, riskSvc, ledgerSvc,
		receiptCache, auditSvc, transactor, m, cfg, logger.Component(log, "collection"),
	)
	payoutSvc := service.NewPayoutService(
		batchRepo, itemRepo, walletRepo, ledgerRepo, destRepo, paymentRepo, alertRepo,
		ledgerSvc, disburser, auditSvc, transactor, m, cfg.Payout, logger.Component(log, "payout"),
	)
	registrationSvc := service.NewRegistrationService(
		walletRepo, destRepo, allocator, aliasSvc, auditSvc, logger.Component(log, "registration"),
	)
	reportingSvc := service.NewReportingService(walletRepo, ledgerRepo)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	signatureSvc := service.NewHMACSignatureService(cfg.Provider.WebhookSecret)

	router := handler.SetupRouter(handler.RouterDeps{
		Collections:  collectionSvc,
		Payouts:      payoutSvc,
		Registration: registrationSvc,
		Reporting:    reportingSvc,
		Tokens:       tokenSvc,
		Signatures:   signatureSvc,
		Payments:     paymentRepo,
		Alerts:       alertRepo,
		Metrics:      m,
		Checkers: []ports.HealthChecker{
			pgstorage.NewHealthCheck(pool),
			redisstorage.NewHealthCheck(redisClient),
		},
		Log: logger.Component(log, "http"),
	})

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID", "X-Signature"},
		AllowCredentials: false,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      corsWrapper.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("api server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
