package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transit-settlement/config"
	"transit-settlement/internal/adapter/provider/daraja"
	pgstorage "transit-settlement/internal/adapter/storage/postgres"
	"transit-settlement/internal/service"
	"transit-settlement/internal/worker"
	"transit-settlement/pkg/logger"
	"transit-settlement/pkg/metrics"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
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

	driver := riverpgxv5.New(pool)

	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("init river migrator")
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		log.Fatal().Err(err).Msg("migrate river schema")
	}

	// Repositories and services the jobs need
	walletRepo := pgstorage.NewWalletRepo(pool)
	ledgerRepo := pgstorage.NewLedgerRepo(pool)
	paymentRepo := pgstorage.NewPaymentRepo(pool)
	alertRepo := pgstorage.NewAlertRepo(pool)
	batchRepo := pgstorage.NewPayoutBatchRepo(pool)
	itemRepo := pgstorage.NewPayoutItemRepo(pool)
	destRepo := pgstorage.NewDestinationRepo(pool)
	auditRepo := pgstorage.NewAuditRepo(pool)
	transactor := pgstorage.NewTransactor(pool)

	m := metrics.New()
	auditSvc := service.NewAuditService(auditRepo, logger.Component(log, "audit"))
	ledgerSvc := service.NewLedgerService(walletRepo, ledgerRepo, transactor, logger.Component(log, "ledger"))
	disburser := daraja.NewClient(cfg.Provider, logger.Component(log, "daraja"))
	payoutSvc := service.NewPayoutService(
		batchRepo, itemRepo, walletRepo, ledgerRepo, destRepo, paymentRepo, alertRepo,
		ledgerSvc, disburser, auditSvc, transactor, m, cfg.Payout, logger.Component(log, "payout"),
	)

	workers := river.NewWorkers()
	river.AddWorker(workers, worker.NewDispatchDueWorker(payoutSvc, logger.Component(log, "dispatch")))
	river.AddWorker(workers, worker.NewAutoDraftWorker(walletRepo, payoutSvc, logger.Component(log, "autodraft")))

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.Worker.MaxWorkers},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.Worker.DispatchInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return worker.DispatchDueArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.Worker.AutoDraftInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return worker.AutoDraftArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: false},
			),
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init river client")
	}

	if err := client.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("start river client")
	}
	log.Info().
		Int("max_workers", cfg.Worker.MaxWorkers).
		Dur("dispatch_interval", cfg.Worker.DispatchInterval).
		Msg("worker running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := client.Stop(stopCtx); err != nil {
		log.Error().Err(err).Msg("forced worker stop")
	}
	log.Info().Msg("worker stopped")
}
