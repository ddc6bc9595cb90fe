// Package main is the entry point for the showroom background worker.
// It runs the reservation maintenance sweeps: expiring overdue
// allotments and closing stale waiting-list entries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"showroom/internal/config"
	"showroom/internal/core/clock"
	"showroom/internal/domain/allotment"
	"showroom/internal/domain/waitinglist"
	"showroom/internal/infrastructure/numerator"
	"showroom/internal/infrastructure/storage/postgres"
	"showroom/internal/infrastructure/storage/postgres/reservation_repo"
	"showroom/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log = log.WithComponent("worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting showroom worker")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DB.DSN))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	defer auditService.Close()

	numeratorService := numerator.New(pool.Pool)
	clk := clock.System()

	allotmentSvc := allotment.NewService(
		reservation_repo.NewAllotmentRepo(txManager),
		numeratorService, txManager, clk, auditService)
	waitingListSvc := waitinglist.NewService(
		reservation_repo.NewWaitingListRepo(txManager),
		numeratorService, txManager, clk, auditService)

	sweeper := &sweeper{
		allotments:  allotmentSvc,
		waitingList: waitingListSvc,
		staleGrace:  cfg.Reservation.StaleGrace,
		batchSize:   cfg.Reservation.SweepBatchSize,
		log:         log,
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Reservation.SweepSchedule, func() {
		sweeper.run(ctx)
	}); err != nil {
		log.Fatalw("invalid sweep schedule",
			"schedule", cfg.Reservation.SweepSchedule, "error", err)
	}

	scheduler.Start()
	log.Infow("sweep scheduled", "schedule", cfg.Reservation.SweepSchedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// Wait for a running sweep to finish.
	<-scheduler.Stop().Done()
	log.Info("worker stopped")
}

type sweeper struct {
	allotments  *allotment.Service
	waitingList *waitinglist.Service
	staleGrace  time.Duration
	batchSize   int
	log         *logger.Logger
}

func (s *sweeper) run(ctx context.Context) {
	expired, err := s.allotments.ExpireOverdue(ctx, s.batchSize)
	if err != nil {
		s.log.Errorw("allotment expiry sweep failed", "error", err)
	} else if expired > 0 {
		s.log.Infow("expired overdue allotments", "count", expired)
	}

	closed, err := s.waitingList.ExpireStale(ctx, s.staleGrace, s.batchSize)
	if err != nil {
		s.log.Errorw("waiting-list stale sweep failed", "error", err)
	} else if closed > 0 {
		s.log.Infow("closed stale waiting-list entries", "count", closed)
	}
}
