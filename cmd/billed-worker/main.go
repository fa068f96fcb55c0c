package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"billed/internal/amqp"
	"billed/internal/cli"
	applog "billed/internal/log"
	"billed/internal/sheets"
	gsheet "billed/internal/sheets/google"
	memsheet "billed/internal/sheets/memory"
	"billed/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentWorker)

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)

	var review sheets.ReviewWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		review = client
		logger.Info("Google Sheets review log enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		review = memsheet.NewReviewLog(cfg.GoogleReviewSheetName)
		logger.Warn("GOOGLE_SPREADSHEET_ID not set, review rows are kept in memory only")
	}

	w := worker.NewReviewWorker(repo, review, cfg.ReviewBatchSize)

	logger.Info("Performing startup review check")
	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup review check failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx, cfg.ReviewInterval)
	})

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			_ = repo.Close()
			os.Exit(1)
		}
		consumer = client

		g.Go(func() error {
			return client.ConsumeBillSubmitted(gctx, w.HandleSubmittedMessage)
		})
		logger.Info("Consuming submitted bills", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP_URL not set, relying on the periodic sweep only", "interval", cfg.ReviewInterval)
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
	}

	cli.RunCleanup(logger, 10*time.Second, func(context.Context) error {
		var errs error
		if consumer != nil {
			errs = consumer.Close()
		}
		return errors.Join(errs, repo.Close())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
