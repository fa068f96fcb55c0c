package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"billed/internal/backend"
	"billed/internal/cli"
	apphttp "billed/internal/http"
	applog "billed/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Initialized backend", "backend", cfg.DataBackend)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Store:          result.Backend,
		Attachments:    result.Attachments,
		Ready:          result.Ready,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SessionKey:     []byte(cfg.SessionSecret),
	})
	if err != nil {
		logger.Error("Failed to build server", applog.FieldError, err)
		os.Exit(1)
	}
	srv.MaxHeaderBytes = 1 << 16

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting billed server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		}
	}

	cli.RunCleanup(logger, 30*time.Second, func(ctx context.Context) error {
		err := srv.Shutdown(ctx)
		if result.Cleanup != nil {
			err = errors.Join(err, result.Cleanup())
		}
		return err
	})
}
