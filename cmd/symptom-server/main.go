package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"symptom-checker/internal/config"
	"symptom-checker/internal/llm"
	"symptom-checker/internal/logging"
	"symptom-checker/internal/server"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spec, err := llm.LoadPromptSpec(cfg.PromptFile)
	if err != nil {
		return err
	}
	diagnoser, err := llm.New(ctx, cfg, spec, logger)
	if err != nil {
		return err
	}
	s, err := server.NewServer(cfg, diagnoser, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("symptom checker listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", cfg.Provider),
			zap.String("check_endpoint", cfg.CheckEndpoint))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.SweepSessions(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
