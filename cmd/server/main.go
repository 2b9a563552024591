package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wastage/internal/config"
	"github.com/mamadbah2/wastage/internal/repository/draft"
	"github.com/mamadbah2/wastage/internal/scheduler"
	"github.com/mamadbah2/wastage/internal/server/handlers"
	"github.com/mamadbah2/wastage/internal/server/router"
	"github.com/mamadbah2/wastage/internal/service/wastage"
	"github.com/mamadbah2/wastage/pkg/clients/webhook"
	"github.com/mamadbah2/wastage/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	draftRepo, err := draft.NewSQLiteRepository(context.Background(), cfg.Draft.DBPath, baseLogger.Named("repo.draft"))
	if err != nil {
		baseLogger.Fatal("failed to init draft repository", zap.Error(err))
	}
	defer func() {
		if err := draftRepo.Close(); err != nil {
			baseLogger.Error("failed to close draft repository", zap.Error(err))
		}
	}()

	webhookClient := webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Timeout)
	form := wastage.NewController(context.Background(), draftRepo, webhookClient, wastage.Options{
		DraftKey:          cfg.Draft.Key,
		StatusRevertDelay: cfg.Form.StatusRevertDelay,
	}, baseLogger.Named("svc.wastage"))

	formHandler := handlers.NewFormHandler(form, baseLogger.Named("handlers.form"))
	engine := router.New(formHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reminder, form, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Request contexts end on shutdown so open event streams close.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	defer cancelRequests()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelRequests)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("webhook", cfg.Webhook.URL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
