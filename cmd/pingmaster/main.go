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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/pingmaster-dev/pingmaster/db"
	"github.com/pingmaster-dev/pingmaster/internal/auth"
	"github.com/pingmaster-dev/pingmaster/internal/logging"
	"github.com/pingmaster-dev/pingmaster/internal/monitor"
	"github.com/pingmaster-dev/pingmaster/internal/notifications"
	"github.com/pingmaster-dev/pingmaster/internal/repo/gormrepo"
	"github.com/pingmaster-dev/pingmaster/internal/reports"
	"github.com/pingmaster-dev/pingmaster/internal/router"
	"github.com/pingmaster-dev/pingmaster/internal/scheduler"
	"github.com/pingmaster-dev/pingmaster/internal/types"
	"github.com/pingmaster-dev/pingmaster/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	logger, err := logging.NewLogger(logDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := auth.InitJWTSecret(); err != nil {
		logger.Fatal("JWT secret not configured", zap.Error(err))
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL environment variable is not set")
	}

	if err := db.ConnectDatabase(dsn); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.MigrateDatabase(); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	store := gormrepo.NewStore(db.DB)
	hub := ws.NewHub(logger)
	notifier := notifications.NewNotifier(logger, store)
	prober := monitor.NewHTTPProber(logger, types.RequestTimeout)

	checker := monitor.NewChecker(logger, store, prober, notifier)
	checker.SetBroadcaster(hub)

	reporter := reports.NewReporter(logger, db.DB, notifier, os.Getenv("REPORT_WEBHOOK_URL"))

	sched := scheduler.New(logger)
	sched.AddJob("monitoring", types.CheckInterval, func(ctx context.Context) error {
		return checker.CheckServices(ctx, time.Now().UTC())
	})
	sched.AddJob("daily_report", 24*time.Hour, reporter.Run)
	sched.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
		logger.Info("PORT not set, defaulting to 3000")
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router.NewRouter(sched, hub),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("PingMaster started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
