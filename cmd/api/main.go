package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/arogyacare/arogya-api/internal/config"
	v1 "github.com/arogyacare/arogya-api/internal/handler/v1"
	"github.com/arogyacare/arogya-api/internal/notify"
	"github.com/arogyacare/arogya-api/internal/repository"
	"github.com/arogyacare/arogya-api/internal/service"
	"github.com/arogyacare/arogya-api/pkg/auth"
	"github.com/arogyacare/arogya-api/pkg/database"
	"github.com/arogyacare/arogya-api/pkg/logger"
	"github.com/arogyacare/arogya-api/pkg/metrics"
	"github.com/arogyacare/arogya-api/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Best-effort .env loading so local runs pick up values without a
	// real environment; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("arogya")
	if sqlDB, err := db.DB(); err == nil {
		collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
	}

	identityRepo := repository.NewIdentityRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	defer auditSvc.Shutdown()

	var gateway notify.Gateway
	if cfg.SMTP.Configured() {
		gateway = notify.NewSMTPGateway(cfg.SMTP)
	} else {
		log.Warn("no SMTP relay configured, reset codes will only be logged")
		gateway = notify.NewLogGateway(log)
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)
	registrationSvc := service.NewRegistrationService(identityRepo, auditSvc, collector, cfg.Auth, log)
	authSvc := service.NewAuthService(identityRepo, jwtManager, auditSvc, collector, cfg.Auth, log)
	resetSvc := service.NewResetService(identityRepo, gateway, auditSvc, collector, cfg.OTP, log)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	v1.RegisterRoutes(router,
		v1.NewAuthHandler(registrationSvc, authSvc, resetSvc),
		v1.NewIdentityHandler(identityRepo, auditSvc),
		jwtManager,
		collector,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}
