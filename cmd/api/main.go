package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codemarket/config"
	httpHandler "codemarket/internal/adapter/http/handler"
	smtpMailer "codemarket/internal/adapter/smtp"
	pgStorage "codemarket/internal/adapter/storage/postgres"
	redisStorage "codemarket/internal/adapter/storage/redis"
	"codemarket/internal/core/ports"
	"codemarket/internal/service"
	"codemarket/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Code Market API")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	listingRepo := pgStorage.NewListingRepo(pool)
	purchaseRepo := pgStorage.NewPurchaseRepo(pool)
	requestRepo := pgStorage.NewPaymentRequestRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	unreadCache := redisStorage.NewUnreadCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	mailer := smtpMailer.NewMailer(smtpMailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Enabled:  cfg.SMTP.Enabled,
	}, log)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)
	ledgerSvc := service.NewLedgerService(accountRepo, cfg.Settlement.BalanceRetries, log)
	notificationSvc := service.NewNotificationService(notificationRepo, unreadCache, log)
	settlementSvc := service.NewSettlementService(
		accountRepo,
		listingRepo,
		purchaseRepo,
		transactor,
		notificationSvc,
		mailer,
		cfg.Settlement.AccessTTL,
		log,
	)
	requestSvc := service.NewPaymentRequestService(
		requestRepo,
		accountRepo,
		transactor,
		notificationSvc,
		mailer,
		log,
	)
	catalogSvc := service.NewCatalogService(listingRepo, log)
	reportingSvc := service.NewReportingService(accountRepo, purchaseRepo, requestRepo, notificationSvc)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		LedgerSvc:       ledgerSvc,
		SettlementSvc:   settlementSvc,
		RequestSvc:      requestSvc,
		NotificationSvc: notificationSvc,
		CatalogSvc:      catalogSvc,
		ReportingSvc:    reportingSvc,
		TokenSvc:        tokenSvc,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		Logger:          log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
