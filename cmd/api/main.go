package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remitchat/config"
	"remitchat/internal/adapter/chain"
	httpHandler "remitchat/internal/adapter/http/handler"
	"remitchat/internal/adapter/notify"
	pgStorage "remitchat/internal/adapter/storage/postgres"
	redisStorage "remitchat/internal/adapter/storage/redis"
	"remitchat/internal/core/ports"
	"remitchat/internal/service"
	"remitchat/pkg/logger"
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
		Msg("Starting RemitChat")

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
	keyRepo := pgStorage.NewPublicKeyRepo(pool)
	threadRepo := pgStorage.NewThreadRepo(pool)
	msgRepo := pgStorage.NewMessageRepo(pool)
	reqRepo := pgStorage.NewPaymentRequestRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	reportRepo := pgStorage.NewReportRepo(pool)
	auditRepo := pgStorage.NewAuditRepository(pool)

	// Initialize Redis stores
	codeStore := redisStorage.NewCodeStore(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// External gateways
	chainClient := chain.NewClient(cfg.Chain, log)
	notifyClient := notify.NewClient(cfg.Notify, log)

	// Initialize services
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)
	directorySvc := service.NewDirectoryService(keyRepo, notifyClient, log)
	chatSvc := service.NewChatService(threadRepo, msgRepo, reqRepo, reportRepo, log)
	verificationSvc := service.NewVerificationService(codeStore, notifyClient, notifyClient, log)
	paymentSvc := service.NewPaymentService(
		threadRepo,
		reqRepo,
		txRepo,
		chainClient,
		chainClient,
		verificationSvc,
		auditSvc,
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		DirectorySvc:    directorySvc,
		ChatSvc:         chatSvc,
		PaymentSvc:      paymentSvc,
		VerificationSvc: verificationSvc,
		TokenSvc:        tokenSvc,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:        auditSvc,
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
