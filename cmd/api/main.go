package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalystwells-core/config"
	httpHandler "catalystwells-core/internal/adapter/http/handler"
	pgStorage "catalystwells-core/internal/adapter/storage/postgres"
	redisStorage "catalystwells-core/internal/adapter/storage/redis"
	"catalystwells-core/internal/core/ports"
	"catalystwells-core/internal/service"
	"catalystwells-core/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("catalystwells-core", cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting CatalystWells core services")

	if cfg.Session.Secret == "" {
		log.Fatal().Msg("CW_SESSION_SECRET is required")
	}

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	profileRepo := pgStorage.NewProfileRepo(pool)
	transferRepo := pgStorage.NewTransferRepo(pool)
	idempotencyRepo := pgStorage.NewIdempotencyRepo(pool)
	securityLogRepo := pgStorage.NewSecurityLogRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	achievementRepo := pgStorage.NewAchievementRepo(pool)
	auditRepo := pgStorage.NewAuditRepo(pool)
	clientRepo := pgStorage.NewOAuthClientRepo(pool)
	codeRepo := pgStorage.NewAuthCodeRepo(pool)
	grantRepo := pgStorage.NewGrantRepo(pool)
	scopeRepo := pgStorage.NewScopeRepo(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize services
	tokenSvc := service.NewJWTTokenService(cfg.Session.Secret, cfg.Session.Expiry, cfg.Session.Issuer)
	auditSvc := service.NewAuditService(auditRepo, log)
	walletSvc := service.NewWalletService(
		walletRepo,
		profileRepo,
		transferRepo,
		idempotencyRepo,
		idempotencyCache,
		securityLogRepo,
		notificationRepo,
		achievementRepo,
		auditSvc,
		log,
	)
	oauthSvc := service.NewOAuthService(clientRepo, codeRepo, grantRepo, scopeRepo, auditSvc, cfg.OAuth.LoginURL, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthChecker(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:         walletSvc,
		OAuthSvc:          oauthSvc,
		TokenSvc:          tokenSvc,
		SessionCookieName: cfg.Session.CookieName,
		RateLimitStore:    rateLimitStore,
		HealthCheckers:    []ports.HealthChecker{pgHealth, redisHealth},
		AuditSvc:          auditSvc,
		Logger:            log,
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
