package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qr-wallet-service/config"
	"qr-wallet-service/internal/adapter/gateway"
	httpHandler "qr-wallet-service/internal/adapter/http/handler"
	"qr-wallet-service/internal/adapter/qrimage"
	pgStorage "qr-wallet-service/internal/adapter/storage/postgres"
	redisStorage "qr-wallet-service/internal/adapter/storage/redis"
	"qr-wallet-service/internal/core/ports"
	"qr-wallet-service/internal/service"
	"qr-wallet-service/pkg/logger"
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
		Msg("Starting QR Wallet Service")

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
	userRepo := pgStorage.NewUserRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	qrRepo := pgStorage.NewQRRepo(pool)
	custTxRepo := pgStorage.NewCustomerTxRepo(pool)
	orderRepo := pgStorage.NewPaymentOrderRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize outbound adapters
	paymentGateway := gateway.NewRazorpayGateway(cfg.Gateway, log)
	imgEncoder := qrimage.NewEncoder(0)

	// Initialize business services
	walletSvc := service.NewWalletService(walletRepo, log)
	authSvc := service.NewAuthService(userRepo, walletRepo, hashSvc, tokenSvc, transactor, log)
	qrSvc := service.NewQRService(qrRepo, custTxRepo, walletSvc, encSvc, imgEncoder, transactor, log)
	paymentSvc := service.NewPaymentOrderService(orderRepo, walletSvc, paymentGateway, transactor, cfg.Gateway.Currency, log)

	// Seed the bootstrap superadmin if configured
	if cfg.Bootstrap.SuperadminEmail != "" {
		if err := authSvc.EnsureSuperAdmin(ctx, cfg.Bootstrap.SuperadminName, cfg.Bootstrap.SuperadminEmail, cfg.Bootstrap.SuperadminPassword); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure superadmin account")
		}
	}

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		WalletSvc:      walletSvc,
		QRSvc:          qrSvc,
		PaymentSvc:     paymentSvc,
		CustTxRepo:     custTxRepo,
		TokenSvc:       tokenSvc,
		Currency:       cfg.Gateway.Currency,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
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
