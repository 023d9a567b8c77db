package handler

import (
	"qr-wallet-service/internal/adapter/http/middleware"
	redisStore "qr-wallet-service/internal/adapter/storage/redis"
	"qr-wallet-service/internal/core/domain"
	"qr-wallet-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	QRSvc          ports.QRService
	PaymentSvc     ports.PaymentOrderService
	CustTxRepo     ports.CustomerTransactionRepository
	TokenSvc       ports.TokenService
	Currency       string
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
		auth.POST("/admins",
			jwtAuth,
			middleware.RequireRole(domain.RoleSuperAdmin),
			rl("auth_admins"),
			authHandler.CreateAdmin,
		)
	}

	// --- JWT-authenticated routes ---
	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance", rl("dashboard"), walletHandler.GetBalance)
	}

	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.WalletSvc, deps.Currency)
	payments := v1.Group("/payments", jwtAuth)
	{
		payments.POST("/orders", rl("payments"), paymentHandler.CreateOrder)
		payments.POST("/verify", rl("payments"), paymentHandler.VerifyOrder)
		payments.POST("/failure", rl("payments"), paymentHandler.FailOrder)
		payments.GET("", rl("dashboard"), paymentHandler.ListOrders)
		payments.GET("/stats", rl("dashboard"), paymentHandler.GetStats)
	}

	qrHandler := NewQRHandler(deps.QRSvc, deps.CustTxRepo)
	qr := v1.Group("/qr", jwtAuth)
	{
		qr.POST("/generate", rl("qr_generate"), qrHandler.Generate)
		qr.POST("/scan", rl("qr_scan"), qrHandler.Scan)
		qr.PUT("/:id/deactivate", rl("qr_generate"), qrHandler.Deactivate)
		qr.GET("", rl("dashboard"), qrHandler.List)
		qr.GET("/active", rl("dashboard"), qrHandler.ListActive)
		qr.GET("/transactions", rl("dashboard"), qrHandler.ListTransactions)
		qr.GET("/stats", rl("dashboard"), qrHandler.GetStats)
	}

	return r
}
