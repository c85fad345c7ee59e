package handler

import (
	"codemarket/internal/adapter/http/middleware"
	redisStore "codemarket/internal/adapter/storage/redis"
	"codemarket/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc         ports.AuthService
	LedgerSvc       ports.LedgerService
	SettlementSvc   ports.SettlementService
	RequestSvc      ports.PaymentRequestService
	NotificationSvc ports.NotificationService
	CatalogSvc      ports.CatalogService
	ReportingSvc    ports.ReportingService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	Logger          zerolog.Logger
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

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	listingHandler := NewListingHandler(deps.CatalogSvc)
	v1.GET("/listings", rl("browse"), listingHandler.List)
	v1.GET("/listings/:id", rl("browse"), listingHandler.Get)

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.LedgerSvc, deps.RequestSvc)
	purchaseHandler := NewPurchaseHandler(deps.SettlementSvc)
	notificationHandler := NewNotificationHandler(deps.NotificationSvc)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)

	listings := v1.Group("/listings", jwtAuth)
	{
		listings.POST("", rl("account"), listingHandler.Create)
		listings.PUT("/:id", rl("account"), listingHandler.Update)
	}

	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("/balance", rl("account"), walletHandler.GetBalance)
		wallet.POST("/requests", rl("requests"), walletHandler.SubmitRequest)
		wallet.GET("/requests", rl("account"), walletHandler.ListRequests)
	}

	purchases := v1.Group("/purchases", jwtAuth)
	{
		purchases.POST("", rl("purchases"), purchaseHandler.Purchase)
		purchases.GET("", rl("account"), purchaseHandler.ListPurchases)
		purchases.GET("/access/:listing_id", rl("account"), purchaseHandler.CheckAccess)
	}

	notifications := v1.Group("/notifications", jwtAuth)
	{
		notifications.GET("", rl("account"), notificationHandler.List)
		notifications.GET("/unread-count", rl("account"), notificationHandler.UnreadCount)
		notifications.POST("/:id/read", rl("account"), notificationHandler.MarkRead)
		notifications.POST("/read-all", rl("account"), notificationHandler.MarkAllRead)
	}

	dashboard := v1.Group("/dashboard", jwtAuth)
	{
		dashboard.GET("", rl("account"), dashboardHandler.GetDashboard)
	}

	// --- Admin routes (JWT + admin role) ---
	adminHandler := NewAdminHandler(deps.RequestSvc, deps.ReportingSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.AdminOnly())
	{
		admin.GET("/requests", rl("admin"), adminHandler.ListPendingRequests)
		admin.POST("/requests/:id/approve", rl("admin"), adminHandler.ApproveRequest)
		admin.POST("/requests/:id/reject", rl("admin"), adminHandler.RejectRequest)
		admin.GET("/dashboard", rl("admin"), adminHandler.PlatformDashboard)
	}

	return r
}
