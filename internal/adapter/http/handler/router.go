package handler

import (
	"catalystwells-core/internal/adapter/http/middleware"
	redisStore "catalystwells-core/internal/adapter/storage/redis"
	"catalystwells-core/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc         ports.WalletService
	OAuthSvc          ports.OAuthService
	TokenSvc          ports.TokenService
	SessionCookieName string
	RateLimitStore    *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers    []ports.HealthChecker
	AuditSvc          ports.AuditService // nil = audit logging disabled
	Logger            zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

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

	sessionAuth := middleware.SessionAuth(deps.TokenSvc, deps.SessionCookieName, deps.Logger)
	optionalSession := middleware.OptionalSession(deps.TokenSvc, deps.SessionCookieName)

	// --- Wallet (session-authenticated) ---
	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := r.Group("/api/v1/wallet", sessionAuth)
	{
		wallet.GET("", rl("wallet_read"), walletHandler.GetBalances)
		wallet.POST("/send", rl("wallet"), walletHandler.Send)
	}

	// --- OAuth authorization endpoint ---
	// GET runs with an optional session: anonymous visitors get a login
	// redirect from the service instead of a 401. POST requires a session.
	oauthHandler := NewOAuthHandler(deps.OAuthSvc)
	oauth := r.Group("/oauth")
	{
		oauth.GET("/authorize", optionalSession, rl("oauth_authorize"), oauthHandler.Authorize)
		oauth.POST("/authorize", sessionAuth, rl("oauth_authorize"), oauthHandler.Decide)
	}

	return r
}
