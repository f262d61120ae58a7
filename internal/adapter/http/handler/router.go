package handler

import (
	"remitchat/internal/adapter/http/middleware"
	redisStore "remitchat/internal/adapter/storage/redis"
	"remitchat/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	DirectorySvc    ports.DirectoryService
	ChatSvc         ports.ChatService
	PaymentSvc      ports.PaymentService
	VerificationSvc ports.VerificationService
	TokenSvc        ports.TokenService
	RateLimitStore  *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers  []ports.HealthChecker
	AuditSvc        ports.AuditService // nil = audit logging disabled
	Logger          zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(256 << 10)) // cipher payloads dominate request size

	// Audit logging (after response)
	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Swagger documentation
	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

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

	// API v1 routes — everything requires a bearer token; identity is
	// minted by the external auth subsystem.
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/api/v1", jwtAuth)

	directoryHandler := NewDirectoryHandler(deps.DirectorySvc)
	keys := v1.Group("/keys")
	{
		keys.PUT("", rl("keys"), directoryHandler.PublishKey)
		keys.GET("/:userID", directoryHandler.LookupKey)
	}

	chatHandler := NewChatHandler(deps.ChatSvc)
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)
	threads := v1.Group("/threads")
	{
		threads.POST("", rl("threads"), chatHandler.OpenThread)
		threads.GET("/:threadID/messages", chatHandler.GetHistory)
		threads.POST("/:threadID/messages", rl("messages"), chatHandler.AppendMessage)
		threads.POST("/:threadID/report", rl("report"), chatHandler.ReportThread)
		threads.POST("/:threadID/requests/:requestID/pay", rl("pay"), paymentHandler.Pay)
		threads.POST("/:threadID/requests/:requestID/cancel", paymentHandler.Cancel)
	}

	verificationHandler := NewVerificationHandler(deps.VerificationSvc)
	verification := v1.Group("/verification")
	{
		verification.POST("/codes", rl("issue_code"), verificationHandler.IssueCode)
	}

	return r
}
