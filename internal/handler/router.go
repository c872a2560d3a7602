package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/updrill-api/internal/middleware"
	"github.com/yourusername/updrill-api/internal/pkg/response"
)

// Handlers — набор обработчиков API
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	User    *UserHandler
	Drill   *DrillHandler
	Attempt *AttemptHandler
}

// RouterConfig — параметры роутера
type RouterConfig struct {
	AllowedOrigins []string
	Production     bool
	RequestTimeout time.Duration
	// RateLimiter == nil отключает глобальный лимит
	RateLimiter     *middleware.RateLimiter
	RateLimitConfig middleware.RateLimitConfig
}

// NewRouter собирает маршруты API
func NewRouter(cfg RouterConfig, authMiddleware *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production: не доверяем прокси, в development: доверяем localhost
	trusted := []string{"127.0.0.1", "::1"}
	if cfg.Production {
		trusted = nil
	}
	if err := router.SetTrustedProxies(trusted); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match"},
		ExposeHeaders:    []string{"Content-Length", "ETag", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if cfg.RateLimiter != nil {
		router.Use(cfg.RateLimiter.LimitByIP(cfg.RateLimitConfig))
	}
	router.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Вход через Google и состояние сессии
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/google", h.Auth.GoogleLogin)
		authGroup.GET("/google/callback", h.Auth.GoogleCallback)
		authGroup.GET("/logout", h.Auth.Logout)
		authGroup.GET("/status", authMiddleware.OptionalAuth(), h.Auth.Status)
		authGroup.GET("/config", h.Auth.Config)
	}

	api := router.Group("/api")
	{
		api.GET("/health", h.Health.Health)
		api.GET("/me", authMiddleware.RequireAuth(), h.User.GetMe)

		// Публичный каталог
		drills := api.Group("/drills")
		{
			drills.GET("", h.Drill.ListDrills)
			drills.GET("/:id", middleware.ExtractSlugParam("id", "drillID"), h.Drill.GetDrill)
		}

		// Попытки доступны только владельцу
		attempts := api.Group("/attempts")
		attempts.Use(authMiddleware.RequireAuth())
		{
			attempts.POST("", h.Attempt.SubmitAttempt)
			attempts.GET("", h.Attempt.ListAttempts)
			attempts.GET("/stats", h.Attempt.GetStats)
			attempts.GET("/export", h.Attempt.ExportAttempts)
			attempts.GET("/:id", middleware.ExtractUUIDParam("id", "attemptID"), h.Attempt.GetAttempt)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		response.Abort(c, http.StatusNotFound, "NOT_FOUND",
			fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path))
	})

	return router
}
