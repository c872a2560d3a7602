package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/yourusername/updrill-api/internal/cache"
	"github.com/yourusername/updrill-api/internal/config"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	"github.com/yourusername/updrill-api/internal/event"
	"github.com/yourusername/updrill-api/internal/handler"
	"github.com/yourusername/updrill-api/internal/middleware"
	redisRepo "github.com/yourusername/updrill-api/internal/repository/redis"
	"github.com/yourusername/updrill-api/internal/repository/storage"
	"github.com/yourusername/updrill-api/internal/service"
	"github.com/yourusername/updrill-api/pkg/auth"
	"github.com/yourusername/updrill-api/pkg/auth/manager"
	"github.com/yourusername/updrill-api/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env не найден, используются переменные окружения: %v", err)
	}

	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Printf("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	// Redis дает общий для всех инстансов кеш списка и счетчики rate limit
	var sharedCache repository.CacheRepository
	if cfg.Redis.Enabled {
		redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer closeRedis(redisClient)

		cacheRepo, err := redisRepo.NewCacheRepo(redisClient, cfg.Redis.KeyPrefix)
		if err != nil {
			log.Printf("Failed to create cache repository: %v", err)
			os.Exit(1)
		}
		sharedCache = cacheRepo
	}

	// Validate гарантирует, что для backend redis клиент Redis включен
	var listingCache cache.ListingCache = cache.NewMemorySlot(nil)
	if cfg.Cache.Backend == config.CacheBackendRedis {
		listingCache = cache.NewRedisSlot(sharedCache)
		log.Println("[Cache] Кеш списка дриллов: Redis")
	}

	var publisher event.Publisher = event.NoopPublisher{}
	if cfg.Events.Enabled {
		eventPublisher, err := event.NewEventPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			// События не критичны для работы API
			log.Printf("[Events] Failed to connect to RabbitMQ, events are disabled: %v", err)
		} else {
			publisher = eventPublisher
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}()

	// Сессии
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to create JWT service: %v", err)
		os.Exit(1)
	}
	tokenManager := manager.NewTokenManager(cfg.JWT.CookieName, jwtService.Expiration(), cfg.Server.CookieSecure)

	// Сервисы
	userService := service.NewUserService(store.Users)
	authService := service.NewAuthService(cfg.OAuth.Google, userService, jwtService)
	drillService := service.NewDrillService(store.Drills, listingCache, cfg.Cache.TTL())
	attemptService := service.NewAttemptService(store.Attempts, store.Drills, publisher)

	if !authService.Configured() {
		log.Println("Warning: Google OAuth credentials are not set, /auth/google will return OAUTH_NOT_CONFIGURED")
	}

	routerCfg := handler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Production:     gin.Mode() == gin.ReleaseMode,
		RequestTimeout: cfg.Server.RequestTimeoutDuration(),
	}
	if cfg.RateLimit.Enabled {
		var counters repository.CounterRepository = cache.NewMemoryCounters(nil)
		if sharedCache != nil {
			counters = sharedCache
		} else {
			log.Println("[RateLimiter] Redis отключен, счетчики rate limit хранятся в памяти процесса")
		}
		routerCfg.RateLimiter = middleware.NewRateLimiter(counters)
		routerCfg.RateLimitConfig = middleware.RateLimitConfig{
			MaxRequests: cfg.RateLimit.MaxRequests,
			Window:      time.Duration(cfg.RateLimit.WindowSec) * time.Second,
			KeyPrefix:   middleware.DefaultGlobalRateLimitConfig().KeyPrefix,
		}
	}

	router := handler.NewRouter(routerCfg,
		middleware.NewAuthMiddlewareWithManager(jwtService, tokenManager),
		handler.Handlers{
			Health:  handler.NewHealthHandler(cfg.Database.Driver),
			Auth:    handler.NewAuthHandler(authService, userService, tokenManager, cfg.Server.FrontendURL),
			User:    handler.NewUserHandler(userService),
			Drill:   handler.NewDrillHandler(drillService),
			Attempt: handler.NewAttemptHandler(attemptService),
		})

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}

func closeRedis(client redis.UniversalClient) {
	if err := client.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}
}
