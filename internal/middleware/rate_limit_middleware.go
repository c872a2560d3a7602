package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/updrill-api/internal/domain/repository"
	"github.com/yourusername/updrill-api/internal/metrics"
	"github.com/yourusername/updrill-api/internal/pkg/response"
)

// RateLimitConfig содержит настройки rate limiting
type RateLimitConfig struct {
	// MaxRequests — максимальное количество запросов за Window
	MaxRequests int
	// Window — временное окно для подсчёта запросов
	Window time.Duration
	// KeyPrefix — префикс ключей счетчиков
	KeyPrefix string
}

// DefaultGlobalRateLimitConfig — глобальный лимит: 100 запросов за 5 минут с одного IP
func DefaultGlobalRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 100,
		Window:      5 * time.Minute,
		KeyPrefix:   "rl:global",
	}
}

// RateLimiter создаёт middleware для rate limiting на основе счетчиков в кеше
type RateLimiter struct {
	counters repository.CounterRepository
}

// NewRateLimiter создает новый RateLimiter
func NewRateLimiter(counters repository.CounterRepository) *RateLimiter {
	return &RateLimiter{counters: counters}
}

// LimitByIP ограничивает количество запросов по IP (без привязки к path)
func (rl *RateLimiter) LimitByIP(cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		key := fmt.Sprintf("%s:%s", cfg.KeyPrefix, clientIP)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.counters.Increment(ctx, key)
		if err != nil {
			// При ошибке хранилища счетчиков пропускаем запрос (fail-open), но логируем
			log.Printf("[RateLimiter] Counter error for key %s: %v. Allowing request (fail-open).", key, err)
			c.Next()
			return
		}

		// Если это первый запрос в окне — устанавливаем TTL
		if count == 1 {
			if err := rl.counters.Expire(ctx, key, cfg.Window); err != nil {
				log.Printf("[RateLimiter] Failed to set TTL for key %s: %v", key, err)
			}
		}

		remaining := cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		retryAfter := int(cfg.Window.Seconds())
		if ttl, err := rl.counters.TTL(ctx, key); err == nil && ttl > 0 {
			retryAfter = int(ttl.Seconds())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(retryAfter))

		if int(count) > cfg.MaxRequests {
			log.Printf("[RateLimiter] Rate limit exceeded for IP=%s. Count=%d, Limit=%d",
				clientIP, count, cfg.MaxRequests)
			metrics.RateLimited.Inc()

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.Abort(c, http.StatusTooManyRequests, response.CodeRateLimitExceeded,
				"Too many requests from this IP, please try again later.")
			return
		}

		c.Next()
	}
}
