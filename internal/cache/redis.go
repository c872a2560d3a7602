package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// RedisSlot хранит список дриллов в Redis, общий для всех инстансов API.
// Ошибки Redis не пробрасываются: промах кеша означает чтение из хранилища.
type RedisSlot struct {
	repo repository.CacheRepository
}

// NewRedisSlot создает кеш поверх репозитория кеша
func NewRedisSlot(repo repository.CacheRepository) *RedisSlot {
	return &RedisSlot{repo: repo}
}

// Get читает ответ из Redis
func (c *RedisSlot) Get(ctx context.Context, key string) (*entity.DrillListing, bool) {
	var listing entity.DrillListing
	if err := c.repo.GetJSON(ctx, key, &listing); err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[DrillCache] Ошибка чтения ключа %s из Redis: %v", key, err)
		}
		return nil, false
	}
	return &listing, true
}

// Set сохраняет ответ в Redis с TTL
func (c *RedisSlot) Set(ctx context.Context, key string, value *entity.DrillListing, ttl time.Duration) {
	if err := c.repo.SetJSON(ctx, key, value, ttl); err != nil {
		log.Printf("[DrillCache] Ошибка записи ключа %s в Redis: %v", key, err)
	}
}
