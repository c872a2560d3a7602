// Package cache содержит кеш ответа списка дриллов.
//
// Кеш одно-слотовый по смыслу: хранится только канонический ответ для
// параметров по умолчанию. Чтения могут отставать от каталога не более чем на TTL.
package cache

import (
	"context"
	"time"

	"github.com/yourusername/updrill-api/internal/domain/entity"
)

// DefaultListingKey — ключ канонического списка дриллов
const DefaultListingKey = "drills:list:default"

// ListingCache — кеш ответа списка дриллов
type ListingCache interface {
	// Get возвращает закешированный ответ, если он не устарел
	Get(ctx context.Context, key string) (*entity.DrillListing, bool)
	// Set сохраняет ответ на ttl
	Set(ctx context.Context, key string, value *entity.DrillListing, ttl time.Duration)
}

// Clock возвращает текущее время; подменяется в тестах
type Clock func() time.Time
