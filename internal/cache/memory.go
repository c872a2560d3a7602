package cache

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/updrill-api/internal/domain/entity"
)

// MemorySlot — кеш в памяти процесса с одним слотом.
// Set с другим ключом вытесняет предыдущее значение.
type MemorySlot struct {
	mu        sync.RWMutex
	key       string
	value     *entity.DrillListing
	expiresAt time.Time
	now       Clock
}

// NewMemorySlot создает кеш; nil clock означает time.Now
func NewMemorySlot(clock Clock) *MemorySlot {
	if clock == nil {
		clock = time.Now
	}
	return &MemorySlot{now: clock}
}

// Get возвращает значение, если ключ совпадает и TTL не истек
func (c *MemorySlot) Get(_ context.Context, key string) (*entity.DrillListing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.value == nil || c.key != key {
		return nil, false
	}
	if !c.now().Before(c.expiresAt) {
		return nil, false
	}
	return c.value, true
}

// Set перезаписывает слот
func (c *MemorySlot) Set(_ context.Context, key string, value *entity.DrillListing, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = key
	c.value = value
	c.expiresAt = c.now().Add(ttl)
}
