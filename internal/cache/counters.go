package cache

import (
	"context"
	"sync"
	"time"
)

// counterSweepInterval — как часто удаляются истекшие счетчики
const counterSweepInterval = time.Minute

type counter struct {
	value     int64
	expiresAt time.Time // нулевое время: без TTL
}

// MemoryCounters — счетчики с TTL в памяти процесса.
// Семантика повторяет INCR/EXPIRE/TTL Redis; используется для rate limit без Redis.
type MemoryCounters struct {
	mu        sync.Mutex
	counters  map[string]*counter
	nextSweep time.Time
	now       Clock
}

// NewMemoryCounters создает хранилище счетчиков; nil clock означает time.Now
func NewMemoryCounters(clock Clock) *MemoryCounters {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCounters{counters: make(map[string]*counter), now: clock}
}

// Increment увеличивает счетчик на 1; истекший счетчик начинается заново
func (m *MemoryCounters) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweep(now)

	c, ok := m.counters[key]
	if !ok || c.expired(now) {
		c = &counter{}
		m.counters[key] = c
	}
	c.value++
	return c.value, nil
}

// Expire задает время жизни счетчика; для отсутствующего ключа ничего не делает
func (m *MemoryCounters) Expire(_ context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if c, ok := m.counters[key]; ok && !c.expired(now) {
		c.expiresAt = now.Add(expiration)
	}
	return nil
}

// TTL возвращает оставшееся время жизни: -2 для отсутствующего ключа, -1 без TTL (как в Redis)
func (m *MemoryCounters) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	c, ok := m.counters[key]
	switch {
	case !ok || c.expired(now):
		return -2, nil
	case c.expiresAt.IsZero():
		return -1, nil
	default:
		return c.expiresAt.Sub(now), nil
	}
}

// Len возвращает число хранимых счетчиков, включая еще не удаленные истекшие
func (m *MemoryCounters) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.counters)
}

func (m *MemoryCounters) sweep(now time.Time) {
	if now.Before(m.nextSweep) {
		return
	}
	for k, c := range m.counters {
		if c.expired(now) {
			delete(m.counters, k)
		}
	}
	m.nextSweep = now.Add(counterSweepInterval)
}

func (c *counter) expired(now time.Time) bool {
	return !c.expiresAt.IsZero() && !now.Before(c.expiresAt)
}
