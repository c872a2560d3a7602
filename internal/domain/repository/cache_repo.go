package repository

import (
	"context"
	"time"
)

// CounterRepository — счетчики с временем жизни (rate limit)
type CounterRepository interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	CounterRepository
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
}
