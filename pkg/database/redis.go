package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yourusername/updrill-api/internal/config"
)

const redisPingTimeout = 3 * time.Second

// RedisOptions собирает redis.UniversalOptions из конфигурации.
// Режим выбирается по Mode: single (по умолчанию), sentinel или cluster.
func RedisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	addrs := cfg.Addrs
	if len(addrs) == 0 && cfg.Addr != "" {
		addrs = []string{cfg.Addr}
	}
	if len(addrs) == 0 {
		return nil, "", fmt.Errorf("redis: addrs or addr must be set")
	}

	mode := cfg.Mode
	if mode == "" {
		mode = "single"
	}

	opts := &redis.UniversalOptions{
		Addrs:           addrs,
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoff) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoff) * time.Millisecond,
	}

	switch mode {
	case "single":
		if len(addrs) > 1 {
			// UniversalClient превратился бы в кластерный клиент
			opts.Addrs = addrs[:1]
		}
	case "sentinel":
		if cfg.MasterName == "" {
			return nil, "", fmt.Errorf("redis: sentinel mode requires master_name")
		}
		opts.MasterName = cfg.MasterName
	case "cluster":
		if cfg.DB != 0 {
			return nil, "", fmt.Errorf("redis: cluster mode supports only db 0")
		}
	default:
		return nil, "", fmt.Errorf("redis: unsupported mode %q", mode)
	}
	return opts, mode, nil
}

// NewUniversalRedisClient подключается к Redis и проверяет соединение
func NewUniversalRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	opts, mode, err := RedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis (mode: %s, addrs: %v): %w", mode, opts.Addrs, err)
	}

	log.Printf("Redis initialized - mode: %s, addrs: %v", mode, opts.Addrs)
	return client, nil
}
