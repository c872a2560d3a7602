package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Параметры пула соединений PostgreSQL
const (
	pgMaxOpenConns    = 25
	pgMaxIdleConns    = 10
	pgConnMaxLifetime = time.Hour
	pgConnectAttempts = 5
	pgConnectBackoff  = 2 * time.Second
)

// NewPostgresDB открывает пул соединений и дожидается доступности базы.
// При старте в docker-compose база может подняться позже API, поэтому ping повторяется.
func NewPostgresDB(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(pgMaxOpenConns)
	sqlDB.SetMaxIdleConns(pgMaxIdleConns)
	sqlDB.SetConnMaxLifetime(pgConnMaxLifetime)

	for attempt := 1; ; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = sqlDB.PingContext(pingCtx)
		cancel()
		if err == nil {
			break
		}
		if attempt == pgConnectAttempts {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("postgres is unreachable after %d attempts: %w", attempt, err)
		}
		log.Printf("PostgreSQL недоступен (попытка %d/%d): %v", attempt, pgConnectAttempts, err)
		select {
		case <-ctx.Done():
			_ = sqlDB.Close()
			return nil, ctx.Err()
		case <-time.After(pgConnectBackoff):
		}
	}

	log.Println("PostgreSQL initialized")
	return db, nil
}

// MigrateDB применяет все миграции "up" из каталога migrationsPath
func MigrateDB(db *gorm.DB, migrationsPath string) error {
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("не удалось получить *sql.DB из *gorm.DB: %w", err)
	}

	driver, err := migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
	if err != nil {
		return fmt.Errorf("не удалось создать драйвер postgres для migrate: %w", err)
	}

	m, err := migrateV4.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrateV4.ErrNoChange):
		log.Println("Схема актуальна, миграций нет")
	case err != nil:
		return fmt.Errorf("ошибка применения миграций из %s: %w", migrationsPath, err)
	default:
		version, _, _ := m.Version()
		log.Printf("Миграции применены, версия схемы: %d", version)
	}
	return nil
}
