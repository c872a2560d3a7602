// Package storage подключает хранилище, выбранное в конфигурации
package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/updrill-api/internal/config"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	mongoRepo "github.com/yourusername/updrill-api/internal/repository/mongo"
	pgRepo "github.com/yourusername/updrill-api/internal/repository/postgres"
	"github.com/yourusername/updrill-api/pkg/database"
)

// Storage — репозитории выбранного драйвера
type Storage struct {
	Drills   repository.DrillRepository
	Attempts repository.AttemptRepository
	Users    repository.UserRepository
	closeFn  func()
}

// Close закрывает подключение к базе
func (s *Storage) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// Open подключается к MongoDB (по умолчанию) или PostgreSQL и готовит схему
func Open(ctx context.Context, cfg *config.Config) (*Storage, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg)
	case config.DriverMongo, "":
		return openMongo(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Storage, error) {
	db, err := database.NewPostgresDB(ctx, cfg.Database.PostgresConnectionString())
	if err != nil {
		return nil, err
	}
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		return nil, err
	}
	log.Println("[Storage] Используется PostgreSQL")

	return &Storage{
		Drills:   pgRepo.NewDrillRepo(db),
		Attempts: pgRepo.NewAttemptRepo(db),
		Users:    pgRepo.NewUserRepo(db),
		closeFn: func() {
			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Printf("[Storage] Ошибка закрытия PostgreSQL: %v", err)
				}
			}
		},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Storage, error) {
	client, db, err := database.NewMongoDatabase(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase)
	if err != nil {
		return nil, err
	}

	drills := mongoRepo.NewDrillRepo(db)
	attempts := mongoRepo.NewAttemptRepo(db)
	users := mongoRepo.NewUserRepo(db)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []struct {
		name string
		init func(context.Context) error
	}{
		{"drills", drills.InitializeIndexes},
		{"attempts", attempts.InitializeIndexes},
		{"users", users.InitializeIndexes},
	}
	for _, idx := range indexes {
		if err := idx.init(indexCtx); err != nil {
			database.DisconnectMongo(client)
			return nil, fmt.Errorf("failed to create indexes for %s: %w", idx.name, err)
		}
	}
	log.Println("[Storage] Используется MongoDB")

	return &Storage{
		Drills:   drills,
		Attempts: attempts,
		Users:    users,
		closeFn:  func() { database.DisconnectMongo(client) },
	}, nil
}
