package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/yourusername/updrill-api/internal/config"
)

// Управление схемой PostgreSQL: up, down [N], force V, version.
// Для драйвера mongo схема не нужна, индексы создаются при старте API.
func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config/config.yaml"), "path to config file")
	steps := flag.Int("steps", 1, "number of migrations to roll back for 'down'")
	version := flag.Int("version", -1, "version for 'force'")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Файл .env не найден, используются переменные окружения: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		log.Fatalf("Миграции применимы только к драйверу %q (текущий: %q)", config.DriverPostgres, cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.Database.MigrationsPath, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	cmd := flag.Arg(0)
	switch cmd {
	case "", "up":
		err = m.Up()
	case "down":
		err = m.Steps(-*steps)
	case "force":
		if *version < 0 {
			log.Fatal("force requires -version")
		}
		fmt.Printf("Forcing migration version to %d to clean dirty state...\n", *version)
		err = m.Force(*version)
	case "version":
		v, dirty, verr := m.Version()
		if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
			log.Fatal(verr)
		}
		fmt.Printf("version=%d dirty=%t\n", v, dirty)
		return
	default:
		log.Fatalf("unknown command %q (expected up, down, force, version)", cmd)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration %s failed: %v", cmd, err)
	}
	fmt.Printf("Migration %s: OK\n", cmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
