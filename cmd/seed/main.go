package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourusername/updrill-api/internal/config"
	"github.com/yourusername/updrill-api/internal/repository/storage"
	"github.com/yourusername/updrill-api/internal/seed"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env не найден, используются переменные окружения: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	n, err := seed.Apply(ctx, store.Drills, time.Now().UTC())
	if err != nil {
		log.Printf("[Seed] Ошибка: %v", err)
		store.Close()
		os.Exit(1)
	}
	log.Printf("[Seed] Загружено дриллов: %d", n)
}
