package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Драйверы хранилища
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Бэкенды кеша каталога
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Events    EventsConfig    `mapstructure:"events"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"readTimeout"`
	WriteTimeout   int      `mapstructure:"writeTimeout"`
	RequestTimeout int      `mapstructure:"requestTimeout"` // секунды на обработку одного запроса
	FrontendURL    string   `mapstructure:"frontendURL"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	CookieSecure   bool     `mapstructure:"cookieSecure"`
}

// RequestTimeoutDuration возвращает таймаут обработки запроса
func (s ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// DatabaseConfig содержит настройки хранилища.
// Driver выбирает реализацию репозиториев: "mongo" (по умолчанию) или "postgres".
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"`
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	MigrationsPath string `mapstructure:"migrationsPath"`
	MongoURI       string `mapstructure:"mongoURI"`
	MongoDatabase  string `mapstructure:"mongoDatabase"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Enabled: подключаться ли к Redis вообще. Без Redis недоступны кеш "redis" и rate limit.
	Enabled bool `mapstructure:"enabled"`

	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс

	// KeyPrefix добавляется ко всем ключам кеша
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// CacheConfig содержит настройки кеша списка дриллов
type CacheConfig struct {
	Backend    string `mapstructure:"backend"`
	TTLSeconds int    `mapstructure:"ttlSeconds"`
}

// TTL возвращает время жизни записи кеша
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// JWTConfig содержит настройки сессионного токена
type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpirationHrs int    `mapstructure:"expirationHrs"`
	CookieName    string `mapstructure:"cookieName"`
}

// OAuthConfig содержит настройки OAuth-провайдеров
type OAuthConfig struct {
	Google GoogleOAuthConfig `mapstructure:"google"`
}

// GoogleOAuthConfig содержит учетные данные Google OAuth
type GoogleOAuthConfig struct {
	ClientID     string `mapstructure:"clientId"`
	ClientSecret string `mapstructure:"clientSecret"`
	CallbackURL  string `mapstructure:"callbackURL"`
}

// Configured сообщает, заданы ли учетные данные
func (g GoogleOAuthConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// RateLimitConfig содержит настройки глобального ограничения запросов по IP
type RateLimitConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxRequests int  `mapstructure:"maxRequests"`
	WindowSec   int  `mapstructure:"windowSec"`
}

// EventsConfig содержит настройки публикации доменных событий в RabbitMQ
type EventsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	AMQPURL  string `mapstructure:"amqpURL"`
	Exchange string `mapstructure:"exchange"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения (используется golang-migrate в cmd/migrate)
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "5000")
	vip.SetDefault("server.readTimeout", 10)
	vip.SetDefault("server.writeTimeout", 30)
	vip.SetDefault("server.requestTimeout", 5)
	vip.SetDefault("server.frontendURL", "http://localhost:3000")
	vip.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})

	vip.SetDefault("database.driver", DriverMongo)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrationsPath", "migrations")
	vip.SetDefault("database.mongoURI", "mongodb://localhost:27017")
	vip.SetDefault("database.mongoDatabase", "updrill")

	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.keyPrefix", "updrill:")

	vip.SetDefault("cache.backend", CacheBackendMemory)
	vip.SetDefault("cache.ttlSeconds", 60)

	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("jwt.cookieName", "updrill_session")

	vip.SetDefault("oauth.google.callbackURL", "http://localhost:5000/auth/google/callback")

	vip.SetDefault("rateLimit.enabled", true)
	vip.SetDefault("rateLimit.maxRequests", 100)
	vip.SetDefault("rateLimit.windowSec", 300)

	vip.SetDefault("events.exchange", "updrill.events")
}

func bindEnv(vip *viper.Viper) {
	// Server
	vip.BindEnv("server.port", "PORT")
	vip.BindEnv("server.requestTimeout", "SERVER_REQUEST_TIMEOUT")
	vip.BindEnv("server.frontendURL", "FRONTEND_URL")
	vip.BindEnv("server.allowedOrigins", "ALLOWED_ORIGINS")
	vip.BindEnv("server.cookieSecure", "COOKIE_SECURE")

	// Database
	vip.BindEnv("database.driver", "DATABASE_DRIVER")
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrationsPath", "DATABASE_MIGRATIONS_PATH")
	vip.BindEnv("database.mongoURI", "MONGODB_URI")
	vip.BindEnv("database.mongoDatabase", "MONGODB_DATABASE")

	// Redis
	vip.BindEnv("redis.enabled", "REDIS_ENABLED")
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Cache
	vip.BindEnv("cache.backend", "CACHE_BACKEND")
	vip.BindEnv("cache.ttlSeconds", "CACHE_TTL_SECONDS")

	// JWT / сессия
	vip.BindEnv("jwt.secret", "SESSION_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")

	// OAuth
	vip.BindEnv("oauth.google.clientId", "GOOGLE_CLIENT_ID")
	vip.BindEnv("oauth.google.clientSecret", "GOOGLE_CLIENT_SECRET")
	vip.BindEnv("oauth.google.callbackURL", "GOOGLE_CALLBACK_URL")

	// Rate limit
	vip.BindEnv("rateLimit.enabled", "RATE_LIMIT_ENABLED")
	vip.BindEnv("rateLimit.maxRequests", "RATE_LIMIT_MAX_REQUESTS")
	vip.BindEnv("rateLimit.windowSec", "RATE_LIMIT_WINDOW_SEC")

	// Events
	vip.BindEnv("events.enabled", "EVENTS_ENABLED")
	vip.BindEnv("events.amqpURL", "AMQP_URL")
	vip.BindEnv("events.exchange", "EVENTS_EXCHANGE")
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	vip := viper.New() // отдельный экземпляр, без глобального состояния

	setDefaults(vip)
	bindEnv(vip)

	if configPath != "" {
		vip.SetConfigFile(configPath)
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// ALLOWED_ORIGINS приходит одной строкой через запятую
	cfg.Server.AllowedOrigins = splitList(cfg.Server.AllowedOrigins)
	cfg.Redis.Addrs = splitList(cfg.Redis.Addrs)

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Database Driver: %s", cfg.Database.Driver)
		log.Printf("Cache Backend: %s (TTL %ds)", cfg.Cache.Backend, cfg.Cache.TTLSeconds)
		log.Printf("Redis Enabled: %t, Mode: %s", cfg.Redis.Enabled, cfg.Redis.Mode)
		log.Printf("Google OAuth Configured: %t", cfg.OAuth.Google.Configured())
		log.Printf("Rate Limit: enabled=%t, %d req / %ds", cfg.RateLimit.Enabled, cfg.RateLimit.MaxRequests, cfg.RateLimit.WindowSec)
		log.Printf("Events Enabled: %t", cfg.Events.Enabled)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры и согласованность секций
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("session secret is required (check SESSION_SECRET env var)")
	}
	if c.JWT.ExpirationHrs <= 0 {
		return fmt.Errorf("jwt.expirationHrs must be positive")
	}

	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURI == "" || c.Database.MongoDatabase == "" {
			return fmt.Errorf("mongo configuration (uri, database) is incomplete (check MONGODB_URI, MONGODB_DATABASE env vars)")
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
			return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("cache backend %q requires redis.enabled", CacheBackendRedis)
		}
	default:
		return fmt.Errorf("unsupported cache backend: %q", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttlSeconds must be positive")
	}

	if c.RateLimit.Enabled && c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("rateLimit.maxRequests must be positive")
	}
	if c.Events.Enabled && c.Events.AMQPURL == "" {
		return fmt.Errorf("events are enabled but AMQP_URL is empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.requestTimeout must be positive")
	}
	return nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
