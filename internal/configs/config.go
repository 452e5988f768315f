package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CatalogSourcePostgres = "postgres"
	CatalogSourceMock     = "mock"

	FavoritesBackendPostgres = "postgres"
	FavoritesBackendFile     = "file"
	FavoritesBackendMemory   = "memory"
)

type DBconfig struct {
	URL           string
	RunMigrations bool
}

type RESTconfig struct {
	PORT           string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type CatalogConfig struct {
	Source   string // postgres | mock
	MockSeed uint64
	MockSize int
}

type FavoritesConfig struct {
	Backend        string // postgres | file | memory
	FilePath       string
	Namespace      string
	PersistRetries int
	PersistBackoff time.Duration
	// IdleTTL - через сколько простоя набор пользователя выгружается из памяти.
	IdleTTL time.Duration
}

type RabbitMQConfig struct {
	URL               string // пусто - синхронизация только внутри процесса
	FavoritesExchange string
}

type MetricsConfig struct {
	Enabled bool
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Database     DBconfig
	Rest         RESTconfig
	Catalog      CatalogConfig
	Favorites    FavoritesConfig
	RabbitMQ     RabbitMQConfig
	Metrics      MetricsConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// NeedsDatabase - нужен ли пул PostgreSQL при такой конфигурации.
func (c *AppConfig) NeedsDatabase() bool {
	return c.Catalog.Source == CatalogSourcePostgres || c.Favorites.Backend == FavoritesBackendPostgres
}

// LoadConfig загружает конфигурацию из .env (если файл есть) и переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using environment only.\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "real-estate-marketplace")

	cfg.Rest.PORT = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	cfg.Rest.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", 20)
	cfg.Rest.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", 40)

	cfg.Catalog.Source = strings.ToLower(getEnvAsString("CATALOG_SOURCE", CatalogSourceMock))
	switch cfg.Catalog.Source {
	case CatalogSourcePostgres, CatalogSourceMock:
	default:
		return nil, fmt.Errorf("unsupported CATALOG_SOURCE %q", cfg.Catalog.Source)
	}
	cfg.Catalog.MockSeed = uint64(getEnvAsInt("MOCK_SEED", 42))
	cfg.Catalog.MockSize = getEnvAsInt("MOCK_SIZE", 500)

	cfg.Favorites.Backend = strings.ToLower(getEnvAsString("FAVORITES_BACKEND", FavoritesBackendMemory))
	switch cfg.Favorites.Backend {
	case FavoritesBackendPostgres, FavoritesBackendFile, FavoritesBackendMemory:
	default:
		return nil, fmt.Errorf("unsupported FAVORITES_BACKEND %q", cfg.Favorites.Backend)
	}
	cfg.Favorites.FilePath = getEnvAsString("FAVORITES_FILE_PATH", "data/favorites.json")
	cfg.Favorites.Namespace = getEnvAsString("FAVORITES_NAMESPACE", cfg.AppName)
	cfg.Favorites.PersistRetries = getEnvAsInt("FAVORITES_PERSIST_RETRIES", 3)
	cfg.Favorites.PersistBackoff = getEnvAsDuration("FAVORITES_PERSIST_BACKOFF", 200*time.Millisecond)
	cfg.Favorites.IdleTTL = getEnvAsDuration("FAVORITES_IDLE_TTL", 30*time.Minute)

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.RunMigrations = getEnvAsBool("RUN_MIGRATIONS", true)
	if cfg.NeedsDatabase() && cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required for postgres catalog or favorites backend")
	}

	cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
	cfg.RabbitMQ.FavoritesExchange = getEnvAsString("FAVORITES_EXCHANGE", "favorites_changes")

	cfg.Metrics.Enabled = getEnvAsBool("METRICS_ENABLED", true)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as duration: %v. Using default value: %s\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsList читает список через запятую. Пустые элементы отбрасываются.
func getEnvAsList(key string, defaultValue []string) []string {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
