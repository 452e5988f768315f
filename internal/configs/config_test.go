package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// missingEnv - путь к несуществующему .env, чтобы тест не зависел от рабочей директории.
func missingEnv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "real-estate-marketplace", cfg.AppName)
	assert.Equal(t, "8080", cfg.Rest.PORT)
	assert.Equal(t, CatalogSourceMock, cfg.Catalog.Source)
	assert.Equal(t, FavoritesBackendMemory, cfg.Favorites.Backend)
	assert.Equal(t, "real-estate-marketplace", cfg.Favorites.Namespace)
	assert.Equal(t, 200*time.Millisecond, cfg.Favorites.PersistBackoff)
	assert.Equal(t, 30*time.Minute, cfg.Favorites.IdleTTL)
	assert.Equal(t, "favorites_changes", cfg.RabbitMQ.FavoritesExchange)
	assert.False(t, cfg.NeedsDatabase())
	assert.False(t, cfg.FluentBit.Enabled)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("APP_NAME", "marketplace-test")
	t.Setenv("PORT", "9090")
	t.Setenv("CATALOG_SOURCE", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/market")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("FAVORITES_BACKEND", "file")
	t.Setenv("FAVORITES_FILE_PATH", "/tmp/fav.json")
	t.Setenv("FAVORITES_PERSIST_RETRIES", "5")
	t.Setenv("FAVORITES_PERSIST_BACKOFF", "1s")
	t.Setenv("FAVORITES_IDLE_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("MOCK_SIZE", "not-a-number")
	t.Setenv("FLUENTBIT_ENABLED", "true")
	t.Setenv("FLUENTBIT_HOST", "fluent-bit")

	cfg, err := LoadConfig(missingEnv(t))
	require.NoError(t, err)

	assert.Equal(t, "marketplace-test", cfg.AppName)
	assert.Equal(t, "9090", cfg.Rest.PORT)
	assert.Equal(t, CatalogSourcePostgres, cfg.Catalog.Source)
	assert.False(t, cfg.Database.RunMigrations)
	assert.True(t, cfg.NeedsDatabase())
	assert.Equal(t, "/tmp/fav.json", cfg.Favorites.FilePath)
	assert.Equal(t, 5, cfg.Favorites.PersistRetries)
	assert.Equal(t, time.Second, cfg.Favorites.PersistBackoff)
	assert.Equal(t, 5*time.Minute, cfg.Favorites.IdleTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Rest.AllowedOrigins)
	assert.Equal(t, 2.5, cfg.Rest.RateLimitRPS)
	assert.Equal(t, 500, cfg.Catalog.MockSize)
	assert.True(t, cfg.FluentBit.Enabled)
	assert.Equal(t, 24224, cfg.FluentBit.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("postgres without database url", func(t *testing.T) {
		t.Setenv("FAVORITES_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "")
		_, err := LoadConfig(missingEnv(t))
		assert.Error(t, err)
	})

	t.Run("unknown catalog source", func(t *testing.T) {
		t.Setenv("CATALOG_SOURCE", "redis")
		_, err := LoadConfig(missingEnv(t))
		assert.Error(t, err)
	})

	t.Run("unknown favorites backend", func(t *testing.T) {
		t.Setenv("FAVORITES_BACKEND", "s3")
		_, err := LoadConfig(missingEnv(t))
		assert.Error(t, err)
	})
}

func TestLoadConfig_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7070\nMOCK_SEED=7\n"), 0o644))
	// godotenv не перезаписывает уже заданные переменные, поэтому очищаем их через t.Setenv
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")
	t.Setenv("MOCK_SEED", "")
	os.Unsetenv("MOCK_SEED")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Rest.PORT)
	assert.Equal(t, uint64(7), cfg.Catalog.MockSeed)
}
