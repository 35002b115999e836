package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"PORT", "STORE_BACKEND", "POSTGRES_URL", "SQLITE_PATH", "MONGO_URI", "MONGO_DATABASE",
	"JWT_SECRET", "TOKEN_TTL", "STATS_SCOPE", "STATS_WINDOW_MONTHS", "AMQP_URL", "AMQP_EXCHANGE",
	"LOG_LEVEL", "LOG_FORMAT", "GIN_MODE",
}

// clearEnv сбрасывает переменные, чтобы окружение машины не влияло на тест.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.StatsWindow)
	assert.True(t, cfg.PerUserScope())
	assert.Empty(t, cfg.AMQPURL)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range configEnv {
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-file\nSTORE_BACKEND=postgres\nPOSTGRES_URL=postgres://localhost/findash\nSTATS_SCOPE=global\nTOKEN_TTL=2h\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range configEnv {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.PerUserScope())
}

func TestLoadCollectsAllErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "mongo")
	t.Setenv("STATS_SCOPE", "team")
	t.Setenv("PORT", "99999")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET is required")
	assert.Contains(t, msg, "MONGO_URI is required")
	assert.Contains(t, msg, "STATS_SCOPE must be user or global")
	assert.Contains(t, msg, "PORT must be between")
}

func TestLoadRejectsBadDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TOKEN_TTL", "forever")
	t.Setenv("STATS_WINDOW_MONTHS", "x")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOKEN_TTL")
	assert.Contains(t, err.Error(), "STATS_WINDOW_MONTHS")
}

func TestStoreFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("SQLITE_PATH", "/tmp/from-env.db")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := StoreFlags(fs)
	require.NoError(t, fs.Parse([]string{"-backend", "mongo", "-mongo", "mongodb://localhost:27017"}))

	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "findash", cfg.MongoDB)
	assert.Equal(t, "/tmp/from-env.db", cfg.SQLitePath)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("LOG_LEVEL")
	t.Cleanup(func() { os.Unsetenv("LOG_LEVEL") })
	t.Setenv("PORT", "9000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7000\nLOG_LEVEL=debug\n"), 0o600))
	require.NoError(t, LoadDotEnv(path))

	assert.Equal(t, "9000", os.Getenv("PORT"))
	assert.Equal(t, "debug", os.Getenv("LOG_LEVEL"))
}
