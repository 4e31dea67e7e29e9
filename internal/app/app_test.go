package app

import (
	"context"
	"path/filepath"
	"testing"

	"shorturl/internal/config"
	"shorturl/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Storage: config.StorageConfig{
			Driver:     driver,
			SQLitePath: filepath.Join(dir, "shorturl.db"),
			BoltPath:   filepath.Join(dir, "shorturl.bolt"),
		},
		App: config.AppConfig{ShortCodeLength: 8, MaxAttempts: 5},
	}
}

func TestNew_Drivers(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverBolt} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			a, err := New(ctx, testConfig(t, driver), logger.Discard())
			require.NoError(t, err)
			defer a.Close()

			id, err := a.Service.Shorten(ctx, "https://example.com/a")
			require.NoError(t, err)
			assert.Len(t, id, 8)

			longURL, err := a.Service.Resolve(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "https://example.com/a", longURL)
			assert.NoError(t, a.Service.Ready(ctx))
		})
	}
}

func TestNew_WithRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	cfg := testConfig(t, config.DriverSQLite)
	cfg.Redis = config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mr.Port()}

	a, err := New(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	id, err := a.Service.Shorten(ctx, "https://example.com/a")
	require.NoError(t, err)
	assert.True(t, mr.Exists("short_urls:"+id))
}

func TestNew_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t, config.DriverSQLite)
	cfg.Redis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: "1"}

	_, err := New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.StorageConfig{Driver: "mongo"})
	assert.Error(t, err)
}
