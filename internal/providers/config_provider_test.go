package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flighttrack/internal/structures"
)

const testYaml = `
webServer:
  host: 127.0.0.1
  port: 8090
logger:
  level: info
  mode: 0644
  dir: /tmp
storage:
  driver: memory
  timeout: 2s
cache:
  enabled: true
  size: 8
`

func TestNewConfigProvider_LoadsYamlWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYaml), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.Equal(t, path, conf.Path)
	assert.True(t, conf.Debug)
	assert.Equal(t, 8090, conf.WebServer.Port)
	assert.Equal(t, "memory", conf.Storage.Driver)
	assert.Equal(t, 2*time.Second, conf.Storage.Timeout)
	assert.Equal(t, "flight_logs", conf.Storage.Mongo.ArchiveCollection)
	assert.Equal(t, time.Minute, conf.Cache.TTL)
	assert.Equal(t, "flight.archived", conf.Events.Subject)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYaml), 0644))
	t.Setenv("FT_STORAGE_DRIVER", "sqlite")
	t.Setenv("FT_SQLITE_PATH", filepath.Join(t.TempDir(), "flights.db"))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", conf.Storage.Driver)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestNewConfigProvider_ShippedConfig(t *testing.T) {
	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: "../../config.yaml"})
	require.NoError(t, err)

	assert.Equal(t, "memory", conf.Storage.Driver)
	assert.True(t, filepath.IsAbs(conf.Logger.Dir))
	assert.Equal(t, 100, conf.Cache.Size)

	cache := NewCacheProvider(conf, &cacheTestLogger{})
	require.IsType(t, &CacheProvider{}, cache)
	cache.Set("path:UA1", []byte(`{"flightId":"UA1"}`))
	got, ok := cache.Get("path:UA1")
	assert.True(t, ok)
	assert.Equal(t, `{"flightId":"UA1"}`, string(got))
}
