package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madkins23/mongo-users/cache"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Options{Environment: map[string]string{}})
	require.NoError(t, err)
	assert.Equal(t, CacheNone, cfg.Cache.Kind)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "users:", cfg.Cache.Redis.Prefix)
	assert.Empty(t, cfg.Mongo.Password)

	conn, err := cfg.Connection()
	require.NoError(t, err)
	assert.Equal(t, "localhost", conn.Host())
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := Load(Options{Environment: map[string]string{
		"MONGO_HOST":                "192.168.1.57",
		"MONGO_REPLICA_SET":         "namasteShard1",
		"MONGO_REPLICA_SET_MEMBERS": "192.168.1.133:27018,192.168.1.116:27018",
		"MONGO_TLS_PEER_NAME":       "192.168.1.57",
		"LOG_CONSOLE":               "debug",
		"CACHE_KIND":                "memory",
		"CACHE_TTL":                 "30s",
	}})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.57", cfg.Mongo.Host)
	assert.Equal(t, "namasteShard1", cfg.Mongo.ReplicaSetName)
	assert.Len(t, cfg.Mongo.ReplicaSetMembers, 2)
	assert.Equal(t, "192.168.1.57", cfg.Mongo.TLS.PeerName)
	assert.Equal(t, "debug", cfg.Log.Console)
	assert.Equal(t, CacheMemory, cfg.Cache.Kind)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
}

func TestLoadYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usermgr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mongo:
  host: 192.168.1.57
  read_preference: secondaryPreferred
  database: test
  table: users
log:
  console: warn
cache:
  kind: redis
  redis:
    addr: localhost:6379
`), 0o600))
	cfg, err := Load(Options{
		YAMLFile:    path,
		Environment: map[string]string{"MONGO_HOST": "ignored.example.com", "MONGO_PORT": "27018"},
	})
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.57", cfg.Mongo.Host)
	assert.Equal(t, "27018", cfg.Mongo.Port)
	assert.Equal(t, "secondaryPreferred", cfg.Mongo.ReadPreference)
	assert.Equal(t, "warn", cfg.Log.Console)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, CacheRedis, cfg.Cache.Kind)
	assert.Equal(t, "localhost:6379", cfg.Cache.Redis.Addr)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("USERMGR_TEST_MONGO_DATABASE=accounts\n"), 0o600))
	t.Setenv("USERMGR_TEST_MONGO_DATABASE", "")
	require.NoError(t, os.Unsetenv("USERMGR_TEST_MONGO_DATABASE"))
	_, err := Load(Options{EnvFile: path})
	require.NoError(t, err)
	assert.Equal(t, "accounts", os.Getenv("USERMGR_TEST_MONGO_DATABASE"))

	_, err = Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadErrors(t *testing.T) {
	for name, environment := range map[string]map[string]string{
		"bad kind":     {"CACHE_KIND": "disk"},
		"bad duration": {"CACHE_TTL": "soon"},
		"no redis":     {"CACHE_KIND": "redis"},
	} {
		_, err := Load(Options{Environment: environment})
		assert.ErrorIs(t, err, ErrLoad, name)
	}

	_, err := Load(Options{Environment: map[string]string{}, YAMLFile: filepath.Join(t.TempDir(), "none.yaml")})
	assert.ErrorIs(t, err, ErrLoad)
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	cfg := &Config{Cache: CacheConfig{Kind: CacheNone}}
	c, closeFn, err := cfg.OpenCache(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, closeFn())

	cfg.Cache.Kind = CacheMemory
	c, closeFn, err = cfg.OpenCache(ctx)
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, c)
	assert.NoError(t, closeFn())
}
