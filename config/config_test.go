package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"PORT", "GRAPHQL_PATH", "REQUEST_TIMEOUT", "CORS_ORIGINS", "ENABLE_PLAYGROUND",
	"GRAPHQL_MAX_DEPTH", "GRAPHQL_PARALLELISM", "LOG_LEVEL", "STORE_DRIVER",
	"MONGODB_URI", "MONGODB_DATABASE", "SQLITE_PATH", "STORE_MAX_RETRIES",
	"STORE_RETRY_DELAY", "TAX_RATE",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "/", cfg.Server.GraphQLPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Server.EnablePlayground)
	assert.Equal(t, 10, cfg.GraphQL.MaxDepth)
	assert.Equal(t, 4, cfg.GraphQL.Parallelism)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://mongo:27017/realestate", cfg.Store.MongoURI)
	assert.Equal(t, "realestate", cfg.Store.MongoDatabase)
	assert.Equal(t, "database/realestate.db", cfg.Store.SQLitePath)
	assert.Equal(t, 5, cfg.Store.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay())
	assert.Equal(t, 0.015, cfg.TaxRate)
	assert.Equal(t, ":4000", cfg.Addr())
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://estate.example")
	t.Setenv("ENABLE_PLAYGROUND", "false")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("TAX_RATE", "0.02")

	cfg, err := LoadConfig(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:3000", "https://estate.example"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Server.EnablePlayground)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 0.02, cfg.TaxRate)
}

func TestLoadConfigReadsEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Cleanup(func() { os.Unsetenv("GRAPHQL_PARALLELISM") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GRAPHQL_PARALLELISM=9\nSTORE_DRIVER=sqlite\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.GraphQL.Parallelism)
	// the environment wins over the file
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
}

func TestLoadConfigRejectsMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "http")

	_, err := LoadConfig(noEnvFile(t))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{TaxRate: 0.015}
		cfg.Server.Port = 4000
		cfg.GraphQL.MaxDepth = 10
		cfg.GraphQL.Parallelism = 4
		cfg.Store.Driver = DriverMemory
		cfg.Store.MaxRetries = 5
		cfg.Store.RetryDelay = 2
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero retry delay", mutate: func(c *Config) { c.Store.RetryDelay = 0 }},
		{name: "zero tax rate", mutate: func(c *Config) { c.TaxRate = 0 }},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "postgres" }, wantErr: true},
		{name: "zero port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "zero retries", mutate: func(c *Config) { c.Store.MaxRetries = 0 }, wantErr: true},
		{name: "negative delay", mutate: func(c *Config) { c.Store.RetryDelay = -1 }, wantErr: true},
		{name: "zero depth", mutate: func(c *Config) { c.GraphQL.MaxDepth = 0 }, wantErr: true},
		{name: "zero parallelism", mutate: func(c *Config) { c.GraphQL.Parallelism = 0 }, wantErr: true},
		{name: "negative tax rate", mutate: func(c *Config) { c.TaxRate = -0.01 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
