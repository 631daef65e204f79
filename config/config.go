package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	// Server configuration
	Server struct {
		// HTTP listen port
		Port int `env:"PORT" envDefault:"4000"`

		// Path of the GraphQL endpoint
		GraphQLPath string `env:"GRAPHQL_PATH" envDefault:"/"`

		// Per-request deadline in seconds
		RequestTimeout int `env:"REQUEST_TIMEOUT" envDefault:"30"`

		// Allowed CORS origins
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

		// Serve GraphQL Playground on GET requests without a query
		EnablePlayground bool `env:"ENABLE_PLAYGROUND" envDefault:"true"`
	}

	// GraphQL execution limits
	GraphQL struct {
		MaxDepth    int `env:"GRAPHQL_MAX_DEPTH" envDefault:"10"`
		Parallelism int `env:"GRAPHQL_PARALLELISM" envDefault:"4"`
	}

	// Store configuration
	Store struct {
		// One of mongo, sqlite or memory
		Driver string `env:"STORE_DRIVER" envDefault:"mongo"`

		MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://mongo:27017/realestate"`
		MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"realestate"`
		SQLitePath    string `env:"SQLITE_PATH" envDefault:"database/realestate.db"`

		// Connection attempts at startup
		MaxRetries int `env:"STORE_MAX_RETRIES" envDefault:"5"`

		// Delay between attempts in seconds
		RetryDelay int `env:"STORE_RETRY_DELAY" envDefault:"2"`
	}

	// Flat tax applied to the last sale price
	TaxRate float64 `env:"TAX_RATE" envDefault:"0.015"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads an optional .env file and parses the environment.
// Variables already set take precedence over the file.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("PORT must be positive, got %d", c.Server.Port)
	}
	if c.Store.MaxRetries <= 0 {
		return fmt.Errorf("STORE_MAX_RETRIES must be positive, got %d", c.Store.MaxRetries)
	}
	if c.Store.RetryDelay < 0 {
		return fmt.Errorf("STORE_RETRY_DELAY must not be negative, got %d", c.Store.RetryDelay)
	}
	if c.GraphQL.MaxDepth <= 0 {
		return fmt.Errorf("GRAPHQL_MAX_DEPTH must be positive, got %d", c.GraphQL.MaxDepth)
	}
	if c.GraphQL.Parallelism <= 0 {
		return fmt.Errorf("GRAPHQL_PARALLELISM must be positive, got %d", c.GraphQL.Parallelism)
	}
	if c.TaxRate < 0 {
		return fmt.Errorf("TAX_RATE must not be negative, got %v", c.TaxRate)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Store.RetryDelay) * time.Second
}
