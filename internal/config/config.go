package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the finboard service.
type Config struct {
	Addr              string        `env:"ADDR,default=:8080"`
	GridColumns       int           `env:"GRID_COLUMNS,default=16"`
	CatalogPath       string        `env:"CATALOG_PATH"`
	DBDSN             string        `env:"DB_DSN"`
	NATSURL           string        `env:"NATS_URL"`
	OTLPEndpoint      string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins    []string      `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	RequestRateLimit  int           `env:"REQUEST_RATE_LIMIT,default=100"`
	BuilderSessionTTL time.Duration `env:"BUILDER_SESSION_TTL,default=2h"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.GridColumns < 1 {
		return fmt.Errorf("GRID_COLUMNS must be positive, got %d", c.GridColumns)
	}
	if c.RequestRateLimit < 1 {
		return fmt.Errorf("REQUEST_RATE_LIMIT must be positive, got %d", c.RequestRateLimit)
	}
	return nil
}
