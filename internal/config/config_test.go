package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func load(t *testing.T, env map[string]string) (Config, error) {
	t.Helper()
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.MapLookuper(env),
	}); err != nil {
		return Config{}, err
	}
	return cfg, cfg.validate()
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t, map[string]string{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("Addr = %q", cfg.Addr)
	}
	if cfg.GridColumns != 16 {
		t.Fatalf("GridColumns = %d", cfg.GridColumns)
	}
	if cfg.BuilderSessionTTL != 2*time.Hour {
		t.Fatalf("BuilderSessionTTL = %v", cfg.BuilderSessionTTL)
	}
	if cfg.DBDSN != "" || cfg.NATSURL != "" {
		t.Fatalf("optional integrations should default to disabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"ADDR":                 ":9090",
		"GRID_COLUMNS":         "12",
		"CORS_ALLOWED_ORIGINS": "https://a.example,https://b.example",
		"BUILDER_SESSION_TTL":  "15m",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.GridColumns != 12 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.BuilderSessionTTL != 15*time.Minute {
		t.Fatalf("BuilderSessionTTL = %v", cfg.BuilderSessionTTL)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero grid", map[string]string{"GRID_COLUMNS": "0"}},
		{"negative rate limit", map[string]string{"REQUEST_RATE_LIMIT": "-5"}},
		{"non-numeric grid", map[string]string{"GRID_COLUMNS": "wide"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(t, tt.env); err == nil {
				t.Fatalf("expected error for %v", tt.env)
			}
		})
	}
}
