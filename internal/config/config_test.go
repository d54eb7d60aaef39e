package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shopdash.yaml")
	requireNoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	requireNoError(t, err)

	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("expected default addr 0.0.0.0:8080, got %s", cfg.Addr())
	}
	if cfg.Dataset.Path != "shopping_trends.csv" {
		t.Fatalf("expected default dataset path, got %q", cfg.Dataset.Path)
	}
	if cfg.Filter.DefaultAgeMin != 18 || cfg.Filter.DefaultAgeMax != 60 {
		t.Fatalf("expected default ages 18-60, got %d-%d", cfg.Filter.DefaultAgeMin, cfg.Filter.DefaultAgeMax)
	}
	if cfg.Aggregation.HistogramBins != 20 {
		t.Fatalf("expected 20 histogram bins, got %d", cfg.Aggregation.HistogramBins)
	}
	if cfg.Locations.Strategy != "static" {
		t.Fatalf("expected static strategy, got %q", cfg.Locations.Strategy)
	}
	if cfg.Locations.Geocode.TimeoutDuration() != 5*time.Second {
		t.Fatalf("expected 5s geocode timeout, got %s", cfg.Locations.Geocode.TimeoutDuration())
	}
	if cfg.Locations.Geocode.UserAgent != "shopping_trends_app" {
		t.Fatalf("unexpected user agent %q", cfg.Locations.Geocode.UserAgent)
	}
	if cfg.Locations.Geocode.RateLimit != 1 {
		t.Fatalf("expected 1 geocode request per second, got %v", cfg.Locations.Geocode.RateLimit)
	}
	if cfg.Map.Weighted || cfg.Map.DefaultWeight != 1 || cfg.Map.Radius != 100000 {
		t.Fatalf("unexpected map defaults %+v", cfg.Map)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  host: "127.0.0.1"
log:
  level: "debug"
dataset:
  path: "/data/trends.csv"
locations:
  strategy: "geocode"
  geocode:
    timeout: "250ms"
map:
  weighted: true
`)

	cfg, err := Load(path)
	requireNoError(t, err)

	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("expected 127.0.0.1:9090, got %s", cfg.Addr())
	}
	if cfg.Log.Level != "debug" || cfg.Dataset.Path != "/data/trends.csv" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Locations.Strategy != "geocode" || cfg.Locations.Geocode.TimeoutDuration() != 250*time.Millisecond {
		t.Fatalf("unexpected locations config %+v", cfg.Locations)
	}
	// Unset keys keep their defaults.
	if cfg.Locations.Geocode.Endpoint == "" || cfg.Filter.DefaultAgeMax != 60 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if !cfg.Map.Weighted {
		t.Fatalf("expected weighted map")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
dataset:
  path: "/from/file.csv"
`)
	t.Setenv("SHOPDASH_DATASET__PATH", "/from/env.csv")
	t.Setenv("SHOPDASH_SERVER__PORT", "7070")

	cfg, err := Load(path)
	requireNoError(t, err)
	if cfg.Dataset.Path != "/from/env.csv" {
		t.Fatalf("expected env dataset path, got %q", cfg.Dataset.Path)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env port 7070, got %d", cfg.Server.Port)
	}
}

func TestLoad_InvalidConfigFailsStartup(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "port out of range",
			content: "server:\n  port: 70000\n",
			wantErr: "invalid server.port",
		},
		{
			name:    "unknown log level",
			content: "log:\n  level: \"loud\"\n",
			wantErr: "invalid log.level",
		},
		{
			name:    "unknown strategy",
			content: "locations:\n  strategy: \"psychic\"\n",
			wantErr: "invalid locations.strategy",
		},
		{
			name:    "bad timeout",
			content: "locations:\n  geocode:\n    timeout: \"soon\"\n",
			wantErr: "invalid locations.geocode.timeout",
		},
		{
			name:    "negative rate limit",
			content: "locations:\n  geocode:\n    rate_limit: -0.5\n",
			wantErr: "locations.geocode.rate_limit must be >= 0",
		},
		{
			name:    "zero bins",
			content: "aggregation:\n  histogram_bins: 0\n",
			wantErr: "aggregation.histogram_bins must be > 0",
		},
		{
			name:    "inverted default ages",
			content: "filter:\n  default_age_min: 70\n  default_age_max: 20\n",
			wantErr: "filter.default_age_min",
		},
		{
			name:    "negative weight",
			content: "map:\n  default_weight: -1\n",
			wantErr: "map.default_weight must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to load config file") {
		t.Fatalf("expected file load error, got %v", err)
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
