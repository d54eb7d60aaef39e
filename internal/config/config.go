package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SHOPDASH_"

// Config is the top-level configuration of the dashboard server.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Log         LogConfig         `koanf:"log"`
	Dataset     DatasetConfig     `koanf:"dataset"`
	Filter      FilterConfig      `koanf:"filter"`
	Aggregation AggregationConfig `koanf:"aggregation"`
	Locations   LocationsConfig   `koanf:"locations"`
	Map         MapConfig         `koanf:"map"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug | info | warn | error
}

type DatasetConfig struct {
	Path string `koanf:"path"`
}

// FilterConfig holds the age range used when a request does not specify one.
type FilterConfig struct {
	DefaultAgeMin int `koanf:"default_age_min"`
	DefaultAgeMax int `koanf:"default_age_max"`
}

type AggregationConfig struct {
	HistogramBins int `koanf:"histogram_bins"`
}

type LocationsConfig struct {
	Strategy string        `koanf:"strategy"` // static | geocode
	Geocode  GeocodeConfig `koanf:"geocode"`
}

type GeocodeConfig struct {
	Endpoint  string  `koanf:"endpoint"`
	UserAgent string  `koanf:"user_agent"`
	Timeout   string  `koanf:"timeout"`
	RateLimit float64 `koanf:"rate_limit"` // requests per second, 0 = unlimited
}

// TimeoutDuration parses Timeout. Validate guarantees it parses.
func (g GeocodeConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(g.Timeout)
	return d
}

type MapConfig struct {
	Weighted      bool    `koanf:"weighted"`
	DefaultWeight float64 `koanf:"default_weight"`
	Radius        float64 `koanf:"radius"`
	Zoom          float64 `koanf:"zoom"`
	Pitch         float64 `koanf:"pitch"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (must be debug, info, warn or error)", c.Log.Level)
	}
	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if c.Filter.DefaultAgeMin > c.Filter.DefaultAgeMax {
		return fmt.Errorf("filter.default_age_min %d > filter.default_age_max %d",
			c.Filter.DefaultAgeMin, c.Filter.DefaultAgeMax)
	}
	if c.Aggregation.HistogramBins <= 0 {
		return fmt.Errorf("aggregation.histogram_bins must be > 0")
	}
	switch c.Locations.Strategy {
	case "static":
	case "geocode":
		if strings.TrimSpace(c.Locations.Geocode.Endpoint) == "" {
			return fmt.Errorf("locations.geocode.endpoint is required for the geocode strategy")
		}
		if strings.TrimSpace(c.Locations.Geocode.UserAgent) == "" {
			return fmt.Errorf("locations.geocode.user_agent is required for the geocode strategy")
		}
	default:
		return fmt.Errorf("invalid locations.strategy %q (must be static or geocode)", c.Locations.Strategy)
	}
	timeout, err := time.ParseDuration(c.Locations.Geocode.Timeout)
	if err != nil {
		return fmt.Errorf("invalid locations.geocode.timeout %q: %w", c.Locations.Geocode.Timeout, err)
	}
	if timeout <= 0 {
		return fmt.Errorf("locations.geocode.timeout must be > 0")
	}
	if c.Locations.Geocode.RateLimit < 0 {
		return fmt.Errorf("locations.geocode.rate_limit must be >= 0")
	}
	if c.Map.DefaultWeight < 0 {
		return fmt.Errorf("map.default_weight must be >= 0")
	}
	return nil
}

// Load layers defaults, the optional YAML file at configPath and SHOPDASH_*
// environment variables, then validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  8080,
		"server.host":                  "0.0.0.0",
		"log.level":                    "info",
		"dataset.path":                 "shopping_trends.csv",
		"filter.default_age_min":       18,
		"filter.default_age_max":       60,
		"aggregation.histogram_bins":   20,
		"locations.strategy":           "static",
		"locations.geocode.endpoint":   "https://nominatim.openstreetmap.org/search",
		"locations.geocode.user_agent": "shopping_trends_app",
		"locations.geocode.timeout":    "5s",
		"locations.geocode.rate_limit": 1.0,
		"map.weighted":                 false,
		"map.default_weight":           1.0,
		"map.radius":                   100000.0,
		"map.zoom":                     3.0,
		"map.pitch":                    50.0,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
