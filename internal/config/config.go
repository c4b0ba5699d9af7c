package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from DROPCALC_* variables.
type Config struct {
	HTTPAddr      string        `env:"HTTP_ADDR" envDefault:":8080"`
	GRPCAddr      string        `env:"GRPC_ADDR" envDefault:":9090"`
	DataDir       string        `env:"DATA_DIR" envDefault:"configs"`
	Mod           string        `env:"MOD"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string        `env:"LOG_FORMAT" envDefault:"json"`
	CacheSize     int           `env:"CACHE_SIZE" envDefault:"512"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	WatchInterval time.Duration `env:"WATCH_INTERVAL" envDefault:"2s"` // 0 disables reloads
	MaxParallel   int           `env:"MAX_PARALLEL" envDefault:"8"`
}

const envPrefix = "DROPCALC_"

// Load reads a .env file when present and parses the environment.
func Load() (*Config, error) {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.HTTPAddr == "" {
		errs = append(errs, envPrefix+"HTTP_ADDR must not be empty")
	}
	if c.GRPCAddr == "" {
		errs = append(errs, envPrefix+"GRPC_ADDR must not be empty")
	}
	if c.DataDir == "" {
		errs = append(errs, envPrefix+"DATA_DIR must not be empty")
	}
	if c.CacheSize <= 0 {
		errs = append(errs, envPrefix+"CACHE_SIZE must be > 0")
	}
	if c.CacheTTL < 0 {
		errs = append(errs, envPrefix+"CACHE_TTL must be >= 0")
	}
	if c.WatchInterval < 0 {
		errs = append(errs, envPrefix+"WATCH_INTERVAL must be >= 0")
	}
	if c.MaxParallel <= 0 {
		errs = append(errs, envPrefix+"MAX_PARALLEL must be > 0")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, envPrefix+`LOG_FORMAT must be "json" or "console"`)
	}
	if len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}
