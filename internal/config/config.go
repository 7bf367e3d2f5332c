package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, read from the environment.
// Missing values degrade functionality instead of aborting startup.
type Config struct {
	Env            string        `envconfig:"APP_ENV" default:"development"`
	Port           string        `envconfig:"PORT" default:"8000"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL    string        `envconfig:"DATABASE_URL"`
	DatabaseName   string        `envconfig:"DATABASE_NAME"`
	RedisURL       string        `envconfig:"REDIS_URL"`
	CORSOrigins    string        `envconfig:"CORS_ORIGINS" default:"*"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"10s"`
}

// envFiles are tried in order so the server finds .env when started from
// the repo root or from cmd/server.
var envFiles = []string{".env", "../.env", "../../.env"}

// Load reads .env files (if any) and then the process environment.
func Load() (*Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return FromEnv()
}

// Defaults is the configuration with no environment at all.
func Defaults() *Config {
	return &Config{
		Env:            "development",
		Port:           "8000",
		LogLevel:       "info",
		CORSOrigins:    "*",
		ConnectTimeout: 10 * time.Second,
	}
}

// FromEnv parses the process environment without touching .env files.
// A malformed value is reported as an error, but the returned Config is
// always usable: the offending field keeps its default.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	err := envconfig.Process("", cfg)
	if err != nil {
		err = fmt.Errorf("parse environment: %w", err)
		if cfg.ConnectTimeout <= 0 {
			cfg.ConnectTimeout = Defaults().ConnectTimeout
		}
	}
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8000"
	}
	return cfg, err
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// AllowedOrigins splits CORSOrigins into a clean list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsProduction reports whether APP_ENV selects production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
