// Package config loads process-wide settings from environment variables with
// an optional YAML file on top. Everything is fixed at startup; nothing here
// is safe to mutate once the server is running.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/opencourt/scoreboard/internal/boardid"
)

// Config holds all process settings.
type Config struct {
	Port string `yaml:"port"`

	Sqids struct {
		Alphabet  string `yaml:"alphabet"`
		MinLength int    `yaml:"min_length"`
	} `yaml:"sqids"`

	// AllowedOrigins lists the cross-origin hosts permitted to call the API
	// and open websocket connections. Empty means same-origin only.
	AllowedOrigins []string `yaml:"allowed_origins"`

	RateLimit struct {
		RequestWindow time.Duration `yaml:"request_window"`
		RequestCap    int           `yaml:"request_cap"`
		JoinWindow    time.Duration `yaml:"join_window"`
		JoinCap       int           `yaml:"join_cap"`
	} `yaml:"rate_limit"`

	DB Database `yaml:"database"`
}

// Database holds Postgres connection settings.
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the Postgres connection URL.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// FromEnv builds a Config from SCOREBOARD_*, SQIDS_* and DB_* environment
// variables, falling back to defaults.
func FromEnv() Config {
	var cfg Config
	cfg.Port = getEnv("SCOREBOARD_PORT", "4000")

	cfg.Sqids.Alphabet = getEnv("SQIDS_ALPHABET", boardid.DefaultAlphabet)
	cfg.Sqids.MinLength = getEnvAsInt("SQIDS_MIN_LENGTH", boardid.DefaultMinLength)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	cfg.RateLimit.RequestWindow = getEnvAsDuration("RATE_REQUEST_WINDOW", 10*time.Second)
	cfg.RateLimit.RequestCap = getEnvAsInt("RATE_REQUEST_CAP", 60)
	cfg.RateLimit.JoinWindow = getEnvAsDuration("RATE_JOIN_WINDOW", time.Minute)
	cfg.RateLimit.JoinCap = getEnvAsInt("RATE_JOIN_CAP", 20)

	cfg.DB = Database{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "scoreboards"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	return cfg
}

// Load reads the environment and, when path is non-empty, overlays the YAML
// file at path on top of it.
func Load(path string) (Config, error) {
	cfg := FromEnv()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Codec builds the identifier codec from the configured alphabet and minimum
// length. An error here is fatal at startup: running with a partially
// configured codec would issue identifiers no other process can decode.
func (c Config) Codec() (*boardid.Codec, error) {
	return boardid.New(c.Sqids.Alphabet, c.Sqids.MinLength)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
