package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Supported profile store drivers.
const (
	DriverPostgres = "postgres"
	DriverREST     = "rest"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var validate = validator.New()

// Config contains runtime configuration required by the service.
type Config struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
	Store    StoreConfig
}

// StoreConfig selects and addresses the profile store.
type StoreConfig struct {
	Driver string `validate:"oneof=postgres rest sqlite memory"`

	// DBURL is the connection string for the postgres and sqlite drivers.
	DBURL string `validate:"required_if=Driver postgres,required_if=Driver sqlite"`

	// URL and Key address a PostgREST endpoint (e.g. https://<ref>.supabase.co/rest/v1).
	URL string `validate:"required_if=Driver rest"`
	Key string `validate:"required_if=Driver rest"`

	Table        string        `validate:"required"`
	EnsureSchema bool
	Timeout      time.Duration `validate:"gt=0"`
}

// Load reads values from environment variables and validates them.
func Load() (Config, error) {
	timeout, err := durationEnv("STORE_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	ensure, err := boolEnv("STORE_ENSURE_SCHEMA", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:     env("PORT", "8080"),
		LogLevel: strings.ToLower(env("LOG_LEVEL", "info")),
		Store: StoreConfig{
			Driver:       strings.ToLower(env("STORE_DRIVER", DriverPostgres)),
			DBURL:        env("DB_URL", ""),
			URL:          strings.TrimRight(env("STORE_URL", ""), "/"),
			Key:          env("STORE_KEY", ""),
			Table:        env("PROFILE_TABLE", "user_profiles"),
			EnsureSchema: ensure,
			Timeout:      timeout,
		},
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return Config{}, fmt.Errorf("invalid config: %s", describe(verrs))
		}
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	raw := env(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

// envNames maps struct fields back to the variables that feed them so
// validation errors point at something the operator can set.
var envNames = map[string]string{
	"Port":     "PORT",
	"LogLevel": "LOG_LEVEL",
	"Driver":   "STORE_DRIVER",
	"DBURL":    "DB_URL",
	"URL":      "STORE_URL",
	"Key":      "STORE_KEY",
	"Table":    "PROFILE_TABLE",
	"Timeout":  "STORE_TIMEOUT",
}

func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name, ok := envNames[fe.Field()]
		if !ok {
			name = fe.Field()
		}
		parts = append(parts, fmt.Sprintf("%s failed %q", name, fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
