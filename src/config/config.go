// Package config reads service settings from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables take precedence over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	APIKey         string
	GinMode        string
	MaxPageLimit   int
	HealthInterval time.Duration
	Serial         SerialConfig
}

// SerialConfig describes an optional hardware entropy source. An empty
// Device means the operating system's entropy is used instead.
type SerialConfig struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

func (s SerialConfig) Enabled() bool { return s.Device != "" }

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:    getEnvOrDefault("PORT", "777"),
		APIKey:  os.Getenv("API_KEY"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}

	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("invalid GIN_MODE: %q", cfg.GinMode)
	}

	var err error
	if cfg.MaxPageLimit, err = getEnvInt("MAX_PAGE_LIMIT", 10_000); err != nil {
		return nil, err
	}
	if cfg.MaxPageLimit < 1 {
		return nil, fmt.Errorf("invalid MAX_PAGE_LIMIT: %d", cfg.MaxPageLimit)
	}

	healthMs, err := getEnvInt("RNG_HEALTH_INTERVAL", 10_000)
	if err != nil {
		return nil, err
	}
	if healthMs <= 0 {
		return nil, fmt.Errorf("invalid RNG_HEALTH_INTERVAL: %d", healthMs)
	}
	cfg.HealthInterval = time.Duration(healthMs) * time.Millisecond

	cfg.Serial.Device = os.Getenv("SERIAL_DEVICE_NAME")
	if cfg.Serial.Enabled() {
		if cfg.Serial.Baud, err = getEnvInt("SERIAL_BAUD_RATE", 0); err != nil || cfg.Serial.Baud <= 0 {
			return nil, fmt.Errorf("invalid SERIAL_BAUD_RATE: %q", os.Getenv("SERIAL_BAUD_RATE"))
		}
		timeoutMs, err := getEnvInt("SERIAL_READ_TIMEOUT", 0)
		if err != nil || timeoutMs < 0 {
			return nil, fmt.Errorf("invalid SERIAL_READ_TIMEOUT: %q", os.Getenv("SERIAL_READ_TIMEOUT"))
		}
		cfg.Serial.ReadTimeout = time.Duration(timeoutMs) * time.Millisecond
	}

	return cfg, nil
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}
