// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the label server needs to run.
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	// PublicOrigin is the base URL encoded into every QR payload,
	// e.g. "https://turnos.lubritrack.com.ar".
	PublicOrigin string `envconfig:"PUBLIC_ORIGIN" required:"true"`

	// QRProvider selects the bitmap source: "local" renders in
	// process, "http" delegates to an external QR service.
	QRProvider   string `envconfig:"QR_PROVIDER" default:"local"`
	QRServiceURL string `envconfig:"QR_SERVICE_URL"`

	DatabasePath    string `envconfig:"DATABASE_PATH" default:"labels.db"`
	PresetCachePath string `envconfig:"PRESET_CACHE_PATH" default:"presets.json"`

	PrinterHost string `envconfig:"PRINTER_HOST"`
	PrinterPort int    `envconfig:"PRINTER_PORT" default:"9100"`

	// ChromePath overrides the browser binary used for PDF output.
	ChromePath string `envconfig:"CHROME_PATH"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	// Missing .env is not an error, env vars may come from the shell.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// envconfig only rejects PUBLIC_ORIGIN when it is entirely unset;
	// an empty value would still produce broken QR payloads.
	if cfg.PublicOrigin == "" {
		return nil, fmt.Errorf("PUBLIC_ORIGIN must not be empty")
	}

	if cfg.QRProvider == "http" && cfg.QRServiceURL == "" {
		return nil, fmt.Errorf("QR_SERVICE_URL is required when QR_PROVIDER=http")
	}

	return &cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
