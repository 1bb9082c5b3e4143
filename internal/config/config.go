package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration. Values come from the environment;
// cmd/api loads a local .env first in development.
type Config struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	ServerPort  int    `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:"montafacil.db"`

	JWTSecret string        `envconfig:"JWT_SECRET" default:"change-me-jwt-secret"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// External PIX gateway. ClientID/Secret drive the OAuth token exchange;
	// the webhook needs no caller-side configuration.
	PixBaseURL      string        `envconfig:"PIX_BASE_URL" default:"https://api.pixpagamentos.com.br"`
	PixClientID     string        `envconfig:"PIX_CLIENT_ID"`
	PixClientSecret string        `envconfig:"PIX_CLIENT_SECRET"`
	PixTimeout      time.Duration `envconfig:"PIX_TIMEOUT" default:"15s"`

	GeocoderBaseURL string        `envconfig:"GEOCODER_BASE_URL" default:"https://cep.awesomeapi.com.br"`
	GeocoderTimeout time.Duration `envconfig:"GEOCODER_TIMEOUT" default:"5s"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.PixTimeout <= 0 || c.GeocoderTimeout <= 0 {
		return fmt.Errorf("PIX_TIMEOUT and GEOCODER_TIMEOUT must be > 0")
	}
	if c.isProdLike() {
		if c.JWTSecret == "" || c.JWTSecret == "change-me-jwt-secret" {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if c.PixClientID == "" || c.PixClientSecret == "" {
			return fmt.Errorf("in prod/release PIX_CLIENT_ID and PIX_CLIENT_SECRET must be set")
		}
	}
	return nil
}

func (c *Config) isProdLike() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production" || c.AppEnv == "release"
}
