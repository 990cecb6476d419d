package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// Config holds server configuration loaded from environment variables.
type Config struct {
	Addr         string `env:"LUMINA_ADDR,default=:8080"`
	DBPath       string `env:"LUMINA_DB,default=lumina.db"`
	AuthSecret   string `env:"LUMINA_AUTH_SECRET,default=lumina-dev-secret"`
	AuthRequired bool   `env:"LUMINA_AUTH_REQUIRED,default=false"`
}

// Load reads configuration from environment variables with sensible
// defaults for local development.
func Load() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}
