package config

import (
	"errors"
	"fmt"
	"strings"

	libconfig "skillbridge/libs/config"
)

// Config defines the booking service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"SKILLBRIDGE_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"SKILLBRIDGE_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"SKILLBRIDGE_REDIS_ADDR"`
		Password string `yaml:"password" env:"SKILLBRIDGE_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"SKILLBRIDGE_REDIS_DB"`
		Queue    string `yaml:"queue" env:"SKILLBRIDGE_NOTIFY_QUEUE"`
	} `yaml:"redis"`
}

// Load reads configuration via the shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.Redis.Addr = "localhost:6379"

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
