package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargedash/libs/config"
)

// Config defines dashboard daemon configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"CHARGEDASH_HTTP_PORT"`
	} `yaml:"http"`
	Backend struct {
		BaseURL        string `yaml:"baseUrl" env:"CHARGEDASH_BACKEND_URL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" env:"CHARGEDASH_BACKEND_TIMEOUT"`
	} `yaml:"backend"`
	Redis struct {
		Addr     string `yaml:"addr" env:"CHARGEDASH_REDIS_ADDR"`
		Password string `yaml:"password" env:"CHARGEDASH_REDIS_PASSWORD"`
	} `yaml:"redis"`
	Invoice struct {
		OutputDir string `yaml:"outputDir" env:"CHARGEDASH_INVOICE_DIR"`
	} `yaml:"invoice"`
	CORS struct {
		Origins string `yaml:"origins" env:"CHARGEDASH_CORS_ORIGINS"`
	} `yaml:"cors"`
}

// Load reads configuration via the shared helper and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8090"
	cfg.Backend.TimeoutSeconds = 5
	cfg.Invoice.OutputDir = "invoices"
	cfg.CORS.Origins = "*"

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Backend.BaseURL) == "" {
		return nil, errors.New("config: backend base url required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8090"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// BackendTimeout returns the backend http client timeout.
func (c *Config) BackendTimeout() time.Duration {
	if c.Backend.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// CORSOrigins splits the configured comma-separated origin list.
func (c *Config) CORSOrigins() []string {
	parts := strings.Split(c.CORS.Origins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}
