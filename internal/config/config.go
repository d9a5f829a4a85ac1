package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	CatalogDir     string   `mapstructure:"CATALOG_DIR"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	MaxUpload      string   `mapstructure:"MAX_UPLOAD"`
	MaxSessions    int      `mapstructure:"MAX_SESSIONS"`
	RequestTimeout int      `mapstructure:"REQUEST_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8050")
	v.SetDefault("ENV", "development")
	v.SetDefault("CATALOG_DIR", "catalogs")
	v.SetDefault("CORS_ORIGINS", "http://localhost:8050")
	v.SetDefault("MAX_UPLOAD", "256M")
	v.SetDefault("MAX_SESSIONS", 8)
	v.SetDefault("REQUEST_TIMEOUT", 120)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CATALOG_DIR")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MAX_UPLOAD")
	v.BindEnv("MAX_SESSIONS")
	v.BindEnv("REQUEST_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Timeout returns the per-request deadline as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks that the configuration is safe to run with. The catalog
// directory is not required to exist at startup: catalogs are re-read on
// every upload, so they can be dropped in while the server is running.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.CatalogDir == "" {
		return fmt.Errorf("CATALOG_DIR must not be empty")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MAX_SESSIONS must be positive, got %d", c.MaxSessions)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %d", c.RequestTimeout)
	}
	return nil
}
