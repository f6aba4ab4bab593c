// Package config loads and validates the application's yaml
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the entire application configuration.
type Config struct {
	DatabasePath   string    `yaml:"database_path"`
	DefaultVATRate float64   `yaml:"default_vat_rate"`
	Web            WebConfig `yaml:"web"`
}

// WebConfig holds settings specific to the web server.
type WebConfig struct {
	ListenAddress   string `yaml:"listen_address"`
	DevelopmentMode bool   `yaml:"development_mode"`
	// SQLPath points at an on-disk copy of the sql query files, used in
	// development mode to live-reload edited queries. When empty the
	// embedded copies are used.
	SQLPath string `yaml:"sql_path"`
}

// Load loads and validates the configuration from the given file path.
func Load(filePath string) (*Config, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", filePath)
	}

	configFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	err = yaml.Unmarshal(configFile, &cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to parse YAML config file: %w", err)
	}

	if err := validateAndPrepare(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateAndPrepare checks for required fields and sets up derived
// values.
func validateAndPrepare(c *Config) error {
	// General
	if c.DatabasePath == "" {
		return errors.New("database_path is missing")
	}
	if c.DefaultVATRate < 0 || c.DefaultVATRate >= 1 {
		return fmt.Errorf("default_vat_rate %f should be a fraction such as 0.20", c.DefaultVATRate)
	}

	// Web
	if c.Web.ListenAddress == "" {
		return errors.New("web.listen_address is missing")
	}
	if c.Web.DevelopmentMode && c.Web.SQLPath == "" {
		return errors.New("web.sql_path is needed in development mode")
	}
	if c.Web.SQLPath != "" {
		s, err := os.Stat(c.Web.SQLPath)
		if err != nil {
			return fmt.Errorf("web.sql_path error: %w", err)
		}
		if !s.IsDir() {
			return fmt.Errorf("web.sql_path %q is not a directory", c.Web.SQLPath)
		}
	}

	return nil
}
