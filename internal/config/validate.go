package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateSMTP(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"site.wait_timeout_seconds":     c.Site.WaitTimeoutSeconds,
		"site.request_timeout_seconds":  c.Site.RequestTimeoutSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	for key, name := range map[string]string{
		"paths.database_file": c.Paths.DatabaseFile,
		"paths.csv_file":      c.Paths.CSVFile,
		"paths.parquet_file":  c.Paths.ParquetFile,
	} {
		if filepath.Base(name) != name {
			return fmt.Errorf("%s must be a file name inside paths.output_dir, got %q", key, name)
		}
	}
	if c.Paths.DatabaseFile == c.Paths.CSVFile {
		return errors.New("paths.database_file and paths.csv_file must differ")
	}
	return nil
}

func (c *Config) validateSite() error {
	parsed, err := url.Parse(c.Site.BaseURL)
	if err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("site.base_url must be an http(s) URL, got %q", c.Site.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("site.base_url must include a host, got %q", c.Site.BaseURL)
	}
	return nil
}

func (c *Config) validateSMTP() error {
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port must be between 1 and 65535, got %d", c.SMTP.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
