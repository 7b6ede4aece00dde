package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSource(); err != nil {
		return err
	}
	c.normalizeSite()
	if err := c.normalizeSMTP(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.DatabaseFile = defaultString(c.Paths.DatabaseFile, defaultDatabaseFile)
	c.Paths.CSVFile = defaultString(c.Paths.CSVFile, defaultCSVFile)
	c.Paths.ParquetFile = defaultString(c.Paths.ParquetFile, defaultParquetFile)
	return nil
}

func (c *Config) normalizeSource() error {
	var err error
	c.Source.Workbook = defaultString(c.Source.Workbook, defaultWorkbook)
	if c.Source.Workbook, err = expandPath(c.Source.Workbook); err != nil {
		return fmt.Errorf("source.workbook: %w", err)
	}
	c.Source.Column = defaultString(c.Source.Column, defaultColumn)
	return nil
}

func (c *Config) normalizeSite() {
	c.Site.BaseURL = strings.TrimRight(defaultString(c.Site.BaseURL, defaultBaseURL), "/")
	c.Site.UserAgent = defaultString(c.Site.UserAgent, defaultUserAgent)
	c.Site.AcceptLanguage = defaultString(c.Site.AcceptLanguage, defaultAcceptLanguage)
	if c.Site.WaitTimeoutSeconds <= 0 {
		c.Site.WaitTimeoutSeconds = defaultWaitTimeoutSeconds
	}
	if c.Site.RequestTimeoutSeconds <= 0 {
		c.Site.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
}

func (c *Config) normalizeSMTP() error {
	c.SMTP.Host = envFallback(c.SMTP.Host, "SMTP_HOST")
	c.SMTP.User = envFallback(c.SMTP.User, "SMTP_USER")
	c.SMTP.Password = envFallback(c.SMTP.Password, "SMTP_PASSWORD")
	c.SMTP.To = envFallback(c.SMTP.To, "EMAIL_TO")
	c.SMTP.From = envFallback(c.SMTP.From, "EMAIL_FROM")
	if value, ok := os.LookupEnv("SMTP_PORT"); ok && strings.TrimSpace(value) != "" && (c.SMTP.Port == 0 || c.SMTP.Port == defaultSMTPPort) {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("smtp.port: SMTP_PORT %q is not a number", value)
		}
		c.SMTP.Port = port
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = defaultSMTPPort
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.User
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func defaultString(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func envFallback(value, key string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	if env, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(env)
	}
	return ""
}
