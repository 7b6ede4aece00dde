package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains output locations for the store, exports, and logs.
type Paths struct {
	OutputDir    string `toml:"output_dir"`
	DatabaseFile string `toml:"database_file"`
	CSVFile      string `toml:"csv_file"`
	ParquetFile  string `toml:"parquet_file"`
	LogDir       string `toml:"log_dir"`
}

// Source describes where input titles come from.
type Source struct {
	Workbook string `toml:"workbook"`
	Column   string `toml:"column"`
}

// Site contains settings for the movie database website.
type Site struct {
	BaseURL               string `toml:"base_url"`
	UserAgent             string `toml:"user_agent"`
	AcceptLanguage        string `toml:"accept_language"`
	WaitTimeoutSeconds    int    `toml:"wait_timeout_seconds"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// SMTP contains mail delivery credentials. Every field may also come from the
// environment (SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, EMAIL_TO, EMAIL_FROM).
type SMTP struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
}

// Export toggles the optional report outputs.
type Export struct {
	Parquet bool `toml:"parquet"`
	Email   bool `toml:"email"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunStarted     bool   `toml:"run_started"`
	RunCompleted   bool   `toml:"run_completed"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for marquee.
//
// Configuration sections by subsystem:
//   - Paths: output directory, store and export file names, logs
//   - Source: spreadsheet holding the titles to process
//   - Site: base URL, request identity, and page wait bounds
//   - SMTP: optional delivery of the exported dataset
//   - Export: parquet and email toggles
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Source        Source        `toml:"source"`
	Site          Site          `toml:"site"`
	SMTP          SMTP          `toml:"smtp"`
	Export        Export        `toml:"export"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/marquee/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the absolute location of the SQLite result store.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.DatabaseFile)
}

// CSVPath returns the absolute location of the CSV export.
func (c *Config) CSVPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.CSVFile)
}

// ParquetPath returns the absolute location of the optional parquet export.
func (c *Config) ParquetPath() string {
	return filepath.Join(c.Paths.OutputDir, c.Paths.ParquetFile)
}

// LockPath returns the run lock file guarding the output directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.OutputDir, ".marquee.lock")
}

// WaitTimeout bounds each wait for a page element.
func (c *Config) WaitTimeout() time.Duration {
	return time.Duration(c.Site.WaitTimeoutSeconds) * time.Second
}

// RequestTimeout bounds a single page fetch.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Site.RequestTimeoutSeconds) * time.Second
}

// SMTPConfigured reports whether every value required for delivery is present.
func (c *Config) SMTPConfigured() bool {
	s := c.SMTP
	return s.Host != "" && s.Port > 0 && s.User != "" && s.Password != "" && s.To != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Marshal renders the effective configuration as TOML with the SMTP password masked.
func (c *Config) Marshal() ([]byte, error) {
	clone := *c
	if clone.SMTP.Password != "" {
		clone.SMTP.Password = "********"
	}
	data, err := toml.Marshal(clone)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return data, nil
}
