package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Email delivery is disabled unless WithSMTP is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Source.Workbook = filepath.Join(base, "movies.xlsx")
	cfgVal.Site.WaitTimeoutSeconds = 1
	cfgVal.Site.RequestTimeoutSeconds = 2
	cfgVal.Export.Email = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithBaseURL points the site settings at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Site.BaseURL = url
	}
}

// WithSMTP fills complete delivery credentials and enables email export.
func WithSMTP(host string, port int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SMTP = config.SMTP{
			Host:     host,
			Port:     port,
			User:     "reports@example.com",
			Password: "secret",
			From:     "reports@example.com",
			To:       "team@example.com",
		}
		b.cfg.Export.Email = true
	}
}

// WithParquet enables the parquet export.
func WithParquet() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.Parquet = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
