package config

const (
	defaultOutputDir             = "output"
	defaultDatabaseFile          = "movies.sqlite3"
	defaultCSVFile               = "movies.csv"
	defaultParquetFile           = "movies.parquet"
	defaultLogDir                = "~/.local/share/marquee/logs"
	defaultWorkbook              = "movies.xlsx"
	defaultColumn                = "Movies"
	defaultBaseURL               = "https://www.imdb.com"
	defaultUserAgent             = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	defaultAcceptLanguage        = "en-US,en;q=0.9"
	defaultWaitTimeoutSeconds    = 10
	defaultRequestTimeoutSeconds = 30
	defaultSMTPPort              = 587
	defaultNtfyRequestTimeout    = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:    defaultOutputDir,
			DatabaseFile: defaultDatabaseFile,
			CSVFile:      defaultCSVFile,
			ParquetFile:  defaultParquetFile,
			LogDir:       defaultLogDir,
		},
		Source: Source{
			Workbook: defaultWorkbook,
			Column:   defaultColumn,
		},
		Site: Site{
			BaseURL:               defaultBaseURL,
			UserAgent:             defaultUserAgent,
			AcceptLanguage:        defaultAcceptLanguage,
			WaitTimeoutSeconds:    defaultWaitTimeoutSeconds,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		SMTP: SMTP{
			Port: defaultSMTPPort,
		},
		Export: Export{
			Email: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			RunStarted:     true,
			RunCompleted:   true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
