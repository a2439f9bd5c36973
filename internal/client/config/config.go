package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the ML Playground CLI.
type Config struct {
	// APIBaseURL is the auth API root; endpoint paths are resolved against it,
	// so it must end with a slash.
	APIBaseURL string
	// RequestTimeout bounds every HTTP round trip. Zero disables the deadline.
	RequestTimeout time.Duration
	// WorkspaceDSN is the SQLite DSN of the dataset workspace.
	WorkspaceDSN string
	// ExportDir is where dataset exports are written.
	ExportDir string
	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:8000/auth/"
	c.RequestTimeout = 10 * time.Second
	c.WorkspaceDSN = "file:workspace?mode=memory&cache=shared"
	c.ExportDir = "."
	c.LogLevel = "info"
	c.LogFormat = "console"
}

// LoadConfig builds a Config from defaults, then the JSON file, then MLP_*
// environment variables, then command-line flags. Later sources win.
// Malformed input panics.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseEnv(cfg)
	parseFlags(cfg, os.Args[1:])
	return cfg
}
