package config

import (
	"os"
	"time"
)

// parseEnv overlays cfg with MLP_* environment variables. Empty variables
// are ignored. An unparsable MLP_REQUEST_TIMEOUT panics.
func parseEnv(cfg *Config) {
	if v := os.Getenv("MLP_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("MLP_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("MLP_WORKSPACE_DSN"); v != "" {
		cfg.WorkspaceDSN = v
	}
	if v := os.Getenv("MLP_EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := os.Getenv("MLP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MLP_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
