// Package config loads runtime configuration for the ML Playground CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c / -config or MLP_CONFIG.
//  3. MLP_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-u string   auth API base URL (default http://localhost:8000/auth/)
//	-t int      request timeout in seconds, 0 disables
//	-w string   workspace SQLite DSN
//	-o string   dataset export directory
//	-l string   log level
//
// # JSON schema
//
// Durations may be strings like "10s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://localhost:8000/auth/",
//	  "request_timeout": "10s",
//	  "workspace_dsn": "file:workspace?mode=memory&cache=shared",
//	  "export_dir": "./exports",
//	  "log_level": "info",
//	  "log_format": "console"
//	}
//
// Environment
//
//	MLP_API_URL, MLP_REQUEST_TIMEOUT, MLP_WORKSPACE_DSN, MLP_EXPORT_DIR,
//	MLP_LOG_LEVEL, MLP_LOG_FORMAT
package config
