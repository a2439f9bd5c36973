package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/mlplayground/internal/flagx"
)

// Duration accepts either a Go duration string ("10s") or integer
// nanoseconds in JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		d.Duration = time.Duration(val)
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" apart from "set to zero value", so a partial file only overrides
// what it names.
type JsonConfig struct {
	APIBaseURL     *string   `json:"api_base_url"`
	RequestTimeout *Duration `json:"request_timeout"`
	WorkspaceDSN   *string   `json:"workspace_dsn"`
	ExportDir      *string   `json:"export_dir"`
	LogLevel       *string   `json:"log_level"`
	LogFormat      *string   `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c/-config or MLP_CONFIG.
// Nothing happens when no file is configured; read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.WorkspaceDSN != nil {
		cfg.WorkspaceDSN = *jc.WorkspaceDSN
	}
	if jc.ExportDir != nil {
		cfg.ExportDir = *jc.ExportDir
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
}
