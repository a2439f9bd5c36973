// Package flagx holds small helpers for layered command-line parsing, where
// several independent parsers each consume only the flags they own.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// ConfigEnvName is the environment variable consulted by ConfigPath when no
// config flag is present.
const ConfigEnvName = "MLP_CONFIG"

// FilterArgs returns the subset of args that belongs to allowedFlags, keeping
// flag values that follow as a separate token.
//
// Both "-c conf.json" and "-config=conf.json" forms are recognized. A token
// that starts with "-" is never consumed as a value. The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// ConfigPath resolves the JSON config file path from args (-c or -config,
// last one wins) and falls back to the MLP_CONFIG environment variable.
// It returns "" when neither is set.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	if path == "" {
		path = os.Getenv(ConfigEnvName)
	}
	return path
}
