package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/mlplayground/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-u string   auth API base URL
//	-t int      request timeout (seconds, 0 disables)
//	-w string   workspace SQLite DSN
//	-o string   dataset export directory
//	-l string   log level
//
// Only these flags are considered (see flagx.FilterArgs) so the config-file
// flag and anything else on the command line do not trip the parser.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-u", "-t", "-w", "-o", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "u", cfg.APIBaseURL, "auth API base URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds, 0 disables)")
	fs.StringVar(&cfg.WorkspaceDSN, "w", cfg.WorkspaceDSN, "workspace SQLite DSN")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "dataset export directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t only has second resolution; leave sub-second values from JSON/env alone unless it was given.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
}
