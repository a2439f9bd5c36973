package cli

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

func (a *App) toast(msg string) { successColor.Fprintln(a.out, msg) }

func (a *App) alert(msg string) { errorColor.Fprintln(a.out, msg) }

func (a *App) warn(msg string) { warningColor.Fprintln(a.out, msg) }

func (a *App) info(msg string) { infoColor.Fprintln(a.out, msg) }

func (a *App) header(msg string) { headerColor.Fprintln(a.out, msg) }

func (a *App) printf(format string, args ...any) { fmt.Fprintf(a.out, format, args...) }

// pending runs fn while a spinner is shown. The spinner is only drawn when
// output is a terminal.
func (a *App) pending(suffix string, fn func() error) error {
	if !a.spin {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.out))
	s.Suffix = " " + suffix
	s.Start()
	defer s.Stop()
	return fn()
}
