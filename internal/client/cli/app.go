package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/dmitrijs2005/mlplayground/internal/client/client"
	"github.com/dmitrijs2005/mlplayground/internal/client/config"
	"github.com/dmitrijs2005/mlplayground/internal/client/csrf"
	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/client/services"
	"github.com/dmitrijs2005/mlplayground/internal/client/session"
	"github.com/dmitrijs2005/mlplayground/internal/logging"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	session  *session.Session
	auth     services.AuthService
	datasets services.DatasetService
	reader   *bufio.Reader
	out      io.Writer
	spin     bool

	// kept current by the session subscription
	loggedIn atomic.Bool
	user     atomic.Pointer[models.User]

	unsubscribe func()
	closers     []func() error
}

// NewApp wires the application from configuration.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.WorkspaceDSN)
	if err != nil {
		return nil, fmt.Errorf("workspace database error: %w", err)
	}

	api, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	auth := services.NewAuthService(api, csrf.NewStore(), logger)
	datasets := services.NewDatasetService(db, c.ExportDir, logger)

	a := newApp(session.New(auth, logger), auth, datasets, os.Stdin, os.Stdout, logger)
	a.config = c
	a.spin = term.IsTerminal(int(os.Stdout.Fd()))
	a.closers = append(a.closers, db.Close)
	return a, nil
}

func newApp(s *session.Session, auth services.AuthService, datasets services.DatasetService, in io.Reader, out io.Writer, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &App{
		logger:   logger.With("component", "cli"),
		session:  s,
		auth:     auth,
		datasets: datasets,
		reader:   bufio.NewReader(in),
		out:      out,
	}
	a.unsubscribe = s.Subscribe(a.onSession)
	a.onSession(s.Snapshot())
	return a
}

func (a *App) onSession(snap session.Snapshot) {
	a.loggedIn.Store(snap.Authenticated())
	a.user.Store(snap.User)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn.Load()
}

func (a *App) getStatus() string {
	if u := a.user.Load(); u != nil && a.isLoggedIn() {
		return fmt.Sprintf("(%s)", u.String())
	}
	return "(anonymous)"
}

// Run bootstraps the session and serves the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "Welcome to ML Playground CLI (type 'help' for commands)")
	a.bootstrap(ctx)
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) bootstrap(ctx context.Context) {
	var snap session.Snapshot
	err := a.pending("Checking session...", func() error {
		var err error
		snap, err = a.session.Bootstrap(ctx)
		return err
	})
	switch {
	case err != nil:
		a.warn(fmt.Sprintf("Session check interrupted: %v", err))
	case snap.CheckErr != nil:
		a.warn(classifyCheckError(snap.CheckErr))
	case snap.Authenticated():
		a.info(fmt.Sprintf("Signed in as %s", snap.User))
	}
}

// Close releases the subscription, the API client and the workspace.
func (a *App) Close(ctx context.Context) error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	errs := []error{a.auth.Close(ctx)}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
