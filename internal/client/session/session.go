// Package session holds the client's auth state: who is logged in and
// whether the startup check has run.
//
// A Session moves Uninitialized -> Bootstrapping -> Authenticated|Anonymous.
// Bootstrap fetches a CSRF token and then asks the server about the session
// cookie; it runs at most once per Session, and concurrent callers share the
// in-flight run. Login, Signup and Logout await Bootstrap before issuing
// their request, so a mutating call never precedes the token fetch. If that
// fetch failed, the auth service fetches again before the mutating call.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/client/services"
	"github.com/dmitrijs2005/mlplayground/internal/logging"
)

// ErrAutoLoginFailed marks a signup whose account was created but whose
// follow-up login did not succeed. The session stays anonymous and the
// account is not removed.
var ErrAutoLoginFailed = errors.New("account created but automatic login failed")

type State int

const (
	StateUninitialized State = iota
	StateBootstrapping
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapping:
		return "bootstrapping"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Snapshot is a consistent copy of the session. CheckErr is set when the
// startup check could not reach a verdict; the session is then anonymous.
type Snapshot struct {
	State    State
	User     *models.User
	Checked  bool
	CheckErr error
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

type Session struct {
	auth   services.AuthService
	logger logging.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	state    State
	user     *models.User
	checked  bool
	checkErr error

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

func New(auth services.AuthService, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Session{
		auth:   auth,
		logger: logger.With("component", "session"),
		subs:   make(map[int]func(Snapshot)),
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, User: s.user, Checked: s.checked, CheckErr: s.checkErr}
}

// Subscribe registers fn to receive every state change. fn runs on the
// goroutine that caused the change and must not block. The returned func
// removes the subscription.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) notify(snap Snapshot) {
	s.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// update applies fn under the write lock and publishes the result.
func (s *Session) update(fn func()) Snapshot {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

// Bootstrap runs the startup sequence once. Later calls return the current
// snapshot immediately. Concurrent callers share one run, which is detached
// from any caller's cancellation and bounded by the API client's request
// timeout. Each caller waits on its own ctx: a caller whose ctx ends gets
// ctx.Err() while the run carries on for the others.
func (s *Session) Bootstrap(ctx context.Context) (Snapshot, error) {
	if snap := s.Snapshot(); snap.Checked {
		return snap, nil
	}
	if err := ctx.Err(); err != nil {
		return s.Snapshot(), err
	}

	ch := s.group.DoChan("bootstrap", func() (any, error) {
		return s.bootstrap(context.WithoutCancel(ctx)), nil
	})

	select {
	case res := <-ch:
		return res.Val.(Snapshot), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

func (s *Session) bootstrap(ctx context.Context) Snapshot {
	if snap := s.Snapshot(); snap.Checked {
		return snap
	}

	s.update(func() { s.state = StateBootstrapping })

	s.auth.GetCSRF(ctx)
	res := s.auth.CheckAuth(ctx)

	snap := s.update(func() {
		s.checked = true
		s.checkErr = res.Err
		if res.Status == services.StatusAuthenticated && res.User != nil {
			s.state, s.user = StateAuthenticated, res.User
		} else {
			s.state, s.user = StateAnonymous, nil
		}
	})
	s.logger.Debug(ctx, "bootstrap finished", "status", res.Status.String())
	return snap
}

// Login authenticates and stores the returned user. The raw response is
// returned for the caller to act on; errors are returned unchanged.
func (s *Session) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if _, err := s.Bootstrap(ctx); err != nil {
		return nil, err
	}
	return s.login(ctx, email, password)
}

func (s *Session) login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.update(func() {
		s.user = resp.User
		if resp.User != nil {
			s.state = StateAuthenticated
		} else {
			s.state = StateAnonymous
		}
	})
	s.logger.Info(ctx, "logged in", "user", resp.User.String())
	return resp, nil
}

// Logout ends the server session and clears the user. On error the local
// state is left as it was.
func (s *Session) Logout(ctx context.Context) (*models.LogoutResponse, error) {
	if _, err := s.Bootstrap(ctx); err != nil {
		return nil, err
	}

	resp, err := s.auth.Logout(ctx)
	if err != nil {
		return nil, err
	}

	s.update(func() {
		s.user = nil
		s.state = StateAnonymous
	})
	s.logger.Info(ctx, "logged out", "message", resp.Message)
	return resp, nil
}

// Signup registers an account and then logs in with the same credentials.
// A failed login after a successful registration returns an error matching
// both ErrAutoLoginFailed and the login error; the account is not rolled
// back and the session stays anonymous.
func (s *Session) Signup(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	if _, err := s.Bootstrap(ctx); err != nil {
		return nil, err
	}

	if _, err := s.auth.Signup(ctx, req); err != nil {
		return nil, err
	}

	resp, err := s.login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "signup succeeded but login failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAutoLoginFailed, err)
	}
	return resp, nil
}
