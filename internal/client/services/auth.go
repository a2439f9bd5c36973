// Package services contains application services for the ML Playground
// client. This file defines the auth operations: csrf bootstrap, session
// check, login, signup, logout and the availability lookups.
package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mlplayground/internal/client/client"
	"github.com/dmitrijs2005/mlplayground/internal/client/csrf"
	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/logging"
)

// AuthStatus is the outcome of a session check.
type AuthStatus int

const (
	StatusAnonymous AuthStatus = iota
	StatusAuthenticated
	StatusCheckFailed
)

func (s AuthStatus) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	case StatusCheckFailed:
		return "check-failed"
	}
	return fmt.Sprintf("AuthStatus(%d)", int(s))
}

// AuthCheck is the tagged result of CheckAuth. User is set only for
// StatusAuthenticated and Err only for StatusCheckFailed.
type AuthCheck struct {
	Status AuthStatus
	User   *models.User
	Err    error
}

// AuthService defines the auth operations used by the session.
//
// Contract:
//   - GetCSRF: fetch a token and store it; failures are logged, never returned.
//   - CheckAuth: ask the server about the session cookie; never returns an error.
//   - Login, Signup, Logout: one POST each with the stored token attached;
//     errors propagate unchanged apart from wrapping.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	GetCSRF(ctx context.Context)
	CheckAuth(ctx context.Context) AuthCheck
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Signup(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error)
	Logout(ctx context.Context) (*models.LogoutResponse, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	SessionExpiry() (time.Time, bool)
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client and the
// application's CSRF store.
type authService struct {
	client client.Client
	tokens *csrf.Store
	logger logging.Logger
}

// NewAuthService constructs an AuthService bound to the given API client and
// token store.
func NewAuthService(c client.Client, tokens *csrf.Store, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &authService{client: c, tokens: tokens, logger: logger.With("component", "auth")}
}

func (a *authService) GetCSRF(ctx context.Context) {
	token, err := a.client.GetCSRF(ctx)
	if err != nil {
		a.logger.Warn(ctx, "csrf fetch failed", "error", err)
		return
	}
	a.tokens.Set(token)
	a.logger.Debug(ctx, "csrf token stored")
}

// CheckAuth maps the server answer onto AuthCheck. A 401 means there is no
// session and is reported as anonymous; any other failure is CheckFailed.
func (a *authService) CheckAuth(ctx context.Context) AuthCheck {
	resp, err := a.client.CheckAuth(ctx)
	if err != nil {
		if client.StatusCode(err) == http.StatusUnauthorized {
			return AuthCheck{Status: StatusAnonymous}
		}
		a.logger.Warn(ctx, "session check failed", "error", err)
		return AuthCheck{Status: StatusCheckFailed, Err: err}
	}
	if !resp.Authenticated() {
		return AuthCheck{Status: StatusAnonymous}
	}
	return AuthCheck{Status: StatusAuthenticated, User: resp.User}
}

// token returns the stored CSRF token. When none is stored (the startup
// fetch failed) it fetches one more time; ErrNoCSRFToken means that retry
// failed too and no request may be sent.
func (a *authService) token(ctx context.Context) (string, error) {
	if token, ok := a.tokens.Get(); ok {
		return token, nil
	}

	token, err := a.client.GetCSRF(ctx)
	if err != nil {
		a.logger.Warn(ctx, "csrf refetch failed", "error", err)
		return "", fmt.Errorf("%w: %w", client.ErrNoCSRFToken, err)
	}
	if token == "" {
		return "", client.ErrNoCSRFToken
	}
	a.tokens.Set(token)
	a.logger.Debug(ctx, "csrf token stored on retry")
	return token, nil
}

func (a *authService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	resp, err := a.client.Login(ctx, email, password, token)
	if err != nil {
		a.logger.Debug(ctx, "login failed", "error", err)
		return nil, fmt.Errorf("login error: %w", err)
	}
	return resp, nil
}

func (a *authService) Signup(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	resp, err := a.client.Register(ctx, req, token)
	if err != nil {
		a.logger.Debug(ctx, "register failed", "error", err)
		return nil, fmt.Errorf("register error: %w", err)
	}
	return resp, nil
}

func (a *authService) Logout(ctx context.Context) (*models.LogoutResponse, error) {
	token, err := a.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("logout error: %w", err)
	}
	resp, err := a.client.Logout(ctx, token)
	if err != nil {
		a.logger.Debug(ctx, "logout failed", "error", err)
		return nil, fmt.Errorf("logout error: %w", err)
	}
	return resp, nil
}

func (a *authService) CheckEmail(ctx context.Context, email string) (bool, error) {
	ok, err := a.client.CheckEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("email lookup error: %w", err)
	}
	return ok, nil
}

func (a *authService) CheckUsername(ctx context.Context, username string) (bool, error) {
	ok, err := a.client.CheckUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("username lookup error: %w", err)
	}
	return ok, nil
}

// SessionExpiry proxies the client's view of the access token expiry.
func (a *authService) SessionExpiry() (time.Time, bool) {
	return a.client.SessionExpiry()
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
