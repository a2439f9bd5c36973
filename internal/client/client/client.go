package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mlplayground/internal/client/models"
)

// Client is the auth API surface. Mutating calls take the CSRF token
// explicitly; the cookie jar carries the session between calls.
type Client interface {
	Close() error
	GetCSRF(ctx context.Context) (string, error)
	CheckAuth(ctx context.Context) (*models.CheckResponse, error)
	Login(ctx context.Context, email, password, csrfToken string) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest, csrfToken string) (*models.RegisterResponse, error)
	Logout(ctx context.Context, csrfToken string) (*models.LogoutResponse, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	SessionExpiry() (time.Time, bool)
}
