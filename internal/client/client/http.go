package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/net/publicsuffix"

	"github.com/dmitrijs2005/mlplayground/internal/client/csrf"
	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/logging"
)

// AccessTokenCookie is the session cookie the server issues on login.
const AccessTokenCookie = "access_token"

const maxErrorBody = 512

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  logging.Logger
}

// NewHTTPClient builds a client rooted at baseURL. The base must be absolute;
// a missing trailing slash is added so relative endpoint paths resolve under
// it. timeout bounds every request; zero means no limit beyond ctx.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Jar: jar},
		timeout: timeout,
		logger:  logger.With("component", "http-client"),
	}, nil
}

func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request. body, when non-nil, is JSON-encoded. out, when
// non-nil, receives the decoded 2xx response body.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, csrfToken string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrfToken != "" {
		req.Header.Set(csrf.HeaderName, csrfToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) GetCSRF(ctx context.Context) (string, error) {
	var resp models.CSRFResponse
	if err := c.do(ctx, http.MethodGet, "get/csrf/", nil, "", nil, &resp); err != nil {
		return "", err
	}
	return resp.CSRFToken, nil
}

func (c *HTTPClient) CheckAuth(ctx context.Context) (*models.CheckResponse, error) {
	var resp models.CheckResponse
	if err := c.do(ctx, http.MethodGet, "check/", nil, "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password, csrfToken string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	req := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "login/", nil, csrfToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest, csrfToken string) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "register/", nil, csrfToken, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context, csrfToken string) (*models.LogoutResponse, error) {
	var resp models.LogoutResponse
	if err := c.do(ctx, http.MethodPost, "logout/", nil, csrfToken, struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CheckEmail(ctx context.Context, email string) (bool, error) {
	return c.available(ctx, "check/email/", url.Values{"email": {email}})
}

func (c *HTTPClient) CheckUsername(ctx context.Context, username string) (bool, error) {
	return c.available(ctx, "check/username/", url.Values{"username": {username}})
}

func (c *HTTPClient) available(ctx context.Context, path string, q url.Values) (bool, error) {
	var resp models.AvailabilityResponse
	if err := c.do(ctx, http.MethodGet, path, q, "", nil, &resp); err != nil {
		return false, err
	}
	return resp.Available, nil
}

// SessionExpiry reports when the access token cookie held in the jar
// expires. The token is decoded without verification; the server remains
// the authority on whether the session is valid.
func (c *HTTPClient) SessionExpiry() (time.Time, bool) {
	for _, ck := range c.http.Jar.Cookies(c.baseURL) {
		if ck.Name != AccessTokenCookie {
			continue
		}
		claims := jwt.RegisteredClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(ck.Value, &claims); err != nil {
			return time.Time{}, false
		}
		if claims.ExpiresAt == nil {
			return time.Time{}, false
		}
		return claims.ExpiresAt.Time, true
	}
	return time.Time{}, false
}

// Close drops idle connections.
func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
