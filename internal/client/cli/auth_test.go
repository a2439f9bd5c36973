package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mlplayground/internal/client/client"
	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/client/services"
	"github.com/dmitrijs2005/mlplayground/internal/client/session"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fakeAuth struct {
	calls []string

	check     services.AuthCheck
	loginErr  error
	signupErr error
	logout    *models.LogoutResponse
	logoutErr error

	emailFree bool
	emailErr  error

	expiry time.Time
}

func (f *fakeAuth) GetCSRF(ctx context.Context) { f.calls = append(f.calls, "csrf") }

func (f *fakeAuth) CheckAuth(ctx context.Context) services.AuthCheck {
	f.calls = append(f.calls, "check")
	return f.check
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	f.calls = append(f.calls, "login "+email+" "+password)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	raw := fmt.Sprintf(`{"id":7,"name":"Ann","email":%q}`, email)
	return &models.LoginResponse{Message: "Success", User: models.NewUser(json.RawMessage(raw))}, nil
}

func (f *fakeAuth) Signup(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	f.calls = append(f.calls, "signup "+req.Name+" "+req.Email)
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &models.RegisterResponse{Name: req.Name, Email: req.Email}, nil
}

func (f *fakeAuth) Logout(ctx context.Context) (*models.LogoutResponse, error) {
	f.calls = append(f.calls, "logout")
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	if f.logout != nil {
		return f.logout, nil
	}
	return &models.LogoutResponse{Message: models.LogoutSuccess}, nil
}

func (f *fakeAuth) CheckEmail(ctx context.Context, email string) (bool, error) {
	f.calls = append(f.calls, "check-email "+email)
	return f.emailFree, f.emailErr
}

func (f *fakeAuth) CheckUsername(ctx context.Context, username string) (bool, error) {
	return true, nil
}

func (f *fakeAuth) SessionExpiry() (time.Time, bool) { return f.expiry, !f.expiry.IsZero() }
func (f *fakeAuth) Close(ctx context.Context) error  { return nil }

// mutating returns the calls that would have hit a mutating endpoint.
func (f *fakeAuth) mutating() []string {
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, "login") || strings.HasPrefix(c, "signup") || c == "logout" {
			out = append(out, c)
		}
	}
	return out
}

type stubDatasets struct{ services.DatasetService }

func newTestApp(t *testing.T, fa *fakeAuth) (*App, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	a := newApp(session.New(fa, nil), fa, stubDatasets{}, strings.NewReader(""), out, nil)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a, out
}

// stubInputs feeds text prompts and password prompts from separate queues
// and records the prompts shown.
func stubInputs(t *testing.T, texts []string, passwords []string) *[]string {
	t.Helper()
	var prompts []string
	origST, origGP := getSimpleText, getPassword

	getSimpleText = func(_ *bufio.Reader, prompt string, _ io.Writer) (string, error) {
		prompts = append(prompts, prompt)
		if len(texts) == 0 {
			return "", io.EOF
		}
		v := texts[0]
		texts = texts[1:]
		return v, nil
	}
	getPassword = func(_ *bufio.Reader, _ io.Writer, prompt string) ([]byte, error) {
		prompts = append(prompts, prompt)
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		v := passwords[0]
		passwords = passwords[1:]
		return []byte(v), nil
	}

	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
	return &prompts
}

func anonymous() services.AuthCheck {
	return services.AuthCheck{Status: services.StatusAnonymous}
}

func TestLogin_EmptyFieldsMakeNoRequest(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"both empty", "", ""},
		{"no password", "ann@example.org", ""},
		{"no email", "", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAuth{check: anonymous()}
			a, out := newTestApp(t, fa)
			stubInputs(t, []string{tt.email}, []string{tt.password})

			err := a.Login(context.Background())
			require.Error(t, err)

			assert.Contains(t, out.String(), "Both fields are required.")
			assert.Empty(t, fa.calls)
			assert.False(t, a.isLoggedIn())
		})
	}
}

func TestLogin_Success(t *testing.T) {
	fa := &fakeAuth{check: anonymous()}
	a, out := newTestApp(t, fa)
	prompts := stubInputs(t, []string{"ann@example.org"}, []string{"secret"})

	require.NoError(t, a.Login(context.Background()))

	assert.Equal(t, []string{"Enter email", "Enter password"}, *prompts)
	assert.Equal(t, []string{"csrf", "check", "login ann@example.org secret"}, fa.calls)
	assert.Contains(t, out.String(), "Welcome Back")
	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(Ann <ann@example.org>)", a.getStatus())
}

func TestLogin_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"wrong credentials", &client.StatusError{StatusCode: 401}, MsgBadCredentials},
		{"server error", &client.StatusError{StatusCode: 500}, MsgLoginServer},
		{"bad request", &client.StatusError{StatusCode: 400}, MsgLoginServer},
		{"network", fmt.Errorf("%w: dial tcp: refused", client.ErrUnavailable), MsgNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAuth{check: anonymous(), loginErr: tt.err}
			a, out := newTestApp(t, fa)
			stubInputs(t, []string{"ann@example.org"}, []string{"secret"})

			err := a.Login(context.Background())
			require.Error(t, err)
			assert.Contains(t, out.String(), tt.want)
			assert.False(t, a.isLoggedIn())
		})
	}
}

func TestClassifyErrors(t *testing.T) {
	unavailable := fmt.Errorf("%w: timeout", client.ErrUnavailable)
	autoLogin := fmt.Errorf("%w: %w", session.ErrAutoLoginFailed, &client.StatusError{StatusCode: 401})

	assert.Equal(t, MsgBadCredentials, classifyLoginError(fmt.Errorf("login error: %w", &client.StatusError{StatusCode: 401})))
	assert.Equal(t, MsgLoginServer, classifyLoginError(&client.StatusError{StatusCode: 403}))
	assert.Equal(t, MsgNetwork, classifyLoginError(unavailable))
	assert.Equal(t, MsgNoToken, classifyLoginError(client.ErrNoCSRFToken))
	assert.Equal(t, MsgNetwork, classifyLoginError(fmt.Errorf("login error: %w: %w", client.ErrNoCSRFToken, unavailable)))
	assert.Equal(t, MsgNoToken, classifySignupError(fmt.Errorf("register error: %w", client.ErrNoCSRFToken)))
	assert.Equal(t, MsgNetwork, classifyLoginError(errors.New("boom")))

	assert.Equal(t, MsgEmailInUse, classifySignupError(&client.StatusError{StatusCode: 409}))
	assert.Equal(t, MsgSignupServer, classifySignupError(&client.StatusError{StatusCode: 400}))
	assert.Equal(t, MsgNetwork, classifySignupError(unavailable))
	assert.Equal(t, MsgAutoLogin, classifySignupError(autoLogin))

	assert.Equal(t, MsgNetwork, classifyCheckError(unavailable))
	assert.Equal(t, MsgCheckFailed, classifyCheckError(&client.StatusError{StatusCode: 500}))
}

func TestSignup_Success(t *testing.T) {
	fa := &fakeAuth{check: anonymous(), emailFree: true}
	a, out := newTestApp(t, fa)
	prompts := stubInputs(t, []string{"Ann", "ann@example.org"}, []string{"pw", "pw"})

	require.NoError(t, a.Signup(context.Background()))

	assert.Equal(t, []string{"Enter name", "Enter email", "Enter password", "Confirm password"}, *prompts)
	assert.Equal(t, []string{"signup Ann ann@example.org", "login ann@example.org pw"}, fa.mutating())
	assert.Contains(t, out.String(), "Your account is created successfully")
	assert.True(t, a.isLoggedIn())
}

func TestSignup_ValidationMakesNoRequest(t *testing.T) {
	tests := []struct {
		name      string
		texts     []string
		passwords []string
		want      string
	}{
		{"missing name", []string{"", "ann@example.org"}, []string{"pw", "pw"}, "All fields are required."},
		{"missing password", []string{"Ann", "ann@example.org"}, []string{"", ""}, "All fields are required."},
		{"mismatch", []string{"Ann", "ann@example.org"}, []string{"pw", "px"}, "Passwords doesn't match!"},
		{"empty confirmation", []string{"Ann", "ann@example.org"}, []string{"pw", ""}, "Passwords doesn't match!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAuth{check: anonymous(), emailFree: true}
			a, out := newTestApp(t, fa)
			stubInputs(t, tt.texts, tt.passwords)

			require.Error(t, a.Signup(context.Background()))
			assert.Contains(t, out.String(), tt.want)
			assert.Empty(t, fa.calls)
		})
	}
}

func TestSignup_EmailTakenStopsBeforeRegister(t *testing.T) {
	fa := &fakeAuth{check: anonymous(), emailFree: false}
	a, out := newTestApp(t, fa)
	stubInputs(t, []string{"Ann", "ann@example.org"}, []string{"pw", "pw"})

	require.Error(t, a.Signup(context.Background()))
	assert.Contains(t, out.String(), MsgEmailInUse)
	assert.Empty(t, fa.mutating())
}

func TestSignup_EmailLookupErrorIsIgnored(t *testing.T) {
	fa := &fakeAuth{check: anonymous(), emailErr: client.ErrUnavailable}
	a, _ := newTestApp(t, fa)
	stubInputs(t, []string{"Ann", "ann@example.org"}, []string{"pw", "pw"})

	require.NoError(t, a.Signup(context.Background()))
	assert.Len(t, fa.mutating(), 2)
}

func TestSignup_Conflict(t *testing.T) {
	fa := &fakeAuth{check: anonymous(), emailFree: true, signupErr: &client.StatusError{StatusCode: 409}}
	a, out := newTestApp(t, fa)
	stubInputs(t, []string{"Ann", "ann@example.org"}, []string{"pw", "pw"})

	require.Error(t, a.Signup(context.Background()))
	assert.Contains(t, out.String(), MsgEmailInUse)
	assert.Equal(t, []string{"signup Ann ann@example.org"}, fa.mutating())
}

func TestSignup_AutoLoginFailure(t *testing.T) {
	fa := &fakeAuth{check: anonymous(), emailFree: true, loginErr: &client.StatusError{StatusCode: 500}}
	a, out := newTestApp(t, fa)
	stubInputs(t, []string{"Ann", "ann@example.org"}, []string{"pw", "pw"})

	err := a.Signup(context.Background())
	require.ErrorIs(t, err, session.ErrAutoLoginFailed)
	assert.Contains(t, out.String(), MsgAutoLogin)
	assert.False(t, a.isLoggedIn())
}

func TestLogout_AfterAuthenticatedCheck(t *testing.T) {
	fa := &fakeAuth{check: services.AuthCheck{
		Status: services.StatusAuthenticated,
		User:   models.NewUser(json.RawMessage(`{"id":1}`)),
	}}
	a, out := newTestApp(t, fa)
	ctx := context.Background()

	a.bootstrap(ctx)
	require.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Signed in as")

	require.NoError(t, a.Logout(ctx))
	assert.Contains(t, out.String(), "You are logged out")
	assert.False(t, a.isLoggedIn())
	assert.Equal(t, "(anonymous)", a.getStatus())

	lines := capturePrintln(t)
	r := bufio.NewReader(strings.NewReader("help\nexit\n"))
	runREPL(ctx, a, a.getStatus, r)
	assert.Contains(t, *lines, helpAnonymous)
	assert.NotContains(t, *lines, helpLoggedIn)
}

func TestLogout_Messages(t *testing.T) {
	tests := []struct {
		name     string
		resp     *models.LogoutResponse
		err      error
		want     string
		wantFail bool
	}{
		{"success", &models.LogoutResponse{Message: models.LogoutSuccess}, nil, "You are logged out", false},
		{"no session", &models.LogoutResponse{Message: models.LogoutFailed}, nil, "You are not logged in yet!", false},
		{"unexpected message", &models.LogoutResponse{Message: "??"}, nil, MsgLogoutProblem, false},
		{"error", nil, client.ErrUnavailable, MsgLogoutProblem, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAuth{check: anonymous(), logout: tt.resp, logoutErr: tt.err}
			a, out := newTestApp(t, fa)

			err := a.Logout(context.Background())
			if tt.wantFail {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestBootstrap_CheckFailureWarns(t *testing.T) {
	fa := &fakeAuth{check: services.AuthCheck{Status: services.StatusCheckFailed, Err: client.ErrUnavailable}}
	a, out := newTestApp(t, fa)

	a.bootstrap(context.Background())

	assert.Contains(t, out.String(), MsgNetwork)
	assert.False(t, a.isLoggedIn())
}

func TestWhoAmI(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		fa := &fakeAuth{check: anonymous()}
		a, out := newTestApp(t, fa)
		a.bootstrap(context.Background())

		require.NoError(t, a.WhoAmI(context.Background()))
		assert.Contains(t, out.String(), "Session: anonymous")
		assert.Contains(t, out.String(), MsgNotLoggedIn)
	})

	t.Run("signed in", func(t *testing.T) {
		fa := &fakeAuth{check: anonymous(), expiry: time.Now().Add(time.Hour)}
		a, out := newTestApp(t, fa)
		stubInputs(t, []string{"ann@example.org"}, []string{"secret"})
		require.NoError(t, a.Login(context.Background()))

		require.NoError(t, a.WhoAmI(context.Background()))
		s := out.String()
		assert.Contains(t, s, "Session: authenticated")
		assert.Contains(t, s, "Name:    Ann")
		assert.Contains(t, s, "Email:   ann@example.org")
		assert.Contains(t, s, "ID:      7")
		assert.Contains(t, s, "Expires: ")
	})
}

func TestLogin_PipedStdin(t *testing.T) {
	stubTerminal(t, false, nil, errors.New("must not read the fd"))

	fa := &fakeAuth{check: anonymous()}
	out := &bytes.Buffer{}
	in := strings.NewReader("ann@example.org\nsecret\nwhoami\n")
	a := newApp(session.New(fa, nil), fa, stubDatasets{}, in, out, nil)

	require.NoError(t, a.Login(context.Background()))
	assert.Contains(t, fa.calls, "login ann@example.org secret")
	assert.True(t, a.isLoggedIn())

	next, err := readLine(a.reader)
	require.NoError(t, err)
	assert.Equal(t, "whoami", next)
}
