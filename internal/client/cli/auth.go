package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mlplayground/internal/client/client"
	"github.com/dmitrijs2005/mlplayground/internal/client/forms"
	"github.com/dmitrijs2005/mlplayground/internal/client/models"
	"github.com/dmitrijs2005/mlplayground/internal/client/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const (
	MsgNetwork        = "Network error. Please check your connection."
	MsgBadCredentials = "Email or password is wrong. Please try again."
	MsgLoginServer    = "Server not connected. Please try again later."
	MsgEmailInUse     = "Email is already in use."
	MsgSignupServer   = "Server error. Please try again later."
	MsgAutoLogin      = "Your account is created, but signing in failed. Please log in."
	MsgNoToken        = "Could not get a security token from the server. Please try again."
	MsgCheckFailed    = "Could not verify your session; continuing signed out."

	MsgWelcome       = "Welcome Back"
	MsgSignedUp      = "Your account is created successfully"
	MsgLoggedOut     = "You are logged out"
	MsgNotLoggedIn   = "You are not logged in yet!"
	MsgLogoutProblem = "There is something wrong please try again!"
)

var errEmailTaken = errors.New("email is already in use")

// classifyLoginError maps a login failure to the message shown to the user.
func classifyLoginError(err error) string {
	switch {
	case errors.Is(err, client.ErrUnavailable):
		return MsgNetwork
	case errors.Is(err, client.ErrNoCSRFToken):
		return MsgNoToken
	case client.StatusCode(err) == http.StatusUnauthorized:
		return MsgBadCredentials
	case client.StatusCode(err) != 0:
		return MsgLoginServer
	}
	return MsgNetwork
}

// classifySignupError maps a signup failure to the message shown to the user.
func classifySignupError(err error) string {
	switch {
	case errors.Is(err, session.ErrAutoLoginFailed):
		return MsgAutoLogin
	case errors.Is(err, client.ErrUnavailable):
		return MsgNetwork
	case errors.Is(err, client.ErrNoCSRFToken):
		return MsgNoToken
	case client.StatusCode(err) == http.StatusConflict:
		return MsgEmailInUse
	case client.StatusCode(err) != 0:
		return MsgSignupServer
	}
	return MsgNetwork
}

func classifyCheckError(err error) string {
	if errors.Is(err, client.ErrUnavailable) {
		return MsgNetwork
	}
	return MsgCheckFailed
}

func (a *App) validationFailed(err error) bool {
	var ve *forms.ValidationError
	if errors.As(err, &ve) {
		a.alert(ve.Message)
		return true
	}
	return false
}

// Login prompts for credentials and signs in. Empty fields are rejected
// locally without contacting the server.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out, "Enter password")
	if err != nil {
		return err
	}

	form := forms.Login{Email: email, Password: string(password)}
	if err := form.Validate(); err != nil {
		a.validationFailed(err)
		return err
	}

	err = a.pending("Signing in...", func() error {
		_, err := a.session.Login(ctx, form.Email, form.Password)
		return err
	})
	if err != nil {
		a.logger.Debug(ctx, "login failed", "error", err)
		a.alert(classifyLoginError(err))
		return err
	}

	a.toast(MsgWelcome)
	return nil
}

// Signup prompts for the registration fields, checks that the e-mail is
// free, registers and signs in.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out, "Enter password")
	if err != nil {
		return err
	}
	password2, err := getPassword(a.reader, a.out, "Confirm password")
	if err != nil {
		return err
	}

	form := forms.Signup{Name: name, Email: email, Password: string(password), Password2: string(password2)}
	if err := form.Validate(); err != nil {
		a.validationFailed(err)
		return err
	}

	if free, err := a.auth.CheckEmail(ctx, form.Email); err != nil {
		a.logger.Debug(ctx, "email lookup failed", "error", err)
	} else if !free {
		a.alert(MsgEmailInUse)
		return errEmailTaken
	}

	err = a.pending("Creating account...", func() error {
		_, err := a.session.Signup(ctx, form.Request())
		return err
	})
	if err != nil {
		a.logger.Debug(ctx, "signup failed", "error", err)
		a.alert(classifySignupError(err))
		return err
	}

	a.toast(MsgSignedUp)
	return nil
}

// Logout ends the server session. The server answers "Failed" when there
// was no session to end.
func (a *App) Logout(ctx context.Context) error {
	var resp *models.LogoutResponse
	err := a.pending("Signing out...", func() error {
		var err error
		resp, err = a.session.Logout(ctx)
		return err
	})
	if err != nil {
		a.logger.Debug(ctx, "logout failed", "error", err)
		a.alert(MsgLogoutProblem)
		return err
	}

	switch resp.Message {
	case models.LogoutSuccess:
		a.toast(MsgLoggedOut)
	case models.LogoutFailed:
		a.warn(MsgNotLoggedIn)
	default:
		a.alert(MsgLogoutProblem)
	}
	return nil
}

// WhoAmI prints the current identity and, when the access token cookie is
// readable, when the session expires.
func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	if a.config != nil {
		a.printf("Server:  %s\n", a.config.APIBaseURL)
	}
	a.printf("Session: %s\n", snap.State)

	if !snap.Authenticated() {
		if snap.CheckErr != nil {
			a.warn(classifyCheckError(snap.CheckErr))
		}
		a.warn(MsgNotLoggedIn)
		return nil
	}

	p, err := snap.User.Profile()
	if err != nil {
		a.printf("User:    %s\n", snap.User)
	} else {
		if p.Name != "" {
			a.printf("Name:    %s\n", p.Name)
		}
		if p.Email != "" {
			a.printf("Email:   %s\n", p.Email)
		}
		if p.ID != nil {
			a.printf("ID:      %v\n", p.ID)
		}
	}

	if exp, ok := a.auth.SessionExpiry(); ok {
		left := time.Until(exp).Round(time.Second)
		if left > 0 {
			a.printf("Expires: %s (in %s)\n", exp.Local().Format(time.DateTime), left)
		} else {
			a.warn(fmt.Sprintf("Access token expired at %s", exp.Local().Format(time.DateTime)))
		}
	}
	return nil
}
