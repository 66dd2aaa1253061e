package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authgate/internal/client/gate"
	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/dmitrijs2005/authgate/internal/common"
)

const (
	msgAlreadySignedIn = "You are already signed in."
	msgSignupDone      = "Account created. Please login."
	msgSignedOut       = "You have been signed out."
)

// open navigates to route and reports whether the guard allowed it.
func (a *App) open(route gate.Route) bool {
	if a.gate.Navigate(route) != route {
		a.say(msgAlreadySignedIn)
		return false
	}
	return true
}

// fail shows err on the current screen. Errors never leave the screen.
func (a *App) fail(ctx context.Context, err error) error {
	a.logger.Debug(ctx, "screen error", "route", string(a.gate.Current()), "error", err)
	a.say(common.Message(err))
	return err
}

func (a *App) say(msg string) {
	fmt.Fprintln(a.out, msg)
}

// Signup is the signup screen. On success the user is sent to the login
// screen.
func (a *App) Signup(ctx context.Context) error {
	if !a.open(gate.RouteSignup) {
		return nil
	}

	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(confirm)

	if _, err := a.authService.Signup(ctx, username, email, password, confirm); err != nil {
		return a.fail(ctx, err)
	}

	a.say(msgSignupDone)
	a.gate.Navigate(gate.RouteLogin)
	return nil
}

// Login is the login screen. The guard moves the user home once the
// session becomes authenticated.
func (a *App) Login(ctx context.Context) error {
	if !a.open(gate.RouteLogin) {
		return nil
	}

	login, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(password)

	user, err := a.authService.Login(ctx, login, password)
	if err != nil {
		return a.fail(ctx, err)
	}

	a.say(fmt.Sprintf("Welcome, %s!", user.Username))
	return nil
}

func (a *App) ForgotPassword(ctx context.Context) error {
	if !a.open(gate.RouteForgotPassword) {
		return nil
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}

	msg, err := a.authService.ForgotPassword(ctx, email)
	if err != nil {
		return a.fail(ctx, err)
	}

	a.say(msg)
	return nil
}

// ResetPassword takes the token from a reset link and a new password.
func (a *App) ResetPassword(ctx context.Context, token string) error {
	if !a.open(gate.RouteResetPassword) {
		return nil
	}

	var err error
	if token == "" {
		if token, err = getSimpleText(a.reader, "Reset token", a.out); err != nil {
			return a.fail(ctx, err)
		}
	}

	password, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return a.fail(ctx, err)
	}
	defer common.WipeByteArray(confirm)

	msg, err := a.authService.ResetPassword(ctx, token, password, confirm)
	if err != nil {
		return a.fail(ctx, err)
	}

	a.say(msg)
	a.gate.Navigate(gate.RouteLogin)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.say("You are not signed in.")
		return nil
	}
	if err := a.authService.Logout(ctx); err != nil {
		return a.fail(ctx, err)
	}
	a.say(msgSignedOut)
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	snap := a.session.Snapshot()
	switch {
	case snap.State != session.StateAuthenticated:
		a.say("Not signed in.")
	case snap.User == nil:
		a.say("Signed in (profile not loaded).")
	default:
		a.say(fmt.Sprintf("%s <%s> id=%s", snap.User.Username, snap.User.Email, snap.User.ID))
	}
	return nil
}
