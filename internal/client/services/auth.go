// Package services contains the client's screen-level operations. Each one
// validates its form input, calls the gateway and updates the session.
package services

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
)

// Form messages shown before anything is sent to the gateway.
const (
	MsgFillAllFields       = "Please fill in all fields."
	MsgPasswordsMismatch   = "Passwords do not match."
	MsgPasswordTooShort    = "Password must be at least 6 characters."
	MsgEnterCredentials    = "Please enter both username/email and password."
	MsgEnterEmail          = "Please enter your email address."
	MsgEnterResetToken     = "Please enter the reset token from the email."
	MsgUnexpectedLoginBody = "Unexpected response from the server."
)

// Session is the part of session.Session the services change.
type Session interface {
	Login(ctx context.Context, token string, user *models.Profile) error
	Logout(ctx context.Context) error
}

// AuthService backs the login, signup, forgot-password and reset-password
// screens.
type AuthService struct {
	client  client.Client
	session Session
	logger  logging.Logger
}

func NewAuthService(c client.Client, s Session, logger logging.Logger) *AuthService {
	return &AuthService{client: c, session: s, logger: logger.With("module", "auth_service")}
}

// Signup creates an account. The caller should send the user to the login
// screen on success; no session is started.
func (a *AuthService) Signup(ctx context.Context, username, email string, password, confirm []byte) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || len(password) == 0 || len(confirm) == 0 {
		return nil, common.Validation(MsgFillAllFields)
	}
	if !bytes.Equal(password, confirm) {
		return nil, common.Validation(MsgPasswordsMismatch)
	}
	if utf8.RuneCount(password) < common.MinPasswordLength {
		return nil, common.Validation(MsgPasswordTooShort)
	}

	p, err := a.client.Signup(ctx, username, email, string(password))
	if err != nil {
		a.logger.Warn(ctx, "signup failed", "error", err)
		return nil, err
	}

	a.logger.Info(ctx, "signed up", "user_id", p.ID)
	return p, nil
}

// Login authenticates and starts a session.
func (a *AuthService) Login(ctx context.Context, emailOrUsername string, password []byte) (*models.Profile, error) {
	emailOrUsername = strings.TrimSpace(emailOrUsername)
	if emailOrUsername == "" || len(password) == 0 {
		return nil, common.Validation(MsgEnterCredentials)
	}

	res, err := a.client.Login(ctx, emailOrUsername, string(password))
	if err != nil {
		a.logger.Warn(ctx, "login failed", "error", err)
		return nil, err
	}
	if res.Token == "" {
		return nil, common.NewError(common.ErrUpstream, MsgUnexpectedLoginBody)
	}

	user := res.User
	if err := a.session.Login(ctx, res.Token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}

// ForgotPassword asks the gateway to send a reset link and returns the
// gateway's confirmation message.
func (a *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", common.Validation(MsgEnterEmail)
	}

	msg, err := a.client.RequestPasswordReset(ctx, email)
	if err != nil {
		a.logger.Warn(ctx, "password reset request failed", "error", err)
		return "", err
	}
	return msg, nil
}

// ResetPassword sets a new password using a token from a reset link.
func (a *AuthService) ResetPassword(ctx context.Context, token string, password, confirm []byte) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.Validation(MsgEnterResetToken)
	}
	if len(password) == 0 || len(confirm) == 0 {
		return "", common.Validation(MsgFillAllFields)
	}
	if !bytes.Equal(password, confirm) {
		return "", common.Validation(MsgPasswordsMismatch)
	}
	if utf8.RuneCount(password) < common.MinPasswordLength {
		return "", common.Validation(MsgPasswordTooShort)
	}

	msg, err := a.client.ResetPassword(ctx, token, string(password))
	if err != nil {
		a.logger.Warn(ctx, "password reset failed", "error", err)
		return "", err
	}
	return msg, nil
}

func (a *AuthService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *AuthService) Close() error {
	return a.client.Close()
}
