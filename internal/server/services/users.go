// Package services contains the gateway's business logic. UserService
// handles signup, login, password reset and profile lookups on top of the
// user record store.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/users"
)

// checkPassword is a seam for tests.
var checkPassword = auth.CheckPassword

// dummyPassword is hashed once and compared against when the login
// identifier is unknown, so both failure paths pay the bcrypt cost.
const dummyPassword = "authgate-dummy-password"

// LoginLimiter throttles failed logins per identifier.
type LoginLimiter interface {
	Check(ctx context.Context, identifier string) error
	RegisterFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// ResetTokenStore keeps single-use password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string) error
	Consume(ctx context.Context, token string) (string, error)
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string
	User  *models.Profile
}

// UserService provides the gateway's authentication operations.
// limiter and resetTokens may be nil: login is then unthrottled and password
// reset is unavailable.
type UserService struct {
	users         users.Repository
	limiter       LoginLimiter
	resetTokens   ResetTokenStore
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
	resetURL      string

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService from its stores and the gateway config.
func NewUserService(repo users.Repository, limiter LoginLimiter, resetTokens ResetTokenStore, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		users:         repo,
		limiter:       limiter,
		resetTokens:   resetTokens,
		logger:        logger.With("module", "users"),
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenValidity: cfg.TokenValidityDuration,
		bcryptCost:    cfg.BcryptCost,
		resetURL:      cfg.PublicResetURL,
	}
}

// Signup validates the input, hashes the password and creates the user.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (*models.Profile, error) {
	if username == "" || email == "" || password == "" {
		return nil, common.Validation(common.MsgAllFieldsRequired)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	u, err := s.users.Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.NewError(common.ErrAlreadyExists, common.MsgAlreadyExists)
		}
		s.logger.Error(ctx, "signup failed", "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID)
	return u.Profile(), nil
}

// Login checks credentials and issues a signed token. A missing user and a
// wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, emailOrUsername, password string) (*LoginResult, error) {
	if emailOrUsername == "" || password == "" {
		return nil, common.Validation(common.MsgCredentialsRequired)
	}

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, emailOrUsername); err != nil {
			if errors.Is(err, common.ErrRateLimited) {
				return nil, common.NewError(common.ErrRateLimited, common.MsgTooManyAttempts)
			}
			// limiter outage must not lock everybody out
			s.logger.Warn(ctx, "login limiter unavailable", "error", err)
		}
	}

	u, err := s.users.GetByEmailOrUsername(ctx, emailOrUsername)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = checkPassword(s.unknownUserHash(), password)
			return nil, s.loginFailed(ctx, emailOrUsername)
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		return nil, err
	}

	ok, err := checkPassword(u.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "stored password hash is unusable", "user_id", u.ID, "error", err)
	}
	if !ok {
		return nil, s.loginFailed(ctx, emailOrUsername)
	}

	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, emailOrUsername); err != nil {
			s.logger.Warn(ctx, "login limiter reset failed", "error", err)
		}
	}

	s.logger.Info(ctx, "login accepted", "user_id", u.ID)
	return &LoginResult{Token: token, User: u.Profile()}, nil
}

func (s *UserService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := auth.HashPassword(dummyPassword, s.bcryptCost)
		if err != nil {
			s.logger.Error(context.Background(), "dummy hash failed", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// validatePassword checks the length in characters and the byte limit of
// bcrypt.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return common.Validation(common.MsgPasswordTooShort)
	}
	if len(password) > common.MaxPasswordBytes {
		return common.Validation(common.MsgPasswordTooLong)
	}
	return nil
}

func (s *UserService) loginFailed(ctx context.Context, identifier string) error {
	if s.limiter != nil {
		if err := s.limiter.RegisterFailure(ctx, identifier); err != nil {
			s.logger.Warn(ctx, "login limiter update failed", "error", err)
		}
	}
	return common.NewError(common.ErrUnauthorized, common.MsgInvalidCredentials)
}

// RequestPasswordReset issues a reset token for the account with the given
// email. The answer never reveals whether such an account exists.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", common.Validation(common.MsgEmailRequired)
	}

	u, err := s.users.GetByEmailOrUsername(ctx, email)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		s.logger.Info(ctx, "password reset requested for unknown email")
		return common.MsgResetRequested, nil
	case err != nil:
		s.logger.Error(ctx, "password reset lookup failed", "error", err)
		return "", err
	}

	if s.resetTokens == nil {
		s.logger.Warn(ctx, "password reset is not configured", "user_id", u.ID)
		return common.MsgResetRequested, nil
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", fmt.Errorf("reset token: %w", err)
	}
	if err := s.resetTokens.Save(ctx, token, u.ID); err != nil {
		s.logger.Error(ctx, "reset token not saved", "error", err)
		return "", err
	}

	s.logger.Info(ctx, "password reset link issued", "user_id", u.ID, "link", s.resetLink(token))
	return common.MsgResetRequested, nil
}

// ResetPassword sets a new password for the owner of token. The token is
// consumed even when the store update fails afterwards.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) (string, error) {
	if token == "" || password == "" {
		return "", common.Validation(common.MsgAllFieldsRequired)
	}
	if err := validatePassword(password); err != nil {
		return "", err
	}
	if s.resetTokens == nil {
		return "", common.Validation(common.MsgInvalidResetToken)
	}

	userID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.Validation(common.MsgInvalidResetToken)
		}
		return "", err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.Validation(common.MsgInvalidResetToken)
		}
		s.logger.Error(ctx, "password update failed", "user_id", userID, "error", err)
		return "", err
	}

	s.logger.Info(ctx, "password reset", "user_id", userID)
	return common.MsgPasswordReset, nil
}

// Profile returns the profile of the token's owner.
func (s *UserService) Profile(ctx context.Context, token string) (*models.Profile, error) {
	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil, common.NewError(common.ErrUnauthorized, common.MsgInvalidToken)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrUnauthorized, common.MsgInvalidToken)
		}
		return nil, err
	}

	return u.Profile(), nil
}

func (s *UserService) resetLink(token string) string {
	base := strings.TrimRight(s.resetURL, "?")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "token=" + url.QueryEscape(token)
}
