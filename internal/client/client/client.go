package client

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/client/models"
)

type Client interface {
	Close() error
	Signup(ctx context.Context, username, email, password string) (*models.Profile, error)
	Login(ctx context.Context, emailOrUsername, password string) (*models.LoginResult, error)
	Me(ctx context.Context, token string) (*models.Profile, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) (string, error)
	Ping(ctx context.Context) error
}
