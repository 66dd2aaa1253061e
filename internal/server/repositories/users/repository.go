// Package users stores user records. Two backends implement Repository:
// a GraphQL data layer and PostgreSQL.
package users

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/server/models"
)

// Repository is the user record store.
//
// Create returns common.ErrAlreadyExists when the username or email is taken.
// Lookups return common.ErrorNotFound when no record matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmailOrUsername(ctx context.Context, emailOrUsername string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
}
