package users

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/server/graphql"
	"github.com/dmitrijs2005/authgate/internal/server/models"
)

// Executor runs a GraphQL document; *graphql.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any, out any) error
}

const insertUserMutation = `
mutation InsertUser($username: String!, $email: String!, $password_hash: String!) {
  insert_users_one(object: {username: $username, email: $email, password_hash: $password_hash}) {
    id
    username
    email
    created_at
  }
}`

const getUserByLoginQuery = `
query GetUser($emailOrUsername: String!) {
  users(where: {_or: [{email: {_eq: $emailOrUsername}}, {username: {_eq: $emailOrUsername}}]}, limit: 1) {
    id
    username
    email
    password_hash
    created_at
  }
}`

const getUserByIDQuery = `
query GetUserByID($id: uuid!) {
  users(where: {id: {_eq: $id}}, limit: 1) {
    id
    username
    email
    created_at
  }
}`

const updatePasswordHashMutation = `
mutation UpdatePasswordHash($id: uuid!, $password_hash: String!) {
  update_users(where: {id: {_eq: $id}}, _set: {password_hash: $password_hash}) {
    affected_rows
  }
}`

// recordID accepts both string (uuid) and numeric primary keys.
type recordID string

func (id *recordID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = recordID(n.String())
	return nil
}

type userRecord struct {
	ID           recordID  `json:"id"`
	UserName     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:           string(r.ID),
		UserName:     r.UserName,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

// GraphQLRepository keeps users in a Hasura-compatible "users" table.
type GraphQLRepository struct {
	exec Executor
}

func NewGraphQLRepository(exec Executor) *GraphQLRepository {
	return &GraphQLRepository{exec: exec}
}

func (r *GraphQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var data struct {
		InsertUsersOne *userRecord `json:"insert_users_one"`
	}

	err := r.exec.Execute(ctx, insertUserMutation, map[string]any{
		"username":      user.UserName,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
	}, &data)
	if err != nil {
		if graphql.IsUniquenessViolation(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if data.InsertUsersOne == nil {
		return nil, fmt.Errorf("%w: insert user returned no record", common.ErrUpstream)
	}

	created := data.InsertUsersOne.toModel()
	created.PasswordHash = user.PasswordHash
	return created, nil
}

func (r *GraphQLRepository) GetByEmailOrUsername(ctx context.Context, emailOrUsername string) (*models.User, error) {
	return r.findOne(ctx, getUserByLoginQuery, map[string]any{"emailOrUsername": emailOrUsername})
}

func (r *GraphQLRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, getUserByIDQuery, map[string]any{"id": id})
}

func (r *GraphQLRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	var data struct {
		UpdateUsers struct {
			AffectedRows int `json:"affected_rows"`
		} `json:"update_users"`
	}

	err := r.exec.Execute(ctx, updatePasswordHashMutation, map[string]any{
		"id":            id,
		"password_hash": passwordHash,
	}, &data)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if data.UpdateUsers.AffectedRows == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *GraphQLRepository) findOne(ctx context.Context, query string, variables map[string]any) (*models.User, error) {
	var data struct {
		Users []userRecord `json:"users"`
	}

	if err := r.exec.Execute(ctx, query, variables, &data); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if len(data.Users) == 0 {
		return nil, common.ErrorNotFound
	}
	return data.Users[0].toModel(), nil
}
