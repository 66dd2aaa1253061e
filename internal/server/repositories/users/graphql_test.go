package users

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/server/graphql"
	"github.com/dmitrijs2005/authgate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor answers every Execute call with a canned data document.
type fakeExecutor struct {
	data string
	err  error

	lastQuery     string
	lastVariables map[string]any
}

func (f *fakeExecutor) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	f.lastQuery = query
	f.lastVariables = variables
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.data), out)
}

func TestGraphQLCreate_Success(t *testing.T) {
	fe := &fakeExecutor{data: `{"insert_users_one":{"id":"0b7c","username":"ana","email":"ana@x.com","created_at":"2025-01-02T03:04:05.123456+00:00"}}`}
	repo := NewGraphQLRepository(fe)

	got, err := repo.Create(context.Background(), &models.User{UserName: "ana", Email: "ana@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	assert.Equal(t, "0b7c", got.ID)
	assert.Equal(t, "ana", got.UserName)
	assert.Equal(t, 2025, got.CreatedAt.Year())
	assert.Equal(t, map[string]any{"username": "ana", "email": "ana@x.com", "password_hash": "h"}, fe.lastVariables)
	assert.Contains(t, fe.lastQuery, "insert_users_one")
}

func TestGraphQLCreate_Duplicate(t *testing.T) {
	fe := &fakeExecutor{err: &graphql.ExecutionError{Messages: []string{"Uniqueness violation. duplicate key value violates unique constraint \"users_username_key\""}}}
	repo := NewGraphQLRepository(fe)

	_, err := repo.Create(context.Background(), &models.User{UserName: "ana", Email: "ana@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestGraphQLCreate_UpstreamError(t *testing.T) {
	fe := &fakeExecutor{err: &graphql.ExecutionError{Messages: []string{"permission denied"}}}
	repo := NewGraphQLRepository(fe)

	_, err := repo.Create(context.Background(), &models.User{UserName: "ana"})
	require.ErrorIs(t, err, common.ErrUpstream)
	assert.NotErrorIs(t, err, common.ErrAlreadyExists)
}

func TestGraphQLGetByEmailOrUsername(t *testing.T) {
	fe := &fakeExecutor{data: `{"users":[{"id":7,"username":"ana","email":"ana@x.com","password_hash":"h","created_at":"2025-01-02T03:04:05Z"}]}`}
	repo := NewGraphQLRepository(fe)

	got, err := repo.GetByEmailOrUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, "h", got.PasswordHash)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), got.CreatedAt.UTC())
	assert.Equal(t, "ana", fe.lastVariables["emailOrUsername"])
}

func TestGraphQLGetByID_NotFound(t *testing.T) {
	repo := NewGraphQLRepository(&fakeExecutor{data: `{"users":[]}`})

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGraphQLGetByID_ExecError(t *testing.T) {
	repo := NewGraphQLRepository(&fakeExecutor{err: errors.New("boom")})

	_, err := repo.GetByID(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get user: boom")
}

func TestGraphQLUpdatePasswordHash(t *testing.T) {
	repo := NewGraphQLRepository(&fakeExecutor{data: `{"update_users":{"affected_rows":1}}`})
	require.NoError(t, repo.UpdatePasswordHash(context.Background(), "u", "h"))

	repo = NewGraphQLRepository(&fakeExecutor{data: `{"update_users":{"affected_rows":0}}`})
	require.ErrorIs(t, repo.UpdatePasswordHash(context.Background(), "u", "h"), common.ErrorNotFound)
}
