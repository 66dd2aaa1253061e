package metadata

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/common"
)

// AuthScope holds everything the session persists.
const AuthScope = "auth"

// TokenStore persists the bearer token under common.TokenKey.
type TokenStore struct {
	repo Repository
}

func NewTokenStore(repo Repository) *TokenStore {
	return &TokenStore{repo: repo}
}

// Load returns the stored token, or "" when there is none.
func (s *TokenStore) Load(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.TokenKey)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *TokenStore) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.TokenKey, []byte(token))
}

func (s *TokenStore) Delete(ctx context.Context) error {
	return s.repo.Delete(ctx, common.TokenKey)
}
