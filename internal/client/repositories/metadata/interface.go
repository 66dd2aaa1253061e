// Package metadata is a small key-value store on the local SQLite database.
// Keys live in scopes so unrelated features never collide.
package metadata

import (
	"context"
)

// Repository is a key-value store bound to one scope. Get returns (nil, nil)
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
