// Package store opens the user record store selected by configuration.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/graphql"
	"github.com/dmitrijs2005/authgate/internal/server/migrations"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// runMigrations is a seam for tests.
var runMigrations = migrations.Up

// pingQuery is the cheapest document any GraphQL endpoint answers.
const pingQuery = `query { __typename }`

type Store struct {
	db      *sql.DB
	graphql *graphql.Client
	users   users.Repository
}

// Open builds the users repository for cfg.StoreBackend. The postgres
// backend is migrated before use.
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Store, error) {
	switch cfg.StoreBackend {
	case config.StoreGraphQL:
		if cfg.GraphQLEndpoint == "" {
			return nil, fmt.Errorf("graphql endpoint is not set")
		}
		if cfg.GraphQLAdminSecret == "" {
			logger.Warn(ctx, "GraphQL admin secret is not set, the data layer may reject requests")
		}
		client := graphql.NewClient(cfg.GraphQLEndpoint, cfg.GraphQLAdminSecret, &http.Client{Timeout: cfg.UpstreamTimeout}, logger)
		return &Store{graphql: client, users: users.NewGraphQLRepository(client)}, nil

	case config.StorePostgres:
		db, err := sql.Open("pgx", cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}
		if err := runMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Store{db: db, users: users.NewPostgresRepository(db)}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (s *Store) Users() users.Repository {
	return s.users
}

// Ping checks that the data layer answers: the SQL connection, or a
// trivial query against the GraphQL endpoint.
func (s *Store) Ping(ctx context.Context) error {
	switch {
	case s.db != nil:
		return s.db.PingContext(ctx)
	case s.graphql != nil:
		return s.graphql.Execute(ctx, pingQuery, nil, nil)
	default:
		return nil
	}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
