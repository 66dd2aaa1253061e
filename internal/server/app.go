// Package server wires the auth gateway: configuration, the user store,
// Redis-backed login throttling and reset tokens, the HTTP API and the gRPC
// health endpoint. Run blocks until SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/httpapi"
	"github.com/dmitrijs2005/authgate/internal/server/limiter"
	"github.com/dmitrijs2005/authgate/internal/server/resettokens"
	"github.com/dmitrijs2005/authgate/internal/server/services"
	"github.com/dmitrijs2005/authgate/internal/server/store"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/authgate/internal/server/grpc"
)

const storeCheckInterval = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	store       *store.Store
	redis       *redis.Client
	userService *services.UserService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	st, err := store.Open(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn(ctx, "redis is unreachable, login throttling and password reset are degraded", "addr", c.RedisAddr, "error", err)
	}

	us := services.NewUserService(
		st.Users(),
		limiter.NewLoginLimiter(rdb, c.LoginMaxAttempts, c.LoginAttemptWindow),
		resettokens.NewStore(rdb, c.ResetTokenValidityDuration),
		c,
		logger,
	)

	return &App{config: c, logger: logger, store: st, redis: rdb, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.userService, app.logger, app.config.UpstreamTimeout)
	s := httpapi.NewHTTPServer(app.config.ListenAddr, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.HealthAddrGRPC, app.logger)

	go app.watchStore(ctx, s)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// watchStore reports NOT_SERVING while the user store is unreachable.
func (app *App) watchStore(ctx context.Context, s *gs.HealthServer) {
	ticker := time.NewTicker(storeCheckInterval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, app.config.UpstreamTimeout)
			err := app.store.Ping(pingCtx)
			cancel()

			if ok := err == nil; ok != serving {
				serving = ok
				s.SetServing(ok)
				app.logger.Warn(ctx, "store availability changed", "serving", ok, "error", err)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "backend", app.config.StoreBackend)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if err := app.redis.Close(); err != nil {
		app.logger.Error(ctx, "redis close", "error", err)
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "store close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
