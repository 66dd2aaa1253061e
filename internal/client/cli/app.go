package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/client"
	"github.com/dmitrijs2005/authgate/internal/client/config"
	"github.com/dmitrijs2005/authgate/internal/client/gate"
	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authgate/internal/client/services"
	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/dmitrijs2005/authgate/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// authService is what the screens need from services.AuthService.
type authService interface {
	Signup(ctx context.Context, username, email string, password, confirm []byte) (*models.Profile, error)
	Login(ctx context.Context, emailOrUsername string, password []byte) (*models.Profile, error)
	Logout(ctx context.Context) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token string, password, confirm []byte) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	config      *config.Config
	authService authService
	session     *session.Session
	gate        *gate.Controller
	db          *sql.DB
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	db, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.GatewayURL, c.HealthAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := metadata.NewTokenStore(metadata.NewSQLiteRepository(db, metadata.AuthScope))
	sess := session.New(tokens, logger,
		session.WithProfileFetcher(api),
		session.WithLoadTimeout(2*c.RequestTimeout),
	)
	as := services.NewAuthService(api, sess, logger)

	app := newApp(c, as, sess, bufio.NewReader(os.Stdin), os.Stdout, logger)
	app.db = db
	return app, nil
}

func newApp(c *config.Config, as authService, sess *session.Session, r *bufio.Reader, w io.Writer, logger logging.Logger) *App {
	a := &App{
		config:      c,
		authService: as,
		session:     sess,
		logger:      logger.With("module", "cli"),
		reader:      r,
		out:         w,
	}
	a.gate = gate.NewController(sess, a, gate.RouteHome, logger)
	return a
}

func (a *App) Run(ctx context.Context) {
	defer a.close()
	a.Root(ctx)
}

func (a *App) close() {
	a.gate.Close()
	if err := a.authService.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing gateway client", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "Switched to %s mode\n", mode)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
