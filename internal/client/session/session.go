// Package session owns the client's authentication state: the tri-state
// Unknown/Unauthenticated/Authenticated machine, the persisted bearer token
// and the signed-in profile.
//
// A Session is created once by the CLI and handed to whatever needs it;
// observers learn about changes through Subscribe.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/authgate/internal/client/models"
	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/logging"
	"golang.org/x/sync/singleflight"
)

type State int

const (
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Messages shown when the local store fails.
const (
	MsgLoadFailed   = "Could not restore your session. Please login again."
	MsgSaveFailed   = "Could not save your session. Please try again."
	MsgLogoutFailed = "Could not sign you out. Please try again."
)

// TokenStore persists the bearer token. Load returns "" when none is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// ProfileFetcher resolves the owner of a token. It must return an error
// matching common.ErrUnauthorized when the token is rejected.
type ProfileFetcher interface {
	Me(ctx context.Context, token string) (*models.Profile, error)
}

// Snapshot is a consistent copy of the session.
type Snapshot struct {
	State   State
	Token   string
	User    *models.Profile
	Loading bool
}

// DefaultLoadTimeout bounds one shared Load.
const DefaultLoadTimeout = 30 * time.Second

type Option func(*Session)

// WithLoadTimeout bounds the shared load, which does not inherit the
// cancellation of any single caller.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithProfileFetcher makes Load re-fetch the profile of a restored token.
func WithProfileFetcher(f ProfileFetcher) Option {
	return func(s *Session) {
		s.fetcher = f
	}
}

type Session struct {
	store       TokenStore
	fetcher     ProfileFetcher
	logger      logging.Logger
	loadTimeout time.Duration

	// opMu serialises operations that touch the store so the stored token
	// and the in-memory state change together.
	opMu sync.Mutex

	mu        sync.RWMutex
	state     State
	token     string
	user      *models.Profile
	loading   bool
	observers map[int]func(Snapshot)
	nextID    int

	loadGroup singleflight.Group
	ready     chan struct{}
	readyOnce sync.Once
}

func New(store TokenStore, logger logging.Logger, opts ...Option) *Session {
	s := &Session{
		store:       store,
		logger:      logger.With("module", "session"),
		loadTimeout: DefaultLoadTimeout,
		state:       StateUnknown,
		loading:     true,
		observers:   make(map[int]func(Snapshot)),
		ready:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores the session from the token store. Concurrent calls share one
// in-flight load. A read failure leaves the session Unauthenticated and is
// reported as a common.ErrStorage error.
//
// The shared load keeps the values of the first caller's ctx but not its
// cancellation; it is bounded by the load timeout instead. A caller whose ctx
// ends first gets ctx.Err() while the load carries on for the others.
func (s *Session) Load(ctx context.Context) error {
	ch := s.loadGroup.DoChan("load", func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return nil, s.load(loadCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) load(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	token, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to load token", "error", err)
		s.finishLoad(StateUnauthenticated, "", nil)
		return &common.Error{Kind: common.ErrStorage, Message: MsgLoadFailed}
	}

	if token == "" {
		s.finishLoad(StateUnauthenticated, "", nil)
		return nil
	}

	if s.fetcher == nil {
		s.finishLoad(StateAuthenticated, token, nil)
		return nil
	}

	user, err := s.fetcher.Me(ctx, token)
	switch {
	case err == nil:
		s.finishLoad(StateAuthenticated, token, user)
	case errors.Is(err, common.ErrUnauthorized):
		s.logger.Info(ctx, "stored token rejected, signing out")
		if derr := s.store.Delete(ctx); derr != nil {
			s.logger.Error(ctx, "failed to delete rejected token", "error", derr)
		}
		s.finishLoad(StateUnauthenticated, "", nil)
	default:
		s.logger.Warn(ctx, "profile not refreshed", "error", err)
		s.finishLoad(StateAuthenticated, token, nil)
	}

	return nil
}

func (s *Session) finishLoad(state State, token string, user *models.Profile) {
	s.mu.Lock()
	s.state, s.token, s.user = state, token, user
	s.loading = false
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	s.notify()
}

// Login persists token and then marks the session Authenticated. If the
// write fails the state is left as it was.
func (s *Session) Login(ctx context.Context, token string, user *models.Profile) error {
	if token == "" {
		return common.ErrInvalidToken
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		s.logger.Error(ctx, "failed to save token", "error", err)
		return &common.Error{Kind: common.ErrStorage, Message: MsgSaveFailed}
	}

	s.set(StateAuthenticated, token, user)
	s.logger.Info(ctx, "signed in", "user_id", userID(user))
	return nil
}

// Logout deletes the stored token and then marks the session
// Unauthenticated. If the delete fails the session stays Authenticated.
func (s *Session) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		s.logger.Error(ctx, "failed to delete token", "error", err)
		return &common.Error{Kind: common.ErrStorage, Message: MsgLogoutFailed}
	}

	s.set(StateUnauthenticated, "", nil)
	s.logger.Info(ctx, "signed out")
	return nil
}

func (s *Session) set(state State, token string, user *models.Profile) {
	s.mu.Lock()
	s.state, s.token, s.user = state, token, user
	s.mu.Unlock()

	s.notify()
}

// Ready is closed once the first Load has completed.
func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{State: s.state, Token: s.token, User: s.user, Loading: s.loading}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *models.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Subscribe registers fn to receive a Snapshot after every change. fn runs
// on the goroutine that made the change and must not block.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Session) notify() {
	s.mu.RLock()
	snap := Snapshot{State: s.state, Token: s.token, User: s.user, Loading: s.loading}
	fns := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func userID(u *models.Profile) string {
	if u == nil {
		return ""
	}
	return u.ID
}
