package gate

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/dmitrijs2005/authgate/internal/logging"
)

// Navigator shows a screen in place of the current one.
type Navigator interface {
	Replace(route Route)
}

// StateSource is the part of session.Session the controller watches.
type StateSource interface {
	State() session.State
	Subscribe(fn func(session.Snapshot)) (unsubscribe func())
}

// Controller applies Evaluate whenever the route or the session changes.
type Controller struct {
	source StateSource
	nav    Navigator
	logger logging.Logger

	mu          sync.Mutex
	current     Route
	unsubscribe func()
}

func NewController(source StateSource, nav Navigator, start Route, logger logging.Logger) *Controller {
	c := &Controller{
		source:  source,
		nav:     nav,
		logger:  logger.With("module", "gate"),
		current: ParseRoute(string(start)),
	}
	c.unsubscribe = source.Subscribe(func(snap session.Snapshot) {
		c.apply(snap.State)
	})
	return c
}

// Navigate moves to route and returns the screen actually shown, which
// differs from route when the guard redirects.
func (c *Controller) Navigate(route Route) Route {
	c.mu.Lock()
	c.current = ParseRoute(string(route))
	c.mu.Unlock()

	c.apply(c.source.State())
	return c.Current()
}

// Refresh re-evaluates the current route against the current state.
func (c *Controller) Refresh() Route {
	c.apply(c.source.State())
	return c.Current()
}

func (c *Controller) Current() Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Controller) apply(state session.State) {
	c.mu.Lock()
	from := c.current
	d := Evaluate(from, state)
	if !d.Redirect || d.To == from {
		c.mu.Unlock()
		return
	}
	c.current = d.To
	c.mu.Unlock()

	c.logger.Debug(context.Background(), "redirect", "from", string(from), "to", string(d.To), "state", state.String())
	c.nav.Replace(d.To)
}
