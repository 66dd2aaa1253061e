// Package gate decides whether the current screen may be shown for a given
// session state and, if not, where to send the user instead.
package gate

import (
	"strings"

	"github.com/dmitrijs2005/authgate/internal/client/session"
)

// Route is a slash separated screen path such as "index" or "(auth)/login".
type Route string

const (
	RouteHome           Route = "index"
	RouteLogin          Route = "(auth)/login"
	RouteSignup         Route = "(auth)/signup"
	RouteForgotPassword Route = "(auth)/forgot-password"
	RouteResetPassword  Route = "(auth)/reset-password"
	RouteNotFound       Route = "+not-found"
)

const (
	authGroup      = "(auth)"
	notFoundPrefix = "+not-found"
)

// ParseRoute normalises user input: surrounding slashes are dropped and an
// empty path means home.
func ParseRoute(s string) Route {
	s = strings.Trim(strings.TrimSpace(s), "/")
	if s == "" {
		return RouteHome
	}
	return Route(s)
}

func (r Route) Segments() []string {
	return strings.Split(string(ParseRoute(string(r))), "/")
}

// InAuthGroup reports whether the first segment is the "(auth)" group.
func (r Route) InAuthGroup() bool {
	return r.Segments()[0] == authGroup
}

func (r Route) IsHome() bool {
	return ParseRoute(string(r)) == RouteHome
}

func (r Route) IsNotFound() bool {
	return strings.HasPrefix(r.Segments()[0], notFoundPrefix)
}

type Decision struct {
	Redirect bool
	To       Route
}

// Evaluate is the route guard. It has no side effects.
func Evaluate(route Route, state session.State) Decision {
	switch state {
	case session.StateAuthenticated:
		if route.InAuthGroup() {
			return Decision{Redirect: true, To: RouteHome}
		}
	case session.StateUnauthenticated:
		if !route.IsHome() && !route.IsNotFound() && !route.InAuthGroup() {
			return Decision{Redirect: true, To: RouteLogin}
		}
	}
	return Decision{}
}
