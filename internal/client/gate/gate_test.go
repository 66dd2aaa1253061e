package gate

import (
	"testing"

	"github.com/dmitrijs2005/authgate/internal/client/session"
	"github.com/stretchr/testify/assert"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		in   string
		want Route
	}{
		{"", RouteHome},
		{"/", RouteHome},
		{" index ", RouteHome},
		{"/(auth)/login/", RouteLogin},
		{"settings/profile", Route("settings/profile")},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseRoute(tt.in), "input %q", tt.in)
	}
}

func TestRoute_Predicates(t *testing.T) {
	assert.True(t, RouteLogin.InAuthGroup())
	assert.True(t, RouteResetPassword.InAuthGroup())
	assert.False(t, Route("auth/login").InAuthGroup())
	assert.False(t, RouteHome.InAuthGroup())

	assert.True(t, Route("").IsHome())
	assert.True(t, RouteNotFound.IsNotFound())
	assert.True(t, Route("+not-found/extra").IsNotFound())
	assert.False(t, Route("settings").IsNotFound())

	assert.Equal(t, []string{"(auth)", "login"}, RouteLogin.Segments())
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		route Route
		state session.State
		want  Decision
	}{
		{"unknown on protected route waits", Route("settings"), session.StateUnknown, Decision{}},
		{"unknown on auth route waits", RouteLogin, session.StateUnknown, Decision{}},
		{"authenticated on login goes home", RouteLogin, session.StateAuthenticated, Decision{Redirect: true, To: RouteHome}},
		{"authenticated on signup goes home", RouteSignup, session.StateAuthenticated, Decision{Redirect: true, To: RouteHome}},
		{"authenticated on home stays", RouteHome, session.StateAuthenticated, Decision{}},
		{"authenticated on protected stays", Route("settings"), session.StateAuthenticated, Decision{}},
		{"unauthenticated on protected goes to login", Route("settings"), session.StateUnauthenticated, Decision{Redirect: true, To: RouteLogin}},
		{"unauthenticated on home stays", RouteHome, session.StateUnauthenticated, Decision{}},
		{"unauthenticated on not found stays", RouteNotFound, session.StateUnauthenticated, Decision{}},
		{"unauthenticated on forgot password stays", RouteForgotPassword, session.StateUnauthenticated, Decision{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.route, tt.state)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Evaluate(tt.route, tt.state))
		})
	}
}
