package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/authgate/internal/client/gate"
)

// Replace implements gate.Navigator.
func (a *App) Replace(route gate.Route) {
	fmt.Fprintf(a.out, "-> %s\n", route)
}

// Go opens an arbitrary screen. The guard may send the user elsewhere.
func (a *App) Go(ctx context.Context, route string) error {
	shown := a.gate.Navigate(gate.ParseRoute(route))
	a.say(fmt.Sprintf("On screen %s", shown))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	mode := a.Mode()
	if mode == "" {
		mode = "checking"
	}
	a.say(fmt.Sprintf("session: %s, screen: %s, server: %s", a.session.State(), a.gate.Current(), mode))
	return nil
}

func (a *App) getStatus() string {
	s := string(a.gate.Current())
	if u := a.session.User(); u != nil {
		s = u.Username + " " + s
	}
	if m := a.Mode(); m != "" {
		s = s + " " + string(m)
	}
	return fmt.Sprintf("(%s)", s)
}
