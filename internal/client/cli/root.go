package cli

import (
	"context"

	"github.com/dmitrijs2005/authgate/internal/common"
)

// Root restores the session, starts the connectivity watcher and runs the
// REPL until the user leaves.
func (a *App) Root(ctx context.Context) {
	a.say("Welcome to authgate CLI (type 'help' for commands)")

	if err := a.session.Load(ctx); err != nil {
		a.say(common.Message(err))
	}
	a.gate.Refresh()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
