// Package cli provides the interactive authgate command-line client.
//
// It wires configuration, the local token store, the gateway client, the
// session and the route guard, then runs a REPL in which every command is a
// screen: login, signup, forgot-password, reset-password and home.
//
// Key features:
//   - Session restored from the local database on start
//   - Screen navigation guarded by the session state
//   - Background connectivity watcher
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
