// Package client contains the client-side building blocks for talking to the
// auth gateway and for bootstrapping local storage.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Signup, Login, Me, RequestPasswordReset, ResetPassword, Ping.
//  2. An HTTP implementation (see HTTPClient) that speaks the gateway's JSON
//     action contract, applies a per-call timeout and maps HTTP statuses to
//     the sentinel errors in package common. Ping uses the gRPC health
//     service when a health address is configured.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Returned errors match common.ErrValidation, common.ErrAlreadyExists,
// common.ErrUnauthorized, common.ErrRateLimited, common.ErrUpstream or
// ErrUnavailable with errors.Is. common.Message extracts the text to show.
package client
