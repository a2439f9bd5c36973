// Package client contains the transport side of the ML Playground client.
//
// # Overview
//
// The package provides:
//  1. The Client interface covering the auth endpoints: csrf bootstrap,
//     session check, login, register, logout and the availability lookups.
//  2. HTTPClient, a net/http implementation that keeps session cookies in
//     a cookie jar, sends JSON bodies and attaches the X-CSRFToken header
//     to mutating requests.
//  3. Workspace database bootstrap (InitDatabase, RunMigrations) backed by
//     SQLite with embedded goose migrations.
//
// # Error Handling
//
// Transport failures are reported as ErrUnavailable. Non-2xx responses are
// returned as *StatusError, which matches ErrUnauthorized (401, 403) and
// ErrConflict (409) under errors.Is. Use StatusCode to read the raw status.
//
// HTTPClient is safe for concurrent use. All calls honor ctx and are
// additionally bounded by the configured request timeout.
package client
