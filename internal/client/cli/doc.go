// Package cli provides the interactive ML Playground command-line client.
//
// It wires configuration, the workspace database, the API client and the
// auth session, then runs a REPL. On start the session bootstrap runs once
// (csrf token, then session check) before the prompt appears.
//
// Key features:
//   - login / signup / logout / whoami against the playground auth API
//   - point annotation: point, undo, clear, class, brush, name, new, show
//   - export to a JSON file, import a JSON file and preview it
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// The REPL subscribes to the session, so commands that need a logged-in user
// appear in help only while one is present.
package cli
