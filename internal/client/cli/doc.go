// Package cli provides the interactive terminal front-end of the client.
//
// It wires configuration, the identity provider, the session store, the
// router with its guards, the credential service, the auth forms and the
// auth screen behind a small REPL. Typical flow: start the identity feed,
// let the guards pick the landing location, start a background
// connectivity watcher, and execute user commands.
//
// Commands:
//   - login / register / reset (email + password prompts)
//   - google / apple (social sign-in)
//   - logout
//   - open <location> / status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
