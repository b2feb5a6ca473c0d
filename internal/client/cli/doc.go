// Package cli provides the interactive vidtube account client.
//
// App wires the configuration and a client.Client into a small REPL:
// register, login, whoami, refresh, account, avatar, cover, password and
// logout. Passwords are read from the terminal without echo.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or stdin closes.
package cli
