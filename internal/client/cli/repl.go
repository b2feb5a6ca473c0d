package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Refresh(ctx context.Context) error
	UpdateAccount(ctx context.Context) error
	UpdateAvatar(ctx context.Context) error
	UpdateCover(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". Handlers report their own errors, so the loop ignores
// them.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, whoami, refresh, account, avatar, cover,
//	               password, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vidtube%s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, refresh, account, avatar, cover, password, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "whoami", "me":
			_ = a.WhoAmI(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "account":
			_ = a.UpdateAccount(ctx)

		case "avatar":
			_ = a.UpdateAvatar(ctx)

		case "cover":
			_ = a.UpdateCover(ctx)

		case "password":
			_ = a.ChangePassword(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
