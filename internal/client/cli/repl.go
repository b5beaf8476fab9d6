package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	SignInWithGoogle(ctx context.Context) error
	SignInWithApple(ctx context.Context) error
	Logout(ctx context.Context) error
	Open(ctx context.Context, location string) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Commands
//
//	help              show available commands
//	login             sign in with email and password
//	register          create an account
//	reset             send a password reset email
//	google | apple    social sign-in
//	logout            sign out
//	open <location>   navigate, e.g. "open /tabs/tab2"
//	status            show session and location
//	exit | quit       leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// their own outcome.
//
// The reader is shared with the command prompts, so the loop must not read
// ahead of the current line.
func runREPL(ctx context.Context, a execIface, t func(string, ...any) string, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("authgate %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(t("cli.help"))

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "reset":
			_ = a.ResetPassword(ctx)

		case "google":
			_ = a.SignInWithGoogle(ctx)

		case "apple":
			_ = a.SignInWithApple(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <location>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn(t("cli.bye"))
			return

		default:
			printlnFn(t("cli.unknownCommand", cmd))
		}
	}
}
