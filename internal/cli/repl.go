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
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Profile(ctx context.Context) error
	Passwd(ctx context.Context) error
	Users(ctx context.Context) error
	Task(ctx context.Context, args []string) error
	Event(ctx context.Context, args []string) error
	Settings(ctx context.Context) error
	Stats(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the admin CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands that operate on the session or the stores require a login first;
// the REPL rejects them with a hint when no session is active.
//
// Any errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("admin %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, profile, passwd, users, task, event, settings, stats, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}
			continue

		case "register":
			_ = a.Register(ctx)
			continue

		case "login":
			_ = a.Login(ctx)
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			printlnFn("Please login first (or type 'register')")
			continue
		}

		switch cmd {
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "passwd":
			_ = a.Passwd(ctx)

		case "users":
			_ = a.Users(ctx)

		case "task", "t":
			_ = a.Task(ctx, args)

		case "event", "e":
			_ = a.Event(ctx, args)

		case "settings":
			_ = a.Settings(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "logout":
			_ = a.Logout(ctx)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
