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
	List(ctx context.Context) error
	NewCharacter(ctx context.Context) error
	EditCharacter(ctx context.Context) error
	DeleteCharacter(ctx context.Context) error
	Download(ctx context.Context) error
	Share(ctx context.Context) error
	Shares(ctx context.Context) error
	Open(ctx context.Context) error
	Revoke(ctx context.Context) error
	Avatar(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the arthub CLI.
//
// It reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers
// should log their own errors. This keeps the REPL loop resilient and
// focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("arthub %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, new, edit, delete, download, share, shares, open, revoke, avatar, logout, exit")
			} else {
				printlnFn("Available commands: register, login, open, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "new":
			_ = a.NewCharacter(ctx)

		case "edit":
			_ = a.EditCharacter(ctx)

		case "delete":
			_ = a.DeleteCharacter(ctx)

		case "download":
			_ = a.Download(ctx)

		case "share":
			_ = a.Share(ctx)

		case "shares":
			_ = a.Shares(ctx)

		case "open":
			_ = a.Open(ctx)

		case "revoke":
			_ = a.Revoke(ctx)

		case "avatar":
			_ = a.Avatar(ctx)

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
