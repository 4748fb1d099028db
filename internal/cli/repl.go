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
	Login(ctx context.Context, username string) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	SetDescription(ctx context.Context, text string) error
	Share(ctx context.Context, on bool) error
	Nearby(ctx context.Context) error
	Chats(ctx context.Context) error
	OpenChat(ctx context.Context, username string) error
	Say(ctx context.Context, text string) error
	CloseChat(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("localdate> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, desc <text>, share on|off, nearby, chats, chat <username>, say <text>, back, logout, exit")
			} else {
				printlnFn("Available commands: login <username>, exit")
			}

		case "login":
			if rest == "" {
				printlnFn("Usage: login <username>")
				continue
			}
			_ = a.Login(ctx, rest)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "desc":
			_ = a.SetDescription(ctx, rest)

		case "share":
			switch rest {
			case "on":
				_ = a.Share(ctx, true)
			case "off":
				_ = a.Share(ctx, false)
			default:
				printlnFn("Usage: share on|off")
			}

		case "nearby":
			_ = a.Nearby(ctx)

		case "chats":
			_ = a.Chats(ctx)

		case "chat":
			if rest == "" {
				printlnFn("Usage: chat <username>")
				continue
			}
			_ = a.OpenChat(ctx, rest)

		case "say":
			_ = a.Say(ctx, rest)

		case "back":
			_ = a.CloseChat(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
