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

	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Show(ctx context.Context) error
	Point(ctx context.Context, args []string) error
	Undo(ctx context.Context) error
	ClearPoints(ctx context.Context) error
	Class(ctx context.Context, args []string) error
	Brush(ctx context.Context, args []string) error
	Name(ctx context.Context, args []string) error
	New(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context, args []string) error
	Preview(ctx context.Context) error
}

const (
	helpAnonymous = "Account: signup, login"
	helpLoggedIn  = "Account: whoami, logout"
	helpDataset   = "Dataset: show, point X Y, undo, clear, class add|rename|select, brush N, name NAME, new, export, import PATH, preview"
	helpGeneral   = "Other:   help, exit"
)

// runREPL starts a read-eval-print loop for the ML Playground CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
// The account commands offered by help follow the session: signup and login
// while anonymous, whoami and logout while signed in. Dataset commands work
// in either state.
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("mlp %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}
			printlnFn(helpDataset)
			printlnFn(helpGeneral)

		case "login":
			_ = a.Login(ctx)

		case "signup", "register":
			_ = a.Signup(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "show":
			_ = a.Show(ctx)

		case "point", "p":
			_ = a.Point(ctx, args)

		case "undo":
			_ = a.Undo(ctx)

		case "clear":
			_ = a.ClearPoints(ctx)

		case "class":
			_ = a.Class(ctx, args)

		case "brush":
			_ = a.Brush(ctx, args)

		case "name":
			_ = a.Name(ctx, args)

		case "new":
			_ = a.New(ctx)

		case "export":
			_ = a.Export(ctx)

		case "import":
			_ = a.Import(ctx, args)

		case "preview":
			_ = a.Preview(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
