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
	DeleteAccount(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Delete(ctx context.Context) error
	Quote(ctx context.Context) error
	SyncStatus(ctx context.Context) error
	EnableSync(ctx context.Context) error
	DisableSync(ctx context.Context) error
	ForcePush(ctx context.Context) error
	Restore(ctx context.Context) error
	Mirror(ctx context.Context) error
	TestConnection(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the MoodMapper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           - show available commands
//	  - register       - create an account
//	  - login          - authenticate
//	  - quote          - quote of the day
//	  - exit | quit    - leave the program
//
//	Logged in:
//	  - help           - show available commands
//	  - add            - record a mood
//	  - edit           - update an entry
//	  - list           - list entries
//	  - show           - show a single entry (interactive ID prompt)
//	  - delete         - delete an entry
//	  - quote          - quote of the day
//	  - status         - sync status
//	  - syncon/syncoff - enable/disable sync
//	  - forcepush      - upload all local entries
//	  - restore        - replace local data with the cloud copy
//	  - mirror         - replace cloud data with the local copy
//	  - test           - test server connection
//	  - logout         - log out
//	  - deleteaccount  - delete the account and its cloud data
//	  - exit | quit    - leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("mm> %s > ", statusFn()))
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
				printlnFn("Available commands: add, edit, (l)ist, show, delete, quote, status, syncon, syncoff, forcepush, restore, mirror, test, logout, deleteaccount, exit")
			} else {
				printlnFn("Available commands: register, login, quote, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "deleteaccount":
			_ = a.DeleteAccount(ctx)

		case "add":
			_ = a.Add(ctx)

		case "edit":
			_ = a.Edit(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "quote":
			_ = a.Quote(ctx)

		case "status":
			_ = a.SyncStatus(ctx)

		case "syncon":
			_ = a.EnableSync(ctx)

		case "syncoff":
			_ = a.DisableSync(ctx)

		case "forcepush":
			_ = a.ForcePush(ctx)

		case "restore":
			_ = a.Restore(ctx)

		case "mirror":
			_ = a.Mirror(ctx)

		case "test":
			_ = a.TestConnection(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
