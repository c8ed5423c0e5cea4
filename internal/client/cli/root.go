package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	s := ""
	if a.isLoggedIn() {
		s = a.api.UserID()
		if a.reconciler.Enabled() {
			s += " sync:on"
		} else {
			s += " sync:off"
		}
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the banner and runs the REPL until EOF or exit.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to MoodMapper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
