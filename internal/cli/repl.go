package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	helpSignedOut = "Available commands: login, help, exit"
	helpSignedIn  = `Available commands:
  list                 show the current page
  search <term>        filter by title or destination (empty clears)
  dest <name|*>        filter by destination (* clears)
  page <n>, next, prev move between pages
  show <id>            show one trip
  add                  create a trip
  edit <id>            change a trip
  retry                repeat the last failed fetch
  logout, help, exit`
)

// Run reads commands until EOF, "exit" or ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a.session.IsAuthenticated() {
		u, _ := a.session.User()
		a.printf("Welcome back, %s.\n", u.Username)
		a.refresh()
	} else {
		a.println("Type 'login' to sign in.")
	}

	for ctx.Err() == nil {
		a.printf("%s> ", a.status())
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("cli.App.Run: %w", err)
		}
		if a.Exec(ctx, line) || errors.Is(err, io.EOF) {
			return nil
		}
	}
	return nil
}

// Exec runs one command line. It reports whether the session should end.
func (a *App) Exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "exit", "quit":
		a.println("Bye!")
		return true
	case "help":
		if a.session.IsAuthenticated() {
			a.println(helpSignedIn)
		} else {
			a.println(helpSignedOut)
		}
		return false
	case "login":
		a.login(ctx)
		return false
	}

	if !a.session.IsAuthenticated() {
		if isCommand(cmd) {
			a.println("Please sign in first (type 'login').")
		} else {
			a.printf("Unknown command: %s\n", cmd)
		}
		return false
	}

	switch cmd {
	case "logout":
		a.logout(ctx)
	case "l", "list":
		a.refresh()
	case "search":
		a.dash.SetSearchTerm(arg)
		a.dash.FlushSearch()
		a.wait()
	case "dest":
		if arg == "*" {
			arg = ""
		}
		a.dash.SetDestination(arg)
		a.wait()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			a.println("Usage: page <n>")
			return false
		}
		a.dash.SetPage(n)
		a.wait()
	case "next":
		if !a.dash.NextPage() {
			a.println("Already on the last page.")
			return false
		}
		a.wait()
	case "prev":
		if !a.dash.PrevPage() {
			a.println("Already on the first page.")
			return false
		}
		a.wait()
	case "retry":
		a.dash.Retry()
		a.wait()
	case "show":
		a.show(ctx, arg)
	case "add":
		a.add(ctx)
	case "edit":
		a.edit(ctx, arg)
	default:
		a.printf("Unknown command: %s\n", cmd)
	}
	return false
}

func isCommand(cmd string) bool {
	switch cmd {
	case "logout", "l", "list", "search", "dest", "page", "next", "prev", "retry", "show", "add", "edit":
		return true
	}
	return false
}

func (a *App) status() string {
	if u, ok := a.session.User(); ok {
		return "trips (" + u.Username + ")"
	}
	return "trips"
}

func (a *App) refresh() {
	a.dash.Refresh()
	a.wait()
}

// wait blocks for in-flight fetches and prints the dashboard.
func (a *App) wait() {
	a.dash.Wait()
	renderDashboard(a.out, a.dash.Snapshot())
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
