// Package cli is the interactive tripctl client: a read-eval-print loop over
// the trip dashboard, guarded by the sign-in gate.
package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/tripplanner/backend/internal/auth"
	"github.com/tripplanner/backend/internal/dashboard"
	"github.com/tripplanner/backend/internal/domain"
)

// TripAPI is the part of *tripclient.Client used outside the dashboard.
type TripAPI interface {
	GetTrip(ctx context.Context, id string) (domain.Trip, error)
	CreateTrip(ctx context.Context, in domain.TripInput) (domain.Trip, error)
	UpdateTrip(ctx context.Context, id string, in domain.TripInput) (domain.Trip, error)
}

// App is one interactive session.
type App struct {
	api     TripAPI
	dash    *dashboard.Dashboard
	session *auth.Session

	in  *bufio.Reader
	out io.Writer
	// readPassword reads a line without echo. It is term.ReadPassword on stdin
	// unless replaced.
	readPassword func() ([]byte, error)
}

// Option configures an App.
type Option func(*App)

// WithIO replaces stdin and stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
	}
}

// WithPasswordReader replaces the terminal password prompt.
func WithPasswordReader(f func() ([]byte, error)) Option {
	return func(a *App) { a.readPassword = f }
}

// New returns an App reading from stdin and writing to stdout.
func New(api TripAPI, dash *dashboard.Dashboard, session *auth.Session, opts ...Option) *App {
	a := &App{
		api:     api,
		dash:    dash,
		session: session,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		readPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
