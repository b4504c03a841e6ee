// Command tripctl is an interactive terminal client for the Trip Planner API.
//
// Configuration comes from TRIPS_* environment variables (or a .env file):
// TRIPS_API_URL, TRIPS_DB_PATH, TRIPS_AUTH_USERNAME, TRIPS_AUTH_PASSWORD or
// TRIPS_AUTH_PASSWORD_HASH, TRIPS_LOG_LEVEL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tripplanner/backend/internal/auth"
	"github.com/tripplanner/backend/internal/cli"
	"github.com/tripplanner/backend/internal/config"
	"github.com/tripplanner/backend/internal/dashboard"
	"github.com/tripplanner/backend/internal/localstore"
	"github.com/tripplanner/backend/internal/tripclient"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tripctl:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	// Logs go to stderr so they do not interleave with the REPL on stdout.
	logger := config.NewLogger(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := localstore.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var verifier auth.Verifier
	if cfg.PasswordHash != "" {
		verifier = auth.NewStaticVerifierFromHash(cfg.Username, []byte(cfg.PasswordHash))
	} else {
		v, err := auth.NewStaticVerifier(cfg.Username, cfg.Password)
		if err != nil {
			return err
		}
		verifier = v
	}

	session := auth.NewSession(verifier, store, logger)
	if err := session.Init(ctx); err != nil {
		return err
	}

	client := tripclient.New(cfg.APIURL)
	dash := dashboard.New(client, dashboard.WithLogger(logger))
	defer dash.Close()

	return cli.New(client, dash, session).Run(ctx)
}
