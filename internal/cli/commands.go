package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/tripplanner/backend/internal/auth"
	"github.com/tripplanner/backend/internal/domain"
	"github.com/tripplanner/backend/internal/tripclient"
)

func (a *App) login(ctx context.Context) {
	if u, ok := a.session.User(); ok {
		a.printf("Already signed in as %s.\n", u.Username)
		return
	}

	username, err := a.prompt("Username")
	if err != nil {
		a.printError(err)
		return
	}
	password, err := a.promptPassword()
	if err != nil {
		a.printError(err)
		return
	}

	if err := a.session.Login(ctx, username, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			a.println("Invalid username or password.")
			return
		}
		a.printError(err)
		return
	}
	a.printf("Signed in as %s.\n", username)
	a.refresh()
}

func (a *App) logout(ctx context.Context) {
	if err := a.session.Logout(ctx); err != nil {
		a.printError(err)
	}
	a.println("Signed out.")
}

func (a *App) show(ctx context.Context, id string) {
	if id == "" {
		a.println("Usage: show <id>")
		return
	}
	trip, err := a.api.GetTrip(ctx, id)
	if err != nil {
		a.printError(err)
		return
	}
	renderTrip(a.out, trip)
}

func (a *App) add(ctx context.Context) {
	var f tripForm
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{"Title", &f.title},
		{"Destination", &f.destination},
		{"Days", &f.days},
		{"Budget", &f.budget},
	} {
		v, err := a.prompt(field.label)
		if err != nil {
			a.printError(err)
			return
		}
		*field.dst = v
	}

	in, errs := f.input(false)
	if len(errs) > 0 {
		a.printFieldErrors(errs)
		return
	}

	trip, err := a.api.CreateTrip(ctx, in)
	if err != nil {
		a.printError(err)
		return
	}
	a.printf("Created trip %s.\n", trip.ID)
	a.refresh()
}

// edit prompts for each field showing the current value; a blank answer keeps it.
func (a *App) edit(ctx context.Context, id string) {
	if id == "" {
		a.println("Usage: edit <id>")
		return
	}
	current, err := a.api.GetTrip(ctx, id)
	if err != nil {
		a.printError(err)
		return
	}

	var f tripForm
	for _, field := range []struct {
		label string
		dst   *string
	}{
		{fmt.Sprintf("Title [%s]", current.Title), &f.title},
		{fmt.Sprintf("Destination [%s]", current.Destination), &f.destination},
		{fmt.Sprintf("Days [%d]", current.Days), &f.days},
		{fmt.Sprintf("Budget [%.2f]", current.Budget), &f.budget},
	} {
		v, err := a.prompt(field.label)
		if err != nil {
			a.printError(err)
			return
		}
		*field.dst = v
	}

	in, errs := f.input(true)
	if len(errs) > 0 {
		a.printFieldErrors(errs)
		return
	}
	if in.IsEmpty() {
		a.println("Nothing to change.")
		return
	}

	trip, err := a.api.UpdateTrip(ctx, id, in)
	if err != nil {
		a.printError(err)
		return
	}
	a.printf("Updated trip %s.\n", trip.ID)
	a.refresh()
}

func (a *App) printError(err error) {
	var apiErr *tripclient.APIError
	if errors.As(err, &apiErr) {
		a.printf("Error: %s\n", apiErr.Message)
		for _, d := range apiErr.Details {
			a.printf("  - %s\n", d.Message)
		}
		return
	}
	a.printf("Error: %v\n", err)
}

func (a *App) printFieldErrors(errs []domain.FieldError) {
	a.println("Please fix the following:")
	for _, e := range errs {
		a.printf("  - %s\n", e.Message)
	}
}
