package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"auth_gate/internal/client/api"
	"auth_gate/internal/client/gate"
)

// Dashboard renders the account view behind the protected route gate.
// Cancelling ctx (Ctrl-C) unmounts the gate mid-check.
func (a *App) Dashboard(ctx context.Context) error {
	var redirectedTo string
	var reason error

	nav := gate.NavigatorFunc(func(to string) { redirectedTo = to })
	g := gate.New(a.tokens, a.api, nav, func(s gate.Session) {
		renderDashboard(a.out, s)
	}, gate.WithErrorHook(func(err error) { reason = err }))

	if err := g.Mount(ctx); err != nil {
		return err
	}
	defer g.Unmount()

	select {
	case <-g.Done():
	case <-ctx.Done():
		g.Unmount()
		return ctx.Err()
	}

	if g.State() == gate.Authenticated {
		return nil
	}

	// A token the server rejected is of no further use
	if errors.Is(reason, api.ErrUnauthorized) || errors.Is(reason, api.ErrNotFound) {
		if err := a.tokens.Clear(ctx); err != nil {
			a.log.Warn(ctx, "failed to clear rejected token", "error", err)
		}
	}
	if reason != nil {
		a.log.Warn(ctx, "session check failed", "error", reason)
	}
	fmt.Fprintf(a.out, "You are not signed in. Redirecting to %s: run `auth-client login`.\n", redirectedTo)
	return ErrNotAuthenticated
}

func renderDashboard(w io.Writer, s gate.Session) {
	u := s.User()
	fmt.Fprintf(w, "Welcome, %s (%s)\n", u.Name, u.Role)
	fmt.Fprintf(w, "Email : %s\n\n", u.Email)

	fmt.Fprintln(w, "User Information")
	fmt.Fprintf(w, "  Name:  %s\n", u.Name)
	fmt.Fprintf(w, "  Email: %s\n", u.Email)
	fmt.Fprintf(w, "  Role:  %s\n\n", u.Role)

	fmt.Fprintln(w, "Account Status")
	fmt.Fprintln(w, "  Account Active")
	if s.IsAdmin() {
		fmt.Fprintln(w, "  Admin Privileges")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Admin Panel")
		fmt.Fprintln(w, "  You have administrative access.")
	} else {
		fmt.Fprintln(w, "  Standard Access")
	}
}
