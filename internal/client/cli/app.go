// Package cli is the command line front end: signup, login, logout and a
// dashboard that only renders for a verified session.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"auth_gate/internal/client/tokenstore"
	"auth_gate/internal/logging"
	"auth_gate/internal/model"
)

var (
	ErrUsage            = errors.New("usage error")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthAPI is the slice of the server API the CLI uses
type AuthAPI interface {
	Signup(ctx context.Context, email, password, name string) (*model.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Me(ctx context.Context, token string) (*model.UserProfile, error)
}

// App wires the API client and token store to the terminal
type App struct {
	api    AuthAPI
	tokens tokenstore.Store
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
}

func New(api AuthAPI, tokens tokenstore.Store, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		api:    api,
		tokens: tokens,
		reader: bufio.NewReader(in),
		out:    out,
		log:    log,
	}
}

// Run dispatches args[0] to a command
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	switch args[0] {
	case "signup":
		return a.Signup(ctx, args[1:])
	case "login":
		return a.Login(ctx, args[1:])
	case "logout":
		return a.Logout(ctx)
	case "dashboard":
		return a.Dashboard(ctx)
	case "help", "-h", "--help":
		a.usage()
		return nil
	default:
		fmt.Fprintf(a.out, "unknown command %q\n", args[0])
		a.usage()
		return ErrUsage
	}
}

func (a *App) usage() {
	fmt.Fprint(a.out, `Usage: auth-client <command> [flags]

Commands:
  signup     [-email E] [-name N]   create an account and sign in
  login      [-email E]             sign in
  logout                            forget the stored token
  dashboard                         show your account (requires login)
`)
}
