package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
)

func (a *App) parseFlags(name string, args []string, email, userName *string) error {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(email, "email", "", "account email")
	if userName != nil {
		fs.StringVar(userName, "name", "", "display name")
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(a.out, "%s: %v\n", name, err)
		return ErrUsage
	}
	return nil
}

// Signup creates an account, stores the issued token and greets the user
func (a *App) Signup(ctx context.Context, args []string) error {
	var email, name string
	if err := a.parseFlags("signup", args, &email, &name); err != nil {
		return err
	}

	var err error
	if email == "" {
		if email, err = a.promptText("Email"); err != nil {
			return err
		}
	}
	if name == "" {
		if name, err = a.promptText("Name"); err != nil {
			return err
		}
	}
	password, err := a.promptPassword("Password")
	if err != nil {
		return err
	}

	resp, err := a.api.Signup(ctx, email, password, name)
	if err != nil {
		// Server messages are shown verbatim
		fmt.Fprintf(a.out, "Signup failed: %s\n", err.Error())
		return err
	}
	if err := a.tokens.Set(ctx, resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	a.log.Info(ctx, "signed up", "user_id", resp.User.ID)
	fmt.Fprintf(a.out, "Account created. Signed in as %s (%s)\n", resp.User.Email, resp.User.Role)
	return nil
}

// Login exchanges credentials for a token and stores it
func (a *App) Login(ctx context.Context, args []string) error {
	var email string
	if err := a.parseFlags("login", args, &email, nil); err != nil {
		return err
	}

	var err error
	if email == "" {
		if email, err = a.promptText("Email"); err != nil {
			return err
		}
	}
	password, err := a.promptPassword("Password")
	if err != nil {
		return err
	}

	resp, err := a.api.Login(ctx, email, password)
	if err != nil {
		fmt.Fprintf(a.out, "Login failed: %s\n", err.Error())
		return err
	}
	if err := a.tokens.Set(ctx, resp.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	a.log.Info(ctx, "logged in", "user_id", resp.User.ID)
	fmt.Fprintf(a.out, "Signed in as %s\n", resp.User.Email)
	return nil
}

// Logout forgets the stored token
func (a *App) Logout(ctx context.Context) error {
	if err := a.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
