package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// AuthLogin signs in with email and password and stores the token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	email := cmd.String("email")
	if email == "" {
		var err error
		if email, err = r.readLine("Email: "); err != nil {
			return err
		}
	}
	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = r.promptPassword("Password: "); err != nil {
			return err
		}
	}

	user, err := r.controller.Login(ctx, email, password)
	if err != nil {
		return r.fail(err)
	}
	r.logger.Info("signed in", "user", user.Username)
	return r.report()
}

// AuthRegister creates an account. It does not sign in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = r.promptPassword("Password: "); err != nil {
			return err
		}
	}

	if _, err := r.controller.Register(ctx, models.Registration{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: password,
		Age:      cmd.String("age"),
	}); err != nil {
		return r.fail(err)
	}
	if err := r.report(); err != nil {
		return err
	}
	return r.writePlain("Sign in with 'cinemate auth login --email %s'\n", cmd.String("email"))
}

// AuthLogout forgets the stored token and notifies the server.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	r.session.Bootstrap(ctx)
	r.controller.Logout(ctx)
	return r.report()
}

// AuthStatus resolves the stored token against /me.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	user := r.session.Bootstrap(ctx)
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"state": r.session.State().String(),
			"user":  user,
		}, cmd.Bool("pretty"))
	}

	if user == nil {
		return r.writePlain("Not signed in (browsing as guest)\n")
	}
	return r.writePlain("Signed in as %s <%s>\n", user.Username, user.Email)
}

func (r *Runner) reader() *bufio.Reader {
	if br, ok := r.input.(*bufio.Reader); ok {
		return br
	}
	br := bufio.NewReader(r.input)
	r.input = br
	return br
}

// readLine prints prompt to stderr and reads one line of input.
func (r *Runner) readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := r.reader().ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" && errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%w: no input", shared.ErrMissingArgument)
	}
	return line, nil
}

// promptPassword reads a password without echo when stdin is a terminal.
func (r *Runner) promptPassword(prompt string) (string, error) {
	if r.password != nil {
		return r.password(prompt)
	}

	if f, ok := r.input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}
	return r.readLine(prompt)
}
