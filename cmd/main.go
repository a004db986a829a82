package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/urfave/cli/v3"
)

// app builds the root command around r.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "cinemate",
		Usage:   "Discover movies, keep watchlists and follow friends from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep the token and theme in memory only",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Override the API base URL",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Before:   r.configure,
		After:    func(ctx context.Context, cmd *cli.Command) error { return r.Close() },
		Commands: r.register(),
	}
}

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrNotAuthenticated), errors.Is(err, shared.ErrUnauthorized):
			logger.Error(err)
			os.Exit(2)
		case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrMissingArgument),
			errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidFlag):
			logger.Error(err)
			os.Exit(64)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}
