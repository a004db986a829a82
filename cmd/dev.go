package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/desertthunder/cinemate/internal/server"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	demoUsername = "demo"
	demoEmail    = "demo@cinemate.dev"
	demoPassword = "password"
)

// DevMockAPI serves the in-memory API until interrupted.
func (r *Runner) DevMockAPI(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	logger := shared.WithLogger(r.logger, "component", "mock-api")
	api := server.NewMockAPI(server.MockOpts{Logger: logger})
	if cmd.Bool("seed") {
		user := api.Seed(demoUsername, demoEmail, demoPassword, 30)
		logger.Info("seeded demo user", "id", user.ID, "email", demoEmail, "password", demoPassword)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.writePlain("Point the client at it with --base-url http://%s\n", addr)
	return server.Serve(ctx, addr, api.NewHandler(), logger)
}
