package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/cinemate/internal/services"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIRequest sends a raw request through the dispatcher, so the stored token is attached
// and a 401 clears it like any other call.
func (r *Runner) APIRequest(ctx context.Context, cmd *cli.Command, method string) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var body any
	if data := cmd.String("data"); data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("%w: data is not valid JSON", shared.ErrInvalidInput)
		}
		body = json.RawMessage(data)
	}

	if err := r.connect(); err != nil {
		return err
	}
	r.logger.Info(method+" request", "path", path)

	resp, err := r.dispatcher.Send(ctx, method, path, body)
	if resp != nil {
		if werr := r.writeResponse(resp, cmd.Bool("json"), cmd.Bool("pretty")); werr != nil {
			return werr
		}
	}
	return err
}

func (r *Runner) writeResponse(resp *services.APIResponse, raw, pretty bool) error {
	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, pretty && !raw)
	}
	if len(resp.Body) == 0 {
		return r.writePlain("(%d, empty body)\n", resp.StatusCode)
	}
	if _, err := r.output.Write(resp.Body); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	_, err := r.output.Write([]byte("\n"))
	return err
}
