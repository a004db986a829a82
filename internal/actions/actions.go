// package actions implements what each page does: validate input, call the API,
// update local state and report exactly one alert per operation.
//
// The CLI commands and the TUI views are thin shells over a [Controller].
package actions

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/services"
	"github.com/desertthunder/cinemate/internal/session"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
)

// Star rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Controller runs page operations against the API and reports outcomes on the alert.
type Controller struct {
	api     services.CineMate
	session *session.Store
	alert   *state.Alert
	logger  *log.Logger
}

// New creates a controller over the injected handles.
func New(api services.CineMate, sess *session.Store, alert *state.Alert, logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Controller{api: api, session: sess, alert: alert, logger: logger}
}

// Session returns the session store the controller acts for.
func (c *Controller) Session() *session.Store { return c.session }

// Alert returns the alert the controller reports to.
func (c *Controller) Alert() *state.Alert { return c.alert }

// fail reports err on the alert and returns it.
//
// Validation errors keep their severity and message. Other errors show the server's
// message when there is one, else fallback.
func (c *Controller) fail(err error, fallback string) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.alert.Show(verr.Message, verr.Severity)
		return err
	}

	msg := fallback
	var apiErr *services.APIError
	var authErr *session.AuthError
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		msg = apiErr.Message
	case errors.As(err, &authErr) && authErr.Message != "":
		msg = authErr.Message
	}
	c.logger.Debug("operation failed", "error", err, "message", msg)
	c.alert.Error(msg)
	return err
}

// failWith reports a fixed message regardless of err.
func (c *Controller) failWith(err error, message string) error {
	c.logger.Debug("operation failed", "error", err, "message", message)
	c.alert.Error(message)
	return err
}

// succeed reports message, falling back to fallback when the server sent none.
func (c *Controller) succeed(message, fallback string) {
	if message == "" {
		message = fallback
	}
	c.alert.Success(message)
}

// requireUser shows notice and returns [shared.ErrNotAuthenticated] when nobody is signed in.
func (c *Controller) requireUser(notice string) error {
	if c.session.IsAuthenticated() {
		return nil
	}
	c.alert.Info(notice)
	return shared.ErrNotAuthenticated
}
