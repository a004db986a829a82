package actions

import (
	"context"
	"strings"

	"github.com/desertthunder/cinemate/internal/models"
)

// Login validates the form, signs in and reports the outcome.
func (c *Controller) Login(ctx context.Context, email, password string) (*models.User, error) {
	c.alert.Clear()
	if err := ValidateLogin(email, password); err != nil {
		return nil, c.fail(err, "")
	}

	user, err := c.session.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, c.fail(err, "Login failed. Please check your credentials.")
	}
	c.alert.Success("Login successful! Redirecting...")
	return user, nil
}

// Register validates the form and creates an account without signing in.
func (c *Controller) Register(ctx context.Context, r models.Registration) (string, error) {
	c.alert.Clear()
	if err := ValidateRegistration(r); err != nil {
		return "", c.fail(err, "")
	}

	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Age = strings.TrimSpace(r.Age)

	msg, err := c.session.Register(ctx, r)
	if err != nil {
		return "", c.fail(err, "Signup failed. Please try again.")
	}
	c.alert.Success("Signup successful! Redirecting...")
	return msg, nil
}

// Logout signs out locally and notifies the server. It always succeeds.
func (c *Controller) Logout(ctx context.Context) {
	c.alert.Clear()
	c.session.Logout(ctx)
	c.alert.Success("Logged out successfully.")
}
