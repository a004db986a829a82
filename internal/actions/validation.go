package actions

import (
	"regexp"
	"strings"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError rejects user input before any request is made.
type ValidationError struct {
	Severity state.Severity
	Message  string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return shared.ErrInvalidInput }

func invalid(severity state.Severity, message string) *ValidationError {
	return &ValidationError{Severity: severity, Message: message}
}

// ValidateLogin checks the sign-in form, in the order the fields are presented.
func ValidateLogin(email, password string) error {
	switch {
	case strings.TrimSpace(email) == "":
		return invalid(state.SeverityError, "Email is required.")
	case strings.TrimSpace(password) == "":
		return invalid(state.SeverityError, "Password is required.")
	case !emailPattern.MatchString(strings.TrimSpace(email)):
		return invalid(state.SeverityError, "Please enter a valid email address.")
	case len(password) < minPasswordLength:
		return invalid(state.SeverityError, "Password must be at least 6 characters long.")
	}
	return nil
}

// ValidateRegistration checks the sign-up form. Age is free text and not validated.
func ValidateRegistration(r models.Registration) error {
	if strings.TrimSpace(r.Username) == "" {
		return invalid(state.SeverityError, "Username is required.")
	}
	return ValidateLogin(r.Email, r.Password)
}

// ValidateWatchlistName rejects blank names and names already used (ignoring case).
func ValidateWatchlistName(name string, existing []models.Watchlist) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid(state.SeverityWarning, "Watchlist name cannot be empty.")
	}
	if models.HasWatchlistNamed(existing, name) {
		return invalid(state.SeverityWarning, "A watchlist with this name already exists.")
	}
	return nil
}

// ValidateWatchlistSelection requires a list to be chosen that does not already hold the movie.
func ValidateWatchlistSelection(watchlistID string, status models.WatchlistStatus) error {
	if strings.TrimSpace(watchlistID) == "" {
		return invalid(state.SeverityWarning, "Please select a watchlist.")
	}
	if status.Contains(watchlistID) {
		return invalid(state.SeverityInfo, "Movie is already in the selected watchlist.")
	}
	return nil
}

// ValidateComment rejects blank comments.
func ValidateComment(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return invalid(state.SeverityWarning, "Comment cannot be empty.")
	}
	return nil
}

// ValidateRating accepts one to five stars.
func ValidateRating(stars int) error {
	if stars < MinRating || stars > MaxRating {
		return invalid(state.SeverityWarning, "Rating must be between 1 and 5 stars.")
	}
	return nil
}
