// package session owns the signed-in identity and the persisted bearer credential.
//
// A [Store] starts in [Bootstrapping]. [Store.Bootstrap] resolves it to [Anonymous]
// or [Authenticated]; login and logout move between those two afterwards.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/repositories"
	"github.com/desertthunder/cinemate/internal/services"
	"github.com/desertthunder/cinemate/internal/shared"
)

const (
	loginFailedMessage  = "Login failed. Please check your credentials."
	signupFailedMessage = "Signup failed. Please try again."
)

// State is the lifecycle of a [Store].
type State int

const (
	Bootstrapping State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Bootstrapping:
		return "bootstrapping"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// API is the subset of the remote API the session depends on.
type API interface {
	Me(ctx context.Context) (*models.MeResponse, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Signup(ctx context.Context, registration models.Registration) (*models.MessageResponse, error)
	Logout(ctx context.Context) error
}

// AuthError is a failed login or registration, carrying the message to show the user.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrAuthFailed}
	}
	return []error{shared.ErrAuthFailed, e.Err}
}

// Store holds the session. It is safe for concurrent use.
type Store struct {
	api     API
	storage repositories.Slots
	logger  *log.Logger

	mu       sync.RWMutex
	state    State
	identity *models.User
	// resolved is closed once the first Bootstrap finishes.
	resolved chan struct{}
	once     sync.Once
}

// New creates a store in the [Bootstrapping] state.
func New(api API, storage repositories.Slots, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Store{
		api:      api,
		storage:  storage,
		logger:   logger,
		state:    Bootstrapping,
		resolved: make(chan struct{}),
	}
}

// Bootstrap resolves the initial state from the stored credential.
//
// Without a credential no request is made. Later calls return the first result.
func (s *Store) Bootstrap(ctx context.Context) *models.User {
	s.once.Do(func() {
		defer close(s.resolved)
		user := s.verify(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if user != nil && s.hasCredential() {
			s.state, s.identity = Authenticated, user
			return
		}
		s.state, s.identity = Anonymous, nil
	})
	return s.User()
}

func (s *Store) verify(ctx context.Context) *models.User {
	if !s.hasCredential() {
		s.logger.Debug("no stored credential; starting anonymous")
		return nil
	}

	resp, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Debug("session check failed", "error", err)
		s.clearCredential()
		return nil
	}
	if resp.User == nil {
		s.logger.Debug("session check returned no user", "message", resp.Message)
		s.clearCredential()
		return nil
	}
	return resp.User
}

// Resolved is closed once the first bootstrap has finished.
func (s *Store) Resolved() <-chan struct{} { return s.resolved }

// Login authenticates and persists the returned credential.
//
// On failure the store is [Anonymous] and the error is an [*AuthError].
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	s.resolve()

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.setAnonymous()
		return nil, &AuthError{Message: userMessage(err, loginFailedMessage), Err: err}
	}
	if resp.Token == "" || resp.User == nil {
		s.setAnonymous()
		msg := resp.Message
		if msg == "" {
			msg = loginFailedMessage
		}
		return nil, &AuthError{Message: msg}
	}

	if err := s.storage.Set(repositories.CredentialSlot, resp.Token); err != nil {
		s.setAnonymous()
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	s.mu.Lock()
	s.state, s.identity = Authenticated, resp.User
	s.mu.Unlock()

	s.logger.Info("signed in", "user", resp.User.Username)
	return resp.User, nil
}

// Register creates an account and returns the server's acknowledgement.
//
// It never stores a credential; the caller logs in separately.
func (s *Store) Register(ctx context.Context, registration models.Registration) (string, error) {
	resp, err := s.api.Signup(ctx, registration)
	if err != nil {
		return "", &AuthError{Message: userMessage(err, signupFailedMessage), Err: err}
	}
	if resp.Message == "" {
		return "", &AuthError{Message: signupFailedMessage}
	}
	return resp.Message, nil
}

// Logout clears the credential and identity, then notifies the server.
//
// The local state is cleared before any request; the server call is best-effort.
func (s *Store) Logout(ctx context.Context) {
	s.resolve()
	s.clearCredential()
	s.setAnonymous()

	if err := s.api.Logout(ctx); err != nil {
		s.logger.Debug("logout notification failed", "error", err)
	}
}

// Expire drops the identity after the credential was evicted elsewhere.
func (s *Store) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Authenticated {
		s.logger.Info("session expired")
		s.state, s.identity = Anonymous, nil
	}
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsBootstrapping reports whether the initial verification is still outstanding.
func (s *Store) IsBootstrapping() bool { return s.State() == Bootstrapping }

// IsAuthenticated reports whether a verified identity is present.
func (s *Store) IsAuthenticated() bool { return s.State() == Authenticated }

// User returns the signed-in identity, or nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// resolve marks a still-bootstrapping store as finished so that later bootstraps are no-ops.
func (s *Store) resolve() {
	s.once.Do(func() {
		s.mu.Lock()
		if s.state == Bootstrapping {
			s.state = Anonymous
		}
		s.mu.Unlock()
		close(s.resolved)
	})
}

func (s *Store) setAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state, s.identity = Anonymous, nil
}

func (s *Store) hasCredential() bool {
	token, ok, err := s.storage.Get(repositories.CredentialSlot)
	if err != nil {
		s.logger.Warn("failed to read credential", "error", err)
		return false
	}
	return ok && token != ""
}

func (s *Store) clearCredential() {
	if err := s.storage.Delete(repositories.CredentialSlot); err != nil {
		s.logger.Warn("failed to clear credential", "error", err)
	}
}

// userMessage prefers the message carried by an API error over fallback.
func userMessage(err error, fallback string) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
