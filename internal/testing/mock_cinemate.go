package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/cinemate/internal/models"
)

// MockCineMate is a test double for the CineMate API client.
//
// Responses come from the exported fields; Errors forces a method (by name) to fail.
// Every call is recorded in order.
type MockCineMate struct {
	mu    sync.Mutex
	calls []string

	Errors map[string]error

	Identity        *models.User
	Token           string
	Message         string
	Reply           *models.MessageResponse // Replaces every acknowledgement when set
	MovieList       []models.Movie
	Detail          *models.Movie
	Recommended     []models.Movie
	InFavorites     bool
	Lists           []models.Watchlist
	Status          models.WatchlistStatus
	ListMovies      []models.WatchlistMovie
	People          []models.User
	ProfileUser     *models.User
	LastCriteria    models.Criteria
	LastProfileEdit models.ProfileUpdate
}

// NewMockCineMate returns a mock with no canned data.
func NewMockCineMate() *MockCineMate {
	return &MockCineMate{Errors: map[string]error{}}
}

// Calls returns the names of the methods called so far.
func (m *MockCineMate) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns how many times method was called.
func (m *MockCineMate) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

// Fail makes method return err until cleared with a nil err.
func (m *MockCineMate) Fail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Errors == nil {
		m.Errors = map[string]error{}
	}
	if err == nil {
		delete(m.Errors, method)
		return
	}
	m.Errors[method] = err
}

func (m *MockCineMate) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
	return m.Errors[method]
}

func (m *MockCineMate) ack() *models.MessageResponse {
	if m.Reply != nil {
		reply := *m.Reply
		return &reply
	}
	return models.Ack(m.Message)
}

func (m *MockCineMate) Me(ctx context.Context) (*models.MeResponse, error) {
	if err := m.record("Me"); err != nil {
		return nil, err
	}
	return &models.MeResponse{User: m.Identity}, nil
}

func (m *MockCineMate) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	if err := m.record("Login"); err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: m.Token, User: m.Identity, Message: m.Message}, nil
}

func (m *MockCineMate) Signup(ctx context.Context, registration models.Registration) (*models.MessageResponse, error) {
	if err := m.record("Signup"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) Logout(ctx context.Context) error {
	return m.record("Logout")
}

func (m *MockCineMate) Movies(ctx context.Context, criteria models.Criteria) ([]models.Movie, error) {
	if err := m.record("Movies"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.LastCriteria = criteria
	m.mu.Unlock()
	return m.MovieList, nil
}

func (m *MockCineMate) Movie(ctx context.Context, tmdbID int) (*models.Movie, error) {
	if err := m.record("Movie"); err != nil {
		return nil, err
	}
	if m.Detail == nil {
		return nil, fmt.Errorf("movie not found: %d", tmdbID)
	}
	return m.Detail, nil
}

func (m *MockCineMate) Recommendations(ctx context.Context) ([]models.Movie, error) {
	if err := m.record("Recommendations"); err != nil {
		return nil, err
	}
	return m.Recommended, nil
}

func (m *MockCineMate) FavoriteStatus(ctx context.Context, tmdbID int) (bool, error) {
	if err := m.record("FavoriteStatus"); err != nil {
		return false, err
	}
	return m.InFavorites, nil
}

func (m *MockCineMate) AddFavorite(ctx context.Context, tmdbID int) (*models.MessageResponse, error) {
	if err := m.record("AddFavorite"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) RemoveFavorite(ctx context.Context, tmdbID int) (*models.MessageResponse, error) {
	if err := m.record("RemoveFavorite"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) Watchlists(ctx context.Context) ([]models.Watchlist, error) {
	if err := m.record("Watchlists"); err != nil {
		return nil, err
	}
	return m.Lists, nil
}

func (m *MockCineMate) WatchlistStatus(ctx context.Context, tmdbID int) (*models.WatchlistStatus, error) {
	if err := m.record("WatchlistStatus"); err != nil {
		return nil, err
	}
	status := m.Status
	return &status, nil
}

func (m *MockCineMate) CreateWatchlist(ctx context.Context, name string) (*models.WatchlistCreateResponse, error) {
	if err := m.record("CreateWatchlist"); err != nil {
		return nil, err
	}
	return &models.WatchlistCreateResponse{Watchlist: &models.Watchlist{ID: "new-" + name, Name: name}, Message: m.Message}, nil
}

func (m *MockCineMate) AddToWatchlist(ctx context.Context, tmdbID int, watchlistID string) (*models.MessageResponse, error) {
	if err := m.record("AddToWatchlist"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) RemoveFromWatchlist(ctx context.Context, tmdbID int, watchlistID string) (*models.MessageResponse, error) {
	if err := m.record("RemoveFromWatchlist"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) WatchlistMovies(ctx context.Context, name string) (*models.WatchlistMoviesResponse, error) {
	if err := m.record("WatchlistMovies"); err != nil {
		return nil, err
	}
	var resp models.WatchlistMoviesResponse
	resp.Watchlist.Name = name
	resp.Watchlist.Movies = m.ListMovies
	return &resp, nil
}

func (m *MockCineMate) RateMovie(ctx context.Context, movieID string, rating int) (*models.MessageResponse, error) {
	if err := m.record("RateMovie"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) CommentMovie(ctx context.Context, movieID, comment string) (*models.MessageResponse, error) {
	if err := m.record("CommentMovie"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) Users(ctx context.Context) ([]models.User, error) {
	if err := m.record("Users"); err != nil {
		return nil, err
	}
	return m.People, nil
}

func (m *MockCineMate) User(ctx context.Context, userID string) (*models.User, error) {
	if err := m.record("User"); err != nil {
		return nil, err
	}
	for _, u := range m.People {
		if u.ID == userID {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user not found: %s", userID)
}

func (m *MockCineMate) Follow(ctx context.Context, userID string) (*models.MessageResponse, error) {
	if err := m.record("Follow"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) Unfollow(ctx context.Context, userID string) (*models.MessageResponse, error) {
	if err := m.record("Unfollow"); err != nil {
		return nil, err
	}
	return m.ack(), nil
}

func (m *MockCineMate) Profile(ctx context.Context) (*models.User, error) {
	if err := m.record("Profile"); err != nil {
		return nil, err
	}
	if m.ProfileUser == nil {
		return m.Identity, nil
	}
	return m.ProfileUser, nil
}

func (m *MockCineMate) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	if err := m.record("UpdateProfile"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastProfileEdit = update
	user := models.User{Username: update.Username, Age: update.Age}
	if m.ProfileUser != nil {
		user = *m.ProfileUser
		user.Username, user.Age = update.Username, update.Age
	}
	return &user, nil
}
