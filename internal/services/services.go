// package services defines the CineMate API client and its request dispatcher
package services

import (
	"context"

	"github.com/desertthunder/cinemate/internal/models"
)

// Storage is the durable slot store the dispatcher reads the bearer credential from.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Requester issues one JSON request and decodes the response into result.
type Requester interface {
	Do(ctx context.Context, method, path string, body, result any) error
}

// CineMate defines every remote operation the client performs.
type CineMate interface {
	// Me verifies the stored credential and returns the identity it belongs to.
	Me(ctx context.Context) (*models.MeResponse, error)
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Signup(ctx context.Context, registration models.Registration) (*models.MessageResponse, error)
	Logout(ctx context.Context) error

	// Movies runs a structured query; the free-text field of criteria is never sent.
	Movies(ctx context.Context, criteria models.Criteria) ([]models.Movie, error)
	Movie(ctx context.Context, tmdbID int) (*models.Movie, error)
	Recommendations(ctx context.Context) ([]models.Movie, error)

	FavoriteStatus(ctx context.Context, tmdbID int) (bool, error)
	AddFavorite(ctx context.Context, tmdbID int) (*models.MessageResponse, error)
	RemoveFavorite(ctx context.Context, tmdbID int) (*models.MessageResponse, error)

	Watchlists(ctx context.Context) ([]models.Watchlist, error)
	WatchlistStatus(ctx context.Context, tmdbID int) (*models.WatchlistStatus, error)
	CreateWatchlist(ctx context.Context, name string) (*models.WatchlistCreateResponse, error)
	AddToWatchlist(ctx context.Context, tmdbID int, watchlistID string) (*models.MessageResponse, error)
	RemoveFromWatchlist(ctx context.Context, tmdbID int, watchlistID string) (*models.MessageResponse, error)
	WatchlistMovies(ctx context.Context, name string) (*models.WatchlistMoviesResponse, error)
	RateMovie(ctx context.Context, movieID string, rating int) (*models.MessageResponse, error)
	CommentMovie(ctx context.Context, movieID, comment string) (*models.MessageResponse, error)

	Users(ctx context.Context) ([]models.User, error)
	User(ctx context.Context, userID string) (*models.User, error)
	Follow(ctx context.Context, userID string) (*models.MessageResponse, error)
	Unfollow(ctx context.Context, userID string) (*models.MessageResponse, error)
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
}
