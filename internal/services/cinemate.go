package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
)

var _ CineMate = (*CineMateService)(nil)

// CineMateService implements [CineMate] on top of a [Requester].
type CineMateService struct {
	api Requester
}

// NewCineMateService creates a client for the endpoints served behind api.
func NewCineMateService(api Requester) *CineMateService {
	return &CineMateService{api: api}
}

// Me calls GET /me.
func (s *CineMateService) Me(ctx context.Context) (*models.MeResponse, error) {
	var resp models.MeResponse
	if err := s.api.Do(ctx, http.MethodGet, "/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login calls POST /login.
func (s *CineMateService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := s.api.Do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup calls POST /signup.
func (s *CineMateService) Signup(ctx context.Context, registration models.Registration) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := s.api.Do(ctx, http.MethodPost, "/signup", registration, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout calls POST /logout.
func (s *CineMateService) Logout(ctx context.Context) error {
	return s.api.Do(ctx, http.MethodPost, "/logout", nil, nil)
}

// Movies calls GET /movies with the structured criteria as query parameters.
func (s *CineMateService) Movies(ctx context.Context, criteria models.Criteria) ([]models.Movie, error) {
	var resp models.MoviesResponse
	if err := s.api.Do(ctx, http.MethodGet, "/movies?"+criteria.Values().Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Movie calls GET /movies/:id. A 404 or an empty payload is reported as [shared.ErrMovieNotFound].
func (s *CineMateService) Movie(ctx context.Context, tmdbID int) (*models.Movie, error) {
	var movie models.Movie
	if err := s.api.Do(ctx, http.MethodGet, "/movies/"+strconv.Itoa(tmdbID), nil, &movie); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", shared.ErrMovieNotFound, err)
		}
		return nil, err
	}
	if movie.ID == 0 && movie.Title == "" {
		return nil, fmt.Errorf("%w: %d", shared.ErrMovieNotFound, tmdbID)
	}
	return &movie, nil
}

// Recommendations calls GET /recommendations.
func (s *CineMateService) Recommendations(ctx context.Context) ([]models.Movie, error) {
	var resp models.RecommendationsResponse
	if err := s.api.Do(ctx, http.MethodGet, "/recommendations", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// FavoriteStatus calls GET /favorites/status/:id.
func (s *CineMateService) FavoriteStatus(ctx context.Context, tmdbID int) (bool, error) {
	var resp models.FavoriteStatus
	if err := s.api.Do(ctx, http.MethodGet, "/favorites/status/"+strconv.Itoa(tmdbID), nil, &resp); err != nil {
		return false, err
	}
	return resp.IsInFavorites, nil
}

// AddFavorite calls POST /favorites/add.
func (s *CineMateService) AddFavorite(ctx context.Context, tmdbID int) (*models.MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/favorites/add", models.FavoriteRequest{TMDBID: tmdbID})
}

// RemoveFavorite calls DELETE /favorites/delete/:id.
func (s *CineMateService) RemoveFavorite(ctx context.Context, tmdbID int) (*models.MessageResponse, error) {
	return s.message(ctx, http.MethodDelete, "/favorites/delete/"+strconv.Itoa(tmdbID), nil)
}

// Watchlists calls GET /watchlists.
func (s *CineMateService) Watchlists(ctx context.Context) ([]models.Watchlist, error) {
	var resp models.WatchlistsResponse
	if err := s.api.Do(ctx, http.MethodGet, "/watchlists", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Watchlists, nil
}

// WatchlistStatus calls GET /watchlist/status/:id.
func (s *CineMateService) WatchlistStatus(ctx context.Context, tmdbID int) (*models.WatchlistStatus, error) {
	var resp models.WatchlistStatus
	if err := s.api.Do(ctx, http.MethodGet, "/watchlist/status/"+strconv.Itoa(tmdbID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateWatchlist calls POST /watchlist/create.
func (s *CineMateService) CreateWatchlist(ctx context.Context, name string) (*models.WatchlistCreateResponse, error) {
	var resp models.WatchlistCreateResponse
	if err := s.api.Do(ctx, http.MethodPost, "/watchlist/create", models.WatchlistCreateRequest{Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddToWatchlist calls POST /watchlist/add.
func (s *CineMateService) AddToWatchlist(ctx context.Context, tmdbID int, watchlistID string) (*models.MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/watchlist/add", models.WatchlistAddRequest{TMDBID: tmdbID, WatchlistID: watchlistID})
}

// RemoveFromWatchlist calls DELETE /removefromwatchlist/:id.
//
// DELETE bodies are never sent, so the list id also travels as the watchlistId query parameter.
func (s *CineMateService) RemoveFromWatchlist(ctx context.Context, tmdbID int, watchlistID string) (*models.MessageResponse, error) {
	path := "/removefromwatchlist/" + strconv.Itoa(tmdbID) + "?" + url.Values{"watchlistId": {watchlistID}}.Encode()
	return s.message(ctx, http.MethodDelete, path, models.WatchlistRemoveRequest{WatchlistID: watchlistID})
}

// WatchlistMovies calls GET /watchlistMovies/:name.
func (s *CineMateService) WatchlistMovies(ctx context.Context, name string) (*models.WatchlistMoviesResponse, error) {
	var resp models.WatchlistMoviesResponse
	if err := s.api.Do(ctx, http.MethodGet, "/watchlistMovies/"+url.PathEscape(name), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RateMovie calls POST /movie/:id/rate.
func (s *CineMateService) RateMovie(ctx context.Context, movieID string, rating int) (*models.MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/movie/"+url.PathEscape(movieID)+"/rate", models.RatingRequest{Rating: rating})
}

// CommentMovie calls POST /movie/:id/comment.
func (s *CineMateService) CommentMovie(ctx context.Context, movieID, comment string) (*models.MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/movie/"+url.PathEscape(movieID)+"/comment", models.CommentRequest{Comment: comment})
}

// Users calls GET /users. A payload without success is reported as a [Rejected] error with its message.
func (s *CineMateService) Users(ctx context.Context) ([]models.User, error) {
	var resp models.UsersResponse
	if err := s.api.Do(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Could not fetch users."
		}
		return nil, Rejected(msg)
	}
	return resp.Users, nil
}

// User calls GET /user/:id. A payload carrying only a message is reported as an [*APIError]
// matching [shared.ErrUserNotFound].
func (s *CineMateService) User(ctx context.Context, userID string) (*models.User, error) {
	var payload struct {
		models.User
		Message string `json:"message"`
	}
	if err := s.api.Do(ctx, http.MethodGet, "/user/"+url.PathEscape(userID), nil, &payload); err != nil {
		return nil, err
	}
	if payload.Message != "" || payload.ID == "" {
		msg := payload.Message
		if msg == "" {
			msg = "Could not fetch user"
		}
		return nil, &APIError{StatusCode: http.StatusOK, Message: msg, kind: shared.ErrUserNotFound}
	}
	return &payload.User, nil
}

// Follow calls POST /user/follow/:id.
func (s *CineMateService) Follow(ctx context.Context, userID string) (*models.MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/user/follow/"+url.PathEscape(userID), nil)
}

// Unfollow calls POST /user/unfollow/:id.
func (s *CineMateService) Unfollow(ctx context.Context, userID string) (*models.MessageResponse, error) {
	return s.message(ctx, http.MethodPost, "/user/unfollow/"+url.PathEscape(userID), nil)
}

// Profile calls GET /user/profile.
func (s *CineMateService) Profile(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.api.Do(ctx, http.MethodGet, "/user/profile", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile calls PUT /user/profile/update and returns the updated profile.
func (s *CineMateService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := s.api.Do(ctx, http.MethodPut, "/user/profile/update", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *CineMateService) message(ctx context.Context, method, path string, body any) (*models.MessageResponse, error) {
	var resp models.MessageResponse
	if err := s.api.Do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsUnauthorized reports whether err came from a 401/403 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, shared.ErrUnauthorized)
}

// Message returns the user-facing text of err: the server message for [*APIError], else err.Error().
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
