package actions

import (
	"context"
	"errors"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
)

// MovieDetails is everything the movie page shows.
//
// The list fields are only populated for a signed-in user.
type MovieDetails struct {
	Movie       *models.Movie
	InFavorites bool
	Watchlists  []models.Watchlist
	Status      models.WatchlistStatus
}

// Movies runs a one-off query: criteria's structured fields are fetched and its query filters the result.
func (c *Controller) Movies(ctx context.Context, criteria models.Criteria) ([]models.Movie, error) {
	c.alert.Clear()
	movies, err := c.api.Movies(ctx, criteria.Structured())
	if err != nil {
		return nil, c.fail(err, "Failed to load movies.")
	}
	return models.FilterByTitle(movies, criteria.Query), nil
}

// LoadMovies refreshes search immediately and reports a failure.
func (c *Controller) LoadMovies(ctx context.Context, search *state.Search) error {
	if err := search.Refresh(ctx); err != nil {
		return c.fail(err, "Failed to load movies.")
	}
	return nil
}

// Recommendations returns personalized movies once the session is resolved and signed in.
// Otherwise it returns an empty list without a request.
func (c *Controller) Recommendations(ctx context.Context) ([]models.Movie, error) {
	if c.session.IsBootstrapping() || c.session.User() == nil {
		return []models.Movie{}, nil
	}

	movies, err := c.api.Recommendations(ctx)
	if err != nil {
		return []models.Movie{}, c.fail(err, "Failed to load recommendations.")
	}
	if movies == nil {
		movies = []models.Movie{}
	}
	return movies, nil
}

// MovieDetails loads the movie, then for a signed-in user the favorite status,
// the movie's watchlist membership and the user's watchlists, in that order.
func (c *Controller) MovieDetails(ctx context.Context, tmdbID int) (*MovieDetails, error) {
	c.alert.Clear()
	movie, err := c.api.Movie(ctx, tmdbID)
	if err != nil {
		if errors.Is(err, shared.ErrMovieNotFound) {
			return nil, c.failWith(err, "Movie not found.")
		}
		return nil, c.fail(err, "Failed to load movie details or list status.")
	}

	details := &MovieDetails{Movie: movie}
	if c.session.User() == nil {
		return details, nil
	}

	if details.InFavorites, err = c.api.FavoriteStatus(ctx, tmdbID); err != nil {
		return details, c.fail(err, "Failed to load movie details or list status.")
	}
	status, err := c.api.WatchlistStatus(ctx, tmdbID)
	if err != nil {
		return details, c.fail(err, "Failed to load movie details or list status.")
	}
	details.Status = *status

	if details.Watchlists, err = c.api.Watchlists(ctx); err != nil {
		return details, c.fail(err, "Could not retrieve user's watchlists.")
	}
	return details, nil
}

// ToggleFavorite adds or removes the movie from favorites and flips details on success.
func (c *Controller) ToggleFavorite(ctx context.Context, details *MovieDetails) error {
	c.alert.Clear()
	if err := c.requireUser("Please log in to manage your favorites."); err != nil {
		return err
	}

	var resp *models.MessageResponse
	var err error
	if details.InFavorites {
		resp, err = c.api.RemoveFavorite(ctx, details.Movie.ID)
	} else {
		resp, err = c.api.AddFavorite(ctx, details.Movie.ID)
	}
	if err != nil {
		return c.fail(err, "Error updating favorites.")
	}
	if !resp.Succeeded() {
		return c.fail(rejected(resp), "Failed to update favorites.")
	}

	details.InFavorites = !details.InFavorites
	c.succeed(resp.Message, "Favorites updated.")
	return nil
}
