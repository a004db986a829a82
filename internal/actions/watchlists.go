package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/services"
	"github.com/desertthunder/cinemate/internal/shared"
)

const watchlistLoginNotice = "Please log in to manage your watchlists."

// Watchlists lists the signed-in user's watchlists.
func (c *Controller) Watchlists(ctx context.Context) ([]models.Watchlist, error) {
	c.alert.Clear()
	lists, err := c.api.Watchlists(ctx)
	if err != nil {
		return nil, c.fail(err, "Failed to fetch watchlists.")
	}
	return lists, nil
}

// CreateWatchlist validates name against existing and creates the list.
func (c *Controller) CreateWatchlist(ctx context.Context, name string, existing []models.Watchlist) (*models.Watchlist, error) {
	c.alert.Clear()
	if err := c.requireUser(watchlistLoginNotice); err != nil {
		return nil, err
	}
	if err := ValidateWatchlistName(name, existing); err != nil {
		return nil, c.fail(err, "")
	}

	resp, err := c.api.CreateWatchlist(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, c.fail(err, "Error creating watchlist.")
	}
	if resp.Watchlist == nil {
		return nil, c.fail(rejected(&models.MessageResponse{Message: resp.Message}), "Failed to create watchlist.")
	}
	c.succeed(resp.Message, "Watchlist created.")
	return resp.Watchlist, nil
}

// AddToWatchlist adds the movie to the selected list unless status shows it is already there.
func (c *Controller) AddToWatchlist(ctx context.Context, tmdbID int, watchlistID string, status models.WatchlistStatus) error {
	c.alert.Clear()
	if err := c.requireUser(watchlistLoginNotice); err != nil {
		return err
	}
	if err := ValidateWatchlistSelection(watchlistID, status); err != nil {
		return c.fail(err, "")
	}

	resp, err := c.api.AddToWatchlist(ctx, tmdbID, watchlistID)
	if err != nil {
		return c.fail(err, "Error adding movie to watchlist.")
	}
	if !resp.Succeeded() {
		return c.fail(rejected(resp), "Failed to add movie to watchlist.")
	}
	c.succeed(resp.Message, "Movie added to watchlist.")
	return nil
}

// RemoveFromWatchlist removes the movie from list.
func (c *Controller) RemoveFromWatchlist(ctx context.Context, tmdbID int, list models.WatchlistRef) error {
	c.alert.Clear()
	if err := c.requireUser(watchlistLoginNotice); err != nil {
		return err
	}

	resp, err := c.api.RemoveFromWatchlist(ctx, tmdbID, list.ID)
	if err != nil {
		return c.fail(err, "Error removing movie from watchlist.")
	}
	if !resp.Succeeded() {
		return c.fail(rejected(resp), fmt.Sprintf("Failed to remove movie from %q.", list.Name))
	}
	c.succeed(resp.Message, "Movie removed from watchlist.")
	return nil
}

// WatchlistMovies lists the movies of the named watchlist.
func (c *Controller) WatchlistMovies(ctx context.Context, name string) ([]models.WatchlistMovie, error) {
	c.alert.Clear()
	resp, err := c.api.WatchlistMovies(ctx, name)
	if err != nil {
		return nil, c.failWith(err, fmt.Sprintf("Failed to fetch movies for %s.", name))
	}
	return resp.Watchlist.Movies, nil
}

// Rate gives a watchlist movie one to five stars.
func (c *Controller) Rate(ctx context.Context, movieID string, stars int) error {
	c.alert.Clear()
	if err := ValidateRating(stars); err != nil {
		return c.fail(err, "")
	}
	resp, err := c.api.RateMovie(ctx, movieID, stars)
	if err != nil {
		return c.failWith(err, "Failed to rate movie.")
	}
	if resp.Declined() {
		return c.failWith(rejected(resp), "Failed to rate movie.")
	}
	c.alert.Success(fmt.Sprintf("Rated movie with %d stars!", stars))
	return nil
}

// Comment attaches a comment to a watchlist movie.
func (c *Controller) Comment(ctx context.Context, movieID, comment string) error {
	c.alert.Clear()
	if err := ValidateComment(comment); err != nil {
		return c.fail(err, "")
	}
	if _, err := c.api.CommentMovie(ctx, movieID, strings.TrimSpace(comment)); err != nil {
		return c.failWith(err, "Failed to add comment.")
	}
	c.alert.Success("Comment added for movie!")
	return nil
}

// FindWatchlist returns the list whose name matches, ignoring case.
func FindWatchlist(lists []models.Watchlist, name string) (models.Watchlist, error) {
	for _, l := range lists {
		if strings.EqualFold(l.Name, name) {
			return l, nil
		}
	}
	return models.Watchlist{}, fmt.Errorf("%w: %s", shared.ErrWatchlistNotFound, name)
}

// rejected turns a 2xx acknowledgement without success into an error carrying its message.
func rejected(resp *models.MessageResponse) error {
	return services.Rejected(resp.Message)
}
