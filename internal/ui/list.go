package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/cinemate/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = watchlistItem{}
	_ list.Item = watchlistMovieItem{}
	_ list.Item = userItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string { return movieTitle(i.movie) }
func (i movieItem) Description() string {
	desc := "★ " + i.movie.Rating()
	if genres := i.movie.GenreNames(); len(genres) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, strings.Join(genres, ", "))
	}
	return desc
}

// watchlistItem wraps [models.Watchlist] to implement [list.Item].
type watchlistItem struct {
	watchlist models.Watchlist
}

func (i watchlistItem) FilterValue() string { return i.watchlist.Name }
func (i watchlistItem) Title() string       { return i.watchlist.Name }
func (i watchlistItem) Description() string {
	return fmt.Sprintf("%d movies", i.watchlist.MovieCount())
}

// watchlistMovieItem wraps [models.WatchlistMovie] to implement [list.Item].
type watchlistMovieItem struct {
	movie models.WatchlistMovie
}

func (i watchlistMovieItem) FilterValue() string { return i.movie.Title }
func (i watchlistMovieItem) Title() string       { return i.movie.Title }
func (i watchlistMovieItem) Description() string {
	if i.movie.UserRating > 0 {
		return strings.Repeat("★", i.movie.UserRating) + strings.Repeat("☆", max(0, 5-i.movie.UserRating))
	}
	return "unrated"
}

// userItem wraps [models.User] to implement [list.Item].
type userItem struct {
	user     models.User
	viewerID string
}

func (i userItem) FilterValue() string { return i.user.Username }
func (i userItem) Title() string       { return i.user.Username }
func (i userItem) Description() string {
	desc := fmt.Sprintf("%d followers • %d following", len(i.user.Followers), len(i.user.Following))
	if i.viewerID != "" && i.user.IsFollowedBy(i.viewerID) {
		desc += " • following"
	}
	return desc
}
