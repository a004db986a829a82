package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinemate/internal/actions"
	"github.com/desertthunder/cinemate/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionResolved MsgKind = iota
	MsgSearchUpdated
	MsgAlertChanged
	MsgRecommendationsFetched
	MsgDetailsFetched
	MsgWatchlistsFetched
	MsgWatchlistMoviesFetched
	MsgUsersFetched
	MsgUserFetched
	MsgProfileFetched
	MsgLoggedIn
	MsgRegistered
	MsgLoggedOut
	MsgActionDone
)

// result carries a fetched value and the error that came with it.
type result[T any] struct {
	value T
	err   error
}

func fetched[T any](kind MsgKind, value T, err error) Msg {
	return Msg{kind: kind, data: result[T]{value, err}}
}

// sessionResolvedMsg is the constructor for [MsgSessionResolved]
func sessionResolvedMsg(user *models.User) Msg {
	return Msg{kind: MsgSessionResolved, data: user}
}

// recommendationsMsg is the constructor for [MsgRecommendationsFetched]
func recommendationsMsg(movies []models.Movie, err error) Msg {
	return fetched(MsgRecommendationsFetched, movies, err)
}

// detailsMsg is the constructor for [MsgDetailsFetched]
func detailsMsg(details *actions.MovieDetails, err error) Msg {
	return fetched(MsgDetailsFetched, details, err)
}

// watchlistsMsg is the constructor for [MsgWatchlistsFetched]
func watchlistsMsg(lists []models.Watchlist, err error) Msg {
	return fetched(MsgWatchlistsFetched, lists, err)
}

// watchlistMoviesMsg is the constructor for [MsgWatchlistMoviesFetched]
func watchlistMoviesMsg(movies []models.WatchlistMovie, err error) Msg {
	return fetched(MsgWatchlistMoviesFetched, movies, err)
}

// usersMsg is the constructor for [MsgUsersFetched]
func usersMsg(users []models.User, err error) Msg {
	return fetched(MsgUsersFetched, users, err)
}

// userMsg is the constructor for [MsgUserFetched]
func userMsg(user *models.User, err error) Msg {
	return fetched(MsgUserFetched, user, err)
}

// profileMsg is the constructor for [MsgProfileFetched]
func profileMsg(user *models.User, err error) Msg {
	return fetched(MsgProfileFetched, user, err)
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(user *models.User, err error) Msg {
	return fetched(MsgLoggedIn, user, err)
}

// registeredMsg is the constructor for [MsgRegistered]
func registeredMsg(message string, err error) Msg {
	return fetched(MsgRegistered, message, err)
}

// actionDoneMsg is the constructor for [MsgActionDone]. A successful action reloads the current page.
func actionDoneMsg(err error) Msg {
	return Msg{kind: MsgActionDone, data: err}
}
