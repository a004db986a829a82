package models

import (
	"encoding/json"
	"strings"
)

// Watchlist is a named movie collection owned by the signed-in user.
//
// Movies is kept raw because the overview endpoint returns either ids or embedded documents;
// callers only need the count.
type Watchlist struct {
	ID     string            `json:"_id"`
	Name   string            `json:"name"`
	Movies []json.RawMessage `json:"movies,omitempty"`
}

// MovieCount returns the number of movies in the watchlist.
func (w Watchlist) MovieCount() int {
	return len(w.Movies)
}

// WatchlistRef identifies a watchlist that contains a given movie.
type WatchlistRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

// WatchlistMovie is a movie as listed by /watchlistMovies/:name.
type WatchlistMovie struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Overview   string `json:"overview,omitempty"`
	PosterPath string `json:"poster_path,omitempty"`
	UserRating int    `json:"userRating,omitempty"`
}

// HasWatchlistNamed reports whether lists contains name, compared case-insensitively.
func HasWatchlistNamed(lists []Watchlist, name string) bool {
	for _, w := range lists {
		if strings.EqualFold(w.Name, name) {
			return true
		}
	}
	return false
}
