package models

import (
	"fmt"
	"strings"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Genre is a TMDB genre as embedded in movie details.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is a catalog entry returned by /movies and /movies/:id.
//
// Listing payloads carry GenreIDs; detail payloads carry Genres and Runtime.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	VoteAverage float64 `json:"vote_average,omitempty"`
	Popularity  float64 `json:"popularity,omitempty"`
	GenreIDs    []int   `json:"genre_ids,omitempty"`
	Genres      []Genre `json:"genres,omitempty"`
	Runtime     int     `json:"runtime,omitempty"`
}

// Year returns the release year, or an empty string when the date is unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) < 4 {
		return ""
	}
	return m.ReleaseDate[:4]
}

// PosterURL returns the full poster image URL, or an empty string without a poster.
func (m Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return posterBaseURL + m.PosterPath
}

// Rating formats the vote average with one decimal, or N/A.
func (m Movie) Rating() string {
	if m.VoteAverage == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", m.VoteAverage)
}

// RuntimeString formats the runtime as "2h 19m".
func (m Movie) RuntimeString() string {
	if m.Runtime <= 0 {
		return ""
	}
	return fmt.Sprintf("%dh %dm", m.Runtime/60, m.Runtime%60)
}

// GenreNames resolves genre names from the detail payload, falling back to the catalog for listing payloads.
func (m Movie) GenreNames() []string {
	if len(m.Genres) > 0 {
		names := make([]string, len(m.Genres))
		for i, g := range m.Genres {
			names[i] = g.Name
		}
		return names
	}

	var names []string
	for _, id := range m.GenreIDs {
		if name, ok := GenreName(id); ok {
			names = append(names, name)
		}
	}
	return names
}

// MatchesTitle reports whether the title contains query, ignoring case.
func (m Movie) MatchesTitle(query string) bool {
	return strings.Contains(strings.ToLower(m.Title), strings.ToLower(query))
}
