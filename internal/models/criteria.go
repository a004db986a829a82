package models

import (
	"net/url"
	"strings"
)

// Criteria is the movie filter state.
//
// Query filters the last remote result locally; the other four fields select what the remote query returns.
type Criteria struct {
	Query  string `json:"query,omitempty"`
	Genre  string `json:"genre,omitempty"`
	Year   string `json:"year,omitempty"`
	Rating string `json:"rating,omitempty"`
	SortBy string `json:"sortBy,omitempty"`
}

// DefaultCriteria returns empty criteria sorted by popularity.
func DefaultCriteria() Criteria {
	return Criteria{SortBy: string(DefaultSortKey)}
}

// Values encodes the structured fields as /movies query parameters.
//
// Empty fields are sent as empty parameters, matching what the API expects from the web client.
func (c Criteria) Values() url.Values {
	sortBy := c.SortBy
	if sortBy == "" {
		sortBy = string(DefaultSortKey)
	}
	v := url.Values{}
	v.Set("genre", c.Genre)
	v.Set("year", c.Year)
	v.Set("rating", c.Rating)
	v.Set("sortBy", sortBy)
	return v
}

// Structured returns c without the free-text query.
func (c Criteria) Structured() Criteria {
	c.Query = ""
	return c
}

// FilterByTitle returns the movies whose titles contain query, ignoring case.
//
// An empty or blank query returns movies unchanged.
func FilterByTitle(movies []Movie, query string) []Movie {
	query = strings.TrimSpace(query)
	if query == "" {
		return movies
	}

	matched := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if m.MatchesTitle(query) {
			matched = append(matched, m)
		}
	}
	return matched
}
