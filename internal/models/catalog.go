package models

// SortKey orders /movies results.
type SortKey string

const (
	SortPopularity SortKey = "popularity.desc"
	SortRating     SortKey = "vote_average.desc"
	SortNewest     SortKey = "release_date.desc"
	SortOldest     SortKey = "release_date.asc"
	SortTitleAsc   SortKey = "title.asc"
	SortTitleDesc  SortKey = "title.desc"
	DefaultSortKey         = SortPopularity
)

// SortOption pairs a sort key with its label.
type SortOption struct {
	Key   SortKey
	Label string
}

// SortKeys lists the supported orderings in display order.
var SortKeys = []SortOption{
	{SortPopularity, "Popularity"},
	{SortRating, "Rating"},
	{SortNewest, "Newest"},
	{SortOldest, "Oldest"},
	{SortTitleAsc, "Title A-Z"},
	{SortTitleDesc, "Title Z-A"},
}

// RatingOptions are the minimum-rating filter values offered by the client.
var RatingOptions = []int{5, 6, 7, 8, 9}

// Genres is the TMDB movie genre table.
var Genres = []Genre{
	{28, "Action"},
	{12, "Adventure"},
	{16, "Animation"},
	{35, "Comedy"},
	{80, "Crime"},
	{99, "Documentary"},
	{18, "Drama"},
	{10751, "Family"},
	{14, "Fantasy"},
	{36, "History"},
	{27, "Horror"},
	{10402, "Music"},
	{9648, "Mystery"},
	{10749, "Romance"},
	{878, "Science Fiction"},
	{10770, "TV Movie"},
	{53, "Thriller"},
	{10752, "War"},
	{37, "Western"},
}

// GenreName looks up a genre name by id.
func GenreName(id int) (string, bool) {
	for _, g := range Genres {
		if g.ID == id {
			return g.Name, true
		}
	}
	return "", false
}

// IsSortKey reports whether key is one of [SortKeys].
func IsSortKey(key string) bool {
	for _, opt := range SortKeys {
		if string(opt.Key) == key {
			return true
		}
	}
	return false
}
