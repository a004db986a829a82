package models

// MessageResponse is the generic acknowledgement envelope.
//
// Success is nil when the server left the field out.
type MessageResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// Ack returns a successful acknowledgement carrying message.
func Ack(message string) *MessageResponse {
	ok := true
	return &MessageResponse{Success: &ok, Message: message}
}

// Succeeded reports whether the server sent success: true.
func (r *MessageResponse) Succeeded() bool {
	return r.Success != nil && *r.Success
}

// Declined reports whether the server sent success: false.
func (r *MessageResponse) Declined() bool {
	return r.Success != nil && !*r.Success
}

// MeResponse is returned by GET /me.
type MeResponse struct {
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// Registration is the body of POST /signup.
//
// Age travels as free text, exactly as entered.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      string `json:"age"`
}

// MoviesResponse is returned by GET /movies.
type MoviesResponse struct {
	Results []Movie `json:"results"`
}

// RecommendationsResponse is returned by GET /recommendations.
type RecommendationsResponse struct {
	Recommendations []Movie `json:"recommendations"`
}

// FavoriteRequest is the body of POST /favorites/add.
type FavoriteRequest struct {
	TMDBID int `json:"tmdbId"`
}

// FavoriteStatus is returned by GET /favorites/status/:id.
type FavoriteStatus struct {
	IsInFavorites bool `json:"isInFavorites"`
}

// WatchlistsResponse is returned by GET /watchlists.
type WatchlistsResponse struct {
	Watchlists []Watchlist `json:"watchlists"`
}

// WatchlistStatus is returned by GET /watchlist/status/:id.
type WatchlistStatus struct {
	WatchlistIDs []WatchlistRef `json:"watchlistIds"`
}

// Contains reports whether watchlistID is one of the lists holding the movie.
func (s WatchlistStatus) Contains(watchlistID string) bool {
	for _, ref := range s.WatchlistIDs {
		if ref.ID == watchlistID {
			return true
		}
	}
	return false
}

// WatchlistCreateRequest is the body of POST /watchlist/create.
type WatchlistCreateRequest struct {
	Name string `json:"name"`
}

// WatchlistCreateResponse is returned by POST /watchlist/create.
type WatchlistCreateResponse struct {
	Watchlist *Watchlist `json:"watchlist,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// WatchlistAddRequest is the body of POST /watchlist/add.
type WatchlistAddRequest struct {
	TMDBID      int    `json:"tmdbId"`
	WatchlistID string `json:"watchlistId"`
}

// WatchlistRemoveRequest names the list a movie is removed from.
type WatchlistRemoveRequest struct {
	WatchlistID string `json:"watchlistId"`
}

// WatchlistMoviesResponse is returned by GET /watchlistMovies/:name.
type WatchlistMoviesResponse struct {
	Watchlist struct {
		Name   string           `json:"name"`
		Movies []WatchlistMovie `json:"movies"`
	} `json:"watchlist"`
}

// RatingRequest is the body of POST /movie/:id/rate.
type RatingRequest struct {
	Rating int `json:"rating"`
}

// CommentRequest is the body of POST /movie/:id/comment.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// UsersResponse is returned by GET /users.
type UsersResponse struct {
	Success bool   `json:"success"`
	Users   []User `json:"users"`
	Message string `json:"message,omitempty"`
}

// ProfileUpdate is the body of PUT /user/profile/update.
type ProfileUpdate struct {
	Username string `json:"username"`
	Age      int    `json:"age"`
}
