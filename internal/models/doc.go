// Package models defines the entities exchanged with the CineMate API and the few records persisted locally.
//
// The package contains three categories of types:
//
// 1. API entities, decoded from the remote JSON contract:
//   - [Movie] : Catalog entry from the movie listing and detail endpoints
//   - [User] : Account profile, including follower references
//   - [Watchlist] : Named collection of movies owned by the signed-in user
//   - [WatchlistMovie] : Movie as listed inside a watchlist, with the user's rating
//
// 2. Request and response envelopes, one explicit type per endpoint (e.g. [LoginResponse], [MoviesResponse]),
// so callers never probe optional fields of an untyped payload.
//
// 3. Local records implementing [Model], stored through a [Repository]:
//   - [SearchRecord] : A structured filter combination that produced a remote query
//
// [Criteria] carries the movie filter state shared by the dispatcher-facing service and the search state machine,
// and the catalog tables ([Genres], [SortKeys], [RatingOptions]) mirror the options offered by the web client.
package models
