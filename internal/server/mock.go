package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
)

// SampleMovies is the catalog served by [MockAPI] when none is given.
var SampleMovies = []models.Movie{
	{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9, Popularity: 45.1, GenreIDs: []int{28, 80, 18, 53}, Runtime: 170,
		Overview: "Obsessive master thief Neil McCauley leads a top-notch crew on various daring heists."},
	{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-31", VoteAverage: 8.2, Popularity: 80.4, GenreIDs: []int{28, 878}, Runtime: 136,
		Overview: "A hacker learns the world he lives in is a simulation."},
	{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", VoteAverage: 8.4, Popularity: 92.7, GenreIDs: []int{28, 878, 12}, Runtime: 148,
		Overview: "A thief who steals corporate secrets through dream-sharing technology."},
	{ID: 680, Title: "Pulp Fiction", ReleaseDate: "1994-09-10", VoteAverage: 8.5, Popularity: 64.2, GenreIDs: []int{53, 80}, Runtime: 154,
		Overview: "The lives of two mob hitmen, a boxer and a pair of diner bandits intertwine."},
	{ID: 13, Title: "Forrest Gump", ReleaseDate: "1994-06-23", VoteAverage: 8.5, Popularity: 70.9, GenreIDs: []int{35, 18, 10749}, Runtime: 142,
		Overview: "A man with a low IQ recounts several decades of extraordinary events."},
	{ID: 129, Title: "Spirited Away", ReleaseDate: "2001-07-20", VoteAverage: 8.5, Popularity: 88.3, GenreIDs: []int{16, 10751, 14}, Runtime: 125,
		Overview: "A young girl wanders into a world ruled by gods, witches and spirits."},
	{ID: 348, Title: "Alien", ReleaseDate: "1979-05-25", VoteAverage: 8.2, Popularity: 52.0, GenreIDs: []int{27, 878}, Runtime: 117,
		Overview: "The crew of a commercial spacecraft encounters a deadly lifeform."},
	{ID: 238, Title: "The Godfather", ReleaseDate: "1972-03-14", VoteAverage: 8.7, Popularity: 98.6, GenreIDs: []int{18, 80}, Runtime: 175,
		Overview: "The aging patriarch of an organized crime dynasty transfers control to his son."},
}

type account struct {
	user     models.User
	password string
}

type listing struct {
	id       string
	tmdbID   int
	rating   int
	comments []string
}

type watchlist struct {
	id      string
	name    string
	entries []*listing
}

// MockAPI is an in-memory implementation of the CineMate REST API.
//
// It keeps accounts, bearer tokens, favorites, watchlists and follows in memory
// and serves the same paths and payload shapes as the hosted backend.
type MockAPI struct {
	mu         sync.RWMutex
	tokens     *Tokens
	movies     []models.Movie
	accounts   map[string]*account
	favorites  map[string][]int
	watchlists map[string][]*watchlist
	logger     *log.Logger
}

// MockOpts configures [NewMockAPI].
type MockOpts struct {
	Movies []models.Movie // Defaults to [SampleMovies]
	Logger *log.Logger
}

// NewMockAPI creates an empty API over the movie catalog.
func NewMockAPI(opts MockOpts) *MockAPI {
	if opts.Movies == nil {
		opts.Movies = SampleMovies
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	return &MockAPI{
		tokens:     NewTokens(),
		movies:     slices.Clone(opts.Movies),
		accounts:   map[string]*account{},
		favorites:  map[string][]int{},
		watchlists: map[string][]*watchlist{},
		logger:     opts.Logger,
	}
}

// Tokens returns the token table used for bearer authentication.
func (m *MockAPI) Tokens() *Tokens { return m.tokens }

// Seed creates an account directly, bypassing signup validation.
func (m *MockAPI) Seed(username, email, password string, age int) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := models.User{ID: shared.GenerateID(), Username: username, Email: email, Age: age}
	m.accounts[user.ID] = &account{user: user, password: password}
	return user
}

// NewHandler returns a router serving m with request ids and logging.
func (m *MockAPI) NewHandler() http.Handler {
	router := NewBasicRouter()
	router.Use(RequestID, Logging(m.logger))
	router.Handler(m)
	return router
}

// Routes implements [Handler].
func (m *MockAPI) Routes() []Route {
	auth := []Middleware{BearerAuth(m.tokens)}
	return []Route{
		{Method: http.MethodGet, Path: "/me", Handler: m.me, Middleware: auth},
		{Method: http.MethodPost, Path: "/login", Handler: m.login},
		{Method: http.MethodPost, Path: "/signup", Handler: m.signup},
		{Method: http.MethodPost, Path: "/logout", Handler: m.logout},
		{Method: http.MethodGet, Path: "/movies", Handler: m.listMovies},
		{Method: http.MethodGet, Path: "/movies/{id}", Handler: m.movie},
		{Method: http.MethodGet, Path: "/recommendations", Handler: m.recommendations, Middleware: auth},
		{Method: http.MethodGet, Path: "/favorites/status/{id}", Handler: m.favoriteStatus, Middleware: auth},
		{Method: http.MethodPost, Path: "/favorites/add", Handler: m.addFavorite, Middleware: auth},
		{Method: http.MethodDelete, Path: "/favorites/delete/{id}", Handler: m.removeFavorite, Middleware: auth},
		{Method: http.MethodGet, Path: "/watchlists", Handler: m.listWatchlists, Middleware: auth},
		{Method: http.MethodGet, Path: "/watchlist/status/{id}", Handler: m.watchlistStatus, Middleware: auth},
		{Method: http.MethodPost, Path: "/watchlist/create", Handler: m.createWatchlist, Middleware: auth},
		{Method: http.MethodPost, Path: "/watchlist/add", Handler: m.addToWatchlist, Middleware: auth},
		{Method: http.MethodDelete, Path: "/removefromwatchlist/{id}", Handler: m.removeFromWatchlist, Middleware: auth},
		{Method: http.MethodGet, Path: "/watchlistMovies/{name}", Handler: m.watchlistMovies, Middleware: auth},
		{Method: http.MethodPost, Path: "/movie/{id}/rate", Handler: m.rate, Middleware: auth},
		{Method: http.MethodPost, Path: "/movie/{id}/comment", Handler: m.comment, Middleware: auth},
		{Method: http.MethodGet, Path: "/users", Handler: m.listUsers, Middleware: auth},
		{Method: http.MethodGet, Path: "/user/profile", Handler: m.profile, Middleware: auth},
		{Method: http.MethodPut, Path: "/user/profile/update", Handler: m.updateProfile, Middleware: auth},
		{Method: http.MethodGet, Path: "/user/{id}", Handler: m.user, Middleware: auth},
		{Method: http.MethodPost, Path: "/user/follow/{id}", Handler: m.follow, Middleware: auth},
		{Method: http.MethodPost, Path: "/user/unfollow/{id}", Handler: m.unfollow, Middleware: auth},
	}
}

// current returns the signed-in account. Callers hold m.mu.
func (m *MockAPI) current(r *http.Request) (*account, bool) {
	id, ok := UserID(r.Context())
	if !ok {
		return nil, false
	}
	acct, ok := m.accounts[id]
	return acct, ok
}

func (m *MockAPI) findByEmail(email string) *account {
	for _, acct := range m.accounts {
		if strings.EqualFold(acct.user.Email, email) {
			return acct
		}
	}
	return nil
}

func (m *MockAPI) findMovie(id int) (models.Movie, bool) {
	for _, movie := range m.movies {
		if movie.ID == id {
			return movie, true
		}
	}
	return models.Movie{}, false
}

func pathInt(r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	return n, err == nil
}

// public strips private fields before a user leaves the server.
func public(u models.User) models.User {
	u.Email = ""
	return u
}

func listingView(m models.Movie) models.Movie {
	m.Genres, m.Runtime = nil, 0
	return m
}

func detailView(m models.Movie) models.Movie {
	m.Genres = nil
	for _, id := range m.GenreIDs {
		if name, ok := models.GenreName(id); ok {
			m.Genres = append(m.Genres, models.Genre{ID: id, Name: name})
		}
	}
	return m
}

func (m *MockAPI) me(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.current(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "User not found")
		return
	}
	user := acct.user
	writeJSON(w, http.StatusOK, models.MeResponse{User: &user})
}

func (m *MockAPI) login(w http.ResponseWriter, r *http.Request) {
	var body models.LoginRequest
	if err := readJSON(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	m.mu.RLock()
	acct := m.findByEmail(body.Email)
	m.mu.RUnlock()
	if acct == nil || acct.password != body.Password {
		writeMessage(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	user := acct.user
	token := m.tokens.Issue(user.ID)
	m.logger.Debug("issued token", "user", user.Username)
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: &user, Message: "Login successful"})
}

func (m *MockAPI) signup(w http.ResponseWriter, r *http.Request) {
	var body models.Registration
	if err := readJSON(r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	m.mu.RLock()
	exists := m.findByEmail(body.Email) != nil
	m.mu.RUnlock()
	if exists {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}

	age, _ := strconv.Atoi(strings.TrimSpace(body.Age))
	m.Seed(body.Username, body.Email, body.Password, age)
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (m *MockAPI) logout(w http.ResponseWriter, r *http.Request) {
	if token := BearerToken(r); token != "" {
		m.tokens.Revoke(token)
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (m *MockAPI) listMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	genre, _ := strconv.Atoi(q.Get("genre"))
	minRating, _ := strconv.ParseFloat(q.Get("rating"), 64)
	year := q.Get("year")

	m.mu.RLock()
	results := make([]models.Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		switch {
		case genre != 0 && !slices.Contains(movie.GenreIDs, genre):
			continue
		case year != "" && movie.Year() != year:
			continue
		case movie.VoteAverage < minRating:
			continue
		}
		results = append(results, listingView(movie))
	}
	m.mu.RUnlock()

	sortMovies(results, q.Get("sortBy"))
	writeJSON(w, http.StatusOK, models.MoviesResponse{Results: results})
}

func sortMovies(movies []models.Movie, key string) {
	less := map[string]func(a, b models.Movie) bool{
		string(models.SortRating):    func(a, b models.Movie) bool { return a.VoteAverage > b.VoteAverage },
		string(models.SortNewest):    func(a, b models.Movie) bool { return a.ReleaseDate > b.ReleaseDate },
		string(models.SortOldest):    func(a, b models.Movie) bool { return a.ReleaseDate < b.ReleaseDate },
		string(models.SortTitleAsc):  func(a, b models.Movie) bool { return a.Title < b.Title },
		string(models.SortTitleDesc): func(a, b models.Movie) bool { return a.Title > b.Title },
	}[key]
	if less == nil {
		less = func(a, b models.Movie) bool { return a.Popularity > b.Popularity }
	}
	sort.SliceStable(movies, func(i, j int) bool { return less(movies[i], movies[j]) })
}

func (m *MockAPI) movie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid movie id")
		return
	}
	m.mu.RLock()
	movie, found := m.findMovie(id)
	m.mu.RUnlock()
	if !found {
		writeMessage(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, detailView(movie))
}

// recommendations suggests unfavorited movies sharing a genre with the user's favorites,
// or the best rated movies when there are no favorites.
func (m *MockAPI) recommendations(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, _ := m.current(r)
	favorites := m.favorites[acct.user.ID]

	genres := map[int]bool{}
	for _, id := range favorites {
		if movie, ok := m.findMovie(id); ok {
			for _, g := range movie.GenreIDs {
				genres[g] = true
			}
		}
	}

	picks := []models.Movie{}
	for _, movie := range m.movies {
		if slices.Contains(favorites, movie.ID) {
			continue
		}
		if len(genres) == 0 || slices.ContainsFunc(movie.GenreIDs, func(g int) bool { return genres[g] }) {
			picks = append(picks, listingView(movie))
		}
	}
	sortMovies(picks, string(models.SortRating))
	if len(picks) > 5 {
		picks = picks[:5]
	}
	writeJSON(w, http.StatusOK, models.RecommendationsResponse{Recommendations: picks})
}

func (m *MockAPI) favoriteStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid movie id")
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, _ := m.current(r)
	writeJSON(w, http.StatusOK, models.FavoriteStatus{IsInFavorites: slices.Contains(m.favorites[acct.user.ID], id)})
}

func (m *MockAPI) addFavorite(w http.ResponseWriter, r *http.Request) {
	var body models.FavoriteRequest
	if err := readJSON(r, &body); err != nil || body.TMDBID == 0 {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Movie id is required"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	if slices.Contains(m.favorites[acct.user.ID], body.TMDBID) {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Movie already in favorites"})
		return
	}
	m.favorites[acct.user.ID] = append(m.favorites[acct.user.ID], body.TMDBID)
	writeJSON(w, http.StatusOK, models.Ack("Movie added to favorites"))
}

func (m *MockAPI) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid movie id")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	favorites := m.favorites[acct.user.ID]
	i := slices.Index(favorites, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Movie not in favorites"})
		return
	}
	m.favorites[acct.user.ID] = slices.Delete(favorites, i, i+1)
	writeJSON(w, http.StatusOK, models.Ack("Movie removed from favorites"))
}

func (l *watchlist) view() models.Watchlist {
	movies := make([]json.RawMessage, 0, len(l.entries))
	for _, e := range l.entries {
		raw, _ := json.Marshal(e.id)
		movies = append(movies, raw)
	}
	return models.Watchlist{ID: l.id, Name: l.name, Movies: movies}
}

func (l *watchlist) index(tmdbID int) int {
	return slices.IndexFunc(l.entries, func(e *listing) bool { return e.tmdbID == tmdbID })
}

func (m *MockAPI) listWatchlists(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, _ := m.current(r)

	lists := []models.Watchlist{}
	for _, l := range m.watchlists[acct.user.ID] {
		lists = append(lists, l.view())
	}
	writeJSON(w, http.StatusOK, models.WatchlistsResponse{Watchlists: lists})
}

func (m *MockAPI) watchlistStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Invalid movie id")
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, _ := m.current(r)

	refs := []models.WatchlistRef{}
	for _, l := range m.watchlists[acct.user.ID] {
		if l.index(id) >= 0 {
			refs = append(refs, models.WatchlistRef{ID: l.id, Name: l.name})
		}
	}
	writeJSON(w, http.StatusOK, models.WatchlistStatus{WatchlistIDs: refs})
}

func (m *MockAPI) createWatchlist(w http.ResponseWriter, r *http.Request) {
	var body models.WatchlistCreateRequest
	if err := readJSON(r, &body); err != nil || strings.TrimSpace(body.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "Watchlist name is required")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	for _, l := range m.watchlists[acct.user.ID] {
		if strings.EqualFold(l.name, body.Name) {
			writeMessage(w, http.StatusBadRequest, "Watchlist already exists")
			return
		}
	}

	list := &watchlist{id: shared.GenerateID(), name: strings.TrimSpace(body.Name)}
	m.watchlists[acct.user.ID] = append(m.watchlists[acct.user.ID], list)
	view := list.view()
	writeJSON(w, http.StatusCreated, models.WatchlistCreateResponse{Watchlist: &view, Message: "Watchlist created successfully"})
}

// ownedList returns the user's watchlist with id. Callers hold m.mu.
func (m *MockAPI) ownedList(userID, id string) *watchlist {
	for _, l := range m.watchlists[userID] {
		if l.id == id {
			return l
		}
	}
	return nil
}

func (m *MockAPI) addToWatchlist(w http.ResponseWriter, r *http.Request) {
	var body models.WatchlistAddRequest
	if err := readJSON(r, &body); err != nil || body.TMDBID == 0 || body.WatchlistID == "" {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Movie id and watchlist id are required"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	list := m.ownedList(acct.user.ID, body.WatchlistID)
	switch {
	case list == nil:
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Watchlist not found"})
		return
	case list.index(body.TMDBID) >= 0:
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Movie already in watchlist"})
		return
	}
	if _, ok := m.findMovie(body.TMDBID); !ok {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Movie not found"})
		return
	}

	list.entries = append(list.entries, &listing{id: shared.GenerateID(), tmdbID: body.TMDBID})
	writeJSON(w, http.StatusOK, models.Ack(fmt.Sprintf("Movie added to %s", list.name)))
}

func (m *MockAPI) removeFromWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	watchlistID := r.URL.Query().Get("watchlistId")
	if !ok || watchlistID == "" {
		writeJSON(w, http.StatusBadRequest, models.MessageResponse{Message: "Movie id and watchlist id are required"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	list := m.ownedList(acct.user.ID, watchlistID)
	if list == nil {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Watchlist not found"})
		return
	}
	i := list.index(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, models.MessageResponse{Message: "Movie not in watchlist"})
		return
	}
	list.entries = slices.Delete(list.entries, i, i+1)
	writeJSON(w, http.StatusOK, models.Ack(fmt.Sprintf("Movie removed from %s", list.name)))
}

func (m *MockAPI) watchlistMovies(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, _ := m.current(r)

	var resp models.WatchlistMoviesResponse
	for _, l := range m.watchlists[acct.user.ID] {
		if !strings.EqualFold(l.name, name) {
			continue
		}
		resp.Watchlist.Name = l.name
		resp.Watchlist.Movies = []models.WatchlistMovie{}
		for _, e := range l.entries {
			movie, _ := m.findMovie(e.tmdbID)
			resp.Watchlist.Movies = append(resp.Watchlist.Movies, models.WatchlistMovie{
				ID:         e.id,
				Title:      movie.Title,
				Overview:   movie.Overview,
				PosterPath: movie.PosterPath,
				UserRating: e.rating,
			})
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeMessage(w, http.StatusNotFound, "Watchlist not found")
}

// entry finds a watchlist movie by its listing id. Callers hold m.mu.
func (m *MockAPI) entry(userID, id string) *listing {
	for _, l := range m.watchlists[userID] {
		for _, e := range l.entries {
			if e.id == id {
				return e
			}
		}
	}
	return nil
}

func (m *MockAPI) rate(w http.ResponseWriter, r *http.Request) {
	var body models.RatingRequest
	if err := readJSON(r, &body); err != nil || body.Rating < 1 || body.Rating > 5 {
		writeMessage(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	e := m.entry(acct.user.ID, r.PathValue("id"))
	if e == nil {
		writeMessage(w, http.StatusNotFound, "Movie not found in your watchlists")
		return
	}
	e.rating = body.Rating
	writeMessage(w, http.StatusOK, "Rating saved")
}

func (m *MockAPI) comment(w http.ResponseWriter, r *http.Request) {
	var body models.CommentRequest
	if err := readJSON(r, &body); err != nil || strings.TrimSpace(body.Comment) == "" {
		writeMessage(w, http.StatusBadRequest, "Comment is required")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	e := m.entry(acct.user.ID, r.PathValue("id"))
	if e == nil {
		writeMessage(w, http.StatusNotFound, "Movie not found in your watchlists")
		return
	}
	e.comments = append(e.comments, body.Comment)
	writeMessage(w, http.StatusOK, "Comment added")
}

func (m *MockAPI) listUsers(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	users := make([]models.User, 0, len(m.accounts))
	for _, acct := range m.accounts {
		users = append(users, public(acct.user))
	}
	m.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	writeJSON(w, http.StatusOK, models.UsersResponse{Success: true, Users: users})
}

func (m *MockAPI) user(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, ok := m.accounts[r.PathValue("id")]
	if !ok {
		writeMessage(w, http.StatusOK, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, public(acct.user))
}

func (m *MockAPI) follow(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	me, _ := m.current(r)
	target, ok := m.accounts[r.PathValue("id")]
	switch {
	case !ok:
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	case target.user.ID == me.user.ID:
		writeMessage(w, http.StatusBadRequest, "You cannot follow yourself")
		return
	case target.user.IsFollowedBy(me.user.ID):
		writeMessage(w, http.StatusBadRequest, "You are already following this user")
		return
	}

	target.user = target.user.WithFollower(me.user.Ref())
	me.user.Following = append(me.user.Following, target.user.Ref())
	writeMessage(w, http.StatusOK, fmt.Sprintf("You are now following %s", target.user.Username))
}

func (m *MockAPI) unfollow(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	me, _ := m.current(r)
	target, ok := m.accounts[r.PathValue("id")]
	switch {
	case !ok:
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	case !target.user.IsFollowedBy(me.user.ID):
		writeMessage(w, http.StatusBadRequest, "You are not following this user")
		return
	}

	target.user = target.user.WithoutFollower(me.user.ID)
	me.user.Following = slices.DeleteFunc(me.user.Following, func(ref models.UserRef) bool { return ref.ID == target.user.ID })
	writeMessage(w, http.StatusOK, fmt.Sprintf("You have unfollowed %s", target.user.Username))
}

func (m *MockAPI) profile(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	acct, _ := m.current(r)
	writeJSON(w, http.StatusOK, acct.user)
}

func (m *MockAPI) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body models.ProfileUpdate
	if err := readJSON(r, &body); err != nil || strings.TrimSpace(body.Username) == "" {
		writeMessage(w, http.StatusBadRequest, "Username is required")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	acct, _ := m.current(r)
	acct.user.Username, acct.user.Age = strings.TrimSpace(body.Username), body.Age
	writeJSON(w, http.StatusOK, acct.user)
}
