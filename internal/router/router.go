// package router maps client paths to pages and gates protected pages on the session.
package router

import (
	"net/url"
	"strings"
)

// Page identifies a view.
type Page string

const (
	GuestPage           Page = "guest"
	HomePage            Page = "home"
	LoginPage           Page = "login"
	RegisterPage        Page = "register"
	MovieDetailsPage    Page = "movie"
	ProfilePage         Page = "profile"
	UsersPage           Page = "users"
	UserDetailsPage     Page = "user"
	WatchlistsPage      Page = "watchlists"
	WatchlistDetailPage Page = "watchlist"
	NotFoundPage        Page = "not-found"
	LoadingPage         Page = "loading"
)

// LoginPath is where unauthenticated visitors of a protected page are sent.
const LoginPath = "/login"

// Route binds a path pattern to a page. Segments starting with ":" capture a parameter.
type Route struct {
	Pattern   string
	Page      Page
	Protected bool
}

// Routes is the route table, matched in order. The last entry catches everything.
var Routes = []Route{
	{Pattern: "/", Page: GuestPage},
	{Pattern: "/home", Page: HomePage, Protected: true},
	{Pattern: "/login", Page: LoginPage},
	{Pattern: "/register", Page: RegisterPage},
	{Pattern: "/movies/:id", Page: MovieDetailsPage},
	{Pattern: "/profile", Page: ProfilePage},
	{Pattern: "/users", Page: UsersPage, Protected: true},
	{Pattern: "/user/:id", Page: UserDetailsPage, Protected: true},
	{Pattern: "/watchlist", Page: WatchlistsPage, Protected: true},
	{Pattern: "/watchlists/:name", Page: WatchlistDetailPage, Protected: true},
	{Pattern: "*", Page: NotFoundPage},
}

// Capabilities is what the guard needs to know about the session.
type Capabilities interface {
	IsBootstrapping() bool
	IsAuthenticated() bool
}

// Decision is the guard's verdict.
type Decision int

const (
	Render Decision = iota
	Loading
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Outcome is the result of guarding a protected view.
type Outcome struct {
	Decision Decision
	Location string // Set for Redirect
}

// Guard decides how a protected view responds to the session: a placeholder while
// bootstrapping, a redirect to the login page when signed out, otherwise the view.
func Guard(caps Capabilities) Outcome {
	switch {
	case caps.IsBootstrapping():
		return Outcome{Decision: Loading}
	case !caps.IsAuthenticated():
		return Outcome{Decision: Redirect, Location: LoginPath}
	default:
		return Outcome{Decision: Render}
	}
}

// Params holds the captured path parameters, already unescaped.
type Params map[string]string

// Match finds the first route whose pattern matches path. Query strings and a trailing slash are ignored.
func Match(path string) (Route, Params) {
	segments := split(path)
	for _, r := range Routes {
		if r.Pattern == "*" {
			return r, Params{}
		}
		if params, ok := matchSegments(split(r.Pattern), segments); ok {
			return r, params
		}
	}
	return Route{Pattern: "*", Page: NotFoundPage}, Params{}
}

// Resolution is the page to show for a path.
type Resolution struct {
	Route   Route
	Params  Params
	Outcome Outcome
}

// Page returns the page to display: the matched page when rendering, the loading
// placeholder while bootstrapping, or the login page after a redirect.
func (r Resolution) Page() Page {
	switch r.Outcome.Decision {
	case Loading:
		return LoadingPage
	case Redirect:
		return LoginPage
	}
	return r.Route.Page
}

// Resolve matches path and applies the guard only when the route is protected.
func Resolve(path string, caps Capabilities) Resolution {
	route, params := Match(path)
	outcome := Outcome{Decision: Render}
	if route.Protected {
		outcome = Guard(caps)
	}
	return Resolution{Route: route, Params: params, Outcome: outcome}
}

// Path builds a path from pattern, substituting and escaping params.
func Path(pattern string, params Params) string {
	parts := split(pattern)
	for i, p := range parts {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			parts[i] = url.PathEscape(params[name])
		}
	}
	return "/" + strings.Join(parts, "/")
}

func split(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchSegments(pattern, segments []string) (Params, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := Params{}
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			value, err := url.PathUnescape(segments[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[name] = value
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}
