package actions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/repositories"
	"github.com/desertthunder/cinemate/internal/services"
	"github.com/desertthunder/cinemate/internal/session"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
	tu "github.com/desertthunder/cinemate/internal/testing"
)

var ana = &models.User{ID: "u1", Username: "ana"}

func newController(t *testing.T, api *tu.MockCineMate, signedIn bool) (*Controller, *repositories.MemorySlots) {
	t.Helper()
	slots := repositories.NewMemorySlots(nil)
	if signedIn {
		api.Identity = ana
		slots.Set(repositories.CredentialSlot, "tok")
	}
	sess := session.New(api, slots, nil)
	sess.Bootstrap(context.Background())
	return New(api, sess, state.NewAlert(0, nil), nil), slots
}

func assertAlert(t *testing.T, c *Controller, message string, severity state.Severity) {
	t.Helper()
	n, ok := c.Alert().Current()
	if !ok {
		t.Fatalf("expected alert %q, got none", message)
	}
	if n.Message != message || n.Severity != severity {
		t.Errorf("expected %s %q, got %s %q", severity, message, n.Severity, n.Message)
	}
}

func TestValidation(t *testing.T) {
	tc := []struct {
		name     string
		err      error
		message  string
		severity state.Severity
	}{
		{"missing email", ValidateLogin("", "secret"), "Email is required.", state.SeverityError},
		{"blank password", ValidateLogin("a@b.co", "   "), "Password is required.", state.SeverityError},
		{"bad email", ValidateLogin("ana@home", "secret"), "Please enter a valid email address.", state.SeverityError},
		{"short password", ValidateLogin("a@b.co", "12345"), "Password must be at least 6 characters long.", state.SeverityError},
		{"missing username", ValidateRegistration(models.Registration{Email: "a@b.co", Password: "secret"}), "Username is required.", state.SeverityError},
		{"empty watchlist name", ValidateWatchlistName("  ", nil), "Watchlist name cannot be empty.", state.SeverityWarning},
		{"duplicate watchlist", ValidateWatchlistName("later", []models.Watchlist{{ID: "w1", Name: "Later"}}), "A watchlist with this name already exists.", state.SeverityWarning},
		{"no selection", ValidateWatchlistSelection("", models.WatchlistStatus{}), "Please select a watchlist.", state.SeverityWarning},
		{"already listed", ValidateWatchlistSelection("w1", models.WatchlistStatus{WatchlistIDs: []models.WatchlistRef{{ID: "w1"}}}), "Movie is already in the selected watchlist.", state.SeverityInfo},
		{"empty comment", ValidateComment(" "), "Comment cannot be empty.", state.SeverityWarning},
		{"rating too high", ValidateRating(6), "Rating must be between 1 and 5 stars.", state.SeverityWarning},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var verr *ValidationError
			if !errors.As(tt.err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", tt.err)
			}
			if verr.Message != tt.message || verr.Severity != tt.severity {
				t.Errorf("expected %s %q, got %s %q", tt.severity, tt.message, verr.Severity, verr.Message)
			}
			if !errors.Is(tt.err, shared.ErrInvalidInput) {
				t.Error("expected ErrInvalidInput")
			}
		})
	}

	t.Run("valid input", func(t *testing.T) {
		if err := ValidateLogin("ana@example.com", "secret"); err != nil {
			t.Errorf("expected valid login, got %v", err)
		}
		if err := ValidateRating(5); err != nil {
			t.Errorf("expected valid rating, got %v", err)
		}
	})
}

func TestAuthActions(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid Login Makes No Request", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, slots := newController(t, api, false)

		user, err := c.Login(ctx, "not-an-email", "secret")
		if user != nil || err == nil {
			t.Fatalf("expected failure, got %+v %v", user, err)
		}
		if api.CallCount("Login") != 0 {
			t.Error("expected no login request")
		}
		assertAlert(t, c, "Please enter a valid email address.", state.SeverityError)
		if _, ok, _ := slots.Get(repositories.CredentialSlot); ok {
			t.Error("expected no credential")
		}
	})

	t.Run("Rejected Login", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Fail("Login", services.Rejected("Invalid email or password"))
		c, _ := newController(t, api, false)

		if _, err := c.Login(ctx, "ana@example.com", "secret"); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Invalid email or password", state.SeverityError)
		if c.Session().User() != nil {
			t.Error("expected nil identity")
		}
	})

	t.Run("Login Success", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, false)
		api.Identity, api.Token = ana, "jwt"

		user, err := c.Login(ctx, " ana@example.com ", "secret")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != ana.ID {
			t.Errorf("expected ana, got %+v", user)
		}
		assertAlert(t, c, "Login successful! Redirecting...", state.SeveritySuccess)
	})

	t.Run("Register", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Message = "User registered"
		c, _ := newController(t, api, false)

		if _, err := c.Register(ctx, models.Registration{Username: "ana", Email: "a@b.co", Password: "secret"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		assertAlert(t, c, "Signup successful! Redirecting...", state.SeveritySuccess)
		if c.Session().IsAuthenticated() {
			t.Error("expected registration not to sign in")
		}
	})

	t.Run("Logout", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, true)
		api.Fail("Logout", errors.New("offline"))

		c.Logout(ctx)
		if c.Session().User() != nil {
			t.Error("expected identity to be cleared")
		}
		assertAlert(t, c, "Logged out successfully.", state.SeveritySuccess)
	})
}

func TestMovieActions(t *testing.T) {
	ctx := context.Background()
	heat := &models.Movie{ID: 949, Title: "Heat"}

	t.Run("Details For Guest", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Detail = heat
		c, _ := newController(t, api, false)

		details, err := c.MovieDetails(ctx, 949)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if details.Movie.Title != "Heat" {
			t.Errorf("expected Heat, got %s", details.Movie.Title)
		}
		if api.CallCount("FavoriteStatus") != 0 || api.CallCount("WatchlistStatus") != 0 {
			t.Error("expected no list lookups for a guest")
		}
	})

	t.Run("Details Sequence For User", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Detail, api.InFavorites = heat, true
		api.Status = models.WatchlistStatus{WatchlistIDs: []models.WatchlistRef{{ID: "w1", Name: "Later"}}}
		c, _ := newController(t, api, true)

		details, err := c.MovieDetails(ctx, 949)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		calls := api.Calls()
		want := []string{"Me", "Movie", "FavoriteStatus", "WatchlistStatus", "Watchlists"}
		if len(calls) != len(want) {
			t.Fatalf("expected calls %v, got %v", want, calls)
		}
		for i := range want {
			if calls[i] != want[i] {
				t.Errorf("expected call %d to be %s, got %s", i, want[i], calls[i])
			}
		}
		if !details.InFavorites || !details.Status.Contains("w1") {
			t.Errorf("unexpected details %+v", details)
		}
	})

	t.Run("Movie Not Found", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Fail("Movie", shared.ErrMovieNotFound)
		c, _ := newController(t, api, false)

		if _, err := c.MovieDetails(ctx, 1); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Movie not found.", state.SeverityError)
	})

	t.Run("Favorite Requires Login", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, false)

		err := c.ToggleFavorite(ctx, &MovieDetails{Movie: heat})
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		assertAlert(t, c, "Please log in to manage your favorites.", state.SeverityInfo)
		if api.CallCount("AddFavorite") != 0 {
			t.Error("expected no request")
		}
	})

	t.Run("Favorite Toggle", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Message = "Added to favorites"
		c, _ := newController(t, api, true)

		details := &MovieDetails{Movie: heat}
		if err := c.ToggleFavorite(ctx, details); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !details.InFavorites {
			t.Error("expected movie to be a favorite")
		}
		assertAlert(t, c, "Added to favorites", state.SeveritySuccess)

		if err := c.ToggleFavorite(ctx, details); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if details.InFavorites || api.CallCount("RemoveFavorite") != 1 {
			t.Error("expected movie to be removed from favorites")
		}
	})

	t.Run("Recommendations Need A User", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, false)

		movies, err := c.Recommendations(ctx)
		if err != nil || len(movies) != 0 {
			t.Errorf("expected empty list, got %v %v", movies, err)
		}
		if api.CallCount("Recommendations") != 0 {
			t.Error("expected no request")
		}
	})

	t.Run("Recommendations Wait For Bootstrap", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Identity = ana
		slots := repositories.NewMemorySlots(map[string]string{repositories.CredentialSlot: "tok"})
		c := New(api, session.New(api, slots, nil), state.NewAlert(0, nil), nil)

		if _, err := c.Recommendations(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if api.CallCount("Recommendations") != 0 {
			t.Error("expected no request while bootstrapping")
		}
	})

	t.Run("Movies Filters By Query", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.MovieList = []models.Movie{{ID: 1, Title: "Alien"}, {ID: 2, Title: "Heat"}}
		c, _ := newController(t, api, false)

		movies, err := c.Movies(ctx, models.Criteria{Query: "heat", Year: "1995"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(movies) != 1 || movies[0].Title != "Heat" {
			t.Errorf("expected Heat only, got %+v", movies)
		}
		if api.LastCriteria.Query != "" || api.LastCriteria.Year != "1995" {
			t.Errorf("unexpected criteria sent %+v", api.LastCriteria)
		}
	})
}

func TestWatchlistActions(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Duplicate", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, true)

		_, err := c.CreateWatchlist(ctx, "LATER", []models.Watchlist{{ID: "w1", Name: "Later"}})
		if err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "A watchlist with this name already exists.", state.SeverityWarning)
		if api.CallCount("CreateWatchlist") != 0 {
			t.Error("expected no request")
		}
	})

	t.Run("Create", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Message = "Watchlist created"
		c, _ := newController(t, api, true)

		list, err := c.CreateWatchlist(ctx, " Date Night ", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if list.Name != "Date Night" {
			t.Errorf("expected trimmed name, got %q", list.Name)
		}
		assertAlert(t, c, "Watchlist created", state.SeveritySuccess)
	})

	t.Run("Add Already Present", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, true)
		status := models.WatchlistStatus{WatchlistIDs: []models.WatchlistRef{{ID: "w1"}}}

		if err := c.AddToWatchlist(ctx, 1, "w1", status); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Movie is already in the selected watchlist.", state.SeverityInfo)
	})

	t.Run("Add Requires Login", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, false)

		if err := c.AddToWatchlist(ctx, 1, "w1", models.WatchlistStatus{}); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Please log in to manage your watchlists.", state.SeverityInfo)
	})

	t.Run("Remove", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Message = "Removed"
		c, _ := newController(t, api, true)

		if err := c.RemoveFromWatchlist(ctx, 1, models.WatchlistRef{ID: "w1", Name: "Later"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		assertAlert(t, c, "Removed", state.SeveritySuccess)
	})

	t.Run("Movies Failure", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Fail("WatchlistMovies", errors.New("boom"))
		c, _ := newController(t, api, true)

		if _, err := c.WatchlistMovies(ctx, "Later"); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Failed to fetch movies for Later.", state.SeverityError)
	})

	t.Run("Rate", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, true)

		if err := c.Rate(ctx, "m1", 4); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		assertAlert(t, c, "Rated movie with 4 stars!", state.SeveritySuccess)

		api.Fail("RateMovie", errors.New("boom"))
		if err := c.Rate(ctx, "m1", 4); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Failed to rate movie.", state.SeverityError)
	})

	t.Run("Rate Declined", func(t *testing.T) {
		declined := false
		api := tu.NewMockCineMate()
		api.Reply = &models.MessageResponse{Success: &declined, Message: "nope"}
		c, _ := newController(t, api, true)

		err := c.Rate(ctx, "m1", 4)
		if err == nil {
			t.Fatal("expected error for success: false")
		}
		var apiErr *services.APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "nope" {
			t.Errorf("expected rejection carrying the server message, got %v", err)
		}
		assertAlert(t, c, "Failed to rate movie.", state.SeverityError)
	})

	t.Run("Rate Without Success Field", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Reply = &models.MessageResponse{Message: "Rating saved"}
		c, _ := newController(t, api, true)

		if err := c.Rate(ctx, "m1", 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		assertAlert(t, c, "Rated movie with 3 stars!", state.SeveritySuccess)
	})

	t.Run("Comment", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, true)

		if err := c.Comment(ctx, "m1", ""); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Comment cannot be empty.", state.SeverityWarning)

		if err := c.Comment(ctx, "m1", "Great heist"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		assertAlert(t, c, "Comment added for movie!", state.SeveritySuccess)
	})

	t.Run("FindWatchlist", func(t *testing.T) {
		lists := []models.Watchlist{{ID: "w1", Name: "Later"}}
		if l, err := FindWatchlist(lists, "later"); err != nil || l.ID != "w1" {
			t.Errorf("expected w1, got %+v %v", l, err)
		}
		if _, err := FindWatchlist(lists, "never"); !errors.Is(err, shared.ErrWatchlistNotFound) {
			t.Errorf("expected ErrWatchlistNotFound, got %v", err)
		}
	})
}

func TestUserActions(t *testing.T) {
	ctx := context.Background()
	bo := models.User{ID: "u2", Username: "bo"}

	t.Run("Follow Adds Current User", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Message = "Followed"
		c, _ := newController(t, api, true)

		updated, err := c.ToggleFollow(ctx, bo)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !updated.IsFollowedBy(ana.ID) {
			t.Error("expected ana among followers")
		}
		if len(bo.Followers) != 0 {
			t.Error("expected original user to be unchanged")
		}
		if api.CallCount("Follow") != 1 {
			t.Error("expected follow request")
		}
	})

	t.Run("Unfollow Removes Current User", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Message = "Unfollowed"
		c, _ := newController(t, api, true)

		followed := bo.WithFollower(ana.Ref())
		updated, err := c.ToggleFollow(ctx, followed)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if updated.IsFollowedBy(ana.ID) {
			t.Error("expected ana to be removed")
		}
		if api.CallCount("Unfollow") != 1 {
			t.Error("expected unfollow request")
		}
	})

	t.Run("Follow Without Message", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, true)

		updated, err := c.ToggleFollow(ctx, bo)
		if err == nil {
			t.Fatal("expected error")
		}
		if updated.IsFollowedBy(ana.ID) {
			t.Error("expected no local change")
		}
		assertAlert(t, c, "Something went wrong.", state.SeverityError)
	})

	t.Run("ReplaceUser", func(t *testing.T) {
		users := []models.User{*ana, bo}
		out := ReplaceUser(users, bo.WithFollower(ana.Ref()))
		if !out[1].IsFollowedBy(ana.ID) || users[1].IsFollowedBy(ana.ID) {
			t.Error("expected only the copy to change")
		}
	})

	t.Run("Users Failure", func(t *testing.T) {
		api := tu.NewMockCineMate()
		api.Fail("Users", errors.New("boom"))
		c, _ := newController(t, api, true)

		if _, err := c.Users(ctx); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Could not fetch users.", state.SeverityError)
	})

	t.Run("Users Declined By Server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			switch r.URL.Path {
			case "/users":
				w.Write([]byte(`{"success":false,"message":"Users are hidden"}`))
			case "/user/u9":
				w.Write([]byte(`{"message":"User not found"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		api := services.NewCineMateService(services.NewDispatcher(services.DispatcherOpts{
			BaseURL:    srv.URL,
			HTTPClient: srv.Client(),
		}))
		sess := session.New(api, repositories.NewMemorySlots(nil), nil)
		c := New(api, sess, state.NewAlert(0, nil), nil)

		if _, err := c.Users(ctx); err == nil {
			t.Fatal("expected error")
		}
		assertAlert(t, c, "Users are hidden", state.SeverityError)

		_, err := c.User(ctx, "u9")
		if !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
		assertAlert(t, c, "User not found", state.SeverityError)
	})

	t.Run("Update Profile", func(t *testing.T) {
		api := tu.NewMockCineMate()
		c, _ := newController(t, api, true)

		user, err := c.UpdateProfile(ctx, models.ProfileUpdate{Username: "ana2", Age: 31})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.Username != "ana2" {
			t.Errorf("expected ana2, got %s", user.Username)
		}
		assertAlert(t, c, "Profile updated!", state.SeveritySuccess)
	})
}
