package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/repositories"
	"github.com/desertthunder/cinemate/internal/shared"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// newTestService serves fixed JSON payloads keyed by "METHOD /path" and records each request.
func newTestService(t *testing.T, payloads map[string]string) (*CineMateService, *[]recordedRequest) {
	t.Helper()
	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		requests = append(requests, recordedRequest{r.Method, r.URL.EscapedPath(), r.URL.RawQuery, string(body)})

		payload, ok := payloads[r.Method+" "+r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "not found"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	t.Cleanup(server.Close)

	storage := repositories.NewMemorySlots(map[string]string{repositories.CredentialSlot: "token"})
	d := NewDispatcher(DispatcherOpts{BaseURL: server.URL, Storage: storage})
	return NewCineMateService(d), &requests
}

func TestCineMateService(t *testing.T) {
	ctx := context.Background()

	t.Run("Auth", func(t *testing.T) {
		t.Run("Login", func(t *testing.T) {
			svc, reqs := newTestService(t, map[string]string{
				"POST /login": `{"token":"jwt","user":{"_id":"u1","username":"ana"}}`,
			})

			resp, err := svc.Login(ctx, "ana@example.com", "secret")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Token != "jwt" || resp.User == nil || resp.User.Username != "ana" {
				t.Errorf("unexpected login response: %+v", resp)
			}
			if got := (*reqs)[0].Body; got != `{"email":"ana@example.com","password":"secret"}` {
				t.Errorf("unexpected body %s", got)
			}
		})

		t.Run("Me", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{
				"GET /me": `{"user":{"_id":"u1","username":"ana"}}`,
			})

			resp, err := svc.Me(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.User == nil || resp.User.ID != "u1" {
				t.Errorf("expected user u1, got %+v", resp.User)
			}
		})

		t.Run("Logout", func(t *testing.T) {
			svc, reqs := newTestService(t, map[string]string{"POST /logout": `{"message":"bye"}`})
			if err := svc.Logout(ctx); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(*reqs) != 1 {
				t.Errorf("expected 1 request, got %d", len(*reqs))
			}
		})
	})

	t.Run("Movies", func(t *testing.T) {
		t.Run("Sends Structured Criteria", func(t *testing.T) {
			svc, reqs := newTestService(t, map[string]string{
				"GET /movies": `{"results":[{"id":1,"title":"Alien"},{"id":2,"title":"Heat"}]}`,
			})

			criteria := models.Criteria{Query: "ali", Genre: "27", Year: "1979", Rating: "7", SortBy: string(models.SortRating)}
			movies, err := svc.Movies(ctx, criteria)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 2 {
				t.Fatalf("expected 2 movies, got %d", len(movies))
			}

			want := criteria.Values().Encode()
			if got := (*reqs)[0].Query; got != want {
				t.Errorf("expected query %q, got %q", want, got)
			}
		})

		t.Run("Movie Not Found", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{"GET /movies/7": `{}`})

			_, err := svc.Movie(ctx, 7)
			if !errors.Is(err, shared.ErrMovieNotFound) {
				t.Errorf("expected ErrMovieNotFound, got %v", err)
			}
		})

		t.Run("Recommendations", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{
				"GET /recommendations": `{"recommendations":[{"id":3,"title":"Ran"}]}`,
			})

			movies, err := svc.Recommendations(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(movies) != 1 || movies[0].Title != "Ran" {
				t.Errorf("unexpected recommendations %+v", movies)
			}
		})
	})

	t.Run("Favorites", func(t *testing.T) {
		svc, reqs := newTestService(t, map[string]string{
			"GET /favorites/status/5":    `{"isInFavorites":true}`,
			"POST /favorites/add":        `{"message":"added"}`,
			"DELETE /favorites/delete/5": `{"message":"removed"}`,
		})

		in, err := svc.FavoriteStatus(ctx, 5)
		if err != nil || !in {
			t.Fatalf("expected favorite, got %v (%v)", in, err)
		}
		if _, err := svc.AddFavorite(ctx, 5); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if (*reqs)[1].Body != `{"tmdbId":5}` {
			t.Errorf("unexpected add body %s", (*reqs)[1].Body)
		}
		resp, err := svc.RemoveFavorite(ctx, 5)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Message != "removed" {
			t.Errorf("expected 'removed', got %q", resp.Message)
		}
	})

	t.Run("Watchlists", func(t *testing.T) {
		t.Run("Remove Sends Watchlist ID As Query", func(t *testing.T) {
			svc, reqs := newTestService(t, map[string]string{
				"DELETE /removefromwatchlist/9": `{"message":"removed"}`,
			})

			if _, err := svc.RemoveFromWatchlist(ctx, 9, "w1"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			req := (*reqs)[0]
			if req.Query != "watchlistId=w1" {
				t.Errorf("expected watchlistId query, got %q", req.Query)
			}
			if req.Body != "" {
				t.Errorf("expected no DELETE body, got %q", req.Body)
			}
		})

		t.Run("Movies Escapes Name", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{
				"GET /watchlistMovies/Date%20Night": `{"watchlist":{"name":"Date Night","movies":[{"_id":"m1","title":"Heat"}]}}`,
			})

			resp, err := svc.WatchlistMovies(ctx, "Date Night")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Watchlist.Name != "Date Night" || len(resp.Watchlist.Movies) != 1 {
				t.Errorf("unexpected watchlist %+v", resp.Watchlist)
			}
		})

		t.Run("Status", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{
				"GET /watchlist/status/4": `{"watchlistIds":[{"_id":"w1","name":"Later"}]}`,
			})

			status, err := svc.WatchlistStatus(ctx, 4)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !status.Contains("w1") || status.Contains("w2") {
				t.Errorf("unexpected status %+v", status)
			}
		})

		t.Run("Create", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{
				"POST /watchlist/create": `{"watchlist":{"_id":"w2","name":"Later","movies":[]}}`,
			})

			resp, err := svc.CreateWatchlist(ctx, "Later")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.Watchlist == nil || resp.Watchlist.ID != "w2" {
				t.Errorf("unexpected created watchlist %+v", resp.Watchlist)
			}
		})
	})

	t.Run("Users", func(t *testing.T) {
		t.Run("List", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{
				"GET /users": `{"success":true,"users":[{"_id":"u1","username":"ana"}]}`,
			})

			users, err := svc.Users(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(users) != 1 {
				t.Errorf("expected 1 user, got %d", len(users))
			}
		})

		t.Run("List Without Success", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{"GET /users": `{"success":false}`})

			_, err := svc.Users(ctx)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("List Declined With Message", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{"GET /users": `{"success":false,"message":"Users are hidden"}`})

			_, err := svc.Users(ctx)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.Message != "Users are hidden" {
				t.Errorf("expected server message, got %q", apiErr.Message)
			}
		})

		t.Run("User With Message", func(t *testing.T) {
			svc, _ := newTestService(t, map[string]string{"GET /user/u9": `{"message":"User not found"}`})

			_, err := svc.User(ctx, "u9")
			if !errors.Is(err, shared.ErrUserNotFound) {
				t.Errorf("expected ErrUserNotFound, got %v", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.Message != "User not found" {
				t.Errorf("expected *APIError carrying the server message, got %v", err)
			}
		})

		t.Run("Update Profile", func(t *testing.T) {
			svc, reqs := newTestService(t, map[string]string{
				"PUT /user/profile/update": `{"_id":"u1","username":"ana2","age":30}`,
			})

			user, err := svc.UpdateProfile(ctx, models.ProfileUpdate{Username: "ana2", Age: 30})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if user.Username != "ana2" || user.Age != 30 {
				t.Errorf("unexpected profile %+v", user)
			}
			if (*reqs)[0].Body != `{"username":"ana2","age":30}` {
				t.Errorf("unexpected body %s", (*reqs)[0].Body)
			}
		})
	})

	t.Run("Message", func(t *testing.T) {
		if got := Message(&APIError{Message: "nope"}, "fallback"); got != "nope" {
			t.Errorf("expected 'nope', got %q", got)
		}
		if got := Message(nil, "fallback"); got != "" {
			t.Errorf("expected empty message, got %q", got)
		}
		if !IsUnauthorized(&APIError{kind: shared.ErrUnauthorized}) {
			t.Error("expected unauthorized")
		}
	})
}
