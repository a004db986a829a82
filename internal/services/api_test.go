package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/cinemate/internal/repositories"
	"github.com/desertthunder/cinemate/internal/shared"
	tu "github.com/desertthunder/cinemate/internal/testing"
)

func newTestDispatcher(t *testing.T, handler http.HandlerFunc, slots map[string]string) (*Dispatcher, *repositories.MemorySlots) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	storage := repositories.NewMemorySlots(slots)
	return NewDispatcher(DispatcherOpts{BaseURL: server.URL, Storage: storage}), storage
}

func TestDispatcher(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			d := NewDispatcher(DispatcherOpts{BaseURL: "http://example.com/", HTTPClient: customClient})

			if d.BaseURL() != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", d.BaseURL())
			}
			if d.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty Options", func(t *testing.T) {
			d := NewDispatcher(DispatcherOpts{})

			if d.BaseURL() != DefaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultBaseURL, d.BaseURL())
			}
			if d.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if _, ok := d.Credential(); ok {
				t.Error("expected no credential without storage")
			}
		})
	})

	t.Run("Credential", func(t *testing.T) {
		t.Run("Attaches Bearer Token When Stored", func(t *testing.T) {
			var got string
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusOK)
			}, map[string]string{repositories.CredentialSlot: "abc123"})

			if err := d.Do(context.Background(), http.MethodGet, "/me", nil, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "Bearer abc123" {
				t.Errorf("expected 'Bearer abc123', got %q", got)
			}
		})

		t.Run("Omits Header Without Credential", func(t *testing.T) {
			var got string
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusOK)
			}, nil)

			if err := d.Do(context.Background(), http.MethodGet, "/movies", nil, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "" {
				t.Errorf("expected no Authorization header, got %q", got)
			}
		})

		t.Run("Sets JSON and Request ID Headers", func(t *testing.T) {
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %q", r.Header.Get("Content-Type"))
				}
				if r.Header.Get("X-Request-ID") == "" {
					t.Error("expected X-Request-ID header")
				}
			}, nil)

			if err := d.Do(context.Background(), http.MethodGet, "/movies", nil, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	})

	t.Run("Authorization Failures", func(t *testing.T) {
		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			t.Run(http.StatusText(status)+" Evicts Credential", func(t *testing.T) {
				d, storage := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(status)
				}, map[string]string{repositories.CredentialSlot: "stale"})

				err := d.Do(context.Background(), http.MethodGet, "/me", nil, nil)
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, shared.ErrUnauthorized) {
					t.Errorf("expected ErrUnauthorized, got %v", err)
				}
				if err.Error() != unauthorizedMessage {
					t.Errorf("expected %q, got %q", unauthorizedMessage, err.Error())
				}
				if _, ok, _ := storage.Get(repositories.CredentialSlot); ok {
					t.Error("expected credential to be cleared")
				}
			})
		}

		t.Run("Notifies Hook", func(t *testing.T) {
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}, map[string]string{repositories.CredentialSlot: "stale"})

			var notified bool
			d.OnUnauthorized(func() { notified = true })
			_ = d.Do(context.Background(), http.MethodGet, "/me", nil, nil)
			if !notified {
				t.Error("expected unauthorized hook to run")
			}
		})

		t.Run("Uses Server Message", func(t *testing.T) {
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Token expired"})
			}, nil)

			err := d.Do(context.Background(), http.MethodGet, "/me", nil, nil)
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T", err)
			}
			if apiErr.Message != "Token expired" {
				t.Errorf("expected 'Token expired', got %q", apiErr.Message)
			}
			if !apiErr.Unauthorized() {
				t.Error("expected Unauthorized to be true")
			}
		})
	})

	t.Run("Status Errors", func(t *testing.T) {
		t.Run("Uses Server Message", func(t *testing.T) {
			d, storage := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"message": "Watchlist already exists"})
			}, map[string]string{repositories.CredentialSlot: "keep"})

			err := d.Do(context.Background(), http.MethodPost, "/watchlist/create", map[string]string{"name": "x"}, nil)
			if err == nil || err.Error() != "Watchlist already exists" {
				t.Fatalf("expected server message, got %v", err)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if _, ok, _ := storage.Get(repositories.CredentialSlot); !ok {
				t.Error("expected credential to survive a non-auth failure")
			}
		})

		t.Run("Falls Back To Status Message", func(t *testing.T) {
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("boom"))
			}, nil)

			err := d.Do(context.Background(), http.MethodGet, "/movies", nil, nil)
			if err == nil || err.Error() != "Fetch failed with status: 500" {
				t.Fatalf("expected fallback message, got %v", err)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			d := NewDispatcher(DispatcherOpts{
				BaseURL:    "http://example.com",
				HTTPClient: &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))},
			})

			err := d.Do(context.Background(), http.MethodGet, "/movies", nil, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed', got %v", err)
			}
			if d.LastError() == nil {
				t.Error("expected LastError to be recorded")
			}
		})
	})

	t.Run("Body Encoding", func(t *testing.T) {
		for _, tt := range []struct {
			method string
			sent   bool
		}{
			{http.MethodGet, false},
			{http.MethodDelete, false},
			{http.MethodPost, true},
			{http.MethodPut, true},
			{http.MethodPatch, true},
		} {
			t.Run(tt.method, func(t *testing.T) {
				var body []byte
				d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
					body, _ = io.ReadAll(r.Body)
				}, nil)

				if err := d.Do(context.Background(), tt.method, "/x", map[string]int{"rating": 4}, nil); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if sent := len(body) > 0; sent != tt.sent {
					t.Errorf("expected body sent=%v, got %q", tt.sent, body)
				}
				if tt.sent && string(body) != `{"rating":4}` {
					t.Errorf("expected JSON body, got %q", body)
				}
			})
		}
	})

	t.Run("Decoding", func(t *testing.T) {
		t.Run("Decodes Into Result", func(t *testing.T) {
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"message":"ok"}`))
			}, nil)

			var result struct {
				Message string `json:"message"`
			}
			if err := d.Do(context.Background(), http.MethodGet, "/x", nil, &result); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Message != "ok" {
				t.Errorf("expected 'ok', got %q", result.Message)
			}
		})

		t.Run("Invalid JSON", func(t *testing.T) {
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}, nil)

			var result map[string]any
			if err := d.Do(context.Background(), http.MethodGet, "/x", nil, &result); err == nil {
				t.Fatal("expected decode error")
			}
			if d.LastError() == nil {
				t.Error("expected LastError to be recorded")
			}
		})

		t.Run("Send Reports Non-JSON", func(t *testing.T) {
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain"))
			}, nil)

			resp, err := d.Send(context.Background(), "", "/x", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected non-JSON response")
			}
			if string(resp.Body) != "plain" {
				t.Errorf("expected 'plain', got %q", resp.Body)
			}
		})
	})

	t.Run("Tracking", func(t *testing.T) {
		t.Run("InFlight During Request", func(t *testing.T) {
			release := make(chan struct{})
			entered := make(chan struct{})
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				close(entered)
				<-release
			}, nil)

			done := make(chan error, 1)
			go func() { done <- d.Do(context.Background(), http.MethodGet, "/slow", nil, nil) }()

			<-entered
			if !d.InFlight() {
				t.Error("expected request to be in flight")
			}
			close(release)

			if err := <-done; err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if d.InFlight() {
				t.Error("expected no request in flight")
			}
		})

		t.Run("LastError Resets On Next Call", func(t *testing.T) {
			var calls atomic.Int32
			d, _ := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) == 1 {
					w.WriteHeader(http.StatusInternalServerError)
				}
			}, nil)

			_ = d.Do(context.Background(), http.MethodGet, "/x", nil, nil)
			if d.LastError() == nil {
				t.Fatal("expected LastError after failure")
			}

			if err := d.Do(context.Background(), http.MethodGet, "/x", nil, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if d.LastError() != nil {
				t.Errorf("expected LastError to reset, got %v", d.LastError())
			}
		})
	})

	t.Run("Rate Limiting", func(t *testing.T) {
		t.Run("NewLimiter Disabled", func(t *testing.T) {
			if NewLimiter(0, 1) != nil {
				t.Error("expected nil limiter for zero rate")
			}
		})

		t.Run("Cancelled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			limiter := NewLimiter(0.001, 1)
			limiter.Allow()

			d := NewDispatcher(DispatcherOpts{BaseURL: server.URL, Limiter: limiter})
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			err := d.Do(ctx, http.MethodGet, "/x", nil, nil)
			if err == nil || !strings.Contains(err.Error(), "rate limiter") {
				t.Errorf("expected rate limiter error, got %v", err)
			}
		})
	})
}
