package cache

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/cinemate/internal/shared"
	tu "github.com/desertthunder/cinemate/internal/testing"
	bolt "go.etcd.io/bbolt"
)

func newSite(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<h1>CineMate</h1>"))
		case "/offline.html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<h1>You are offline</h1>"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func openStore(t *testing.T, baseURL, name string) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), Options{Name: name, BaseURL: baseURL})
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Open", func(t *testing.T) {
		t.Run("rejects relative base url", func(t *testing.T) {
			_, err := Open(filepath.Join(t.TempDir(), "cache.db"), Options{BaseURL: "/relative"})
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})

		t.Run("creates current generation", func(t *testing.T) {
			store := openStore(t, "http://example.com", "")
			names, err := store.Generations()
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(names) != 1 || names[0] != DefaultName {
				t.Errorf("expected [%s], got %v", DefaultName, names)
			}
		})
	})

	t.Run("Install", func(t *testing.T) {
		t.Run("precaches root and offline page", func(t *testing.T) {
			srv, _ := newSite(t)
			store := openStore(t, srv.URL, "")

			entries, err := store.Install(ctx, srv.Client())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}

			entry, err := store.Get(srv.URL + "/offline.html")
			if err != nil {
				t.Fatalf("expected offline page to be cached, got %v", err)
			}
			if string(entry.Body) != "<h1>You are offline</h1>" {
				t.Errorf("unexpected body %q", entry.Body)
			}
			if entry.Generation != DefaultName {
				t.Errorf("expected generation %s, got %s", DefaultName, entry.Generation)
			}
		})

		t.Run("fails on missing page", func(t *testing.T) {
			srv, _ := newSite(t)
			store, err := Open(filepath.Join(t.TempDir(), "cache.db"), Options{
				BaseURL:  srv.URL,
				Precache: []string{"/", "/missing.html"},
			})
			if err != nil {
				t.Fatalf("failed to open cache: %v", err)
			}
			defer store.Close()

			if _, err := store.Install(ctx, srv.Client()); err == nil {
				t.Fatal("expected error for missing page")
			}
			if _, err := store.Get(srv.URL + "/"); !errors.Is(err, shared.ErrNotCached) {
				t.Errorf("expected nothing stored, got %v", err)
			}
		})
	})

	t.Run("Activate", func(t *testing.T) {
		store := openStore(t, "http://example.com", "cinemate-cache-v2")
		for _, old := range []string{"cinemate-cache-v1", "my-cache-v1"} {
			if err := store.Put(old, Entry{URL: "http://example.com/", Status: 200}); err != nil {
				t.Fatalf("failed to seed %s: %v", old, err)
			}
		}

		deleted, err := store.Activate("my-cache-v1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deleted) != 1 || deleted[0] != "cinemate-cache-v1" {
			t.Errorf("expected cinemate-cache-v1 deleted, got %v", deleted)
		}

		names, _ := store.Generations()
		if len(names) != 2 || names[0] != "cinemate-cache-v2" || names[1] != "my-cache-v1" {
			t.Errorf("unexpected generations %v", names)
		}
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("falls back to older generations", func(t *testing.T) {
			store := openStore(t, "http://example.com", "cinemate-cache-v2")
			store.Put("cinemate-cache-v1", Entry{URL: "http://example.com/", Status: 200, Body: []byte("old")})

			entry, err := store.Get("http://example.com/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if entry.Generation != "cinemate-cache-v1" {
				t.Errorf("expected entry from cinemate-cache-v1, got %s", entry.Generation)
			}
		})

		t.Run("reports corrupt entries", func(t *testing.T) {
			store := openStore(t, "http://example.com", "cinemate-cache-v2")
			err := store.db.Update(func(tx *bolt.Tx) error {
				b, err := tx.CreateBucketIfNotExists([]byte("cinemate-cache-v1"))
				if err != nil {
					return err
				}
				return b.Put([]byte("http://example.com/"), []byte("{not json"))
			})
			if err != nil {
				t.Fatalf("failed to seed: %v", err)
			}

			_, err = store.Get("http://example.com/")
			if err == nil || errors.Is(err, shared.ErrNotCached) {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("reports a closed store", func(t *testing.T) {
			store := openStore(t, "http://example.com", "")
			store.Close()

			_, err := store.Get("http://example.com/")
			if err == nil || errors.Is(err, shared.ErrNotCached) {
				t.Errorf("expected database error, got %v", err)
			}
		})
	})

	t.Run("Entries", func(t *testing.T) {
		store := openStore(t, "http://example.com", "")
		store.Put("", Entry{URL: "http://example.com/", Status: 200, Body: []byte("home")})

		entries, err := store.Entries()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].Body != nil || entries[0].ContentSize != 4 {
			t.Errorf("expected body stripped with size 4, got %+v", entries[0])
		}
	})
}

func TestTransport(t *testing.T) {
	ctx := context.Background()

	get := func(t *testing.T, client *http.Client, target, accept string) (*http.Response, error) {
		t.Helper()
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if accept != "" {
			req.Header.Set("Accept", accept)
		}
		return client.Do(req)
	}

	t.Run("serves cached pages without network", func(t *testing.T) {
		srv, hits := newSite(t)
		store := openStore(t, srv.URL, "")
		if _, err := store.Install(ctx, srv.Client()); err != nil {
			t.Fatalf("install failed: %v", err)
		}
		installed := *hits

		client := &http.Client{Transport: store.Transport(srv.Client().Transport)}
		resp, err := get(t, client, srv.URL+"/", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if string(body) != "<h1>CineMate</h1>" {
			t.Errorf("unexpected body %q", body)
		}
		if *hits != installed {
			t.Errorf("expected no network hits, got %d", *hits-installed)
		}
		if resp.Header.Get(CacheHeader) != DefaultName {
			t.Errorf("expected cache header, got %q", resp.Header.Get(CacheHeader))
		}
	})

	t.Run("falls through to network", func(t *testing.T) {
		srv, hits := newSite(t)
		store := openStore(t, srv.URL, "")

		client := &http.Client{Transport: store.Transport(srv.Client().Transport)}
		resp, err := get(t, client, srv.URL+"/", "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		resp.Body.Close()
		if *hits != 1 {
			t.Errorf("expected 1 network hit, got %d", *hits)
		}
	})

	t.Run("offline page when the network is down", func(t *testing.T) {
		store := openStore(t, "http://cinemate.test", "")
		store.Put("", Entry{URL: "http://cinemate.test/offline.html", Status: 200, Body: []byte("offline")})

		down := tu.NewMockRoundTripper(nil, errors.New("connection refused"))
		client := &http.Client{Transport: store.Transport(down)}

		resp, err := get(t, client, "http://cinemate.test/movies/949", "text/html,application/xhtml+xml")
		if err != nil {
			t.Fatalf("expected offline page, got %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != "offline" {
			t.Errorf("expected offline body, got %q", body)
		}

		resp, err = get(t, client, "http://cinemate.test/movies/42", "")
		if err != nil {
			t.Fatalf("expected offline page for a plain GET, got %v", err)
		}
		body, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != "offline" {
			t.Errorf("expected offline body, got %q", body)
		}
		if resp.Header.Get(CacheHeader) != DefaultName {
			t.Errorf("expected cache header, got %q", resp.Header.Get(CacheHeader))
		}
	})

	t.Run("offline page from an installed site", func(t *testing.T) {
		srv, _ := newSite(t)
		store := openStore(t, srv.URL, "")
		if _, err := store.Install(ctx, srv.Client()); err != nil {
			t.Fatalf("install failed: %v", err)
		}
		transport := srv.Client().Transport
		srv.Close()

		client := &http.Client{Transport: store.Transport(transport)}
		resp, err := get(t, client, srv.URL+"/movies/42", "")
		if err != nil {
			t.Fatalf("expected offline page, got %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if string(body) != "<h1>You are offline</h1>" {
			t.Errorf("expected offline body, got %q", body)
		}
	})

	t.Run("network error without an offline page", func(t *testing.T) {
		store := openStore(t, "http://cinemate.test", "")

		down := tu.NewMockRoundTripper(nil, errors.New("connection refused"))
		client := &http.Client{Transport: store.Transport(down)}

		_, err := get(t, client, "http://cinemate.test/movies/42", "")
		if err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected connection refused, got %v", err)
		}
	})

	t.Run("non-GET bypasses cache", func(t *testing.T) {
		store := openStore(t, "http://cinemate.test", "")
		store.Put("", Entry{URL: "http://cinemate.test/", Status: 200, Body: []byte("cached")})

		rt := tu.NewMockRoundTripper(&http.Response{StatusCode: 204, Body: http.NoBody}, nil)
		client := &http.Client{Transport: store.Transport(rt)}

		req, _ := http.NewRequestWithContext(ctx, http.MethodPost, "http://cinemate.test/", nil)
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != 204 || rt.Calls() != 1 {
			t.Errorf("expected network response, got %d after %d calls", resp.StatusCode, rt.Calls())
		}
	})
}
