// package cache keeps an offline copy of pages fetched from the CineMate host.
//
// Each cache generation is a bbolt bucket named after the generation (e.g. "cinemate-cache-v1")
// holding one JSON encoded [Entry] per absolute URL. Installing a generation precaches a fixed
// list of paths; activating it removes every other generation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/shared"
	bolt "go.etcd.io/bbolt"
)

// DefaultName is the current cache generation.
const DefaultName = "cinemate-cache-v1"

// Entry is a stored response.
type Entry struct {
	URL         string      `json:"url"`
	Status      int         `json:"status"`
	Header      http.Header `json:"header,omitempty"`
	Body        []byte      `json:"body"`
	StoredAt    time.Time   `json:"storedAt"`
	Generation  string      `json:"-"`
	ContentSize int         `json:"-"`
}

// Options configures [Open].
type Options struct {
	Name        string
	BaseURL     string
	Precache    []string
	OfflinePage string
	Logger      *log.Logger
}

// Store is an offline page cache backed by a bbolt file.
type Store struct {
	db       *bolt.DB
	name     string
	base     *url.URL
	precache []string
	offline  string
	logger   *log.Logger
}

// Open opens (creating when needed) the cache file at path and ensures the current generation exists.
func Open(path string, opts Options) (*Store, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Precache == nil {
		opts.Precache = []string{"/", "/offline.html"}
	}
	if opts.OfflinePage == "" {
		opts.OfflinePage = "/offline.html"
	}

	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: cache base url %q", shared.ErrInvalidArgument, opts.BaseURL)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(opts.Name))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache generation: %w", err)
	}

	return &Store{
		db:       db,
		name:     opts.Name,
		base:     base,
		precache: opts.Precache,
		offline:  opts.OfflinePage,
		logger:   opts.Logger,
	}, nil
}

// Close releases the cache file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name returns the current generation.
func (s *Store) Name() string { return s.name }

// Resolve turns a path relative to the base URL into an absolute URL.
func (s *Store) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("%w: %q", shared.ErrInvalidArgument, ref)
	}
	return s.base.ResolveReference(u).String(), nil
}

// Install fetches every precache path with client and stores the responses in the current generation.
//
// Nothing is stored unless every path answers with a 2xx status.
func (s *Store) Install(ctx context.Context, client *http.Client) ([]Entry, error) {
	if client == nil {
		client = http.DefaultClient
	}

	entries := make([]Entry, 0, len(s.precache))
	for _, ref := range s.precache {
		target, err := s.Resolve(ref)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to precache %s: %w", target, err)
		}
		entry, err := entryFrom(target, resp)
		if err != nil {
			return nil, err
		}
		if entry.Status < 200 || entry.Status > 299 {
			return nil, fmt.Errorf("failed to precache %s: status %d", target, entry.Status)
		}
		entries = append(entries, *entry)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(s.name))
		if err != nil {
			return err
		}
		for _, e := range entries {
			data, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(e.URL), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store precached pages: %w", err)
	}

	s.logger.Info("cache installed", "generation", s.name, "entries", len(entries))
	return entries, nil
}

// Activate deletes every generation that is not whitelisted and returns the deleted names.
//
// The current generation is always kept.
func (s *Store) Activate(whitelist ...string) ([]string, error) {
	keep := append([]string{s.name}, whitelist...)

	var deleted []string
	err := s.db.Update(func(tx *bolt.Tx) error {
		var stale [][]byte
		if err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if !slices.Contains(keep, string(name)) {
				stale = append(stale, append([]byte(nil), name...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, name := range stale {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			deleted = append(deleted, string(name))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to activate cache: %w", err)
	}

	for _, name := range deleted {
		s.logger.Info("deleted old cache", "generation", name)
	}
	return deleted, nil
}

// Generations lists the generation names present in the file, sorted.
func (s *Store) Generations() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Get returns the entry stored for an absolute URL in any generation, current generation first.
func (s *Store) Get(rawURL string) (*Entry, error) {
	var entry *Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		names := []string{s.name}
		err := tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			if string(name) != s.name {
				names = append(names, string(name))
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to list generations: %w", err)
		}

		for _, name := range names {
			b := tx.Bucket([]byte(name))
			if b == nil {
				continue
			}
			v := b.Get([]byte(rawURL))
			if v == nil {
				continue
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to decode cache entry: %w", err)
			}
			e.Generation, e.ContentSize = name, len(e.Body)
			entry = &e
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrNotCached, rawURL)
	}
	return entry, nil
}

// Put stores entry in a generation, the current one when generation is empty.
func (s *Store) Put(generation string, entry Entry) error {
	if generation == "" {
		generation = s.name
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(generation))
		if err != nil {
			return err
		}
		return b.Put([]byte(entry.URL), data)
	})
}

// Entries lists the current generation's entries without their bodies.
func (s *Store) Entries() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			e.Generation, e.ContentSize, e.Body = s.name, len(e.Body), nil
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cache entries: %w", err)
	}
	return entries, nil
}

// OfflinePage returns the cached offline fallback page.
func (s *Store) OfflinePage() (*Entry, error) {
	target, err := s.Resolve(s.offline)
	if err != nil {
		return nil, err
	}
	return s.Get(target)
}

func entryFrom(target string, resp *http.Response) (*Entry, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", target, err)
	}
	header := resp.Header.Clone()
	header.Del("Set-Cookie")
	return &Entry{
		URL:      target,
		Status:   resp.StatusCode,
		Header:   header,
		Body:     body,
		StoredAt: time.Now().UTC(),
	}, nil
}
