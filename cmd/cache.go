package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/cinemate/internal/cache"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/urfave/cli/v3"
)

// withCache opens the cache file for the duration of fn. bbolt holds an exclusive lock while open.
func (r *Runner) withCache(fn func(*cache.Store) error) error {
	store, err := r.openCache()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

// CacheInstall precaches the configured pages into the current generation.
func (r *Runner) CacheInstall(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(func(store *cache.Store) error {
		entries, err := store.Install(ctx, r.httpClient)
		if err != nil {
			return err
		}
		r.writePlain("✓ Installed %s\n", store.Name())
		for _, e := range entries {
			r.writePlain("  %d %s (%d bytes)\n", e.Status, e.URL, len(e.Body))
		}
		return nil
	})
}

// CacheActivate deletes generations other than the current one.
func (r *Runner) CacheActivate(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(func(store *cache.Store) error {
		deleted, err := store.Activate()
		if err != nil {
			return err
		}
		if len(deleted) == 0 {
			return r.writePlain("No old caches to delete\n")
		}
		for _, name := range deleted {
			r.writePlain("✓ Deleted %s\n", name)
		}
		return nil
	})
}

// CacheStatus lists generations and the entries they hold.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	return r.withCache(func(store *cache.Store) error {
		generations, err := store.Generations()
		if err != nil {
			return err
		}
		entries, err := store.Entries()
		if err != nil {
			return err
		}

		r.writePlainHeader("Cache: " + r.config.Cache.Path)
		if len(generations) == 0 {
			return r.writePlain("Empty. Run 'cinemate cache install'.\n")
		}
		for _, name := range generations {
			current := ""
			if name == store.Name() {
				current = " (current)"
			}
			r.writePlain("%s%s\n", name, current)
			for _, e := range entries {
				if e.Generation == name {
					r.writePlain("  %d %s %d bytes, stored %s\n", e.Status, e.URL, e.ContentSize, e.StoredAt.Local().Format("2006-01-02 15:04"))
				}
			}
		}
		return nil
	})
}

// CacheFetch requests a path through the cache-first transport and prints the response.
func (r *Runner) CacheFetch(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path", shared.ErrMissingArgument)
	}

	return r.withCache(func(store *cache.Store) error {
		target, err := store.Resolve(path)
		if err != nil {
			return err
		}

		client := &http.Client{
			Transport: store.Transport(r.httpClient.Transport),
			Timeout:   r.config.API.Timeout.Duration,
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		if cmd.Bool("html") {
			req.Header.Set("Accept", "text/html")
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
		}
		defer resp.Body.Close()

		source := "network"
		if generation := resp.Header.Get(cache.CacheHeader); generation != "" {
			source = "cache " + generation
		}
		r.logger.Debug("fetched", "url", target, "status", resp.StatusCode, "source", source)
		fmt.Fprintf(r.output, "%s (%s)\n", resp.Status, source)

		if _, err := io.Copy(r.output, resp.Body); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return r.writePlain("\n")
	})
}
