package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/cinemate/internal/formatter"
	"github.com/desertthunder/cinemate/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 5.0
)

// BulkExportOpts contains configuration for bulk watchlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: csv, markdown, txt, json
	OutputDir  string  // Base output directory (default: cinemate_export_{epoch})
	NumWorkers int     // Concurrent writers (default: 4, max: 10)
	RateLimit  float64 // Watchlist fetches per second (default: 5)
	WithCover  bool    // Download a cover image for Markdown exports
}

// WatchlistExportResult is the outcome of exporting one watchlist.
type WatchlistExportResult struct {
	WatchlistID   string
	WatchlistName string
	MovieCount    int
	Success       bool
	Files         []string
	Error         error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalWatchlists   int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []WatchlistExportResult
}

type exportJob struct {
	export *formatter.WatchlistExport
}

// BulkExport exports every watchlist concurrently with rate limiting and progress tracking.
//
// Contents are fetched one list at a time through a limiter and handed to a pool of workers that
// write files. A list that cannot be fetched or written is recorded as failed; the run continues.
// The returned error is only set when the run could not start, was cancelled, or the manifest could
// not be written.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: watchlist source not initialized", shared.ErrServiceUnavailable)
	}

	format, err := ParseFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("cinemate_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	e.sendProgress(prog, fetchingWatchlistsUpdate())
	lists, err := e.source.Watchlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watchlists: %w", err)
	}
	e.sendProgress(prog, foundWatchlistsUpdate(len(lists)))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalWatchlists: len(lists),
		OutputDirectory: opts.OutputDir,
		Results:         make([]WatchlistExportResult, 0, len(lists)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, len(lists))
	results := make(chan WatchlistExportResult, len(lists))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, list := range lists {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, fetchingMoviesUpdate(i+1, len(lists), list.Name))
			export, err := e.Fetch(ctx, list)
			if err != nil {
				results <- WatchlistExportResult{
					WatchlistID:   list.ID,
					WatchlistName: list.Name,
					Error:         err,
				}
				continue
			}
			jobs <- exportJob{export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(lists), res.WatchlistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(lists), res.WatchlistName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))
	return result, nil
}

// exportWorker is a worker goroutine that writes watchlists from the jobs channel.
func (e *Exporter) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- WatchlistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}

		list := job.export.Watchlist
		res := WatchlistExportResult{
			WatchlistID:   list.ID,
			WatchlistName: list.Name,
			MovieCount:    len(job.export.Movies),
		}
		files, err := e.ExportWatchlist(job.export, opts.Format, opts.OutputDir, opts.WithCover)
		if err != nil {
			res.Error = err
		} else {
			res.Success = true
			res.Files = files
		}
		results <- res
	}
}

type manifestEntry struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Movies int      `json:"movies"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type manifest struct {
	ExportedAt string          `json:"exported_at"`
	Format     string          `json:"format"`
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Watchlists []manifestEntry `json:"watchlists"`
}

func writeManifest(result *BulkExportResult, format, path string) error {
	m := manifest{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Format:     format,
		Total:      result.TotalWatchlists,
		Successful: result.SuccessfulExports,
		Failed:     result.FailedExports,
		Watchlists: make([]manifestEntry, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		entry := manifestEntry{ID: res.WatchlistID, Name: res.WatchlistName, Movies: res.MovieCount, Files: res.Files}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Watchlists = append(m.Watchlists, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
