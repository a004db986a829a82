package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/cinemate/internal/formatter"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
)

// Export formats understood by [Exporter.ExportWatchlist].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// Formats lists the accepted format names.
var Formats = []string{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat normalizes a format name. "md" is accepted for Markdown and "text" for plain text.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatText, "text":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q (want %s)", shared.ErrInvalidFlag, name, strings.Join(Formats, ", "))
}

// Source is the part of the CineMate API an export reads from.
type Source interface {
	Watchlists(ctx context.Context) ([]models.Watchlist, error)
	WatchlistMovies(ctx context.Context, name string) (*models.WatchlistMoviesResponse, error)
}

// Exporter writes watchlists to disk.
type Exporter struct {
	source Source
}

// NewExporter creates an Exporter reading from source.
func NewExporter(source Source) *Exporter {
	return &Exporter{source: source}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Exporter) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Fetch loads the movies of list.
func (e *Exporter) Fetch(ctx context.Context, list models.Watchlist) (*formatter.WatchlistExport, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: watchlist source not initialized", shared.ErrServiceUnavailable)
	}
	resp, err := e.source.WatchlistMovies(ctx, list.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch watchlist %q: %w", list.Name, err)
	}
	return formatter.NewWatchlistExport(list, resp), nil
}

// ExportWatchlist writes export into dir in format and returns the created files.
func (e *Exporter) ExportWatchlist(export *formatter.WatchlistExport, format, dir string, withCover bool) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	slug := formatter.Slug(export.Watchlist.Name)

	switch format {
	case FormatCSV:
		res, err := formatter.WriteCSVExport(export, filepath.Join(dir, slug))
		if err != nil {
			return nil, fmt.Errorf("CSV export failed: %w", err)
		}
		return []string{res.MoviesFile, res.MetadataFile}, nil
	case FormatMarkdown:
		res, err := formatter.WriteMarkdownExport(export, filepath.Join(dir, slug), withCover)
		if err != nil {
			return nil, fmt.Errorf("markdown export failed: %w", err)
		}
		return res.Files, nil
	case FormatText:
		path, err := formatter.WriteTextExport(export, filepath.Join(dir, slug+"_movies.txt"))
		if err != nil {
			return nil, fmt.Errorf("text export failed: %w", err)
		}
		return []string{path}, nil
	case FormatJSON:
		path := filepath.Join(dir, slug+".json")
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			return nil, fmt.Errorf("JSON marshal failed: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("JSON write failed: %w", err)
		}
		return []string{path}, nil
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}
