package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchWatchlists Phase = iota
	FetchMovies
	ExportWatchlist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchWatchlists:
		return "fetch_watchlists"
	case FetchMovies:
		return "fetch_movies"
	case ExportWatchlist:
		return "export_watchlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingWatchlistsUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlists,
		Step:    1,
		Total:   1,
		Message: "Fetching watchlists...",
	}
}

func foundWatchlistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d watchlists", total),
		Data:    total,
	}
}

func fetchingMoviesUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMovies,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
		Data:    path,
	}
}
