package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/cinemate/internal/actions"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/tasks"
	"github.com/urfave/cli/v3"
)

func requiredArg(cmd *cli.Command, name string) (string, error) {
	value := cmd.StringArg(name)
	if value == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return value, nil
}

// WatchlistsList prints the signed-in user's watchlists.
func (r *Runner) WatchlistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	lists, err := r.controller.Watchlists(ctx)
	if err != nil {
		return r.fail(err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(lists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Watchlists (%d)", len(lists)))
	if len(lists) == 0 {
		return r.writePlain("No watchlists yet. Create one with 'cinemate watchlists create <name>'.\n")
	}
	for _, l := range lists {
		r.writePlain("%-26s %s (%d movies)\n", l.ID, l.Name, l.MovieCount())
	}
	return nil
}

// WatchlistsCreate creates a watchlist unless one with the same name exists.
func (r *Runner) WatchlistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	existing, err := r.controller.Watchlists(ctx)
	if err != nil {
		return r.fail(err)
	}
	if _, err := r.controller.CreateWatchlist(ctx, name, existing); err != nil {
		return r.fail(err)
	}
	return r.report()
}

// WatchlistsShow prints the movies in a watchlist.
func (r *Runner) WatchlistsShow(ctx context.Context, cmd *cli.Command) error {
	name, err := requiredArg(cmd, "name")
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	movies, err := r.controller.WatchlistMovies(ctx, name)
	if err != nil {
		return r.fail(err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", name, len(movies)))
	if len(movies) == 0 {
		return r.writePlain("No movies in this watchlist.\n")
	}
	for _, m := range movies {
		rating := "unrated"
		if m.UserRating > 0 {
			rating = fmt.Sprintf("%d/5", m.UserRating)
		}
		r.writePlain("%-26s %-8s %s\n", m.ID, rating, m.Title)
	}
	return nil
}

// membership loads the movie's watchlist status and finds the named list.
func (r *Runner) membership(ctx context.Context, cmd *cli.Command) (int, *actions.MovieDetails, models.Watchlist, error) {
	id, err := tmdbArg(cmd)
	if err != nil {
		return 0, nil, models.Watchlist{}, err
	}
	if err := r.signedIn(ctx); err != nil {
		return 0, nil, models.Watchlist{}, err
	}

	details, err := r.controller.MovieDetails(ctx, id)
	if err != nil {
		return 0, nil, models.Watchlist{}, r.fail(err)
	}
	list, err := actions.FindWatchlist(details.Watchlists, cmd.String("list"))
	if err != nil {
		return 0, nil, models.Watchlist{}, err
	}
	return id, details, list, nil
}

// WatchlistsAdd adds a movie to the --list watchlist.
func (r *Runner) WatchlistsAdd(ctx context.Context, cmd *cli.Command) error {
	id, details, list, err := r.membership(ctx, cmd)
	if err != nil {
		return err
	}
	if err := r.controller.AddToWatchlist(ctx, id, list.ID, details.Status); err != nil {
		return r.fail(err)
	}
	return r.report()
}

// WatchlistsRemove removes a movie from the --list watchlist.
func (r *Runner) WatchlistsRemove(ctx context.Context, cmd *cli.Command) error {
	id, details, list, err := r.membership(ctx, cmd)
	if err != nil {
		return err
	}
	if !details.Status.Contains(list.ID) {
		return fmt.Errorf("%w: %s is not in %s", shared.ErrInvalidArgument, details.Movie.Title, list.Name)
	}
	if err := r.controller.RemoveFromWatchlist(ctx, id, models.WatchlistRef{ID: list.ID, Name: list.Name}); err != nil {
		return r.fail(err)
	}
	return r.report()
}

// WatchlistsRate rates a watchlist movie.
func (r *Runner) WatchlistsRate(ctx context.Context, cmd *cli.Command) error {
	movieID, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}
	raw, err := requiredArg(cmd, "stars")
	if err != nil {
		return err
	}
	stars, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: stars must be a number, got %q", shared.ErrInvalidArgument, raw)
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	if err := r.controller.Rate(ctx, movieID, stars); err != nil {
		return r.fail(err)
	}
	return r.report()
}

// WatchlistsComment comments on a watchlist movie.
func (r *Runner) WatchlistsComment(ctx context.Context, cmd *cli.Command) error {
	movieID, err := requiredArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	if err := r.controller.Comment(ctx, movieID, cmd.StringArg("text")); err != nil {
		return r.fail(err)
	}
	return r.report()
}

// WatchlistsExport writes one watchlist, or every watchlist with --all, to files.
func (r *Runner) WatchlistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := tasks.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	name := cmd.StringArg("name")
	if name == "" && !cmd.Bool("all") {
		return fmt.Errorf("%w: watchlist name or --all", shared.ErrMissingArgument)
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	exporter := tasks.NewExporter(r.api)
	if cmd.Bool("all") {
		return r.bulkExport(ctx, exporter, tasks.BulkExportOpts{
			Format:     format,
			OutputDir:  cmd.String("output"),
			NumWorkers: int(cmd.Int("workers")),
			RateLimit:  r.config.API.RequestsPerSecond,
			WithCover:  cmd.Bool("cover"),
		})
	}

	lists, err := r.controller.Watchlists(ctx)
	if err != nil {
		return r.fail(err)
	}
	list, err := actions.FindWatchlist(lists, name)
	if err != nil {
		return err
	}
	export, err := exporter.Fetch(ctx, list)
	if err != nil {
		return err
	}

	files, err := exporter.ExportWatchlist(export, format, cmd.String("output"), cmd.Bool("cover"))
	if err != nil {
		return err
	}
	r.logger.Info("exported watchlist", "name", list.Name, "format", format, "movies", len(export.Movies))
	for _, f := range files {
		r.writePlain("✓ %s\n", f)
	}
	return nil
}

func (r *Runner) bulkExport(ctx context.Context, exporter *tasks.Exporter, opts tasks.BulkExportOpts) error {
	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := exporter.BulkExport(ctx, progress, opts)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d watchlists to %s", result.SuccessfulExports, result.TotalWatchlists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.logger.Warn("some watchlists failed to export", "failed", result.FailedExports, "manifest", result.ManifestPath)
	}
	return nil
}
