package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/cinemate/internal/formatter"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/urfave/cli/v3"
)

// resolve connects and bootstraps the session without requiring a user.
func (r *Runner) resolve(ctx context.Context) error {
	if err := r.connect(); err != nil {
		return err
	}
	r.session.Bootstrap(ctx)
	return nil
}

func tmdbArg(cmd *cli.Command) (int, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id must be a positive number, got %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

// genreID accepts a genre id or a case-insensitive genre name.
func genreID(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if id, err := strconv.Atoi(value); err == nil {
		if _, ok := models.GenreName(id); ok {
			return value, nil
		}
	}
	for _, g := range models.Genres {
		if strings.EqualFold(g.Name, value) {
			return strconv.Itoa(g.ID), nil
		}
	}
	return "", fmt.Errorf("%w: unknown genre %q, see 'cinemate movies genres'", shared.ErrInvalidFlag, value)
}

func criteriaFromFlags(cmd *cli.Command) (models.Criteria, error) {
	criteria := models.DefaultCriteria()
	criteria.Query = cmd.String("query")
	criteria.Year = cmd.String("year")
	criteria.Rating = cmd.String("rating")

	genre, err := genreID(cmd.String("genre"))
	if err != nil {
		return criteria, err
	}
	criteria.Genre = genre

	if sortBy := cmd.String("sort"); sortBy != "" {
		if !models.IsSortKey(sortBy) {
			return criteria, fmt.Errorf("%w: unknown sort key %q, see 'cinemate movies sorts'", shared.ErrInvalidFlag, sortBy)
		}
		criteria.SortBy = sortBy
	}
	if criteria.Year != "" {
		if _, err := strconv.Atoi(criteria.Year); err != nil {
			return criteria, fmt.Errorf("%w: year must be a number, got %q", shared.ErrInvalidFlag, criteria.Year)
		}
	}
	return criteria, nil
}

// MoviesList queries /movies with the filter flags and records the search.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	criteria, err := criteriaFromFlags(cmd)
	if err != nil {
		return err
	}
	if err := r.resolve(ctx); err != nil {
		return err
	}

	r.logger.Debug("listing movies", "genre", criteria.Genre, "year", criteria.Year, "rating", criteria.Rating, "sort", criteria.SortBy)
	movies, err := r.controller.Movies(ctx, criteria)
	if err != nil {
		return r.fail(err)
	}
	r.recordSearch(criteria, len(movies))

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(movies, cmd.Bool("pretty"))
	case cmd.Bool("csv"):
		data, err := formatter.MoviesToCSV(movies)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}
	return r.printMovies(fmt.Sprintf("Movies (%d)", len(movies)), movies)
}

func (r *Runner) recordSearch(criteria models.Criteria, count int) {
	if r.history == nil {
		return
	}
	if err := r.history.Create(models.NewSearchRecord(criteria, count)); err != nil {
		r.logger.Warn("failed to record search", "error", err)
	}
}

func (r *Runner) printMovies(title string, movies []models.Movie) error {
	r.writePlainHeader(title)
	if len(movies) == 0 {
		return r.writePlain("No movies found.\n")
	}
	for _, m := range movies {
		year := m.Year()
		if year == "" {
			year = "----"
		}
		r.writePlain("%-8d %s  ★ %-4s %s\n", m.ID, year, m.Rating(), m.Title)
	}
	return nil
}

// MoviesShow prints a movie and, when signed in, its favorite and watchlist status.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := tmdbArg(cmd)
	if err != nil {
		return err
	}
	if err := r.resolve(ctx); err != nil {
		return err
	}

	details, err := r.controller.MovieDetails(ctx, id)
	if err != nil {
		return r.fail(err)
	}

	if cmd.Bool("open") {
		url := shared.MoviePageURL(id)
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(details, cmd.Bool("pretty"))
	}
	r.writePlain("%s", formatter.MovieToText(details.Movie))
	if r.session.User() == nil {
		return r.writePlain("\nSign in to manage favorites and watchlists.\n")
	}

	r.writePlain("\nFavorite: %s\n", yesNo(details.InFavorites))
	names := make([]string, 0, len(details.Status.WatchlistIDs))
	for _, ref := range details.Status.WatchlistIDs {
		names = append(names, ref.Name)
	}
	if len(names) == 0 {
		return r.writePlain("Watchlists: none\n")
	}
	return r.writePlain("Watchlists: %s\n", strings.Join(names, ", "))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// MoviesGenres prints the genre table.
func (r *Runner) MoviesGenres(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Genres")
	for _, g := range models.Genres {
		r.writePlain("%-6d %s\n", g.ID, g.Name)
	}
	return nil
}

// MoviesSorts prints the sort keys and rating filter values.
func (r *Runner) MoviesSorts(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Sort keys")
	for _, opt := range models.SortKeys {
		r.writePlain("%-18s %s\n", opt.Key, opt.Label)
	}
	ratings := make([]string, 0, len(models.RatingOptions))
	for _, v := range models.RatingOptions {
		ratings = append(ratings, fmt.Sprintf("%d+", v))
	}
	return r.writePlainln("Ratings: %s", strings.Join(ratings, " "))
}

// MoviesRecommend prints recommendations for the signed-in user.
func (r *Runner) MoviesRecommend(ctx context.Context, cmd *cli.Command) error {
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	movies, err := r.controller.Recommendations(ctx)
	if err != nil {
		return r.fail(err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}
	return r.printMovies("Recommended for you", movies)
}

// MoviesHistory prints or clears recorded searches.
func (r *Runner) MoviesHistory(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}
	if r.history == nil {
		return fmt.Errorf("%w: search history needs the database (drop --ephemeral)", shared.ErrServiceUnavailable)
	}

	if cmd.Bool("clear") {
		if err := r.history.Clear(); err != nil {
			return err
		}
		return r.writePlain("✓ Search history cleared\n")
	}

	records, err := r.history.List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}
	r.writePlainHeader("Recent searches")
	if len(records) == 0 {
		return r.writePlain("No searches yet.\n")
	}
	for _, rec := range records {
		r.writePlain("%s  %-4d %s\n", rec.CreatedAt().Local().Format("2006-01-02 15:04"), rec.ResultCount, describeCriteria(rec.Criteria))
	}
	return nil
}

func describeCriteria(c models.Criteria) string {
	parts := []string{}
	if c.Genre != "" {
		name := c.Genre
		if id, err := strconv.Atoi(c.Genre); err == nil {
			if n, ok := models.GenreName(id); ok {
				name = n
			}
		}
		parts = append(parts, "genre="+name)
	}
	if c.Year != "" {
		parts = append(parts, "year="+c.Year)
	}
	if c.Rating != "" {
		parts = append(parts, "rating="+c.Rating+"+")
	}
	if c.SortBy != "" {
		parts = append(parts, "sort="+c.SortBy)
	}
	if len(parts) == 0 {
		return "(all movies)"
	}
	return strings.Join(parts, " ")
}

// FavoritesToggle adds the movie to favorites, or removes it when it is already there.
func (r *Runner) FavoritesToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := tmdbArg(cmd)
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	details, err := r.controller.MovieDetails(ctx, id)
	if err != nil {
		return r.fail(err)
	}
	if err := r.controller.ToggleFavorite(ctx, details); err != nil {
		return r.fail(err)
	}
	if err := r.report(); err != nil {
		return err
	}
	return r.writePlain("%s favorite: %s\n", details.Movie.Title, yesNo(details.InFavorites))
}

// FavoritesStatus reports whether the movie is a favorite.
func (r *Runner) FavoritesStatus(ctx context.Context, cmd *cli.Command) error {
	id, err := tmdbArg(cmd)
	if err != nil {
		return err
	}
	if err := r.signedIn(ctx); err != nil {
		return err
	}

	details, err := r.controller.MovieDetails(ctx, id)
	if err != nil {
		return r.fail(err)
	}
	return r.writePlain("%s favorite: %s\n", details.Movie.Title, yesNo(details.InFavorites))
}
