package state

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/shared"
)

// Fetcher runs a structured movie query.
type Fetcher func(ctx context.Context, criteria models.Criteria) ([]models.Movie, error)

// HistoryRecorder stores applied searches.
type HistoryRecorder interface {
	Create(record *models.SearchRecord) error
}

// SearchOpts configures a [Search].
type SearchOpts struct {
	Fetch     Fetcher
	Debounce  time.Duration   // Defaults to [DefaultDebounce]
	AfterFunc AfterFunc       // Optional timer factory
	Context   context.Context // Used by debounced fetches; defaults to [context.Background]
	History   HistoryRecorder // Optional
	Logger    *log.Logger
}

// Search is the movie filter: five criteria fields, the last remote result (the base list)
// and the list displayed to the user.
//
// The displayed list is always the base list filtered by the current query. Only
// structured fields cause a remote fetch, debounced; each fetch carries a sequence number
// and a result older than the newest issued fetch is discarded.
type Search struct {
	fetch     Fetcher
	debouncer *Debouncer
	ctx       context.Context
	history   HistoryRecorder
	logger    *log.Logger

	mu        sync.RWMutex
	criteria  models.Criteria
	base      []models.Movie
	displayed []models.Movie
	issued    uint64
	loading   bool
	err       error
	onUpdate  func()
}

// NewSearch creates a search with [models.DefaultCriteria] and an empty result.
func NewSearch(opts SearchOpts) *Search {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &Search{
		fetch:     opts.Fetch,
		debouncer: NewDebouncer(opts.Debounce, opts.AfterFunc),
		ctx:       opts.Context,
		history:   opts.History,
		logger:    opts.Logger,
		criteria:  models.DefaultCriteria(),
	}
}

// OnUpdate registers fn to run whenever the displayed list, loading flag or error changes.
func (s *Search) OnUpdate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Criteria returns the current filter.
func (s *Search) Criteria() models.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

// Results returns the displayed list.
func (s *Search) Results() []models.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Movie(nil), s.displayed...)
}

// Loading reports whether a fetch is outstanding.
func (s *Search) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error of the last applied fetch.
func (s *Search) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Pending reports whether a debounced fetch is scheduled.
func (s *Search) Pending() bool { return s.debouncer.Pending() }

// SetQuery updates the free-text query and refilters locally without a request.
func (s *Search) SetQuery(q string) {
	s.mu.Lock()
	s.criteria.Query = q
	s.displayed = models.FilterByTitle(s.base, q)
	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *Search) SetGenre(genre string) { s.update(func(c *models.Criteria) { c.Genre = genre }) }
func (s *Search) SetYear(year string) { s.update(func(c *models.Criteria) { c.Year = year }) }
func (s *Search) SetRating(rating string) { s.update(func(c *models.Criteria) { c.Rating = rating }) }
func (s *Search) SetSortBy(sortBy string) { s.update(func(c *models.Criteria) { c.SortBy = sortBy }) }

// Apply replaces every criteria field at once. A structured change schedules one fetch.
func (s *Search) Apply(criteria models.Criteria) {
	s.SetQuery(criteria.Query)
	if s.Criteria().Structured() == criteria.Structured() {
		return
	}
	s.update(func(c *models.Criteria) {
		q := c.Query
		*c = criteria
		c.Query = q
	})
}

// Refresh cancels any scheduled fetch and fetches immediately with the current criteria.
func (s *Search) Refresh(ctx context.Context) error {
	s.debouncer.Cancel()
	return s.run(ctx)
}

// Close cancels a scheduled fetch.
func (s *Search) Close() { s.debouncer.Cancel() }

func (s *Search) update(apply func(*models.Criteria)) {
	s.mu.Lock()
	apply(&s.criteria)
	s.mu.Unlock()

	s.debouncer.Trigger(func() {
		if err := s.run(s.ctx); err != nil {
			s.logger.Debug("debounced fetch failed", "error", err)
		}
	})
}

func (s *Search) run(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	criteria := s.criteria.Structured()
	s.loading = true
	fn := s.onUpdate
	s.mu.Unlock()

	if fn != nil {
		fn()
	}

	s.logger.Debug("fetching movies", "seq", seq, "genre", criteria.Genre, "year", criteria.Year, "rating", criteria.Rating, "sort", criteria.SortBy)
	movies, err := s.fetch(ctx, criteria)

	s.mu.Lock()
	if seq != s.issued {
		s.mu.Unlock()
		s.logger.Debug("discarding stale result", "seq", seq, "latest", s.latest())
		return err
	}
	s.loading = false
	s.err = err
	if err == nil {
		s.base = movies
		s.displayed = models.FilterByTitle(movies, s.criteria.Query)
	}
	fn = s.onUpdate
	s.mu.Unlock()

	if err == nil {
		s.record(criteria, len(movies))
	}
	if fn != nil {
		fn()
	}
	return err
}

func (s *Search) latest() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issued
}

func (s *Search) record(criteria models.Criteria, count int) {
	if s.history == nil {
		return
	}
	if err := s.history.Create(models.NewSearchRecord(criteria, count)); err != nil {
		s.logger.Warn("failed to record search", "error", err)
	}
}
