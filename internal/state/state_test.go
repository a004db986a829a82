package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/repositories"
	tu "github.com/desertthunder/cinemate/internal/testing"
)

func TestAlert(t *testing.T) {
	t.Run("Show Overwrites", func(t *testing.T) {
		a := NewAlert(0, nil)
		a.Show("first", SeverityInfo)
		a.Show("second", SeverityWarning)

		n, ok := a.Current()
		if !ok {
			t.Fatal("expected a visible notice")
		}
		if n.Message != "second" || n.Severity != SeverityWarning {
			t.Errorf("expected second warning, got %+v", n)
		}
	})

	t.Run("Unknown Severity Defaults To Error", func(t *testing.T) {
		a := NewAlert(0, nil)
		a.Show("oops", Severity("loud"))
		if n, _ := a.Current(); n.Severity != SeverityError {
			t.Errorf("expected error severity, got %s", n.Severity)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		a := NewAlert(0, nil)
		a.Success("done")
		a.Clear()
		if _, ok := a.Current(); ok {
			t.Error("expected alert to be cleared")
		}
	})

	t.Run("Auto Dismiss", func(t *testing.T) {
		timers := &tu.ManualTimers{}
		a := NewAlert(DefaultAlertDuration, timers.AfterFunc)

		var changes int
		a.OnChange(func() { changes++ })
		a.Error("failed")

		timers.Advance(4 * time.Second)
		if _, ok := a.Current(); !ok {
			t.Fatal("expected notice before the duration elapses")
		}
		timers.Advance(time.Second)
		if _, ok := a.Current(); ok {
			t.Error("expected notice to be dismissed")
		}
		if changes != 2 {
			t.Errorf("expected 2 change notifications, got %d", changes)
		}
	})

	t.Run("Newer Show Cancels Timer", func(t *testing.T) {
		timers := &tu.ManualTimers{}
		a := NewAlert(5*time.Second, timers.AfterFunc)

		a.Info("one")
		timers.Advance(3 * time.Second)
		a.Info("two")
		timers.Advance(3 * time.Second)

		n, ok := a.Current()
		if !ok || n.Message != "two" {
			t.Errorf("expected 'two' to survive the first timer, got %+v (%v)", n, ok)
		}
		if timers.Pending() != 1 {
			t.Errorf("expected one pending timer, got %d", timers.Pending())
		}
	})

	t.Run("Clear Cancels Timer", func(t *testing.T) {
		timers := &tu.ManualTimers{}
		a := NewAlert(5*time.Second, timers.AfterFunc)
		a.Warning("careful")
		a.Clear()
		if timers.Pending() != 0 {
			t.Errorf("expected no pending timers, got %d", timers.Pending())
		}
	})

	t.Run("Timer Firing Immediately", func(t *testing.T) {
		a := NewAlert(time.Second, immediate)

		finishes(t, func() { a.Success("saved") })
		if _, ok := a.Current(); ok {
			t.Error("expected notice to be dismissed by the immediate timer")
		}
	})
}

func TestTheme(t *testing.T) {
	never := func() bool { return false }
	always := func() bool { return true }

	t.Run("Stored Value Wins", func(t *testing.T) {
		slots := repositories.NewMemorySlots(map[string]string{repositories.ThemeSlot: "dark"})
		theme, err := NewTheme(slots, "light", never)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if theme.Mode() != Dark {
			t.Errorf("expected dark, got %s", theme.Mode())
		}
	})

	t.Run("Configured Preference", func(t *testing.T) {
		theme, err := NewTheme(repositories.NewMemorySlots(nil), "dark", never)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !theme.IsDark() {
			t.Error("expected dark from configuration")
		}
	})

	t.Run("Platform Preference", func(t *testing.T) {
		theme, _ := NewTheme(repositories.NewMemorySlots(nil), "", always)
		if theme.Mode() != Dark {
			t.Errorf("expected dark from platform, got %s", theme.Mode())
		}
	})

	t.Run("Defaults To Light And Persists", func(t *testing.T) {
		slots := repositories.NewMemorySlots(nil)
		theme, _ := NewTheme(slots, "", never)
		if theme.Mode() != Light {
			t.Errorf("expected light, got %s", theme.Mode())
		}
		if v, _, _ := slots.Get(repositories.ThemeSlot); v != "light" {
			t.Errorf("expected persisted 'light', got %q", v)
		}
	})

	t.Run("Invalid Stored Value Ignored", func(t *testing.T) {
		slots := repositories.NewMemorySlots(map[string]string{repositories.ThemeSlot: "sepia"})
		theme, _ := NewTheme(slots, "", never)
		if theme.Mode() != Light {
			t.Errorf("expected light, got %s", theme.Mode())
		}
	})

	t.Run("Toggle Persists", func(t *testing.T) {
		slots := repositories.NewMemorySlots(nil)
		theme, _ := NewTheme(slots, "light", never)

		var seen Mode
		theme.OnChange(func(m Mode) { seen = m })

		mode, err := theme.Toggle()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if mode != Dark || seen != Dark {
			t.Errorf("expected dark, got %s (notified %s)", mode, seen)
		}
		if v, _, _ := slots.Get(repositories.ThemeSlot); v != "dark" {
			t.Errorf("expected persisted 'dark', got %q", v)
		}

		reloaded, _ := NewTheme(slots, "light", never)
		if reloaded.Mode() != Dark {
			t.Errorf("expected dark after reload, got %s", reloaded.Mode())
		}
	})

	t.Run("Set Rejects Unknown Mode", func(t *testing.T) {
		theme, _ := NewTheme(repositories.NewMemorySlots(nil), "", never)
		if err := theme.Set(Mode("blue")); err == nil {
			t.Error("expected error for unknown mode")
		}
	})
}

func TestDebouncer(t *testing.T) {
	t.Run("Runs Only Last", func(t *testing.T) {
		timers := &tu.ManualTimers{}
		d := NewDebouncer(DefaultDebounce, timers.AfterFunc)

		var got []int
		for i := 1; i <= 3; i++ {
			d.Trigger(func() { got = append(got, i) })
			timers.Advance(100 * time.Millisecond)
		}
		timers.Advance(DefaultDebounce)

		if len(got) != 1 || got[0] != 3 {
			t.Errorf("expected only the last call, got %v", got)
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		timers := &tu.ManualTimers{}
		d := NewDebouncer(DefaultDebounce, timers.AfterFunc)

		ran := false
		d.Trigger(func() { ran = true })
		if !d.Pending() {
			t.Fatal("expected pending call")
		}
		if !d.Cancel() {
			t.Error("expected Cancel to report a pending call")
		}
		timers.Advance(time.Second)
		if ran {
			t.Error("expected cancelled call not to run")
		}
	})

	t.Run("Timer Firing Immediately", func(t *testing.T) {
		d := NewDebouncer(DefaultDebounce, immediate)

		calls := 0
		finishes(t, func() { d.Trigger(func() { calls++ }) })
		if calls != 1 {
			t.Errorf("expected 1 call, got %d", calls)
		}
		if d.Pending() {
			t.Error("expected nothing pending after the call ran")
		}
		if d.Cancel() {
			t.Error("expected Cancel to find nothing to cancel")
		}
	})
}

// immediate is an [AfterFunc] that runs f before returning.
func immediate(_ time.Duration, f func()) func() bool {
	f()
	return func() bool { return false }
}

// finishes fails the test when fn does not return promptly.
func finishes(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected call to return, it blocked")
	}
}

type fakeCatalog struct {
	mu      sync.Mutex
	calls   []models.Criteria
	results map[string][]models.Movie
	err     error
}

func (f *fakeCatalog) fetch(ctx context.Context, c models.Criteria) ([]models.Movie, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[c.Year], nil
}

func (f *fakeCatalog) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type memoryHistory struct{ records []*models.SearchRecord }

func (m *memoryHistory) Create(r *models.SearchRecord) error {
	m.records = append(m.records, r)
	return nil
}

func TestSearch(t *testing.T) {
	movies := []models.Movie{{ID: 1, Title: "Alien"}, {ID: 2, Title: "Aliens"}, {ID: 3, Title: "Heat"}}

	newSearch := func(catalog *fakeCatalog, timers *tu.ManualTimers) *Search {
		return NewSearch(SearchOpts{Fetch: catalog.fetch, AfterFunc: timers.AfterFunc})
	}

	t.Run("Defaults", func(t *testing.T) {
		s := newSearch(&fakeCatalog{}, &tu.ManualTimers{})
		if s.Criteria().SortBy != string(models.SortPopularity) {
			t.Errorf("expected popularity sort, got %s", s.Criteria().SortBy)
		}
	})

	t.Run("Query Filters Locally", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.Movie{"": movies}}
		timers := &tu.ManualTimers{}
		s := newSearch(catalog, timers)

		if err := s.Refresh(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		before := catalog.count()

		s.SetQuery("ALIEN")
		if got := s.Results(); len(got) != 2 {
			t.Errorf("expected 2 matches, got %d", len(got))
		}
		s.SetQuery("")
		if got := s.Results(); len(got) != 3 {
			t.Errorf("expected all 3 movies, got %d", len(got))
		}
		timers.Advance(time.Second)
		if catalog.count() != before {
			t.Errorf("expected no requests for query changes, got %d", catalog.count()-before)
		}
	})

	t.Run("Debounces Structured Changes", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.Movie{"2001": movies[:1]}}
		timers := &tu.ManualTimers{}
		s := newSearch(catalog, timers)

		s.SetYear("1999")
		timers.Advance(100 * time.Millisecond)
		s.SetYear("2000")
		timers.Advance(100 * time.Millisecond)
		s.SetYear("2001")

		if catalog.count() != 0 {
			t.Fatalf("expected no request inside the quiet period, got %d", catalog.count())
		}
		timers.Advance(DefaultDebounce)

		if catalog.count() != 1 {
			t.Fatalf("expected exactly one request, got %d", catalog.count())
		}
		if catalog.calls[0].Year != "2001" {
			t.Errorf("expected last year value, got %s", catalog.calls[0].Year)
		}
		if got := s.Results(); len(got) != 1 {
			t.Errorf("expected 1 result, got %d", len(got))
		}
	})

	t.Run("Structured Fetch Omits Query And Keeps It Applied", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.Movie{"1986": movies}}
		timers := &tu.ManualTimers{}
		s := newSearch(catalog, timers)

		s.SetQuery("heat")
		s.SetYear("1986")
		timers.Advance(DefaultDebounce)

		if catalog.calls[0].Query != "" {
			t.Errorf("expected query to stay local, got %q", catalog.calls[0].Query)
		}
		got := s.Results()
		if len(got) != 1 || got[0].Title != "Heat" {
			t.Errorf("expected only Heat, got %+v", got)
		}
	})

	t.Run("Stale Results Discarded", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{}, 2)
		var calls int
		var mu sync.Mutex
		fetch := func(ctx context.Context, c models.Criteria) ([]models.Movie, error) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			started <- struct{}{}
			if first {
				<-release
				return movies, nil
			}
			return movies[2:], nil
		}
		s := NewSearch(SearchOpts{Fetch: fetch, AfterFunc: (&tu.ManualTimers{}).AfterFunc})

		done := make(chan struct{})
		go func() {
			s.Refresh(context.Background())
			close(done)
		}()
		<-started

		if err := s.Refresh(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(release)
		<-done

		got := s.Results()
		if len(got) != 1 || got[0].Title != "Heat" {
			t.Errorf("expected newest result to win, got %+v", got)
		}
	})

	t.Run("Error Keeps Previous Results", func(t *testing.T) {
		catalog := &fakeCatalog{results: map[string][]models.Movie{"": movies}}
		s := newSearch(catalog, &tu.ManualTimers{})
		s.Refresh(context.Background())

		catalog.err = errors.New("boom")
		if err := s.Refresh(context.Background()); err == nil {
			t.Fatal("expected error")
		}
		if s.Err() == nil {
			t.Error("expected Err to be set")
		}
		if len(s.Results()) != 3 {
			t.Errorf("expected previous results to remain, got %d", len(s.Results()))
		}
		if s.Loading() {
			t.Error("expected loading to be false")
		}
	})

	t.Run("Records History", func(t *testing.T) {
		history := &memoryHistory{}
		catalog := &fakeCatalog{results: map[string][]models.Movie{"": movies}}
		s := NewSearch(SearchOpts{Fetch: catalog.fetch, History: history})

		s.SetQuery("ali")
		if err := s.Refresh(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(history.records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(history.records))
		}
		if history.records[0].ResultCount != 3 || history.records[0].Criteria.Query != "" {
			t.Errorf("unexpected record %+v", history.records[0])
		}
	})

	t.Run("Apply Without Structured Change", func(t *testing.T) {
		catalog := &fakeCatalog{}
		timers := &tu.ManualTimers{}
		s := newSearch(catalog, timers)

		c := s.Criteria()
		c.Query = "alien"
		s.Apply(c)
		timers.Advance(time.Second)
		if catalog.count() != 0 {
			t.Errorf("expected no fetch, got %d", catalog.count())
		}
	})
}
