package ui

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/actions"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/router"
	"github.com/desertthunder/cinemate/internal/services"
	"github.com/desertthunder/cinemate/internal/session"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
)

// Lines taken by everything around the list: header, alert, filters and help.
const listChrome = 12

// Deps are the stores and controller the TUI drives.
type Deps struct {
	Controller *actions.Controller
	Search     *state.Search
	Theme      *state.Theme
	Context    context.Context
	Logger     *log.Logger
	OpenURL    func(url string) error // Defaults to [shared.OpenBrowser]
}

// Model is the root bubbletea model. It owns the current path and renders
// whatever page [router.Resolve] picks for it.
type Model struct {
	ctx     context.Context
	ctrl    *actions.Controller
	session *session.Store
	alert   *state.Alert
	search  *state.Search
	theme   *state.Theme
	openURL func(string) error
	logger  *log.Logger

	path    string
	history []string
	res     router.Resolution
	width   int
	height  int
	busy    bool

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	list    list.Model
	form    *form

	filter int
	query  textinput.Model
	year   textinput.Model

	recommendations []models.Movie
	details         *actions.MovieDetails
	selected        int
	watchlists      []models.Watchlist
	listMovies      []models.WatchlistMovie
	users           []models.User
	user            *models.User
	profile         *models.User
}

var _ tea.Model = (*Model)(nil)

// NewModel creates the TUI positioned at start.
func NewModel(deps Deps, start string) *Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(io.Discard)
	}
	if deps.OpenURL == nil {
		deps.OpenURL = shared.OpenBrowser
	}
	if start == "" {
		start = "/home"
	}

	delegate := list.NewDefaultDelegate()
	l := list.New([]list.Item{}, delegate, 80, 20)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	query := textinput.New()
	query.Placeholder = "Search by title"
	year := textinput.New()
	year.Placeholder = "YYYY"
	year.CharLimit = 4

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:     deps.Context,
		ctrl:    deps.Controller,
		session: deps.Controller.Session(),
		alert:   deps.Controller.Alert(),
		search:  deps.Search,
		theme:   deps.Theme,
		openURL: deps.OpenURL,
		logger:  deps.Logger,
		path:    start,
		keys:    newKeyMap(),
		help:    help.New(),
		spinner: sp,
		list:    l,
		filter:  -1,
		query:   query,
		year:    year,
	}
	m.res = router.Resolve(start, m.session)
	return m
}

// Attach routes store notifications into the running program, typically [tea.Program.Send].
//
// Notifications can fire while Update is running, so send is never called inline.
func (m *Model) Attach(send func(tea.Msg)) {
	notify := func(kind MsgKind) func() {
		return func() { go send(Msg{kind: kind}) }
	}
	m.search.OnUpdate(notify(MsgSearchUpdated))
	m.alert.OnChange(notify(MsgAlertChanged))
}

func (m *Model) Init() tea.Cmd {
	bootstrap := func() tea.Msg {
		return sessionResolvedMsg(m.session.Bootstrap(m.ctx))
	}
	return tea.Batch(m.spinner.Tick, bootstrap, m.show(m.path))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, max(msg.Height-listChrome, 5))
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case Msg:
		return m, m.handleMsg(msg)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

// Path is the path of the page on screen, after any redirect.
func (m *Model) Path() string { return m.path }

// Page is the page on screen.
func (m *Model) Page() router.Page { return m.res.Page() }

// navigate pushes the current path onto the history and shows path.
func (m *Model) navigate(path string) tea.Cmd {
	if path != m.path {
		m.history = append(m.history, m.path)
	}
	return m.show(path)
}

// back returns to the previous path, or the landing page when there is none.
func (m *Model) back() tea.Cmd {
	if len(m.history) == 0 {
		if m.path == "/" {
			return nil
		}
		return m.show("/")
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return m.show(prev)
}

// show resolves path against the session and enters the resulting page.
// A redirect replaces path rather than adding to the history.
func (m *Model) show(path string) tea.Cmd {
	m.path = path
	m.res = router.Resolve(path, m.session)
	if m.res.Outcome.Decision == router.Redirect {
		m.logger.Debug("redirecting", "from", path, "to", m.res.Outcome.Location)
		m.path = m.res.Outcome.Location
		m.res = router.Resolve(m.path, m.session)
	}
	return m.enter()
}

// enter resets page state and starts the page's loaders.
func (m *Model) enter() tea.Cmd {
	m.form = nil
	m.busy = false
	m.focusFilter(-1)
	m.list.SetItems([]list.Item{})
	m.list.ResetSelected()

	switch m.res.Page() {
	case router.LoginPage:
		m.form = newLoginForm()
	case router.RegisterPage:
		m.form = newRegisterForm()
	case router.HomePage:
		m.list.Title = "Movies"
		m.setMovieItems()
		return tea.Batch(m.loadMovies, m.loadRecommendations)
	case router.MovieDetailsPage:
		id, err := strconv.Atoi(m.res.Params["id"])
		if err != nil || id <= 0 {
			m.res.Route = router.Route{Pattern: "*", Page: router.NotFoundPage}
			return nil
		}
		m.details, m.selected, m.busy = nil, 0, true
		return func() tea.Msg {
			details, err := m.ctrl.MovieDetails(m.ctx, id)
			return detailsMsg(details, err)
		}
	case router.ProfilePage:
		m.profile, m.busy = nil, true
		return func() tea.Msg {
			user, err := m.ctrl.Profile(m.ctx)
			return profileMsg(user, err)
		}
	case router.UsersPage:
		m.list.Title, m.busy = "Users", true
		return func() tea.Msg {
			users, err := m.ctrl.Users(m.ctx)
			return usersMsg(users, err)
		}
	case router.UserDetailsPage:
		id := m.res.Params["id"]
		m.user, m.busy = nil, true
		return func() tea.Msg {
			user, err := m.ctrl.User(m.ctx, id)
			return userMsg(user, err)
		}
	case router.WatchlistsPage:
		m.list.Title, m.busy = "Your watchlists", true
		return m.loadWatchlists
	case router.WatchlistDetailPage:
		name := m.res.Params["name"]
		m.list.Title, m.busy = name, true
		return func() tea.Msg {
			movies, err := m.ctrl.WatchlistMovies(m.ctx, name)
			return watchlistMoviesMsg(movies, err)
		}
	}
	return nil
}

func (m *Model) loadMovies() tea.Msg {
	_ = m.ctrl.LoadMovies(m.ctx, m.search)
	return nil
}

func (m *Model) loadRecommendations() tea.Msg {
	movies, err := m.ctrl.Recommendations(m.ctx)
	return recommendationsMsg(movies, err)
}

func (m *Model) loadWatchlists() tea.Msg {
	lists, err := m.ctrl.Watchlists(m.ctx)
	return watchlistsMsg(lists, err)
}

// settle ends a load. An unauthorized error re-resolves the page, which sends a
// protected page to the login form once the session has expired.
func (m *Model) settle(err error) tea.Cmd {
	m.busy = false
	if err != nil && services.IsUnauthorized(err) {
		return m.show(m.path)
	}
	return nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	page := m.res.Page()

	switch msg.kind {
	case MsgSessionResolved:
		if m.form != nil && m.res.Outcome.Decision == router.Render {
			return nil
		}
		return m.show(m.path)
	case MsgSearchUpdated:
		if page == router.HomePage {
			m.setMovieItems()
		}
	case MsgRecommendationsFetched:
		r := msg.data.(result[[]models.Movie])
		if page == router.HomePage {
			m.recommendations = r.value
		}
		return m.settle(r.err)
	case MsgDetailsFetched:
		r := msg.data.(result[*actions.MovieDetails])
		if page == router.MovieDetailsPage && r.value != nil {
			m.details = r.value
			m.selected = min(m.selected, max(len(r.value.Watchlists)-1, 0))
		}
		return m.settle(r.err)
	case MsgWatchlistsFetched:
		r := msg.data.(result[[]models.Watchlist])
		if page == router.WatchlistsPage {
			m.watchlists = r.value
			m.setWatchlistItems()
		}
		return m.settle(r.err)
	case MsgWatchlistMoviesFetched:
		r := msg.data.(result[[]models.WatchlistMovie])
		if page == router.WatchlistDetailPage {
			m.listMovies = r.value
			m.setWatchlistMovieItems()
		}
		return m.settle(r.err)
	case MsgUsersFetched:
		r := msg.data.(result[[]models.User])
		if page == router.UsersPage {
			m.users = r.value
			m.setUserItems()
		}
		return m.settle(r.err)
	case MsgUserFetched:
		r := msg.data.(result[*models.User])
		if r.value != nil {
			switch page {
			case router.UserDetailsPage:
				m.user = r.value
			case router.UsersPage:
				m.users = actions.ReplaceUser(m.users, *r.value)
				m.setUserItems()
			}
		}
		return m.settle(r.err)
	case MsgProfileFetched:
		r := msg.data.(result[*models.User])
		if page == router.ProfilePage && r.value != nil {
			m.profile = r.value
			if m.form != nil && m.form.kind == profileForm && r.err == nil {
				m.form = nil
			}
		}
		return m.settle(r.err)
	case MsgLoggedIn:
		r := msg.data.(result[*models.User])
		if r.err != nil {
			return nil
		}
		m.history = nil
		return m.show("/home")
	case MsgRegistered:
		r := msg.data.(result[string])
		if r.err != nil {
			return nil
		}
		return m.navigate(router.LoginPath)
	case MsgLoggedOut:
		m.history = nil
		return m.show(router.LoginPath)
	case MsgActionDone:
		err, _ := msg.data.(error)
		if err != nil {
			return m.settle(err)
		}
		m.form = nil
		return m.reload()
	}
	return nil
}

// reload refetches the current page's data without resetting navigation.
func (m *Model) reload() tea.Cmd {
	selected := m.selected
	cursor := m.list.Index()
	cmd := m.enter()
	m.selected = selected
	m.list.Select(cursor)
	return cmd
}

// typing reports whether keys go to a text field.
func (m *Model) typing() bool {
	return m.form != nil || m.filter == filterQuery || m.filter == filterYear
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" || (key.Matches(msg, m.keys.quit) && !m.typing()) {
		m.search.Close()
		return tea.Quit
	}
	if m.form != nil {
		return m.updateForm(msg)
	}
	if m.filter >= 0 {
		return m.updateFilters(msg)
	}

	switch {
	case key.Matches(msg, m.keys.back):
		return m.back()
	case key.Matches(msg, m.keys.theme):
		if _, err := m.theme.Toggle(); err != nil {
			m.logger.Warn("failed to save theme", "error", err)
		}
		return nil
	case key.Matches(msg, m.keys.home):
		return m.navigate("/home")
	case key.Matches(msg, m.keys.watchlists):
		return m.navigate("/watchlist")
	case key.Matches(msg, m.keys.users):
		return m.navigate("/users")
	case key.Matches(msg, m.keys.profile):
		return m.navigate("/profile")
	}

	if cmd, handled := m.pageKey(msg); handled {
		return cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return cmd
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.back) {
		switch m.res.Page() {
		case router.LoginPage, router.RegisterPage:
			return m.back()
		}
		m.form = nil
		return nil
	}

	submit, cmd := m.form.update(msg)
	if submit {
		return tea.Batch(cmd, m.submit())
	}
	return cmd
}

// submit runs the action behind the active form.
func (m *Model) submit() tea.Cmd {
	values := m.form.values()

	switch m.form.kind {
	case loginForm:
		email, password := values[0], values[1]
		return func() tea.Msg {
			user, err := m.ctrl.Login(m.ctx, email, password)
			return loggedInMsg(user, err)
		}
	case registerForm:
		registration := models.Registration{Username: values[0], Email: values[1], Password: values[2], Age: values[3]}
		return func() tea.Msg {
			message, err := m.ctrl.Register(m.ctx, registration)
			return registeredMsg(message, err)
		}
	case watchlistForm:
		name, existing := values[0], m.watchlists
		return func() tea.Msg {
			_, err := m.ctrl.CreateWatchlist(m.ctx, name, existing)
			return actionDoneMsg(err)
		}
	case commentForm:
		movieID, comment := m.form.target, values[0]
		return func() tea.Msg {
			return actionDoneMsg(m.ctrl.Comment(m.ctx, movieID, comment))
		}
	case profileForm:
		age, err := strconv.Atoi(strings.TrimSpace(values[1]))
		if err != nil || age <= 0 {
			m.alert.Warning("Please enter a valid age.")
			return nil
		}
		update := models.ProfileUpdate{Username: strings.TrimSpace(values[0]), Age: age}
		return func() tea.Msg {
			user, err := m.ctrl.UpdateProfile(m.ctx, update)
			return profileMsg(user, err)
		}
	}
	return nil
}

func (m *Model) focusFilter(i int) tea.Cmd {
	m.query.Blur()
	m.year.Blur()
	m.filter = i
	switch i {
	case filterQuery:
		return m.query.Focus()
	case filterYear:
		return m.year.Focus()
	}
	return nil
}

// updateFilters edits the home filter bar. The title query filters locally; the
// other fields go through the search's debounced fetch.
func (m *Model) updateFilters(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "enter":
		return m.focusFilter(-1)
	case "tab":
		return m.focusFilter((m.filter + 1) % filterCount)
	case "shift+tab":
		return m.focusFilter((m.filter + filterCount - 1) % filterCount)
	}

	criteria := m.search.Criteria()
	delta := 0
	switch msg.String() {
	case "left":
		delta = -1
	case "right":
		delta = 1
	}

	var cmd tea.Cmd
	switch m.filter {
	case filterQuery:
		m.query, cmd = m.query.Update(msg)
		if v := m.query.Value(); v != criteria.Query {
			m.search.SetQuery(v)
		}
	case filterYear:
		m.year, cmd = m.year.Update(msg)
		if v := m.year.Value(); v != criteria.Year {
			m.search.SetYear(v)
		}
	case filterGenre:
		if delta != 0 {
			m.search.SetGenre(cycle(genreOptions(), criteria.Genre, delta))
		}
	case filterRating:
		if delta != 0 {
			m.search.SetRating(cycle(ratingOptions(), criteria.Rating, delta))
		}
	case filterSort:
		if delta != 0 {
			m.search.SetSortBy(cycle(sortOptions(), criteria.SortBy, delta))
		}
	}
	return cmd
}

func (m *Model) setMovieItems() {
	movies := m.search.Results()
	items := make([]list.Item, len(movies))
	for i, movie := range movies {
		items[i] = movieItem{movie}
	}
	m.list.SetItems(items)
}

func (m *Model) setWatchlistItems() {
	items := make([]list.Item, len(m.watchlists))
	for i, w := range m.watchlists {
		items[i] = watchlistItem{w}
	}
	m.list.SetItems(items)
}

func (m *Model) setWatchlistMovieItems() {
	items := make([]list.Item, len(m.listMovies))
	for i, movie := range m.listMovies {
		items[i] = watchlistMovieItem{movie}
	}
	m.list.SetItems(items)
}

func (m *Model) setUserItems() {
	viewer := ""
	if me := m.session.User(); me != nil {
		viewer = me.ID
	}
	items := make([]list.Item, len(m.users))
	for i, u := range m.users {
		items[i] = userItem{user: u, viewerID: viewer}
	}
	m.list.SetItems(items)
}

func (m *Model) View() string {
	p := PaletteFor(m.theme.Mode())

	var b strings.Builder
	b.WriteString(m.header(p) + "\n")
	if n, ok := m.alert.Current(); ok {
		b.WriteString(p.Notice(n) + "\n")
	}
	b.WriteString("\n" + m.body(p) + "\n\n")
	b.WriteString(m.help.ShortHelpView(m.bindings()))
	return b.String()
}

func (m *Model) header(p *Palette) string {
	who := p.muted.Render("browsing as guest")
	if user := m.session.User(); user != nil {
		who = p.text.Render("signed in as " + user.Username)
	}
	return p.title.Render("CineMate") + "  " + who
}
