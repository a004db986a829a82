package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/cinemate/internal/models"
	"github.com/desertthunder/cinemate/internal/router"
	"github.com/desertthunder/cinemate/internal/shared"
)

// pageKey handles the keys specific to the page on screen.
func (m *Model) pageKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.res.Page() {
	case router.GuestPage:
		switch {
		case key.Matches(msg, m.keys.login):
			return m.navigate(router.LoginPath), true
		case key.Matches(msg, m.keys.register):
			return m.navigate("/register"), true
		case key.Matches(msg, m.keys.enter):
			return m.navigate("/home"), true
		}
	case router.HomePage:
		switch {
		case key.Matches(msg, m.keys.search), key.Matches(msg, m.keys.tab):
			return m.focusFilter(filterQuery), true
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(movieItem); ok {
				return m.navigate(moviePath(item.movie.ID)), true
			}
			return nil, true
		}
	case router.MovieDetailsPage:
		return m.detailsKey(msg)
	case router.WatchlistsPage:
		switch {
		case key.Matches(msg, m.keys.create):
			m.form = newWatchlistForm()
			return nil, true
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(watchlistItem); ok {
				return m.navigate(router.Path("/watchlists/:name", router.Params{"name": item.watchlist.Name})), true
			}
			return nil, true
		}
	case router.WatchlistDetailPage:
		item, ok := m.list.SelectedItem().(watchlistMovieItem)
		switch {
		case key.Matches(msg, m.keys.rate):
			if !ok {
				return nil, true
			}
			stars, _ := strconv.Atoi(msg.String())
			movieID := item.movie.ID
			return func() tea.Msg { return actionDoneMsg(m.ctrl.Rate(m.ctx, movieID, stars)) }, true
		case key.Matches(msg, m.keys.comment):
			if ok {
				m.form = newCommentForm(item.movie)
			}
			return nil, true
		}
	case router.UsersPage:
		switch {
		case key.Matches(msg, m.keys.favorite):
			if item, ok := m.list.SelectedItem().(userItem); ok {
				return m.follow(item.user), true
			}
			return nil, true
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.list.SelectedItem().(userItem); ok {
				return m.navigate(router.Path("/user/:id", router.Params{"id": item.user.ID})), true
			}
			return nil, true
		}
	case router.UserDetailsPage:
		if key.Matches(msg, m.keys.favorite) && m.user != nil {
			return m.follow(*m.user), true
		}
	case router.ProfilePage:
		switch {
		case key.Matches(msg, m.keys.edit):
			if m.profile != nil {
				m.form = newProfileForm(m.profile)
			}
			return nil, true
		case key.Matches(msg, m.keys.logout):
			return func() tea.Msg {
				m.ctrl.Logout(m.ctx)
				return Msg{kind: MsgLoggedOut}
			}, true
		}
	case router.NotFoundPage:
		if key.Matches(msg, m.keys.enter) {
			return m.navigate("/home"), true
		}
	}
	return nil, false
}

func (m *Model) detailsKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.details == nil || m.details.Movie == nil {
		return nil, false
	}
	// Work on a copy so the command never touches model state.
	details := *m.details
	lists := details.Watchlists

	switch {
	case key.Matches(msg, m.keys.favorite):
		return func() tea.Msg {
			err := m.ctrl.ToggleFavorite(m.ctx, &details)
			return detailsMsg(&details, err)
		}, true
	case key.Matches(msg, m.keys.left), key.Matches(msg, m.keys.up):
		if len(lists) > 0 {
			m.selected = (m.selected + len(lists) - 1) % len(lists)
		}
		return nil, true
	case key.Matches(msg, m.keys.right), key.Matches(msg, m.keys.down):
		if len(lists) > 0 {
			m.selected = (m.selected + 1) % len(lists)
		}
		return nil, true
	case key.Matches(msg, m.keys.add):
		watchlistID := ""
		if m.selected < len(lists) {
			watchlistID = lists[m.selected].ID
		}
		return func() tea.Msg {
			return actionDoneMsg(m.ctrl.AddToWatchlist(m.ctx, details.Movie.ID, watchlistID, details.Status))
		}, true
	case key.Matches(msg, m.keys.remove):
		if m.selected >= len(lists) {
			return nil, true
		}
		ref := models.WatchlistRef{ID: lists[m.selected].ID, Name: lists[m.selected].Name}
		return func() tea.Msg {
			return actionDoneMsg(m.ctrl.RemoveFromWatchlist(m.ctx, details.Movie.ID, ref))
		}, true
	case key.Matches(msg, m.keys.open):
		if err := m.openURL(shared.MoviePageURL(details.Movie.ID)); err != nil {
			m.logger.Warn("failed to open browser", "error", err)
			m.alert.Warning("Could not open a browser.")
		}
		return nil, true
	}
	return nil, false
}

func (m *Model) follow(target models.User) tea.Cmd {
	return func() tea.Msg {
		updated, err := m.ctrl.ToggleFollow(m.ctx, target)
		return userMsg(&updated, err)
	}
}

func moviePath(id int) string {
	return router.Path("/movies/:id", router.Params{"id": strconv.Itoa(id)})
}

// bindings is the short help for the page on screen.
func (m *Model) bindings() []key.Binding {
	k := m.keys
	if m.form != nil {
		return []key.Binding{k.tab, k.enter, k.back}
	}
	if m.filter >= 0 {
		return []key.Binding{k.tab, k.left, k.right, k.back}
	}

	nav := []key.Binding{k.home, k.watchlists, k.users, k.profile, k.theme, k.quit}
	switch m.res.Page() {
	case router.GuestPage:
		return append([]key.Binding{k.login, k.register, k.enter}, k.theme, k.quit)
	case router.HomePage:
		return append([]key.Binding{k.search, k.enter}, nav...)
	case router.MovieDetailsPage:
		return append([]key.Binding{k.favorite, k.left, k.right, k.add, k.remove, k.open, k.back}, nav...)
	case router.WatchlistsPage:
		return append([]key.Binding{k.create, k.enter, k.back}, nav...)
	case router.WatchlistDetailPage:
		return append([]key.Binding{k.rate, k.comment, k.back}, nav...)
	case router.UsersPage:
		return append([]key.Binding{withHelp(k.favorite, "follow"), k.enter, k.back}, nav...)
	case router.UserDetailsPage:
		return append([]key.Binding{withHelp(k.favorite, "follow"), k.back}, nav...)
	case router.ProfilePage:
		return append([]key.Binding{k.edit, k.logout, k.back}, nav...)
	}
	return append([]key.Binding{k.back}, nav...)
}

func withHelp(b key.Binding, desc string) key.Binding {
	b.SetHelp(b.Help().Key, desc)
	return b
}

// body renders the page on screen.
func (m *Model) body(p *Palette) string {
	if m.form != nil {
		return m.form.view(p)
	}
	if m.busy {
		return m.spinner.View() + " Loading..."
	}

	switch m.res.Page() {
	case router.LoadingPage:
		return m.spinner.View() + " Loading..."
	case router.GuestPage:
		return m.guestView(p)
	case router.HomePage:
		return m.homeView(p)
	case router.MovieDetailsPage:
		return m.detailsView(p)
	case router.WatchlistsPage:
		if len(m.watchlists) == 0 {
			return p.muted.Render("No watchlists yet. Press n to create one.")
		}
		return m.list.View()
	case router.WatchlistDetailPage:
		if len(m.listMovies) == 0 {
			return p.title.Render(m.res.Params["name"]) + "\n" + p.muted.Render("This watchlist is empty.")
		}
		return m.list.View()
	case router.UsersPage:
		if len(m.users) == 0 {
			return p.muted.Render("No users found.")
		}
		return m.list.View()
	case router.UserDetailsPage:
		return m.userView(p, m.user, "User not found.")
	case router.ProfilePage:
		return m.userView(p, m.profile, "Sign in to see your profile.")
	}
	return p.title.Render("404") + "\n" + p.text.Render("Page not found: "+m.path) + "\n" + p.muted.Render("Press enter to go home.")
}

func (m *Model) guestView(p *Palette) string {
	return p.border.Render(lipgloss.JoinVertical(lipgloss.Left,
		p.title.Render("Welcome to CineMate"),
		p.text.Render("Discover movies, keep watchlists and follow other film fans."),
		"",
		p.muted.Render("Press l to log in, r to register or enter to start browsing."),
	))
}

func (m *Model) homeView(p *Palette) string {
	c := m.search.Criteria()
	values := [filterCount]string{
		m.query.View(),
		genreLabel(c.Genre),
		m.year.View(),
		ratingLabel(c.Rating),
		sortLabel(c.SortBy),
	}

	fields := make([]string, filterCount)
	for i, v := range values {
		label := p.muted.Render(filterLabels[i] + ":")
		if i == m.filter {
			label = p.selected.Render(filterLabels[i] + ":")
		}
		fields[i] = label + " " + v
	}

	var b strings.Builder
	b.WriteString(strings.Join(fields, "  ") + "\n\n")

	switch {
	case m.search.Loading():
		b.WriteString(m.spinner.View() + " Loading movies...")
	case len(m.search.Results()) == 0:
		b.WriteString(p.muted.Render("No movies match your filters."))
	default:
		b.WriteString(m.list.View())
	}

	if len(m.recommendations) > 0 {
		titles := make([]string, len(m.recommendations))
		for i, movie := range m.recommendations {
			titles[i] = movie.Title
		}
		b.WriteString("\n" + p.info.Render("Recommended for you: ") + p.text.Render(strings.Join(titles, " • ")))
	}
	return b.String()
}

func (m *Model) detailsView(p *Palette) string {
	if m.details == nil || m.details.Movie == nil {
		return p.muted.Render("Movie not found.")
	}
	movie := m.details.Movie

	lines := []string{p.title.Render(movieTitle(*movie))}
	meta := []string{"★ " + movie.Rating()}
	if runtime := movie.RuntimeString(); runtime != "" {
		meta = append(meta, runtime)
	}
	if genres := movie.GenreNames(); len(genres) > 0 {
		meta = append(meta, strings.Join(genres, ", "))
	}
	lines = append(lines, p.info.Render(strings.Join(meta, " • ")))
	if movie.Overview != "" {
		width := 76
		if m.width > 4 {
			width = m.width - 4
		}
		lines = append(lines, "", p.text.Width(width).Render(movie.Overview))
	}

	if m.session.User() == nil {
		lines = append(lines, "", p.muted.Render("Log in to manage favorites and watchlists."))
		return strings.Join(lines, "\n")
	}

	favorite := p.muted.Render("☆ Not in favorites")
	if m.details.InFavorites {
		favorite = p.ok.Render("♥ In favorites")
	}
	lines = append(lines, "", favorite, "", p.text.Render("Watchlists:"))
	if len(m.details.Watchlists) == 0 {
		lines = append(lines, p.muted.Render("  No watchlists yet."))
	}
	for i, w := range m.details.Watchlists {
		mark := " "
		if m.details.Status.Contains(w.ID) {
			mark = "✓"
		}
		line := fmt.Sprintf("  [%s] %s", mark, w.Name)
		if i == m.selected {
			line = p.selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) userView(p *Palette, user *models.User, missing string) string {
	if user == nil {
		return p.muted.Render(missing)
	}

	lines := []string{p.title.Render(user.Username)}
	if user.Email != "" {
		lines = append(lines, p.text.Render(user.Email))
	}
	if user.Age > 0 {
		lines = append(lines, p.muted.Render(fmt.Sprintf("Age %d", user.Age)))
	}
	lines = append(lines, "",
		p.info.Render(fmt.Sprintf("%d followers • %d following", len(user.Followers), len(user.Following))))

	if me := m.session.User(); me != nil && me.ID != user.ID {
		if user.IsFollowedBy(me.ID) {
			lines = append(lines, p.ok.Render("You follow "+user.Username))
		} else {
			lines = append(lines, p.muted.Render("Press f to follow"))
		}
	}
	return strings.Join(lines, "\n")
}

func movieTitle(movie models.Movie) string {
	if year := movie.Year(); year != "" {
		return fmt.Sprintf("%s (%s)", movie.Title, year)
	}
	return movie.Title
}
