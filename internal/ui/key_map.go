package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Letter bindings only apply while no text field has focus.
type keyMap struct {
	up         key.Binding
	down       key.Binding
	left       key.Binding
	right      key.Binding
	enter      key.Binding
	back       key.Binding
	tab        key.Binding
	search     key.Binding
	home       key.Binding
	watchlists key.Binding
	users      key.Binding
	profile    key.Binding
	login      key.Binding
	register   key.Binding
	favorite   key.Binding
	add        key.Binding
	remove     key.Binding
	create     key.Binding
	comment    key.Binding
	rate       key.Binding
	edit       key.Binding
	logout     key.Binding
	open       key.Binding
	theme      key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		tab:        key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		home:       key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "home")),
		watchlists: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watchlists")),
		users:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "users")),
		profile:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile")),
		login:      key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		register:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "register")),
		favorite:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to list")),
		remove:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove from list")),
		create:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		comment:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comment")),
		rate:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "rate")),
		edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		logout:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
		open:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.back, k.theme, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.home, k.watchlists, k.users, k.profile},
		{k.favorite, k.add, k.remove, k.comment, k.rate},
		{k.theme, k.quit},
	}
}
