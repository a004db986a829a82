package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/cinemate/internal/models"
)

type formKind int

const (
	loginForm formKind = iota
	registerForm
	watchlistForm
	commentForm
	profileForm
)

type field struct {
	label       string
	placeholder string
	value       string
	secret      bool
	limit       int
}

// form is a stack of labelled text inputs submitted with enter on the last field.
type form struct {
	kind   formKind
	title  string
	target string
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(kind formKind, title string, fields ...field) *form {
	f := &form{kind: kind, title: title}
	for _, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placeholder
		in.SetValue(fd.value)
		if fd.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		if fd.limit > 0 {
			in.CharLimit = fd.limit
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func newLoginForm() *form {
	return newForm(loginForm, "Log in",
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", secret: true},
	)
}

func newRegisterForm() *form {
	return newForm(registerForm, "Create an account",
		field{label: "Username"},
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", secret: true},
		field{label: "Age", limit: 3},
	)
}

func newWatchlistForm() *form {
	return newForm(watchlistForm, "New watchlist", field{label: "Name", placeholder: "Date night"})
}

func newCommentForm(movie models.WatchlistMovie) *form {
	f := newForm(commentForm, "Comment on "+movie.Title, field{label: "Comment"})
	f.target = movie.ID
	return f
}

func newProfileForm(user *models.User) *form {
	return newForm(profileForm, "Edit profile",
		field{label: "Username", value: user.Username},
		field{label: "Age", value: strconv.Itoa(user.Age), limit: 3},
	)
}

// update moves focus on tab and arrows, reports submit on enter in the last field and
// otherwise forwards msg to the focused input.
func (f *form) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return false, f.setFocus((f.focus + 1) % len(f.inputs))
	case "shift+tab", "up":
		return false, f.setFocus((f.focus + len(f.inputs) - 1) % len(f.inputs))
	case "enter":
		if f.focus == len(f.inputs)-1 {
			return true, nil
		}
		return false, f.setFocus(f.focus + 1)
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return false, cmd
}

func (f *form) setFocus(i int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

func (f *form) values() []string {
	values := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		values[i] = in.Value()
	}
	return values
}

func (f *form) view(p *Palette) string {
	var b strings.Builder
	b.WriteString(p.title.Render(f.title) + "\n")
	for i, in := range f.inputs {
		label := p.muted.Render(fmt.Sprintf("%-9s", f.labels[i]))
		if i == f.focus {
			label = p.selected.Render(fmt.Sprintf("%-9s", f.labels[i]))
		}
		b.WriteString(label + " " + in.View() + "\n")
	}
	b.WriteString("\n" + p.help.Render("enter to submit • tab to switch fields • esc to cancel"))
	return p.border.Render(b.String())
}

const (
	filterQuery = iota
	filterGenre
	filterYear
	filterRating
	filterSort
	filterCount
)

var filterLabels = [filterCount]string{"Search", "Genre", "Year", "Rating", "Sort"}

func genreOptions() []string {
	opts := []string{""}
	for _, g := range models.Genres {
		opts = append(opts, strconv.Itoa(g.ID))
	}
	return opts
}

func ratingOptions() []string {
	opts := []string{""}
	for _, r := range models.RatingOptions {
		opts = append(opts, strconv.Itoa(r))
	}
	return opts
}

func sortOptions() []string {
	opts := make([]string, 0, len(models.SortKeys))
	for _, s := range models.SortKeys {
		opts = append(opts, string(s.Key))
	}
	return opts
}

// cycle steps through options from current, wrapping at either end.
func cycle(options []string, current string, delta int) string {
	at := 0
	for i, o := range options {
		if o == current {
			at = i
			break
		}
	}
	n := len(options)
	return options[((at+delta)%n+n)%n]
}

func genreLabel(genre string) string {
	if id, err := strconv.Atoi(genre); err == nil {
		if name, ok := models.GenreName(id); ok {
			return name
		}
	}
	return "All genres"
}

func ratingLabel(rating string) string {
	if rating == "" {
		return "Any rating"
	}
	return rating + "+"
}

func sortLabel(sortBy string) string {
	for _, s := range models.SortKeys {
		if string(s.Key) == sortBy {
			return s.Label
		}
	}
	return models.SortKeys[0].Label
}
