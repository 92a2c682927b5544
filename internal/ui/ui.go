package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/services"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	DetailView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	searcher   services.Searcher
	storefront string
	opts       services.SearchOptions
	width      int
	height     int
	input      textinput.Model
	results    list.Model
	selected   *formatter.Row
	term       string
	loading    bool
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a search browser for storefront. A non-empty term is searched immediately.
func NewModel(ctx context.Context, searcher services.Searcher, storefront, term string, opts services.SearchOptions) *Model {
	input := textinput.New()
	input.Placeholder = "Search the catalog"
	input.CharLimit = 200
	input.SetValue(term)
	input.Focus()

	return &Model{
		ctx:        ctx,
		view:       SearchView,
		searcher:   searcher,
		storefront: storefront,
		opts:       opts,
		input:      input,
		results:    list.New(nil, list.NewDefaultDelegate(), 0, 0),
		term:       strings.TrimSpace(term),
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init runs the initial search when a term was supplied.
func (m *Model) Init() tea.Cmd {
	if m.term == "" {
		return textinput.Blink
	}
	m.loading = true
	return m.search(m.term)
}

// View returns the active view.
func (m *Model) View() string {
	switch m.view {
	case ResultsView:
		return m.renderResults()
	case DetailView:
		return m.renderDetail()
	default:
		return m.renderSearch()
	}
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.results.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		}

	case Msg:
		if msg.kind == MsgSearchCompleted {
			return m.handleSearchCompleted(msg.data.(searchResult))
		}
	}

	return m.updateComponents(msg)
}

func (m *Model) handleSearchCompleted(res searchResult) (tea.Model, tea.Cmd) {
	m.loading = false
	if res.err != nil {
		m.err = res.err
		m.view = SearchView
		m.input.Focus()
		return m, nil
	}

	m.err = nil
	m.term = res.term
	m.results.SetItems(rowItems(formatter.SearchRows(res.resp)))
	m.results.Title = fmt.Sprintf("Results for %q (%s)", res.term, m.storefront)
	m.results.ResetSelected()
	m.view = ResultsView
	m.input.Blur()
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		term := strings.TrimSpace(m.input.Value())
		if term == "" || m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, m.search(term)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.results.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		m.input.SetValue("")
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.results.SelectedItem().(rowItem); ok {
			row := item.row
			m.selected = &row
			m.view = DetailView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ResultsView
		m.selected = nil
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case ResultsView:
		m.results, cmd = m.results.Update(msg)
	}
	return m, cmd
}

func (m *Model) search(term string) tea.Cmd {
	ctx, searcher, storefront, opts := m.ctx, m.searcher, m.storefront, m.opts
	return func() tea.Msg {
		resp, err := searcher.Search(ctx, term, storefront, opts)
		return searchCompletedMsg(term, resp, err)
	}
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Apple Music Catalog"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(styles.warn.Render(fmt.Sprintf("Searching for %q...", strings.TrimSpace(m.input.Value()))))
		b.WriteString("\n\n")
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	search := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search"))
	quit := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "quit"))
	b.WriteString(m.help.ShortHelpView([]key.Binding{search, quit}))
	return b.String()
}

func (m *Model) renderResults() string {
	if len(m.results.Items()) == 0 {
		msg := styles.warn.Render(fmt.Sprintf("No results for %q", m.term))
		return fmt.Sprintf("%s\n\n%s", msg, m.help.ShortHelpView([]key.Binding{m.keys.search, m.keys.quit}))
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.search, m.keys.quit}
	return fmt.Sprintf("%s\n\n%s", m.results.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}
	r := m.selected

	var b strings.Builder
	b.WriteString(styles.title.Render(r.Name))
	b.WriteString("\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(label), value)
	}
	field("Type", r.Type)
	field("ID", r.ID)
	field("Artist", r.Artist)
	field("Album", r.Album)
	if r.DurationMS > 0 {
		field("Duration", formatter.FormatDuration(r.DurationMS))
	}
	field("ISRC", r.ISRC)
	field("URL", r.URL)
	if r.Artwork != "" {
		field("Artwork", formatter.ArtworkURL(r.Artwork, 600, 600))
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	return b.String()
}
