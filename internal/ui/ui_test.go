package ui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/amx/internal/models"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
)

type fakeSearcher struct {
	mu    sync.Mutex
	terms []string
	resp  *models.SearchResponse
	err   error
}

func (f *fakeSearcher) Search(ctx context.Context, term, storefront string, opts services.SearchOptions) (*models.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = append(f.terms, term)
	return f.resp, f.err
}

func searchResponse() *models.SearchResponse {
	return &models.SearchResponse{Results: models.SearchResults{
		Songs: &models.ResourceResponse[models.SongAttributes]{Data: []models.Song{
			{ID: "1", Type: models.TypeSongs, Attributes: models.SongAttributes{Name: "Bohemian Rhapsody", ArtistName: "Queen", DurationInMillis: 354947}},
			{ID: "2", Type: models.TypeSongs, Attributes: models.SongAttributes{Name: "Under Pressure", ArtistName: "Queen"}},
		}},
	}}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func send(t *testing.T, m *Model, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	if next != m {
		t.Fatal("expected Update to return the same model")
	}
	return cmd
}

func newModel(t *testing.T, s *fakeSearcher, term string) *Model {
	t.Helper()
	m := NewModel(context.Background(), s, "us", term, services.SearchOptions{})
	send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestModel(t *testing.T) {
	t.Run("Initial Term Searches", func(t *testing.T) {
		s := &fakeSearcher{resp: searchResponse()}
		m := newModel(t, s, " queen ")

		cmd := m.Init()
		if !m.loading {
			t.Error("expected loading state")
		}
		send(t, m, cmd())

		if m.view != ResultsView {
			t.Fatalf("expected results view, got %v", m.view)
		}
		if len(m.results.Items()) != 2 {
			t.Errorf("expected 2 items, got %d", len(m.results.Items()))
		}
		if len(s.terms) != 1 || s.terms[0] != "queen" {
			t.Errorf("unexpected searches %v", s.terms)
		}
		if !strings.Contains(m.View(), "Bohemian Rhapsody") {
			t.Error("expected results to be rendered")
		}
	})

	t.Run("Typed Search", func(t *testing.T) {
		s := &fakeSearcher{resp: searchResponse()}
		m := newModel(t, s, "")

		if cmd := send(t, m, keyPress("enter")); cmd != nil {
			t.Error("expected empty term to be ignored")
		}

		m.input.SetValue("queen")
		cmd := send(t, m, keyPress("enter"))
		if cmd == nil {
			t.Fatal("expected search command")
		}
		send(t, m, cmd())
		if m.view != ResultsView || m.term != "queen" {
			t.Errorf("expected results for queen, got view %v term %q", m.view, m.term)
		}
	})

	t.Run("Detail And Back", func(t *testing.T) {
		m := newModel(t, &fakeSearcher{resp: searchResponse()}, "queen")
		send(t, m, m.Init()())

		send(t, m, keyPress("enter"))
		if m.view != DetailView || m.selected == nil || m.selected.ID != "1" {
			t.Fatalf("expected detail of first result, got view %v selected %+v", m.view, m.selected)
		}
		view := m.View()
		if !strings.Contains(view, "Queen") || !strings.Contains(view, "5:54") {
			t.Errorf("detail missing fields:\n%s", view)
		}

		send(t, m, keyPress("esc"))
		if m.view != ResultsView || m.selected != nil {
			t.Errorf("expected to return to results, got %v", m.view)
		}

		send(t, m, keyPress("s"))
		if m.view != SearchView || m.input.Value() != "" {
			t.Errorf("expected empty search view, got %v %q", m.view, m.input.Value())
		}
	})

	t.Run("Search Error", func(t *testing.T) {
		m := newModel(t, &fakeSearcher{err: shared.NewNetworkError("request failed", nil)}, "queen")
		send(t, m, m.Init()())

		if m.view != SearchView || m.err == nil {
			t.Fatalf("expected error on search view, got %v %v", m.view, m.err)
		}
		if !strings.Contains(m.View(), "request failed") {
			t.Errorf("expected error to be rendered, got:\n%s", m.View())
		}
	})

	t.Run("No Results", func(t *testing.T) {
		m := newModel(t, &fakeSearcher{resp: &models.SearchResponse{}}, "zzzz")
		send(t, m, m.Init()())

		if !strings.Contains(m.View(), `No results for "zzzz"`) {
			t.Errorf("expected empty state, got:\n%s", m.View())
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m := newModel(t, &fakeSearcher{resp: searchResponse()}, "queen")
		send(t, m, m.Init()())

		cmd := send(t, m, keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
