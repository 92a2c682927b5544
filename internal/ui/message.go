package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/amx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchCompleted MsgKind = iota
)

type searchResult struct {
	term string
	resp *models.SearchResponse
	err  error
}

// searchCompletedMsg is the constructor for [MsgSearchCompleted]
func searchCompletedMsg(term string, resp *models.SearchResponse, err error) Msg {
	return Msg{kind: MsgSearchCompleted, data: searchResult{term: term, resp: resp, err: err}}
}
