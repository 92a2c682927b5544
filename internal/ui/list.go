package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/amx/internal/formatter"
)

var (
	_ list.Item = rowItem{}
)

// rowItem wraps a [formatter.Row] to implement [list.Item].
type rowItem struct {
	row formatter.Row
}

func (i rowItem) FilterValue() string { return i.row.Name + " " + i.row.Artist }
func (i rowItem) Title() string       { return i.row.Name }
func (i rowItem) Description() string {
	parts := []string{i.row.Type}
	if i.row.Artist != "" {
		parts = append(parts, i.row.Artist)
	}
	if i.row.Album != "" {
		parts = append(parts, i.row.Album)
	}
	if i.row.DurationMS > 0 {
		parts = append(parts, formatter.FormatDuration(i.row.DurationMS))
	}
	return strings.Join(parts, " • ")
}

func rowItems(rows []formatter.Row) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = rowItem{row: r}
	}
	return items
}
