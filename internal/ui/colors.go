package ui

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	colorAccent = "#FA243C"
	colorOK     = "#04B575"
	colorError  = "#FF5F57"
	colorWarn   = "#FFA500"
	colorMuted  = "#626262"

	labelWidth = 12
)

var styles = newPalette()

// Palette holds the styles shared by every view.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	label lipgloss.Style
}

func newPalette() *Palette {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	return &Palette{
		title: fg(colorAccent).Bold(true).MarginBottom(1),
		ok:    fg(colorOK).Bold(true),
		err:   fg(colorError).Bold(true),
		warn:  fg(colorWarn),
		help:  fg(colorMuted).Italic(true),
		label: fg(colorMuted).Bold(true).Width(labelWidth),
	}
}
