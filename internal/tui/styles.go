package tui

import (
	"fmt"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	filterStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))

	emptyStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("247")).
			Italic(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")).
			Bold(true)
)

type itemStyles struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	title    lipgloss.Style
	meta     lipgloss.Style
	readMark lipgloss.Style
	noSwatch lipgloss.Style
}

func newItemStyles() itemStyles {
	base := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("237")).
		PaddingLeft(1).
		Foreground(lipgloss.Color("252"))

	return itemStyles{
		normal: base,
		selected: base.Copy().
			BorderForeground(lipgloss.Color("214")).
			Foreground(lipgloss.Color("230")),
		title: lipgloss.NewStyle().Bold(true),
		meta: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		readMark: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		noSwatch: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// swatch renders a two-cell block in the cover colour.
func (s itemStyles) swatch(c *library.Color) string {
	if c == nil {
		return s.noSwatch.Render("░░")
	}
	hex := fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}
