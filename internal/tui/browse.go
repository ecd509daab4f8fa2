// Package tui is the interactive terminal browser over the library.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Dakoina/CalibreBookGrid/internal/library"
	"github.com/Dakoina/CalibreBookGrid/internal/state"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultListWidth  = 80
	defaultListHeight = 20
	suggestionCount   = 3
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

// Library is the state the browser reads and drives.
type Library interface {
	FilteredSorted() []library.Book
	Suggestions(n int) []string
	AvailableLanguages() []string
	Inputs() state.Inputs
	SetSearch(text string)
	ToggleLanguage(code string)
	ClearLanguages()
}

type bookItem struct {
	library.Book
}

func (i bookItem) Title() string {
	return library.DisplayTitle(i.Book)
}

func (i bookItem) Description() string {
	parts := []string{i.AuthorKey()}
	if i.HasSeries() {
		parts = append(parts, i.Series)
	}
	if i.Language != "" {
		parts = append(parts, library.LanguageName(i.Language))
	}
	return strings.Join(parts, " · ")
}

func (i bookItem) FilterValue() string {
	return i.Book.Title
}

type bookDelegate struct {
	styles itemStyles
}

func (d bookDelegate) Height() int                         { return 2 }
func (d bookDelegate) Spacing() int                        { return 0 }
func (d bookDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d bookDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	book, ok := item.(bookItem)
	if !ok {
		return
	}

	read := "  "
	if book.Read() {
		read = d.styles.readMark.Render("✓ ")
	}
	width := m.Width() - 8
	titleLine := d.styles.swatch(book.CoverColor) + " " + read + d.styles.title.Render(truncate(book.Title(), width))
	metaLine := "     " + d.styles.meta.Render(truncate(book.Description(), width))

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(lipgloss.JoinVertical(lipgloss.Left, titleLine, metaLine)))
}

type model struct {
	lib   Library
	input textinput.Model
	list  list.Model
	// language is the cursor into AvailableLanguages, -1 for none
	language int
	count    int
}

func newModel(lib Library) *model {
	ti := textinput.New()
	ti.Placeholder = "Search author, title or series"
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Width = defaultListWidth - 4
	ti.Focus()

	l := list.New(nil, bookDelegate{styles: newItemStyles()}, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	m := &model{lib: lib, input: ti, list: l, language: -1}
	m.refresh()
	return m
}

func (m *model) Init() tea.Cmd { return textinput.Blink }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.moveLanguage(1)
			return m, nil
		case "shift+tab":
			m.moveLanguage(-1)
			return m, nil
		case "ctrl+t":
			m.toggleLanguage()
			return m, nil
		case "ctrl+a":
			m.lib.ClearLanguages()
			m.refresh()
			return m, nil
		case "up", "down", "pgup", "pgdown", "home", "end":
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			m.lib.SetSearch(value)
			m.refresh()
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.list.SetSize(clamp(msg.Width-2, 30), clamp(msg.Height-7, 4))
		m.input.Width = clamp(msg.Width-6, 20)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// moveLanguage steps the cursor through none → first → ... → last → none
// without changing the selection.
func (m *model) moveLanguage(delta int) {
	n := len(m.lib.AvailableLanguages())
	if n == 0 {
		m.language = -1
		return
	}
	m.language = (m.language+1+delta+n+1)%(n+1) - 1
}

// toggleLanguage adds or removes the language under the cursor.
func (m *model) toggleLanguage() {
	langs := m.lib.AvailableLanguages()
	if m.language < 0 || m.language >= len(langs) {
		return
	}
	m.lib.ToggleLanguage(langs[m.language])
	m.refresh()
}

func (m *model) refresh() {
	books := m.lib.FilteredSorted()
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{Book: b}
	}
	m.list.SetItems(items)
	m.list.Select(0)
	m.count = len(books)
}

func (m *model) languageLabel() string {
	selected := m.lib.Inputs().Languages
	if len(selected) == 0 {
		return "All languages"
	}
	names := make([]string, len(selected))
	for i, code := range selected {
		names[i] = library.LanguageName(code)
	}
	return strings.Join(names, ", ")
}

func (m *model) cursorLabel() string {
	langs := m.lib.AvailableLanguages()
	if m.language < 0 || m.language >= len(langs) {
		return ""
	}
	code := langs[m.language]
	mark := "[ ]"
	for _, sel := range m.lib.Inputs().Languages {
		if sel == code {
			mark = "[x]"
			break
		}
	}
	return mark + " " + library.LanguageName(code)
}

func (m *model) View() string {
	noun := "books"
	if m.count == 1 {
		noun = "book"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		headerStyle.Render(fmt.Sprintf("%d %s", m.count, noun)),
		"  ",
		filterStyle.Render(m.languageLabel()),
	)
	if cursor := m.cursorLabel(); cursor != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Center, header, "  ", helpStyle.Render(cursor))
	}

	body := m.list.View()
	if m.count == 0 {
		body = emptyStyle.Render(m.emptyMessage())
	}

	help := helpStyle.Render("type to search | ↑/↓ move | tab/shift+tab pick language | ctrl+t toggle it | ctrl+a all languages | esc quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.input.View(), body, help)
}

func (m *model) emptyMessage() string {
	suggestions := m.lib.Suggestions(suggestionCount)
	if len(suggestions) == 0 {
		return "No books match."
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = suggestionStyle.Render(s)
	}
	return "No books match. Did you mean " + strings.Join(quoted, ", ") + "?"
}

// Browse runs the interactive browser until the user quits.
func Browse(lib Library) error {
	if _, err := runProgram(newModel(lib)); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

func clamp(available, minimum int) int {
	if available < minimum {
		return minimum
	}
	return available
}
