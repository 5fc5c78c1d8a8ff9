package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/razonbilstro/nucleo/internal/journal"
	"github.com/razonbilstro/nucleo/internal/tui/theme"
)

const pageSize = 20

// BrowserKeyMap defines keybindings for the record browser.
type BrowserKeyMap struct {
	Search        key.Binding
	ClearSearch   key.Binding
	NextPage      key.Binding
	PrevPage      key.Binding
	Select        key.Binding
	Back          key.Binding
	Quit          key.Binding
	Up            key.Binding
	Down          key.Binding
	FilterOutcome key.Binding
	FilterClass   key.Binding
}

// DefaultBrowserKeyMap returns the default keybindings.
func DefaultBrowserKeyMap() BrowserKeyMap {
	return BrowserKeyMap{
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		ClearSearch: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear/back"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←", "prev page"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "view"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		FilterOutcome: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "outcome filter"),
		),
		FilterClass: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "class filter"),
		),
	}
}

type viewState int

const (
	viewList viewState = iota
	viewDetail
	viewSearch
)

// Model is the bubbletea model for the record browser.
type Model struct {
	records  []journal.Record
	filtered []journal.Record
	filters  Filters
	keys     BrowserKeyMap
	search   textinput.Model

	state    viewState
	cursor   int
	page     int
	width    int
	height   int
	selected *journal.Record
}

// NewModel creates a browser over the given records (newest first).
func NewModel(records []journal.Record) Model {
	search := textinput.New()
	search.Placeholder = "command substring"
	search.CharLimit = 120

	m := Model{
		records: records,
		keys:    DefaultBrowserKeyMap(),
		search:  search,
		filters: NewFilters(),
	}
	m.refilter()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch m.state {
		case viewSearch:
			return m.updateSearch(msg)
		case viewDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.pageRecords())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextPage):
		if (m.page+1)*pageSize < len(m.filtered) {
			m.page++
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.page > 0 {
			m.page--
			m.cursor = 0
		}
	case key.Matches(msg, m.keys.FilterOutcome):
		m.filters.CycleOutcome()
		m.refilter()
	case key.Matches(msg, m.keys.FilterClass):
		m.filters.CycleClass()
		m.refilter()
	case key.Matches(msg, m.keys.Search):
		m.state = viewSearch
		m.search.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.ClearSearch):
		m.filters.Clear()
		m.search.SetValue("")
		m.refilter()
	case key.Matches(msg, m.keys.Select):
		page := m.pageRecords()
		if m.cursor < len(page) {
			rec := page[m.cursor]
			m.selected = &rec
			m.state = viewDetail
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filters.Search = m.search.Value()
		m.search.Blur()
		m.state = viewList
		m.refilter()
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.state = viewList
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Quit):
		m.selected = nil
		m.state = viewList
	}
	return m, nil
}

func (m *Model) refilter() {
	m.filtered = m.filters.Apply(m.records)
	m.page = 0
	m.cursor = 0
}

func (m Model) pageRecords() []journal.Record {
	start := m.page * pageSize
	if start >= len(m.filtered) {
		return nil
	}
	end := start + pageSize
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	return m.filtered[start:end]
}

// View implements tea.Model.
func (m Model) View() string {
	t := theme.Current
	titleStyle := lipgloss.NewStyle().Foreground(t.Cyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.Subtext)
	cursorStyle := lipgloss.NewStyle().Foreground(t.Green).Bold(true)

	if m.state == viewDetail && m.selected != nil {
		return m.detailView(titleStyle, dimStyle)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("nucleo execution history"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d records · %s · page %d/%d",
		len(m.filtered), m.filters.Describe(), m.page+1, m.totalPages())))
	b.WriteString("\n\n")

	if m.state == viewSearch {
		b.WriteString("search: " + m.search.View() + "\n\n")
	}

	page := m.pageRecords()
	if len(page) == 0 {
		b.WriteString(dimStyle.Render("no records"))
		b.WriteString("\n")
	}
	for i, rec := range page {
		prefix := "  "
		if i == m.cursor && m.state == viewList {
			prefix = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("%s%-19s %-9s %-9s exit=%-3d %s",
			prefix,
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Outcome,
			rec.Class,
			rec.ExitCode,
			truncate(rec.Command, 60))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ move · ←/→ page · enter view · o outcome · c class · / search · esc clear · q quit"))
	return b.String()
}

func (m Model) detailView(titleStyle, dimStyle lipgloss.Style) string {
	rec := m.selected
	var b strings.Builder
	b.WriteString(titleStyle.Render("execution record"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("dispatch:  %s\n", rec.DispatchID))
	b.WriteString(fmt.Sprintf("time:      %s\n", rec.Timestamp.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("command:   %s\n", rec.Command))
	b.WriteString(fmt.Sprintf("class:     %s\n", rec.Class))
	b.WriteString(fmt.Sprintf("outcome:   %s\n", rec.Outcome))
	b.WriteString(fmt.Sprintf("exit code: %d\n", rec.ExitCode))
	b.WriteString(fmt.Sprintf("duration:  %dms\n", rec.DurationMs))
	if rec.Output != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("--- captured output ---"))
		b.WriteString("\n")
		b.WriteString(rec.Output)
		if !strings.HasSuffix(rec.Output, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("esc back"))
	return b.String()
}

func (m Model) totalPages() int {
	if len(m.filtered) == 0 {
		return 1
	}
	return (len(m.filtered) + pageSize - 1) / pageSize
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// Run launches the browser over the given records.
func Run(records []journal.Record) error {
	p := tea.NewProgram(NewModel(records), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
