package browse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/report"
)

// Config holds the parameters needed to launch the browser.
type Config struct {
	Source   string
	Set      *beatmap.Set
	Registry *check.Registry
	// Issues are shown in the order given.
	Issues []issue.Issue
	// Style is the glamour style of the detail panel; empty picks one
	// from the terminal.
	Style string
}

// Model is the top-level Bubble Tea model of the browser.
type Model struct {
	cfg Config

	// visible indexes cfg.Issues that match the search query.
	visible []int
	cursor  int
	offset  int

	detail viewport.Model
	search searchBar

	width  int
	height int
	ready  bool
}

// New builds a browser model over the given issues.
func New(cfg Config) Model {
	m := Model{cfg: cfg, search: newSearchBar()}
	m.refilter()
	return m
}

// Run starts the browser in the alternate screen and blocks until the user
// quits.
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refreshDetail()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.search.active {
		cmd := m.search.Update(msg)
		m.refilter()
		m.refreshDetail()
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Down):
		m.move(1)
	case key.Matches(msg, keys.Up):
		m.move(-1)
	case key.Matches(msg, keys.Top):
		m.move(-len(m.visible))
	case key.Matches(msg, keys.Bottom):
		m.move(len(m.visible))
	case key.Matches(msg, keys.PgUp):
		m.detail.HalfViewUp()
		return m, nil
	case key.Matches(msg, keys.PgDown):
		m.detail.HalfViewDown()
		return m, nil
	case key.Matches(msg, keys.Search):
		return m, m.search.Open()
	case key.Matches(msg, keys.Clear):
		m.search.Close()
		m.refilter()
	default:
		return m, nil
	}
	m.refreshDetail()
	return m, nil
}

// Selected returns the issue under the cursor.
func (m Model) Selected() (issue.Issue, bool) {
	if len(m.visible) == 0 {
		return issue.Issue{}, false
	}
	return m.cfg.Issues[m.visible[m.cursor]], true
}

// Visible returns the number of issues matching the search query.
func (m Model) Visible() int {
	return len(m.visible)
}

func (m *Model) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.visible)-1)
	rows := m.listRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if rows > 0 && m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// refilter recomputes the visible issues for the current query, keeping the
// cursor on the same issue when it still matches.
func (m *Model) refilter() {
	prev := -1
	if len(m.visible) > 0 {
		prev = m.visible[m.cursor]
	}
	query := strings.ToLower(m.search.query)
	var visible []int
	for idx, i := range m.cfg.Issues {
		if query == "" || strings.Contains(strings.ToLower(searchText(i)), query) {
			visible = append(visible, idx)
		}
	}
	m.visible = visible
	m.cursor, m.offset = 0, 0
	if pos := slices.Index(m.visible, prev); pos >= 0 {
		m.cursor = pos
		m.move(0)
	}
}

func searchText(i issue.Issue) string {
	return i.Check + " " + i.Template + " " + i.Beatmap + " " + i.Message()
}

// --- Layout ---

func (m Model) listWidth() int {
	return max(m.width*2/5, 20)
}

// listRows is the number of issue rows that fit in the list panel.
func (m Model) listRows() int {
	return max(m.height-5, 1)
}

func (m *Model) resize() {
	w := max(m.width-m.listWidth()-4, 10)
	h := max(m.height-5, 1)
	if !m.ready {
		m.detail = viewport.New(w, h)
		m.ready = true
		return
	}
	m.detail.Width = w
	m.detail.Height = h
}

func (m *Model) refreshDetail() {
	if !m.ready {
		return
	}
	i, ok := m.Selected()
	if !ok {
		m.detail.SetContent(passStyle.Render("No issues match."))
		return
	}
	md := detailMarkdown(i, m.cfg.Registry)
	out, err := report.RenderMarkdown(md, m.cfg.Style, m.detail.Width)
	if err != nil {
		out = md
	}
	m.detail.SetContent(highlight(out, m.search.query))
	m.detail.GotoTop()
}

// detailMarkdown describes one issue followed by its check's documentation.
func detailMarkdown(i issue.Issue, reg *check.Registry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** %s\n\n", strings.ToUpper(i.Severity.String()), i.Message())
	if i.Beatmap != "" {
		fmt.Fprintf(&b, "- Beatmap: [%s]\n", i.Beatmap)
	}
	fmt.Fprintf(&b, "- Template: %s\n", i.Template)
	if len(i.Difficulties) > 0 {
		tiers := make([]string, len(i.Difficulties))
		for n, d := range i.Difficulties {
			tiers[n] = d.String()
		}
		fmt.Fprintf(&b, "- Applies to: %s\n", strings.Join(tiers, ", "))
	}
	if i.Cause != "" {
		fmt.Fprintf(&b, "\n%s\n", i.Cause)
	}
	if reg != nil {
		if c, ok := reg.Get(i.Check); ok {
			b.WriteString("\n---\n\n" + report.CheckMarkdown(c))
		}
	}
	return b.String()
}

// --- View ---

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	title := headerStyle.Render(m.cfg.Source) + keyDescStyle.Render(fmt.Sprintf("%d issues", len(m.cfg.Issues)))

	list := panelBorder.Width(m.listWidth()).Height(m.listRows()).Render(m.listView())
	detailTitle := panelTitle.Render("Details")
	detail := panelBorder.Height(m.listRows()).Render(m.detail.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, lipgloss.JoinVertical(lipgloss.Left, detailTitle, detail))

	footer := keyBarStyle.Render(keyBarText(m.search.active))
	if bar := m.search.View(len(m.visible)); bar != "" {
		footer = bar + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body, footer)
}

func (m Model) listView() string {
	if len(m.visible) == 0 {
		if len(m.cfg.Issues) == 0 {
			return passStyle.Render("No issues found.")
		}
		return keyDescStyle.Render("No issues match.")
	}
	width := m.listWidth() - 2
	end := min(m.offset+m.listRows(), len(m.visible))
	lines := make([]string, 0, end-m.offset)
	for pos := m.offset; pos < end; pos++ {
		i := m.cfg.Issues[m.visible[pos]]
		lines = append(lines, m.row(i, pos == m.cursor, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) row(i issue.Issue, current bool, width int) string {
	glyph := severityStyles[i.Severity].Render(glyphs[i.Severity])
	text := i.Message()
	if i.Beatmap != "" {
		text = "[" + i.Beatmap + "] " + text
	}
	text = runewidth.Truncate(text, max(width-4, 1), "…")

	style := rowNormal
	prefix := "  "
	if current {
		style, prefix = rowCurrent, "▸ "
	}
	line := style.Render(text)
	if m.search.query != "" && !current {
		line = highlight(text, m.search.query)
	} else if i.Beatmap != "" && !current {
		anchor := "[" + i.Beatmap + "]"
		if rest, ok := strings.CutPrefix(text, anchor); ok {
			line = anchorStyle.Render(anchor) + style.Render(rest)
		}
	}
	return prefix + glyph + " " + line
}
