package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// searchBar renders an inline search field below the issue list.
type searchBar struct {
	active bool
	input  textinput.Model
	query  string // committed search term
}

func newSearchBar() searchBar {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 256
	ti.Width = 40
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	return searchBar{input: ti}
}

// Open activates the search bar and focuses the text input.
func (s *searchBar) Open() tea.Cmd {
	s.active = true
	s.input.Reset()
	return s.input.Focus()
}

// Close deactivates the search bar and drops the query.
func (s *searchBar) Close() {
	s.active = false
	s.input.Blur()
	s.query = ""
}

// Update handles key events while the search bar is active. The query is
// updated live so the list filters as the user types.
func (s *searchBar) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.Close()
		return nil
	case "enter":
		s.active = false
		s.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	s.query = s.input.Value()
	return cmd
}

// View renders the search bar with the match count.
func (s *searchBar) View(matches int) string {
	if !s.active && s.query == "" {
		return ""
	}
	result := keyDescStyle.Render("/" + s.query)
	if s.active {
		result = s.input.View()
	}
	if s.query == "" {
		return result
	}
	if matches == 0 {
		return result + "  " + lipgloss.NewStyle().Foreground(colorRed).Render("no matches")
	}
	noun := "matches"
	if matches == 1 {
		noun = "match"
	}
	return result + "  " + lipgloss.NewStyle().Foreground(colorGreen).Render(fmt.Sprintf("%d %s", matches, noun))
}

// highlight returns content with case-insensitive matches of query styled.
func highlight(content, query string) string {
	if query == "" {
		return content
	}
	lower := strings.ToLower(content)
	lowerQuery := strings.ToLower(query)
	if !strings.Contains(lower, lowerQuery) {
		return content
	}

	var result strings.Builder
	remaining, remainingLower := content, lower
	for {
		idx := strings.Index(remainingLower, lowerQuery)
		if idx < 0 {
			result.WriteString(remaining)
			break
		}
		result.WriteString(remaining[:idx])
		result.WriteString(matchStyle.Render(remaining[idx : idx+len(query)]))
		remaining = remaining[idx+len(query):]
		remainingLower = remainingLower[idx+len(lowerQuery):]
	}
	return result.String()
}
