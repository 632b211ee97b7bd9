package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

var (
	colorGreen   = lipgloss.Color("42")
	colorRed     = lipgloss.Color("196")
	colorYellow  = lipgloss.Color("214")
	colorCyan    = lipgloss.Color("51")
	colorDim     = lipgloss.Color("240")
	colorMagenta = lipgloss.Color("201")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	severityStyles = map[issue.Severity]lipgloss.Style{
		issue.Minor:      lipgloss.NewStyle().Faint(true),
		issue.Warning:    lipgloss.NewStyle().Foreground(colorYellow),
		issue.Problem:    lipgloss.NewStyle().Foreground(colorRed),
		issue.Unrankable: lipgloss.NewStyle().Foreground(colorMagenta).Bold(true),
		issue.Error:      lipgloss.NewStyle().Foreground(colorRed).Bold(true).Reverse(true),
	}
)

// severityWidth is the width of the widest severity name.
const severityWidth = len("unrankable")

// TextOptions tune the text listing.
type TextOptions struct {
	// Width truncates messages to fit this many columns. Zero disables it.
	Width int
}

// WriteText renders the selected issues of one set, grouped by the beatmap
// they are anchored at, followed by a summary line.
func WriteText(w io.Writer, source string, s *beatmap.Set, issues []issue.Issue, opts TextOptions) error {
	var b strings.Builder
	b.WriteString(headerStyle.Render(source) + "\n")

	groups := groupByBeatmap(s, issues)
	for _, g := range groups {
		b.WriteString("\n" + headerStyle.Render(g.title) + "\n")
		for _, i := range g.issues {
			b.WriteString(formatLine(i, opts.Width) + "\n")
		}
	}

	b.WriteString("\n" + summary(issues) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

type group struct {
	title  string
	issues []issue.Issue
}

// groupByBeatmap puts set-level issues first, then each beatmap in set
// order. Anchors naming no beatmap of the set get their own group.
func groupByBeatmap(s *beatmap.Set, issues []issue.Issue) []group {
	byAnchor := make(map[string][]issue.Issue)
	var order []string
	for _, i := range issues {
		if _, ok := byAnchor[i.Beatmap]; !ok {
			order = append(order, i.Beatmap)
		}
		byAnchor[i.Beatmap] = append(byAnchor[i.Beatmap], i)
	}

	var groups []group
	add := func(anchor string) {
		items, ok := byAnchor[anchor]
		if !ok {
			return
		}
		delete(byAnchor, anchor)
		title := "General"
		if anchor != "" {
			title = "[" + anchor + "]"
		}
		groups = append(groups, group{title: title, issues: items})
	}
	add("")
	if s != nil {
		for _, bm := range s.Beatmaps {
			add(bm.Version())
		}
	}
	for _, anchor := range order {
		add(anchor)
	}
	return groups
}

func formatLine(i issue.Issue, width int) string {
	sev := runewidth.FillRight(i.Severity.String(), severityWidth)
	msg := i.Message()
	if width > 0 {
		room := width - severityWidth - 4
		if room > 10 && runewidth.StringWidth(msg) > room {
			msg = runewidth.Truncate(msg, room, "...")
		}
	}
	return "  " + severityStyles[i.Severity].Render(sev) + "  " + msg
}

func summary(issues []issue.Issue) string {
	if len(issues) == 0 {
		return passStyle.Render("No issues found.")
	}
	counts := make(map[issue.Severity]int)
	for _, i := range issues {
		counts[i.Severity]++
	}
	var parts []string
	for sev := issue.Error; ; sev-- {
		if n := counts[sev]; n > 0 {
			parts = append(parts, severityStyles[sev].Render(plural(n, sev.String())))
		}
		if sev == issue.Minor {
			break
		}
	}
	return dimStyle.Render("Summary: ") + strings.Join(parts, dimStyle.Render(", "))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// WriteCheckList renders one line per check: ID, scope, category, modes and
// tiers, then the check message.
func WriteCheckList(w io.Writer, checks []*check.Check) error {
	idWidth := 0
	for _, c := range checks {
		idWidth = max(idWidth, runewidth.StringWidth(c.ID))
	}
	var b strings.Builder
	for _, c := range checks {
		b.WriteString(headerStyle.Render(runewidth.FillRight(c.ID, idWidth)))
		b.WriteString("  " + runewidth.FillRight(c.Scope.String(), len("beatmap")))
		b.WriteString("  " + c.Meta.Message)
		if tags := applicability(c.Meta); tags != "" {
			b.WriteString(" " + dimStyle.Render(tags))
		}
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func applicability(m check.Metadata) string {
	var parts []string
	if len(m.Modes) > 0 {
		modes := make([]string, len(m.Modes))
		for i, mode := range m.Modes {
			modes[i] = string(mode)
		}
		parts = append(parts, strings.Join(modes, ","))
	}
	if len(m.Difficulties) > 0 {
		tiers := make([]string, len(m.Difficulties))
		for i, d := range m.Difficulties {
			tiers[i] = d.String()
		}
		slices.Sort(tiers)
		parts = append(parts, strings.Join(tiers, ","))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, "; ") + ")"
}
