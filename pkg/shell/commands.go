package shell

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/report"
)

// handleList prints the selected issues grouped by beatmap.
func (sh *Shell) handleList() {
	issues, err := sh.selected()
	if err != nil {
		fmt.Fprintf(sh.output, "Error: %v\n", err)
		return
	}
	if err := report.WriteText(sh.output, sh.source, sh.set, issues, report.TextOptions{Width: sh.Width}); err != nil {
		fmt.Fprintf(sh.output, "Error: %v\n", err)
	}
}

// handleWhere sets, shows or clears the filter expression.
func (sh *Shell) handleWhere(expr string) {
	switch expr {
	case "":
		if sh.sel.Where == nil {
			fmt.Fprintln(sh.output, "  No filter set.")
		} else {
			fmt.Fprintf(sh.output, "  where %s\n", sh.sel.Where)
		}
		return
	case "off":
		sh.sel.Where = nil
		fmt.Fprintln(sh.output, "  Filter cleared.")
		return
	}
	f, err := report.NewFilter(expr)
	if err != nil {
		fmt.Fprintf(sh.output, "Error: %v\n", err)
		return
	}
	prev := sh.sel.Where
	sh.sel.Where = f
	issues, err := sh.selected()
	if err != nil {
		sh.sel.Where = prev
		fmt.Fprintf(sh.output, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(sh.output, "  %d of %d issues match.\n", len(issues), len(sh.issues))
}

// handleMin sets or clears the lowest reported severity.
func (sh *Shell) handleMin(arg string) {
	switch arg {
	case "":
		if sh.sel.MinSeverity == nil {
			fmt.Fprintln(sh.output, "  No minimum severity set.")
		} else {
			fmt.Fprintf(sh.output, "  min %s\n", sh.sel.MinSeverity)
		}
		return
	case "off":
		sh.sel.MinSeverity = nil
		fmt.Fprintln(sh.output, "  Minimum severity cleared.")
		return
	}
	sev, err := issue.ParseSeverity(arg)
	if err != nil {
		fmt.Fprintf(sh.output, "Error: %v\n", err)
		return
	}
	sh.sel.MinSeverity = &sev
	fmt.Fprintf(sh.output, "  Showing %s and above.\n", sev)
}

// handleDifficulty sets or clears the tier every issue is evaluated against.
func (sh *Shell) handleDifficulty(arg string) {
	switch arg {
	case "":
		if sh.sel.Difficulty == nil {
			fmt.Fprintln(sh.output, "  Issues follow the tier of their beatmap.")
		} else {
			fmt.Fprintf(sh.output, "  difficulty %s\n", sh.sel.Difficulty)
		}
		return
	case "off":
		sh.sel.Difficulty = nil
		fmt.Fprintln(sh.output, "  Difficulty override cleared.")
		return
	}
	d, err := beatmap.ParseDifficulty(arg)
	if err != nil {
		fmt.Fprintf(sh.output, "Error: %v\n", err)
		return
	}
	sh.sel.Difficulty = &d
	fmt.Fprintf(sh.output, "  Evaluating every issue as %s.\n", d)
}

// handleSummary prints selected issue counts per check, worst first.
func (sh *Shell) handleSummary() {
	issues, err := sh.selected()
	if err != nil {
		fmt.Fprintf(sh.output, "Error: %v\n", err)
		return
	}
	if len(issues) == 0 {
		fmt.Fprintln(sh.output, "  No issues selected.")
		return
	}
	type row struct {
		worst issue.Severity
		count int
	}
	byCheck := map[string]row{}
	for _, i := range issues {
		r := byCheck[i.Check]
		r.count++
		r.worst = max(r.worst, i.Severity)
		byCheck[i.Check] = r
	}
	ids := slices.SortedFunc(maps.Keys(byCheck), func(a, b string) int {
		return cmp.Or(cmp.Compare(byCheck[b].worst, byCheck[a].worst), strings.Compare(a, b))
	})
	for _, id := range ids {
		r := byCheck[id]
		fmt.Fprintf(sh.output, "  %-11s %3d  %s\n", r.worst, r.count, id)
	}
}

// handleExplain renders the documentation of one check.
func (sh *Shell) handleExplain(id string) {
	if id == "" {
		fmt.Fprintln(sh.output, "Usage: explain <check-id>")
		return
	}
	c, ok := sh.reg.Get(id)
	if !ok {
		fmt.Fprintf(sh.output, "Unknown check %q. Type 'checks' to list them.\n", id)
		return
	}
	md := report.CheckMarkdown(c)
	out, err := report.RenderMarkdown(md, sh.Style, 80)
	if err != nil {
		out = md
	}
	fmt.Fprint(sh.output, out)
}

// handleHelp displays available commands.
func (sh *Shell) handleHelp() {
	fmt.Fprintln(sh.output, "Available commands:")
	fmt.Fprintln(sh.output, "  list (l)           Show the selected issues")
	fmt.Fprintln(sh.output, "  where <expr>       Filter issues, e.g. where severity >= Problem")
	fmt.Fprintln(sh.output, "  where off          Clear the filter")
	fmt.Fprintln(sh.output, "  min <severity>     Hide issues below a severity, or 'off'")
	fmt.Fprintln(sh.output, "  difficulty <tier>  Evaluate every issue as this tier, or 'off'")
	fmt.Fprintln(sh.output, "  reset              Clear the whole selection")
	fmt.Fprintln(sh.output, "  summary (s)        Count selected issues per check")
	fmt.Fprintln(sh.output, "  checks             List registered checks")
	fmt.Fprintln(sh.output, "  explain <id> (x)   Show the documentation of a check")
	fmt.Fprintln(sh.output, "  help (?)           Show this help")
	fmt.Fprintln(sh.output, "  quit (q)           Exit shell")
}
