// Package shell implements the interactive prompt for narrowing down the
// issues of a checked beatmapset.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/report"
)

// Shell holds one checked set and the selection currently applied to it.
type Shell struct {
	source string
	set    *beatmap.Set
	reg    *check.Registry
	issues []issue.Issue
	sel    report.Selection

	output io.Writer
	rl     *readline.Instance

	// Width truncates listed messages. Zero disables truncation.
	Width int
	// Style is the glamour style used by explain; empty picks one from
	// the terminal.
	Style string
}

// New creates a shell over the issues of one run. The issues are kept
// unfiltered; sel is only the starting selection.
func New(source string, s *beatmap.Set, reg *check.Registry, issues []issue.Issue, sel report.Selection) *Shell {
	bag := issue.NewBag(slices.Values(issues))
	bag.Sort()
	return &Shell{
		source: source,
		set:    s,
		reg:    reg,
		issues: bag.Items(),
		sel:    sel,
		output: os.Stdout,
	}
}

// SetOutput redirects command output.
func (sh *Shell) SetOutput(w io.Writer) {
	sh.output = w
}

// Run starts the interactive loop. It returns on quit, EOF or interrupt.
func (sh *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          sh.buildPrompt(),
		AutoComplete:    sh.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	sh.rl = rl
	defer rl.Close()

	fmt.Fprintf(sh.output, "mapcheck shell: %s, %d beatmaps, %d issues\n", sh.source, len(sh.set.Beatmaps), len(sh.issues))
	fmt.Fprintf(sh.output, "Type 'help' for available commands, 'list' to show the selected issues.\n\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rl.SetPrompt(sh.buildPrompt())
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if sh.Exec(line) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (sh *Shell) Exec(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "list", "ls", "l":
		sh.handleList()
	case "where", "w":
		sh.handleWhere(rest)
	case "min":
		sh.handleMin(rest)
	case "difficulty", "d":
		sh.handleDifficulty(rest)
	case "reset":
		sh.sel = report.Selection{}
		fmt.Fprintln(sh.output, "  Selection cleared.")
	case "summary", "s":
		sh.handleSummary()
	case "checks":
		if err := report.WriteCheckList(sh.output, sh.reg.All()); err != nil {
			fmt.Fprintf(sh.output, "Error: %v\n", err)
		}
	case "explain", "x":
		sh.handleExplain(rest)
	case "help", "?":
		sh.handleHelp()
	case "quit", "q", "exit":
		fmt.Fprintln(sh.output, "Exiting shell.")
		return true
	default:
		fmt.Fprintf(sh.output, "Unknown command: %q. Type 'help' for available commands.\n", cmd)
	}
	return false
}

// selected applies the current selection to every issue of the run.
func (sh *Shell) selected() ([]issue.Issue, error) {
	bag := issue.NewBag(slices.Values(sh.issues))
	if err := sh.sel.Apply(bag, sh.reg, sh.set); err != nil {
		return nil, err
	}
	return bag.Items(), nil
}

// buildPrompt creates the prompt string: mapcheck[selected/total]>
func (sh *Shell) buildPrompt() string {
	n, err := sh.selected()
	if err != nil {
		return fmt.Sprintf("mapcheck[?/%d]> ", len(sh.issues))
	}
	return fmt.Sprintf("mapcheck[%d/%d]> ", len(n), len(sh.issues))
}

func (sh *Shell) completer() *readline.PrefixCompleter {
	var ids []readline.PrefixCompleterInterface
	for _, c := range sh.reg.All() {
		ids = append(ids, readline.PcItem(c.ID))
	}
	var sevs []readline.PrefixCompleterInterface
	for sev := issue.Minor; sev <= issue.Error; sev++ {
		sevs = append(sevs, readline.PcItem(sev.String()))
	}
	sevs = append(sevs, readline.PcItem("off"))
	var tiers []readline.PrefixCompleterInterface
	for _, d := range beatmap.Difficulties {
		tiers = append(tiers, readline.PcItem(d.String()))
	}
	tiers = append(tiers, readline.PcItem("off"))

	return readline.NewPrefixCompleter(
		readline.PcItem("list"),
		readline.PcItem("where", readline.PcItem("off")),
		readline.PcItem("min", sevs...),
		readline.PcItem("difficulty", tiers...),
		readline.PcItem("reset"),
		readline.PcItem("summary"),
		readline.PcItem("checks"),
		readline.PcItem("explain", ids...),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}
