// Package report selects which issues of a run are shown and renders them
// as a styled text listing or as JSON, YAML or MessagePack documents.
package report

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

// Filter is a compiled --where expression. Expressions see one issue at a
// time through these variables:
//
//	check, category, template, message, beatmap  string
//	severity                                     string, e.g. "problem"
//	level                                        int, compare with Minor..Error
//	timestamp                                    float ms, -1 when untimed
//	timed                                        bool
//	difficulties                                 []string, empty when unrestricted
//
// For example: level >= Problem && check startsWith "timing/".
type Filter struct {
	source  string
	program *vm.Program
}

// NewFilter compiles a --where expression. An empty expression matches
// every issue.
func NewFilter(where string) (*Filter, error) {
	where = strings.TrimSpace(where)
	if where == "" {
		return nil, nil
	}
	program, err := expr.Compile(where, expr.Env(filterEnv(issue.Issue{}, check.Metadata{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile where %q: %w", where, err)
	}
	return &Filter{source: where, program: program}, nil
}

// String returns the expression source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the expression for one issue of a check with meta.
func (f *Filter) Match(i issue.Issue, meta check.Metadata) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, filterEnv(i, meta))
	if err != nil {
		return false, fmt.Errorf("eval where %q: %w", f.source, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("where %q did not return bool (got %T)", f.source, out)
	}
	return ok, nil
}

func filterEnv(i issue.Issue, meta check.Metadata) map[string]any {
	stamp := -1.0
	if i.Timestamp != nil {
		stamp = i.Timestamp.Millis()
	}
	diffs := make([]string, len(i.Difficulties))
	for k, d := range i.Difficulties {
		diffs[k] = d.String()
	}
	return map[string]any{
		"check":        i.Check,
		"category":     meta.Category,
		"template":     i.Template,
		"message":      i.Message(),
		"beatmap":      i.Beatmap,
		"severity":     i.Severity.String(),
		"level":        int(i.Severity),
		"timestamp":    stamp,
		"timed":        i.Timestamp != nil,
		"difficulties": diffs,

		"Minor":      int(issue.Minor),
		"Warning":    int(issue.Warning),
		"Problem":    int(issue.Problem),
		"Unrankable": int(issue.Unrankable),
		"Error":      int(issue.Error),
	}
}

// Selection decides which issues of a run are reported.
//
// Issues anchored at a beatmap are shown when they apply to that beatmap's
// tier; setting Difficulty evaluates every issue against that tier instead.
// Unanchored issues are shown unless Difficulty excludes them. Error issues
// report a check that could not do its job and skip the tier test.
type Selection struct {
	MinSeverity *issue.Severity
	Difficulty  *beatmap.Difficulty
	Where       *Filter
}

// Apply removes the issues the selection does not report from bag.
func (sel Selection) Apply(bag *issue.Bag, reg *check.Registry, s *beatmap.Set) error {
	var firstErr error
	bag.Filter(func(i issue.Issue) bool {
		if firstErr != nil {
			return false
		}
		keep, err := sel.Keep(i, metaOf(reg, i.Check), s)
		if err != nil {
			firstErr = err
		}
		return keep
	})
	return firstErr
}

// Keep reports whether a single issue is selected.
func (sel Selection) Keep(i issue.Issue, meta check.Metadata, s *beatmap.Set) (bool, error) {
	if sel.MinSeverity != nil && i.Severity < *sel.MinSeverity {
		return false, nil
	}
	switch {
	case i.Severity >= issue.Error:
	case sel.Difficulty != nil:
		if !check.Applies(meta, i, *sel.Difficulty) {
			return false, nil
		}
	case i.Beatmap != "" && s != nil:
		if b, ok := s.Beatmap(i.Beatmap); ok && !check.Applies(meta, i, b.Tier()) {
			return false, nil
		}
	}
	return sel.Where.Match(i, meta)
}

func metaOf(reg *check.Registry, id string) check.Metadata {
	if reg == nil {
		return check.Metadata{}
	}
	if c, ok := reg.Get(id); ok {
		return c.Meta
	}
	return check.Metadata{}
}
