// Package check defines rules, their applicability metadata, the explicit
// registry they are collected in, and the dispatcher that runs them against
// a beatmapset.
package check

import (
	"fmt"
	"iter"
	"slices"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

// Scope tags whether a check evaluates one beatmap or a whole set.
type Scope uint8

const (
	ScopeBeatmap Scope = iota
	ScopeSet
)

func (s Scope) String() string {
	if s == ScopeSet {
		return "set"
	}
	return "beatmap"
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Documentation is the human-facing explanation of a check.
type Documentation struct {
	Purpose   string `json:"purpose,omitempty"   yaml:"purpose,omitempty"`
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// Metadata declares where a check applies. It is used for filtering and
// reporting only; evaluation never reads it.
type Metadata struct {
	Category string `json:"category" yaml:"category"`
	Message  string `json:"message"  yaml:"message"`
	Author   string `json:"author,omitempty" yaml:"author,omitempty"`

	// Modes the check runs for. Empty means every mode.
	Modes []beatmap.Mode `json:"modes,omitempty" yaml:"modes,omitempty"`
	// Difficulties the check's issues pertain to. Empty means every tier.
	Difficulties []beatmap.Difficulty `json:"difficulties,omitempty" yaml:"difficulties,omitempty"`

	Documentation Documentation `json:"documentation" yaml:"documentation"`
}

// AppliesToMode reports whether m is one of the declared modes.
func (m Metadata) AppliesToMode(mode beatmap.Mode) bool {
	return len(m.Modes) == 0 || slices.Contains(m.Modes, mode)
}

// AppliesToDifficulty reports whether d is one of the declared tiers.
func (m Metadata) AppliesToDifficulty(d beatmap.Difficulty) bool {
	return len(m.Difficulties) == 0 || slices.Contains(m.Difficulties, d)
}

// BeatmapFunc evaluates a single beatmap.
type BeatmapFunc func(*beatmap.Beatmap) iter.Seq[issue.Issue]

// SetFunc evaluates a whole beatmapset.
type SetFunc func(*beatmap.Set) iter.Seq[issue.Issue]

// Check is one rule. Exactly one of the evaluation funcs is set, selected
// by Scope.
type Check struct {
	ID        string
	Meta      Metadata
	Templates issue.Templates
	Scope     Scope

	beatmapFn BeatmapFunc
	setFn     SetFunc
}

// ForBeatmap builds a check evaluated once per beatmap.
func ForBeatmap(id string, meta Metadata, templates map[string]issue.Template, fn func(issue.Templates, *beatmap.Beatmap) iter.Seq[issue.Issue]) *Check {
	ts := issue.NewTemplates(id, templates)
	return &Check{
		ID:        id,
		Meta:      meta,
		Templates: ts,
		Scope:     ScopeBeatmap,
		beatmapFn: func(b *beatmap.Beatmap) iter.Seq[issue.Issue] { return fn(ts, b) },
	}
}

// ForSet builds a check evaluated once per beatmapset.
func ForSet(id string, meta Metadata, templates map[string]issue.Template, fn func(issue.Templates, *beatmap.Set) iter.Seq[issue.Issue]) *Check {
	ts := issue.NewTemplates(id, templates)
	return &Check{
		ID:        id,
		Meta:      meta,
		Templates: ts,
		Scope:     ScopeSet,
		setFn:     func(s *beatmap.Set) iter.Seq[issue.Issue] { return fn(ts, s) },
	}
}

// EvalBeatmap runs a beatmap-scoped check directly, without dispatch
// filtering or panic recovery.
func (c *Check) EvalBeatmap(b *beatmap.Beatmap) iter.Seq[issue.Issue] {
	if c.Scope != ScopeBeatmap {
		panic(fmt.Sprintf("check %s is %s-scoped", c.ID, c.Scope))
	}
	return c.beatmapFn(b)
}

// EvalSet runs a set-scoped check directly, without dispatch filtering or
// panic recovery.
func (c *Check) EvalSet(s *beatmap.Set) iter.Seq[issue.Issue] {
	if c.Scope != ScopeSet {
		panic(fmt.Sprintf("check %s is %s-scoped", c.ID, c.Scope))
	}
	return c.setFn(s)
}

// Applies reports whether an issue of a check with meta should be shown for
// a beatmap of tier d: the check's tier set intersected with the issue's own
// restriction.
func Applies(meta Metadata, i issue.Issue, d beatmap.Difficulty) bool {
	return meta.AppliesToDifficulty(d) && i.AppliesTo(d)
}
