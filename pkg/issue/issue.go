// Package issue defines the diagnostic values checks emit: severities,
// message templates with typed placeholders, and the Issue record itself.
//
// Issues are plain values. Builder methods return modified copies, so an
// Issue handed to a consumer never changes underneath it.
package issue

import (
	"slices"
	"strings"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
)

// Issue is one finding of a check.
type Issue struct {
	Check    string   `json:"check"               yaml:"check"               msgpack:"check"`
	Template string   `json:"template"            yaml:"template"            msgpack:"template"`
	Severity Severity `json:"severity"            yaml:"severity"            msgpack:"severity"`
	Cause    string   `json:"cause,omitempty"     yaml:"cause,omitempty"     msgpack:"cause,omitempty"`
	Args     []Arg    `json:"args,omitempty"      yaml:"args,omitempty"      msgpack:"args,omitempty"`

	// Beatmap is the version name of the map the issue is anchored at.
	// Empty for set-level findings such as file checks.
	Beatmap string `json:"beatmap,omitempty" yaml:"beatmap,omitempty" msgpack:"beatmap,omitempty"`

	// Timestamp is the first timestamp argument, if any.
	Timestamp *Timestamp `json:"timestamp,omitempty" yaml:"timestamp,omitempty" msgpack:"timestamp,omitempty"`
	// End is the time of the last object the issue is anchored at, when
	// it spans several.
	End *Timestamp `json:"end,omitempty" yaml:"end,omitempty" msgpack:"end,omitempty"`

	// Difficulties restricts the tiers the issue pertains to. Empty means
	// the issue applies wherever its check applies.
	Difficulties []beatmap.Difficulty `json:"difficulties,omitempty" yaml:"difficulties,omitempty" msgpack:"difficulties,omitempty"`

	format string
}

// Message renders the template format with the issue's arguments.
func (i Issue) Message() string {
	return Template{Format: i.format}.Render(i.Args)
}

// String renders the issue on one line, prefixed with its anchor map.
func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(i.Severity.String())
	b.WriteString(": ")
	if i.Beatmap != "" {
		b.WriteString("[" + i.Beatmap + "] ")
	}
	b.WriteString(i.Message())
	return b.String()
}

// For returns a copy of the issue anchored at bm.
func (i Issue) For(bm *beatmap.Beatmap) Issue {
	if bm == nil {
		i.Beatmap = ""
		return i
	}
	i.Beatmap = bm.Version()
	return i
}

// ForDifficulties returns a copy of the issue restricted to the given tiers.
func (i Issue) ForDifficulties(ds ...beatmap.Difficulty) Issue {
	i.Difficulties = slices.Clone(ds)
	return i
}

// AppliesTo reports whether the issue pertains to tier d.
func (i Issue) AppliesTo(d beatmap.Difficulty) bool {
	return len(i.Difficulties) == 0 || slices.Contains(i.Difficulties, d)
}

// Equal reports whether two issues carry the same finding.
func (i Issue) Equal(o Issue) bool {
	if i.Check != o.Check || i.Template != o.Template || i.Severity != o.Severity ||
		i.Beatmap != o.Beatmap || i.format != o.format {
		return false
	}
	if (i.Timestamp == nil) != (o.Timestamp == nil) ||
		(i.Timestamp != nil && *i.Timestamp != *o.Timestamp) {
		return false
	}
	if (i.End == nil) != (o.End == nil) || (i.End != nil && *i.End != *o.End) {
		return false
	}
	return slices.Equal(i.Args, o.Args) && slices.Equal(i.Difficulties, o.Difficulties)
}

// Failure builds the Error-severity issue reported when a check body fails
// unexpectedly. It is not backed by any registered template.
func Failure(check, beatmapVersion, detail string) Issue {
	return Issue{
		Check:    check,
		Template: "Failure",
		Severity: Error,
		Cause:    "The check could not complete for this input.",
		Args:     []Arg{{Kind: KindText, Name: "detail", Text: detail}},
		Beatmap:  beatmapVersion,
		format:   "Check failed: {0}",
	}
}
