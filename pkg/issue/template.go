package issue

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the type of a template placeholder.
type Kind uint8

const (
	KindText Kind = iota
	KindNumber
	KindTimestamp
	KindBeatmap
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindTimestamp:
		return "timestamp"
	case KindBeatmap:
		return "beatmap"
	}
	return "unknown"
}

// Param declares one positional placeholder of a template.
type Param struct {
	Name string
	Kind Kind
}

// TextParam, NumberParam, TimestampParam and BeatmapParam declare
// placeholders of the matching kind.
func TextParam(name string) Param   { return Param{Name: name, Kind: KindText} }
func NumberParam(name string) Param { return Param{Name: name, Kind: KindNumber} }
func TimestampParam() Param         { return Param{Name: "timestamp", Kind: KindTimestamp} }
func BeatmapParam(name string) Param {
	return Param{Name: name, Kind: KindBeatmap}
}

// Arg is a typed value supplied for a placeholder.
type Arg struct {
	Kind   Kind      `json:"kind"`
	Name   string    `json:"name,omitempty"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Time   Timestamp `json:"time,omitempty"`
	// End is the time of the last object a Span covers.
	End    Timestamp `json:"end,omitempty"`
	IsSpan bool      `json:"span,omitempty"`
}

// Text, Number, Time and Beatmap build arguments of the matching kind.
// Beatmap takes the version name of the referenced difficulty.
func Text(s string) Arg          { return Arg{Kind: KindText, Text: s} }
func Number(f float64) Arg       { return Arg{Kind: KindNumber, Number: f} }
func Time(ms float64) Arg        { return Arg{Kind: KindTimestamp, Time: Timestamp(ms)} }
func Beatmap(version string) Arg { return Arg{Kind: KindBeatmap, Text: version} }

// Span is a timestamp argument anchored at two objects, rendered as the
// time of the first.
func Span(from, to float64) Arg {
	return Arg{Kind: KindTimestamp, Time: Timestamp(from), End: Timestamp(to), IsSpan: true}
}

// String renders the argument the way it appears in a message.
func (a Arg) String() string {
	switch a.Kind {
	case KindNumber:
		return formatNumber(a.Number)
	case KindTimestamp:
		return a.Time.String()
	case KindBeatmap:
		return "[" + a.Text + "]"
	}
	return a.Text
}

// formatNumber renders at most two decimals, dropping trailing zeros.
func formatNumber(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

// Template is a registered message shape: its severity, a format string with
// positional {i} placeholders, the declared placeholder kinds and the cause
// that explains when the check emits it.
type Template struct {
	Severity Severity
	Format   string
	Params   []Param
	Cause    string
}

// NewTemplate declares a template. Use WithCause to attach the cause.
func NewTemplate(sev Severity, format string, params ...Param) Template {
	return Template{Severity: sev, Format: format, Params: params}
}

// WithCause returns a copy of t with the given cause text.
func (t Template) WithCause(cause string) Template {
	t.Cause = cause
	return t
}

// Render substitutes args into the template format.
func (t Template) Render(args []Arg) string {
	if len(args) == 0 {
		return t.Format
	}
	pairs := make([]string, 0, 2*len(args))
	for i, a := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", a.String())
	}
	return strings.NewReplacer(pairs...).Replace(t.Format)
}

// TemplateError reports a check instantiating a template with the wrong
// name or arguments. It signals a bug in the check, so it is raised with
// panic and must not be recovered into an issue.
type TemplateError struct {
	Check    string
	Template string
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("check %s: template %q: %s", e.Check, e.Template, e.Reason)
}

// Templates is the named template set of one check.
type Templates struct {
	check  string
	byName map[string]Template
}

// NewTemplates binds a set of templates to the check that owns them.
func NewTemplates(check string, byName map[string]Template) Templates {
	return Templates{check: check, byName: byName}
}

// Check returns the ID of the owning check.
func (ts Templates) Check() string { return ts.check }

// Get returns the named template.
func (ts Templates) Get(name string) (Template, bool) {
	t, ok := ts.byName[name]
	return t, ok
}

// Names returns the template names in sorted order.
func (ts Templates) Names() []string {
	names := make([]string, 0, len(ts.byName))
	for n := range ts.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New instantiates the named template. The arguments must match the
// declared placeholders in count and kind; anything else panics with a
// *TemplateError.
func (ts Templates) New(name string, args ...Arg) Issue {
	t, ok := ts.byName[name]
	if !ok {
		panic(&TemplateError{Check: ts.check, Template: name, Reason: "no such template"})
	}
	if len(args) != len(t.Params) {
		panic(&TemplateError{Check: ts.check, Template: name,
			Reason: fmt.Sprintf("got %d arguments, want %d", len(args), len(t.Params))})
	}
	bound := make([]Arg, len(args))
	var stamp, end *Timestamp
	for i, a := range args {
		p := t.Params[i]
		if a.Kind != p.Kind {
			panic(&TemplateError{Check: ts.check, Template: name,
				Reason: fmt.Sprintf("argument %d (%s) is %s, want %s", i, p.Name, a.Kind, p.Kind)})
		}
		a.Name = p.Name
		bound[i] = a
		if a.Kind == KindTimestamp && stamp == nil {
			ts := a.Time
			stamp = &ts
			if a.IsSpan {
				te := a.End
				end = &te
			}
		}
	}
	return Issue{
		Check:     ts.check,
		Template:  name,
		Severity:  t.Severity,
		Cause:     t.Cause,
		format:    t.Format,
		Args:      bound,
		Timestamp: stamp,
		End:       end,
	}
}
