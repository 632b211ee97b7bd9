package beatmap

import "math"

// LineKind tags the variant of a TimingLine.
type LineKind string

const (
	Uninherited LineKind = "uninherited"
	Inherited   LineKind = "inherited"
)

// Sampleset is the hit sound bank in effect.
type Sampleset string

const (
	SamplesetAuto   Sampleset = "auto"
	SamplesetNormal Sampleset = "normal"
	SamplesetSoft   Sampleset = "soft"
	SamplesetDrum   Sampleset = "drum"
)

// offsetPrecision is the number of grid steps per millisecond that
// timing-line offsets are normalized to on load.
const offsetPrecision = 1000

// NormalizeOffset rounds an offset to the grid used for exact comparisons,
// removing sub-millisecond floating drift introduced by upstream arithmetic.
func NormalizeOffset(offset float64) float64 {
	return math.Round(offset*offsetPrecision) / offsetPrecision
}

// TimingLine marks a change of tempo (uninherited) or of secondary
// properties (inherited). Meter, MsPerBeat and OmitsBarLine are only
// meaningful on uninherited lines; SliderVelocity only on inherited ones.
type TimingLine struct {
	Kind           LineKind  `yaml:"kind"                      json:"kind" jsonschema:"enum=uninherited,enum=inherited"`
	Offset         float64   `yaml:"offset"                    json:"offset"`
	Meter          int       `yaml:"meter,omitempty"           json:"meter,omitempty" jsonschema:"minimum=0"`
	MsPerBeat      float64   `yaml:"ms_per_beat,omitempty"     json:"ms_per_beat,omitempty" jsonschema:"minimum=0"`
	OmitsBarLine   bool      `yaml:"omits_bar_line,omitempty"  json:"omits_bar_line,omitempty"`
	SliderVelocity float64   `yaml:"slider_velocity,omitempty" json:"slider_velocity,omitempty"`
	Sampleset      Sampleset `yaml:"sampleset"                 json:"sampleset" jsonschema:"enum=auto,enum=normal,enum=soft,enum=drum"`
	CustomIndex    int       `yaml:"custom_index,omitempty"    json:"custom_index,omitempty"`
	Volume         float64   `yaml:"volume"                    json:"volume" jsonschema:"minimum=0,maximum=100"`
	Kiai           bool      `yaml:"kiai,omitempty"            json:"kiai,omitempty"`
}

// IsUninherited reports whether the line is a tempo (red) line.
func (l TimingLine) IsUninherited() bool { return l.Kind == Uninherited }

// BPM returns the tempo of an uninherited line.
func (l TimingLine) BPM() float64 {
	if l.MsPerBeat == 0 {
		return 0
	}
	return 60000 / l.MsPerBeat
}

// SameSettings reports whether two lines apply the same sampleset, volume
// and kiai state.
func (l TimingLine) SameSettings(o TimingLine) bool {
	return l.Kiai == o.Kiai && l.Sampleset == o.Sampleset && l.Volume == o.Volume
}

// TimingLineAt returns the line in effect at t. When an inherited and an
// uninherited line share an offset the inherited one takes effect. If t
// precedes every line the first line applies.
func (b *Beatmap) TimingLineAt(t float64) (TimingLine, bool) {
	return lineAt(b.TimingLines, t, func(TimingLine) bool { return true })
}

// UninheritedLineAt returns the uninherited line in effect at t.
func (b *Beatmap) UninheritedLineAt(t float64) (TimingLine, bool) {
	return lineAt(b.TimingLines, t, TimingLine.IsUninherited)
}

func lineAt(lines []TimingLine, t float64, keep func(TimingLine) bool) (TimingLine, bool) {
	var (
		cur   TimingLine
		found bool
		first TimingLine
		seen  bool
	)
	for _, l := range lines {
		if !keep(l) {
			continue
		}
		if !seen {
			first, seen = l, true
		}
		if l.Offset > t {
			break
		}
		if found && cur.Offset == l.Offset && !cur.IsUninherited() && l.IsUninherited() {
			continue
		}
		cur, found = l, true
	}
	if !found {
		return first, seen
	}
	return cur, true
}

// UninheritedLines returns the uninherited lines in offset order.
func (b *Beatmap) UninheritedLines() []TimingLine {
	var out []TimingLine
	for _, l := range b.TimingLines {
		if l.IsUninherited() {
			out = append(out, l)
		}
	}
	return out
}

// UninheritedLineAtOffset returns the uninherited line placed exactly at
// offset. Offsets are compared after normalization.
func (b *Beatmap) UninheritedLineAtOffset(offset float64) (TimingLine, bool) {
	offset = NormalizeOffset(offset)
	for _, l := range b.TimingLines {
		if l.IsUninherited() && NormalizeOffset(l.Offset) == offset {
			return l, true
		}
	}
	return TimingLine{}, false
}
