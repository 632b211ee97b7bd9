package timing

import (
	"math"
	"slices"
	"testing"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

func red(offset, msPerBeat float64, meter int) beatmap.TimingLine {
	return beatmap.TimingLine{
		Kind: beatmap.Uninherited, Offset: offset, MsPerBeat: msPerBeat, Meter: meter,
		Sampleset: beatmap.SamplesetSoft, Volume: 70,
	}
}

func green(offset float64) beatmap.TimingLine {
	return beatmap.TimingLine{
		Kind: beatmap.Inherited, Offset: offset, SliderVelocity: 1,
		Sampleset: beatmap.SamplesetSoft, Volume: 70,
	}
}

func bm(version string, lines ...beatmap.TimingLine) *beatmap.Beatmap {
	return &beatmap.Beatmap{Mode: beatmap.ModeStandard, Metadata: beatmap.Metadata{Version: version}, TimingLines: lines}
}

func TestBeatOffset(t *testing.T) {
	prev := red(0, 500, 4)
	tests := []struct {
		offset, cycle, want float64
	}{
		{2000, 4, 0},
		{8000, 16, 0},
		{2000, 16, 2000},
		{2250, 4, 250},
		{1999.5, 4, 0.5},
		{7000, 4, 1000},
	}
	for _, tt := range tests {
		got := BeatOffset(prev, red(tt.offset, 500, 4), tt.cycle)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("BeatOffset(%v, cycle %v) = %v, want %v", tt.offset, tt.cycle, got, tt.want)
		}
	}
}

func TestInconsistentLines(t *testing.T) {
	normal := bm("Normal", red(1000, 500, 4), red(5000, 500, 4))
	hard := bm("Hard", red(1000, 500, 3), red(3000.5, 400, 4))
	s := &beatmap.Set{Beatmaps: []*beatmap.Beatmap{normal, hard}}

	got := slices.Collect(InconsistentLines().EvalSet(s))
	type row struct {
		template, anchor, message string
	}
	var rows []row
	for _, i := range got {
		rows = append(rows, row{i.Template, i.Beatmap, i.Message()})
	}
	want := []row{
		{"Inconsistent Meter", "Hard", "00:01:000 -  Inconsistent meter signature, see [Normal]."},
		{"Missing", "Hard", "00:05:000 -  Missing uninherited line, see [Normal]."},
		{"Missing", "Normal", "00:03:000 -  Missing uninherited line, see [Hard]."},
	}
	if !slices.Equal(rows, want) {
		t.Errorf("issues:\n got  %v\n want %v", rows, want)
	}
}

func TestInconsistentLines_BPM(t *testing.T) {
	s := &beatmap.Set{Beatmaps: []*beatmap.Beatmap{
		bm("Normal", red(0, 500, 4)),
		bm("Hard", red(0, 499, 4)),
	}}
	got := slices.Collect(InconsistentLines().EvalSet(s))
	if len(got) != 1 || got[0].Template != "Inconsistent BPM" || got[0].Severity != issue.Problem {
		t.Errorf("issues = %v", got)
	}
}

func TestInconsistentLines_Identical(t *testing.T) {
	lines := []beatmap.TimingLine{red(0, 500, 4), green(1000), red(2000, 400, 4)}
	s := &beatmap.Set{Beatmaps: []*beatmap.Beatmap{bm("Normal", lines...), bm("Hard", lines...)}}
	if got := slices.Collect(InconsistentLines().EvalSet(s)); len(got) != 0 {
		t.Errorf("issues = %v, want none", got)
	}
}

func templates(b *beatmap.Beatmap) []string {
	var out []string
	for i := range UnusedLines().EvalBeatmap(b) {
		out = append(out, i.Template)
	}
	return out
}

func TestUnusedLines(t *testing.T) {
	kiai := func(l beatmap.TimingLine) beatmap.TimingLine { l.Kiai = true; return l }
	omit := func(l beatmap.TimingLine) beatmap.TimingLine { l.OmitsBarLine = true; return l }

	tests := []struct {
		name  string
		lines []beatmap.TimingLine
		want  []string
	}{
		{"sixteen beats apart", []beatmap.TimingLine{red(0, 500, 4), red(8000, 500, 4)}, []string{"Problem Nothing"}},
		{"four beats apart", []beatmap.TimingLine{red(0, 500, 4), red(2000, 500, 4)}, []string{"Warning Nothing"}},
		{"kiai on cycle", []beatmap.TimingLine{red(0, 500, 4), kiai(red(8000, 500, 4))}, []string{"Problem Inherited"}},
		{"kiai off cycle", []beatmap.TimingLine{red(0, 500, 4), kiai(red(2000, 500, 4))}, []string{"Warning Inherited"}},
		{"tempo change", []beatmap.TimingLine{red(0, 500, 4), red(2000, 400, 4)}, nil},
		{"meter change", []beatmap.TimingLine{red(0, 500, 4), red(2000, 500, 3)}, nil},
		{"off beat", []beatmap.TimingLine{red(0, 500, 4), red(2250, 500, 4)}, nil},
		{"drift within 1 ms", []beatmap.TimingLine{red(0, 500, 4), red(2000.8, 500, 4)}, []string{"Warning Nothing"}},
		{"drift beyond 1 ms", []beatmap.TimingLine{red(0, 500, 4), red(2001.5, 500, 4)}, nil},
		{"drift within 1 ms on cycle", []beatmap.TimingLine{red(0, 500, 4), red(8000.9, 500, 4)}, []string{"Problem Nothing"}},
		{"omits bar line", []beatmap.TimingLine{red(0, 500, 4), omit(red(2000, 500, 4))}, nil},
		{"single line", []beatmap.TimingLine{red(0, 500, 4)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := templates(bm("Normal", tt.lines...)); !slices.Equal(got, tt.want) {
				t.Errorf("templates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnusedLines_InheritedLineBetween(t *testing.T) {
	// The red line only restores the volume the green line changed, which
	// an inherited line could do as well. Settings are compared against the
	// line in effect just before, not the previous red line.
	loud := green(1000)
	loud.Volume = 100
	b := bm("Normal", red(0, 500, 4), loud, red(8000, 500, 4))
	if got := templates(b); !slices.Equal(got, []string{"Problem Inherited"}) {
		t.Errorf("templates = %v", got)
	}
}

func TestUnusedLines_InheritedLineAtSameOffset(t *testing.T) {
	// An inherited line sharing the red line's offset takes effect there, so
	// its volume change is what the red line is judged by.
	loud := green(2000)
	loud.Volume = 100
	b := bm("Normal", red(0, 500, 4), red(2000, 500, 4), loud)
	if got := templates(b); !slices.Equal(got, []string{"Warning Inherited"}) {
		t.Errorf("templates = %v", got)
	}

	same := green(2000)
	b = bm("Normal", red(0, 500, 4), red(2000, 500, 4), same)
	if got := templates(b); !slices.Equal(got, []string{"Warning Nothing"}) {
		t.Errorf("templates = %v", got)
	}
}
