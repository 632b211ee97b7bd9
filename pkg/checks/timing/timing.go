// Package timing holds checks on uninherited (tempo) lines: consistency of
// tempo between difficulties and lines that change nothing.
package timing

import (
	"iter"
	"math"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

const (
	InconsistentLinesID = "timing/inconsistent-lines"
	UnusedLinesID       = "timing/unused-lines"
)

// BeatOffset returns how far, in milliseconds, next sits from the nearest
// multiple of cycle beats counted from prev, using prev's beat length.
func BeatOffset(prev, next beatmap.TimingLine, cycle float64) float64 {
	if prev.MsPerBeat == 0 {
		return 0
	}
	beats := (next.Offset - prev.Offset) / prev.MsPerBeat
	r := math.Mod(beats, cycle)
	return math.Min(math.Abs(r), math.Abs(r-cycle)) * prev.MsPerBeat
}

// InconsistentLines compares the uninherited lines of every difficulty with
// those of the reference difficulty.
func InconsistentLines() *check.Check {
	seeRef := func(text string) issue.Template {
		return issue.NewTemplate(issue.Problem, "{0} "+text+", see {1}.",
			issue.TimestampParam(), issue.BeatmapParam("difficulty"))
	}
	return check.ForSet(InconsistentLinesID, check.Metadata{
		Category: "Timing",
		Message:  "Inconsistent uninherited lines, meter signatures or BPM.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose: "Keeping tempo changes consistent between all difficulties of a beatmapset.",
			Reasoning: "Every difficulty is timed to the same song, so differing tempo lines mean at least one " +
				"of them is wrong. Lines that only reset the metronome are included, since they change how " +
				"the playfield tracks the song.",
		},
	}, map[string]issue.Template{
		"Missing": seeRef("Missing uninherited line").
			WithCause("A beatmap has no uninherited line at an offset where another beatmap has one."),
		"Inconsistent Meter": seeRef("Inconsistent meter signature").
			WithCause("Two beatmaps have uninherited lines at the same offset with different meters."),
		"Inconsistent BPM": seeRef("Inconsistent BPM").
			WithCause("Two beatmaps have uninherited lines at the same offset with different beat lengths."),
	}, inconsistentLines)
}

func inconsistentLines(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		ref := s.Reference()
		refLines := ref.UninheritedLines()
		for _, b := range s.Beatmaps {
			if b == ref {
				continue
			}
			for _, line := range refLines {
				at := issue.Time(math.Round(line.Offset))
				other, ok := b.UninheritedLineAtOffset(line.Offset)
				if !ok {
					if !yield(ts.New("Missing", at, issue.Beatmap(ref.Version())).For(b)) {
						return
					}
					continue
				}
				if other.Meter != line.Meter {
					if !yield(ts.New("Inconsistent Meter", at, issue.Beatmap(ref.Version())).For(b)) {
						return
					}
				}
				if other.MsPerBeat != line.MsPerBeat {
					if !yield(ts.New("Inconsistent BPM", at, issue.Beatmap(ref.Version())).For(b)) {
						return
					}
				}
			}
			for _, line := range b.UninheritedLines() {
				if _, ok := ref.UninheritedLineAtOffset(line.Offset); ok {
					continue
				}
				at := issue.Time(math.Floor(line.Offset))
				if !yield(ts.New("Missing", at, issue.Beatmap(b.Version())).For(ref)) {
					return
				}
			}
		}
	}
}

const nightcoreFinish = "other than the finish with the nightcore mod. Ensure it makes sense to have a finish here."

// UnusedLines flags uninherited lines that neither change tempo nor reset
// the beat in a way the previous line would not already.
func UnusedLines() *check.Check {
	return check.ForBeatmap(UnusedLinesID, check.Metadata{
		Category: "Timing",
		Message:  "Unused uninherited lines.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose: "Ensuring that uninherited lines actually change something.",
			Reasoning: "An uninherited line that keeps the tempo and meter and falls on the downbeat of the " +
				"previous one does nothing, except adding a nightcore finish when it lands off the " +
				"four-measure cycle. Redundant lines clutter the timing and are easy to desync later.",
		},
	}, map[string]issue.Template{
		"Problem Nothing": issue.NewTemplate(issue.Problem, "{0} Changes nothing.", issue.TimestampParam()).
			WithCause("An uninherited line with no changes falls on the four-measure nightcore cycle."),
		"Problem Inherited": issue.NewTemplate(issue.Problem,
			"{0} Changes nothing that can't be changed with an inherited line.", issue.TimestampParam()).
			WithCause("An uninherited line only changes sampleset, volume or kiai and falls on the four-measure nightcore cycle."),
		"Warning Nothing": issue.NewTemplate(issue.Warning,
			"{0} Changes nothing, "+nightcoreFinish, issue.TimestampParam()).
			WithCause("An uninherited line with no changes falls off the four-measure nightcore cycle."),
		"Warning Inherited": issue.NewTemplate(issue.Warning,
			"{0} Changes nothing that can't be changed with an inherited line, "+nightcoreFinish, issue.TimestampParam()).
			WithCause("An uninherited line only changes sampleset, volume or kiai and falls off the four-measure nightcore cycle."),
	}, unusedLines)
}

func unusedLines(ts issue.Templates, b *beatmap.Beatmap) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		lines := b.UninheritedLines()
		for i := 1; i < len(lines); i++ {
			prev, cur := lines[i-1], lines[i]
			if prev.MsPerBeat != cur.MsPerBeat || prev.Meter != cur.Meter || BeatOffset(prev, cur, 4) > 1 {
				continue
			}
			if cur.OmitsBarLine {
				continue
			}
			before, _ := b.TimingLineAt(cur.Offset - 1)
			after, _ := b.TimingLineAt(cur.Offset)

			onCycle := BeatOffset(prev, cur, 16) <= 1
			var name string
			switch {
			case before.SameSettings(after) && onCycle:
				name = "Problem Nothing"
			case before.SameSettings(after):
				name = "Warning Nothing"
			case onCycle:
				name = "Problem Inherited"
			default:
				name = "Warning Inherited"
			}
			if !yield(ts.New(name, issue.Time(cur.Offset))) {
				return
			}
		}
	}
}
