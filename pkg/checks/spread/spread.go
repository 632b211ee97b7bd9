// Package spread holds difficulty-spread checks for osu!standard: how
// close in time objects may be, and how much room spinners need, at each
// difficulty tier.
package spread

import (
	"iter"
	"math"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

const (
	CloseOverlapID    = "spread/close-overlap"
	SpinnerRecoveryID = "spread/spinner-recovery"
)

// Gaps below which two non-overlapping objects are too close, in ms.
// 188 ms is a 1/2 beat at 160 BPM, 125 ms one at 240 BPM.
const (
	overlapProblemThreshold = 125
	overlapWarningThreshold = 188
)

// CloseOverlap flags objects in Easy and Normal difficulties that follow
// each other closely in time without overlapping on the playfield.
func CloseOverlap() *check.Check {
	return check.ForBeatmap(CloseOverlapID, check.Metadata{
		Category:     "Spread",
		Message:      "Objects close in time not overlapping.",
		Author:       "Naxess",
		Modes:        []beatmap.Mode{beatmap.ModeStandard},
		Difficulties: []beatmap.Difficulty{beatmap.Easy, beatmap.Normal},
		Documentation: check.Documentation{
			Purpose: "Preventing objects close in time from being spaced apart in lower difficulties.",
			Reasoning: "Newer players read spacing as time. Objects that are close in time but far apart " +
				"look like they are further apart in time than they are, unless they overlap, " +
				"which reads as a distinct pattern.",
		},
	}, map[string]issue.Template{
		"Problem": issue.NewTemplate(issue.Problem,
			"{0} {1} ms apart, should either be overlapped or at least {2} ms apart.",
			issue.TimestampParam(), issue.NumberParam("gap"), issue.NumberParam("threshold")).
			WithCause("Two objects with a time gap less than 125 ms (240 bpm 1/2) are not overlapping."),
		"Warning": issue.NewTemplate(issue.Warning,
			"{0} {1} ms apart.",
			issue.TimestampParam(), issue.NumberParam("gap")).
			WithCause("Two objects with a time gap less than 188 ms (160 bpm 1/2) are not overlapping."),
	}, closeOverlap)
}

func closeOverlap(ts issue.Templates, b *beatmap.Beatmap) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		radius := b.Settings.CircleRadius()
		objs := b.HitObjects
		for i := 0; i+1 < len(objs); i++ {
			cur, next := objs[i], objs[i+1]
			if !cur.IsCircle() || next.IsSpinner() {
				continue
			}
			gap := next.Time - cur.Time
			if gap >= overlapWarningThreshold || cur.Position.Distance(next.Position) < 2*radius {
				continue
			}
			var is issue.Issue
			if gap < overlapProblemThreshold {
				is = ts.New("Problem", issue.Span(cur.Time, next.Time), issue.Number(gap), issue.Number(overlapProblemThreshold))
			} else {
				is = ts.New("Warning", issue.Span(cur.Time, next.Time), issue.Number(gap))
			}
			if !yield(is) {
				return
			}
		}
	}
}

// tierMinimum is the shortest acceptable spinner length, and recovery time
// after a spinner, for Easy, Normal and Hard in ms. Higher tiers have no
// minimum.
var tierMinimum = []struct {
	tier beatmap.Difficulty
	ms   float64
}{
	{beatmap.Easy, 1000},
	{beatmap.Normal, 500},
	{beatmap.Hard, 250},
}

const (
	// displayMultiplier converts a minimum into the value shown to users.
	displayMultiplier = 4.0 / 3
	// warningLeniency widens a minimum into the warning band above it.
	warningLeniency = 1.2
)

// BPMScale is the factor recovery time is divided by at the given tempo:
// 1 at 180 BPM, above 1 for faster songs and below 1 for slower ones.
func BPMScale(bpm float64) float64 {
	return bpm*bpm/14400 - bpm/80 + 1
}

// SpinnerRecovery flags spinners that are too short, or are followed too
// closely by the next object, for each difficulty tier.
func SpinnerRecovery() *check.Check {
	lengthTmpl := func(sev issue.Severity, qualifier string) issue.Template {
		return issue.NewTemplate(sev,
			"{0} Spinner length is "+qualifier+"too short ({1} ms, expected {2}).",
			issue.TimestampParam(), issue.NumberParam("length"), issue.NumberParam("expected"))
	}
	recoveryTmpl := func(sev issue.Severity, qualifier string) issue.Template {
		return issue.NewTemplate(sev,
			"{0} Spinner recovery time is "+qualifier+"too short ({1} ms, expected {2}).",
			issue.TimestampParam(), issue.NumberParam("recovery"), issue.NumberParam("expected"))
	}
	return check.ForBeatmap(SpinnerRecoveryID, check.Metadata{
		Category: "Spread",
		Message:  "Too short spinner time or spinner recovery time.",
		Author:   "Naxess",
		Modes:    []beatmap.Mode{beatmap.ModeStandard},
		Documentation: check.Documentation{
			Purpose: "Giving players enough time to spin, and to get back to the next object afterwards, in lower difficulties.",
			Reasoning: "Newer players need time to start spinning and to move their cursor back afterwards. " +
				"Recovery time scales with tempo, since faster songs make the same gap feel shorter.",
		},
	}, map[string]issue.Template{
		"Problem Length": lengthTmpl(issue.Problem, "").
			WithCause("A spinner is shorter than the minimum for the difficulty."),
		"Warning Length": lengthTmpl(issue.Warning, "probably ").
			WithCause("A spinner is shorter than 1.2 times the minimum for the difficulty."),
		"Problem Recovery": recoveryTmpl(issue.Problem, "").
			WithCause("The time between the end of a spinner and the next object is shorter than the tempo-scaled minimum."),
		"Warning Recovery": recoveryTmpl(issue.Warning, "probably ").
			WithCause("The time between the end of a spinner and the next object is shorter than 1.2 times the tempo-scaled minimum."),
	}, spinnerRecovery)
}

func spinnerRecovery(ts issue.Templates, b *beatmap.Beatmap) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for _, spinner := range b.HitObjects {
			if !spinner.IsSpinner() {
				continue
			}
			next, ok := b.NextNonSpinner(spinner.Time)
			if !ok {
				continue
			}
			length := spinner.EndTime - spinner.Time
			recovery := next.Time - spinner.EndTime

			scale := 1.0
			if line, ok := b.UninheritedLineAt(next.Time); ok && line.BPM() > 0 {
				scale = BPMScale(line.BPM())
			}
			scaled := recovery / scale
			at := issue.Time(spinner.Time)

			for _, tm := range tierMinimum {
				expected := math.Ceil(tm.ms * displayMultiplier)
				var name string
				switch {
				case length < tm.ms:
					name = "Problem Length"
				case length < tm.ms*warningLeniency:
					name = "Warning Length"
				default:
					continue
				}
				if !yield(ts.New(name, at, issue.Number(length), issue.Number(expected)).ForDifficulties(tm.tier)) {
					return
				}
			}
			for _, tm := range tierMinimum {
				expected := math.Ceil(tm.ms * min(scale, 1) * displayMultiplier)
				var name string
				switch {
				case scaled < tm.ms && recovery < tm.ms:
					name = "Problem Recovery"
				case scaled < tm.ms*warningLeniency && recovery < tm.ms*warningLeniency:
					name = "Warning Recovery"
				default:
					continue
				}
				if !yield(ts.New(name, issue.Span(spinner.Time, next.Time), issue.Number(recovery), issue.Number(expected)).ForDifficulties(tm.tier)) {
					return
				}
			}
		}
	}
}
