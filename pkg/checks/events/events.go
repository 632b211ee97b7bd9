// Package events holds checks on the events section and storyboard.
package events

import (
	"iter"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

const StoryHitSoundsID = "events/story-hitsounds"

// StoryHitSounds warns about hit sounds played by the storyboard, either
// embedded in a difficulty or from the set-wide storyboard file.
func StoryHitSounds() *check.Check {
	return check.ForSet(StoryHitSoundsID, check.Metadata{
		Category: "Events",
		Message:  "Storyboarded hit sounds.",
		Author:   "Naxess",
		Modes:    []beatmap.Mode{beatmap.ModeStandard, beatmap.ModeTaiko, beatmap.ModeCatch},
		Documentation: check.Documentation{
			Purpose: "Pointing out storyboarded hit sounds so they can be checked by hand.",
			Reasoning: "Storyboarded samples play regardless of what the player does, so hit sounds placed " +
				"there give no feedback on hitting objects. They are fine for effects unrelated to gameplay.",
		},
	}, map[string]issue.Template{
		"Storyboarded Hit Sound": issue.NewTemplate(issue.Warning,
			"{0} Storyboarded hit sound ({1}, {2}%) from {3} file.",
			issue.TimestampParam(), issue.TextParam("path"), issue.NumberParam("volume"), issue.TextParam("source")).
			WithCause("The .osu or .osb file plays a hit sound sample from the storyboard."),
	}, storyHitSounds)
}

func storyHitSounds(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
	var shared []beatmap.StoryHitSound
	if s.Storyboard != nil {
		shared = s.Storyboard.StoryHitSounds
	}
	return func(yield func(issue.Issue) bool) {
		emit := func(b *beatmap.Beatmap, sounds []beatmap.StoryHitSound, source string) bool {
			for _, h := range sounds {
				i := ts.New("Storyboarded Hit Sound",
					issue.Time(h.Time), issue.Text(h.Path), issue.Number(h.Volume), issue.Text(source))
				if !yield(i.For(b)) {
					return false
				}
			}
			return true
		}
		for _, b := range s.Beatmaps {
			if !emit(b, b.StoryHitSounds, ".osu") || !emit(b, shared, ".osb") {
				return
			}
		}
	}
}
