// Package compose holds checks on how hit objects are built.
package compose

import (
	"iter"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

const ZeroNodeID = "compose/zero-node"

// ZeroNode flags sliders without any nodes. Such sliders are invisible in
// game but still have to be hit.
func ZeroNode() *check.Check {
	return check.ForBeatmap(ZeroNodeID, check.Metadata{
		Category: "Compose",
		Message:  "Zero node sliders.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose:   "Preventing sliders without nodes.",
			Reasoning: "A slider with no nodes is not drawn, so players have to hit an object they cannot see.",
		},
	}, map[string]issue.Template{
		"Invisible Object": issue.NewTemplate(issue.Unrankable, "{0} Invisible object.", issue.TimestampParam()).
			WithCause("A slider has no nodes."),
	}, zeroNode)
}

func zeroNode(ts issue.Templates, b *beatmap.Beatmap) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for _, h := range b.HitObjects {
			if h.IsSlider() && len(h.Nodes) == 0 {
				if !yield(ts.New("Invisible Object", issue.Time(h.Time))) {
					return
				}
			}
		}
	}
}
