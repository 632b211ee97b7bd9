package compose

import (
	"slices"
	"testing"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

func TestZeroNode(t *testing.T) {
	b := &beatmap.Beatmap{
		Mode:     beatmap.ModeStandard,
		Metadata: beatmap.Metadata{Version: "Hard"},
		HitObjects: []beatmap.HitObject{
			{Kind: beatmap.KindCircle, Time: 100},
			{Kind: beatmap.KindSlider, Time: 200, Nodes: []beatmap.Vec2{{X: 1, Y: 1}}},
			{Kind: beatmap.KindSlider, Time: 1250},
		},
	}
	got := slices.Collect(ZeroNode().EvalBeatmap(b))
	if len(got) != 1 {
		t.Fatalf("issues = %v, want 1", got)
	}
	if got[0].Severity != issue.Unrankable || got[0].Message() != "00:01:250 -  Invisible object." {
		t.Errorf("issue = %v", got[0])
	}

	again := slices.Collect(ZeroNode().EvalBeatmap(b))
	if !slices.EqualFunc(got, again, issue.Issue.Equal) {
		t.Error("second run differs from the first")
	}
}
