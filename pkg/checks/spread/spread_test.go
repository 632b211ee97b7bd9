package spread

import (
	"math"
	"slices"
	"testing"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

func circle(t, x float64) beatmap.HitObject {
	return beatmap.HitObject{Kind: beatmap.KindCircle, Time: t, Position: beatmap.Vec2{X: x, Y: 192}}
}

func spinner(t, end float64) beatmap.HitObject {
	return beatmap.HitObject{Kind: beatmap.KindSpinner, Time: t, EndTime: end, Position: beatmap.Vec2{X: 256, Y: 192}}
}

func bm(bpm float64, objs ...beatmap.HitObject) *beatmap.Beatmap {
	return &beatmap.Beatmap{
		Mode:     beatmap.ModeStandard,
		Metadata: beatmap.Metadata{Version: "Normal"},
		Settings: beatmap.DifficultySettings{CircleSize: 4},
		TimingLines: []beatmap.TimingLine{{
			Kind: beatmap.Uninherited, MsPerBeat: 60000 / bpm, Meter: 4, Sampleset: beatmap.SamplesetNormal, Volume: 60,
		}},
		HitObjects: objs,
	}
}

func TestCloseOverlap(t *testing.T) {
	// CS 4 gives a radius of 36.48, so overlap needs a distance below 72.96.
	tests := []struct {
		name   string
		objs   []beatmap.HitObject
		want   string
		detail string
	}{
		{"problem", []beatmap.HitObject{circle(1000, 100), circle(1100, 200)}, "Problem",
			"00:01:000 -  100 ms apart, should either be overlapped or at least 125 ms apart."},
		{"warning", []beatmap.HitObject{circle(1000, 100), circle(1150, 200)}, "Warning",
			"00:01:000 -  150 ms apart."},
		{"overlapping", []beatmap.HitObject{circle(1000, 100), circle(1150, 150)}, "", ""},
		{"far in time", []beatmap.HitObject{circle(1000, 100), circle(1188, 200)}, "", ""},
		{"spinner follows", []beatmap.HitObject{circle(1000, 100), spinner(1100, 3000)}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(CloseOverlap().EvalBeatmap(bm(180, tt.objs...)))
			if tt.want == "" {
				if len(got) != 0 {
					t.Errorf("issues = %v, want none", got)
				}
				return
			}
			if len(got) != 1 || got[0].Template != tt.want || got[0].Message() != tt.detail {
				t.Fatalf("issues = %v, want one %s %q", got, tt.want, tt.detail)
			}
			if end := got[0].End; end == nil || *end != issue.Timestamp(tt.objs[1].Time) {
				t.Errorf("end = %v, want the second object at %v", end, tt.objs[1].Time)
			}
		})
	}
}

func TestCloseOverlap_Metadata(t *testing.T) {
	meta := CloseOverlap().Meta
	if !meta.AppliesToDifficulty(beatmap.Normal) || meta.AppliesToDifficulty(beatmap.Hard) {
		t.Errorf("difficulties = %v", meta.Difficulties)
	}
	if meta.AppliesToMode(beatmap.ModeTaiko) {
		t.Error("close overlap should not apply to taiko")
	}
}

func TestBPMScale(t *testing.T) {
	for bpm, want := range map[float64]float64{180: 1, 120: 0.5, 240: 2} {
		if got := BPMScale(bpm); math.Abs(got-want) > 1e-9 {
			t.Errorf("BPMScale(%v) = %v, want %v", bpm, got, want)
		}
	}
}

// find returns the issue with the given template that applies to tier d.
func find(issues []issue.Issue, template string, d beatmap.Difficulty) (issue.Issue, bool) {
	for _, i := range issues {
		if i.Template == template && i.AppliesTo(d) {
			return i, true
		}
	}
	return issue.Issue{}, false
}

func TestSpinnerRecovery_ShortGap(t *testing.T) {
	got := slices.Collect(SpinnerRecovery().EvalBeatmap(bm(180, spinner(0, 3000), circle(3050, 256))))
	i, ok := find(got, "Problem Recovery", beatmap.Easy)
	if !ok {
		t.Fatalf("no Easy recovery problem in %v", got)
	}
	if want := "00:00:000 -  Spinner recovery time is too short (50 ms, expected 1334)."; i.Message() != want {
		t.Errorf("message = %q, want %q", i.Message(), want)
	}
	if i.Timestamp == nil || *i.Timestamp != 0 || i.End == nil || *i.End != 3050 {
		t.Errorf("anchor = %v..%v, want the spinner and the next object", i.Timestamp, i.End)
	}
	if i.AppliesTo(beatmap.Normal) {
		t.Error("issue should be restricted to its tier")
	}
	for _, d := range []beatmap.Difficulty{beatmap.Normal, beatmap.Hard} {
		if _, ok := find(got, "Problem Recovery", d); !ok {
			t.Errorf("missing %v recovery problem", d)
		}
	}
	if _, ok := find(got, "Problem Length", beatmap.Easy); ok {
		t.Error("3000 ms spinner should satisfy every length minimum")
	}
}

func TestSpinnerRecovery_Conjunction(t *testing.T) {
	// At 120 BPM the scaled gap is 1800 ms, so the raw 900 ms gap passes
	// for Easy even though it is below the 1000 ms minimum.
	slow := slices.Collect(SpinnerRecovery().EvalBeatmap(bm(120, spinner(0, 3000), circle(3900, 256))))
	if len(slow) != 0 {
		t.Errorf("120 BPM: issues = %v, want none", slow)
	}

	// At 240 BPM the scaled gap of 550 ms fails Easy, but the raw 1100 ms
	// gap only falls in the warning band.
	fast := slices.Collect(SpinnerRecovery().EvalBeatmap(bm(240, spinner(0, 3000), circle(4100, 256))))
	if _, ok := find(fast, "Problem Recovery", beatmap.Easy); ok {
		t.Errorf("240 BPM: unexpected problem in %v", fast)
	}
	w, ok := find(fast, "Warning Recovery", beatmap.Easy)
	if !ok {
		t.Fatalf("240 BPM: no Easy warning in %v", fast)
	}
	if w.Args[2].Number != 1334 {
		t.Errorf("expected = %v, want 1334 (scale capped at 1)", w.Args[2].Number)
	}
}

func TestSpinnerRecovery_SlowTempoLowersExpected(t *testing.T) {
	got := slices.Collect(SpinnerRecovery().EvalBeatmap(bm(120, spinner(0, 3000), circle(3100, 256))))
	i, ok := find(got, "Problem Recovery", beatmap.Easy)
	if !ok {
		t.Fatalf("no Easy problem in %v", got)
	}
	if i.Args[2].Number != 667 {
		t.Errorf("expected = %v, want ceil(1000 * 0.5 * 4/3) = 667", i.Args[2].Number)
	}
}

func TestSpinnerRecovery_Length(t *testing.T) {
	got := slices.Collect(SpinnerRecovery().EvalBeatmap(bm(180, spinner(0, 550), circle(5000, 256))))
	var names []string
	for _, i := range got {
		names = append(names, i.Template+"/"+i.Difficulties[0].String())
	}
	want := []string{"Problem Length/easy", "Warning Length/normal"}
	if !slices.Equal(names, want) {
		t.Errorf("issues = %v, want %v", names, want)
	}
}

func TestSpinnerRecovery_NoNextObject(t *testing.T) {
	got := slices.Collect(SpinnerRecovery().EvalBeatmap(bm(180, circle(0, 100), spinner(500, 600))))
	if len(got) != 0 {
		t.Errorf("issues = %v, want none without a following object", got)
	}
}

func TestSpinnerRecovery_SkipsChainedSpinners(t *testing.T) {
	got := slices.Collect(SpinnerRecovery().EvalBeatmap(bm(180,
		spinner(0, 2000), spinner(2100, 4000), circle(9000, 256))))
	for _, i := range got {
		if i.Template == "Problem Recovery" || i.Template == "Warning Recovery" {
			t.Errorf("unexpected recovery issue %v", i)
		}
	}
}
