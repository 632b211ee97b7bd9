package issue

import (
	"errors"
	"slices"
	"testing"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
)

func testTemplates() Templates {
	return NewTemplates("test/check", map[string]Template{
		"Gap": NewTemplate(Problem, "{0} {1} ms apart, see {2}.",
			TimestampParam(), NumberParam("gap"), BeatmapParam("difficulty")).
			WithCause("Objects are too close."),
		"File": NewTemplate(Warning, "\"{0}\"", TextParam("file name")),
		"Bare": NewTemplate(Minor, "Nothing to fill in."),
	})
}

func TestTimestamp_String(t *testing.T) {
	tests := []struct {
		ms   float64
		want string
	}{
		{0, "00:00:000 - "},
		{1000, "00:01:000 - "},
		{61234.9, "01:01:234 - "},
		{3723004, "62:03:004 - "},
		{-250, "-00:00:250 - "},
	}
	for _, tt := range tests {
		if got := Timestamp(tt.ms).String(); got != tt.want {
			t.Errorf("Timestamp(%v) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestSeverity_Ordering(t *testing.T) {
	order := []Severity{Minor, Warning, Problem, Unrankable, Error}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("%v should rank below %v", order[i-1], order[i])
		}
	}
}

func TestSeverity_Parse(t *testing.T) {
	s, err := ParseSeverity(" Unrankable ")
	if err != nil || s != Unrankable {
		t.Errorf("ParseSeverity = %v, %v", s, err)
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("expected error for unknown severity")
	}
	var back Severity
	if err := back.UnmarshalText([]byte("warning")); err != nil || back != Warning {
		t.Errorf("UnmarshalText = %v, %v", back, err)
	}
}

func TestTemplates_New(t *testing.T) {
	ts := testTemplates()
	i := ts.New("Gap", Time(1500), Number(99.456), Beatmap("Normal"))

	if i.Check != "test/check" || i.Template != "Gap" {
		t.Errorf("identity = %s/%s", i.Check, i.Template)
	}
	if i.Severity != Problem {
		t.Errorf("severity = %v, want problem", i.Severity)
	}
	if i.Cause != "Objects are too close." {
		t.Errorf("cause = %q", i.Cause)
	}
	if want := "00:01:500 -  99.46 ms apart, see [Normal]."; i.Message() != want {
		t.Errorf("message = %q, want %q", i.Message(), want)
	}
	if i.Timestamp == nil || *i.Timestamp != 1500 {
		t.Errorf("timestamp = %v, want 1500", i.Timestamp)
	}
	if i.Args[1].Name != "gap" {
		t.Errorf("arg name = %q, want gap", i.Args[1].Name)
	}
}

func TestTemplates_NewSpan(t *testing.T) {
	ts := testTemplates()
	span := ts.New("Gap", Span(1500, 1600), Number(100), Beatmap("Normal"))
	if want := "00:01:500 -  100 ms apart, see [Normal]."; span.Message() != want {
		t.Errorf("message = %q, want %q", span.Message(), want)
	}
	if span.Timestamp == nil || *span.Timestamp != 1500 || span.End == nil || *span.End != 1600 {
		t.Errorf("anchor = %v..%v, want 1500..1600", span.Timestamp, span.End)
	}

	point := ts.New("Gap", Time(1500), Number(100), Beatmap("Normal"))
	if point.End != nil {
		t.Errorf("end = %v, want none for a single time", *point.End)
	}
	if point.Equal(span) {
		t.Error("a span and a single time should differ")
	}
}

func TestTemplates_NoArgs(t *testing.T) {
	i := testTemplates().New("Bare")
	if i.Message() != "Nothing to fill in." || i.Timestamp != nil {
		t.Errorf("unexpected issue: %+v", i)
	}
}

func expectTemplatePanic(t *testing.T, f func()) *TemplateError {
	t.Helper()
	var got *TemplateError
	func() {
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.As(err, &got) {
				t.Fatalf("recovered %v, want *TemplateError", r)
			}
		}()
		f()
	}()
	return got
}

func TestTemplates_NewFailsFast(t *testing.T) {
	ts := testTemplates()

	e := expectTemplatePanic(t, func() { ts.New("Nope") })
	if e.Template != "Nope" {
		t.Errorf("template = %q", e.Template)
	}

	e = expectTemplatePanic(t, func() { ts.New("File") })
	if e.Reason != "got 0 arguments, want 1" {
		t.Errorf("reason = %q", e.Reason)
	}

	e = expectTemplatePanic(t, func() { ts.New("File", Number(3)) })
	if e.Check != "test/check" {
		t.Errorf("check = %q", e.Check)
	}
}

func TestIssue_BuildersCopy(t *testing.T) {
	base := testTemplates().New("File", Text("video.mp4"))
	bm := &beatmap.Beatmap{Metadata: beatmap.Metadata{Version: "Hard"}}

	anchored := base.For(bm).ForDifficulties(beatmap.Easy, beatmap.Normal)
	if base.Beatmap != "" || base.Difficulties != nil {
		t.Error("builders must not modify the receiver")
	}
	if anchored.Beatmap != "Hard" {
		t.Errorf("beatmap = %q, want Hard", anchored.Beatmap)
	}
	if !anchored.AppliesTo(beatmap.Normal) || anchored.AppliesTo(beatmap.Hard) {
		t.Errorf("difficulty restriction = %v", anchored.Difficulties)
	}
	if !base.AppliesTo(beatmap.Ultra) {
		t.Error("unrestricted issue should apply to every tier")
	}
	if got := anchored.String(); got != `warning: [Hard] "video.mp4"` {
		t.Errorf("String() = %q", got)
	}
}

func TestNumberFormatting(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{125, "125"},
		{1333.3333, "1333.33"},
		{0.5, "0.5"},
		{50.004, "50"},
	}
	for _, tt := range tests {
		if got := Number(tt.in).String(); got != tt.want {
			t.Errorf("Number(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFailure(t *testing.T) {
	i := Failure("x/y", "Easy", "index out of range")
	if i.Severity != Error || i.Message() != "Check failed: index out of range" || i.Beatmap != "Easy" {
		t.Errorf("unexpected failure issue: %+v", i)
	}
}

func TestBag_SortDedupCounts(t *testing.T) {
	ts := testTemplates()
	b := NewBag(slices.Values([]Issue{
		ts.New("Gap", Time(3000), Number(10), Beatmap("Easy")).For(&beatmap.Beatmap{Metadata: beatmap.Metadata{Version: "Normal"}}),
		ts.New("File", Text("a.mp4")),
		ts.New("Gap", Time(1000), Number(10), Beatmap("Easy")).For(&beatmap.Beatmap{Metadata: beatmap.Metadata{Version: "Normal"}}),
		ts.New("File", Text("a.mp4")),
	}))
	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("len after dedup = %d, want 3", b.Len())
	}
	b.Sort()
	items := b.Items()
	if items[0].Beatmap != "" {
		t.Errorf("set-level issue should sort first, got %q", items[0].Beatmap)
	}
	if *items[1].Timestamp != 1000 || *items[2].Timestamp != 3000 {
		t.Error("timed issues should sort by timestamp")
	}
	counts := b.Counts()
	if counts[Problem] != 2 || counts[Warning] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if !b.HasAtLeast(Problem) || b.HasAtLeast(Unrankable) {
		t.Error("HasAtLeast mismatch")
	}
	b.Filter(func(i Issue) bool { return i.Severity >= Problem })
	if b.Len() != 2 {
		t.Errorf("len after filter = %d, want 2", b.Len())
	}
}
