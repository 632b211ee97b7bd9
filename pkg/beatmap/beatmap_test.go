package beatmap

import (
	"encoding/json"
	"math"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func testdataPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

func TestLoad_ValidSet(t *testing.T) {
	s, errs := ValidateFile(testdataPath("valid.yaml"))
	if HasErrors(errs) {
		for _, e := range errs {
			t.Errorf("unexpected error: %s", e)
		}
	}
	if s == nil {
		t.Fatal("expected set, got nil")
	}
	if len(s.Beatmaps) != 2 {
		t.Fatalf("beatmaps = %d, want 2", len(s.Beatmaps))
	}
	ref := s.Reference()
	if ref.Version() != "Normal" {
		t.Errorf("reference = %q, want Normal", ref.Version())
	}
	if ref.Metadata.ArtistUnicode == nil || *ref.Metadata.ArtistUnicode != "かめりあ" {
		t.Errorf("artist_unicode = %v", ref.Metadata.ArtistUnicode)
	}
	if s.Beatmaps[1].Metadata.TitleUnicode != nil {
		t.Error("absent unicode title should decode as nil")
	}
	if got := ref.TimingLines[0].Offset; got != 1000 {
		t.Errorf("offset = %v, want normalized 1000", got)
	}
	if len(s.Files) != 2 {
		t.Errorf("files = %d, want 2", len(s.Files))
	}
}

func TestLoad_UnknownField(t *testing.T) {
	doc := `
beatmaps:
  - mode: osu
    metadata: {artist: a, title: t, creator: c, version: v}
    settings: {hp: 5, cs: 5, od: 5, ar: 5}
    timing_lines: []
    colours: [red]
`
	_, err := Load(strings.NewReader(doc))
	if err == nil {
		t.Fatal("expected structural error for unknown field")
	}
}

func TestLoad_BadDifficulty(t *testing.T) {
	doc := `
beatmaps:
  - mode: osu
    difficulty: impossible
    metadata: {artist: a, title: t, creator: c, version: v}
    settings: {hp: 5, cs: 5, od: 5, ar: 5}
    timing_lines: []
`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected error for unknown difficulty name")
	}
}

func TestLoadBeatmap_WrapsInSet(t *testing.T) {
	doc := `
mode: mania
metadata: {artist: a, title: t, creator: c, version: 4K Hard}
settings: {hp: 5, cs: 4, od: 5, ar: 5}
timing_lines:
  - {kind: uninherited, offset: 0, meter: 4, ms_per_beat: 500, sampleset: normal, volume: 50}
`
	s, err := LoadBeatmap(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Beatmaps) != 1 || s.Reference().Mode != ModeMania {
		t.Errorf("unexpected set: %+v", s)
	}
}

func TestValidate_DomainErrors(t *testing.T) {
	_, errs := ValidateFile(testdataPath("unordered.yaml"))
	if !HasErrors(errs) {
		t.Fatal("expected domain errors")
	}
	wantMessages := []string{
		"timing lines must be ordered by offset",
		"spinner ends before it starts",
	}
	for _, want := range wantMessages {
		found := false
		for _, e := range errs {
			if strings.Contains(e.Message, want) {
				found = true
				if e.Phase != "domain" {
					t.Errorf("phase = %q, want domain", e.Phase)
				}
			}
		}
		if !found {
			t.Errorf("expected error containing %q", want)
		}
	}
}

func TestValidate_SemanticErrors(t *testing.T) {
	s := &Set{Beatmaps: []*Beatmap{{
		Mode:     "piano",
		Metadata: Metadata{Version: "x"},
	}}}
	errs := Validate(s)
	if !HasErrors(errs) {
		t.Fatal("expected semantic error for unknown mode")
	}
	if errs[0].Phase != "semantic" {
		t.Errorf("phase = %q, want semantic", errs[0].Phase)
	}
}

func TestValidate_DuplicateVersion(t *testing.T) {
	line := TimingLine{Kind: Uninherited, Meter: 4, MsPerBeat: 500, Sampleset: SamplesetSoft, Volume: 50}
	s := &Set{Beatmaps: []*Beatmap{
		{Mode: ModeStandard, Metadata: Metadata{Version: "Hard"}, TimingLines: []TimingLine{line}},
		{Mode: ModeStandard, Metadata: Metadata{Version: "Hard"}, TimingLines: []TimingLine{line}},
	}}
	errs := Validate(s)
	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "duplicate version") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected duplicate version error, got %v", errs)
	}
}

func TestGenerateJSONSchema(t *testing.T) {
	data, err := GenerateJSONSchema()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc["$id"] != SchemaID {
		t.Errorf("$id = %v", doc["$id"])
	}
	if !strings.Contains(string(data), `"uninherited"`) {
		t.Error("schema should enumerate timing line kinds")
	}
}

func TestDifficulty_TextRoundTrip(t *testing.T) {
	for _, d := range Difficulties {
		text, err := d.MarshalText()
		if err != nil {
			t.Fatalf("%v: %v", d, err)
		}
		var back Difficulty
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("%s: %v", text, err)
		}
		if back != d {
			t.Errorf("round trip %v → %s → %v", d, text, back)
		}
	}
}

func TestInferDifficulty(t *testing.T) {
	tests := []struct {
		version string
		want    Difficulty
	}{
		{"Easy", Easy},
		{"Beginner", Easy},
		{"Normal", Normal},
		{"Hyper", Hard},
		{"Kantan's Hard", Hard},
		{"Insane", Insane},
		{"Extra", Expert},
		{"Collab", Insane},
	}
	for _, tt := range tests {
		if got := InferDifficulty(tt.version); got != tt.want {
			t.Errorf("InferDifficulty(%q) = %v, want %v", tt.version, got, tt.want)
		}
	}
}

func TestBeatmap_TierPrefersDeclared(t *testing.T) {
	hard := Hard
	b := &Beatmap{Difficulty: &hard, Metadata: Metadata{Version: "Easy"}}
	if b.Tier() != Hard {
		t.Errorf("tier = %v, want declared hard", b.Tier())
	}
}

func TestCircleRadius(t *testing.T) {
	tests := []struct {
		cs   float64
		want float64
	}{
		{0, 54.4},
		{4, 36.48},
		{5, 32},
		{10, 9.6},
	}
	for _, tt := range tests {
		got := DifficultySettings{CircleSize: tt.cs}.CircleRadius()
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("CircleRadius(cs=%v) = %v, want %v", tt.cs, got, tt.want)
		}
	}
}

func lines() []TimingLine {
	return []TimingLine{
		{Kind: Uninherited, Offset: 1000, Meter: 4, MsPerBeat: 500, Sampleset: SamplesetSoft, Volume: 60},
		{Kind: Inherited, Offset: 1000, Sampleset: SamplesetNormal, Volume: 40},
		{Kind: Inherited, Offset: 3000, Sampleset: SamplesetNormal, Volume: 80, Kiai: true},
		{Kind: Uninherited, Offset: 5000, Meter: 3, MsPerBeat: 400, Sampleset: SamplesetDrum, Volume: 90},
	}
}

func TestTimingLineAt(t *testing.T) {
	b := &Beatmap{TimingLines: lines()}
	tests := []struct {
		at         float64
		wantOffset float64
		wantKind   LineKind
	}{
		{0, 1000, Uninherited}, // before all lines: first line applies
		{1000, 1000, Inherited},
		{2999, 1000, Inherited},
		{3000, 3000, Inherited},
		{6000, 5000, Uninherited},
	}
	for _, tt := range tests {
		l, ok := b.TimingLineAt(tt.at)
		if !ok {
			t.Fatalf("TimingLineAt(%v): no line", tt.at)
		}
		if l.Offset != tt.wantOffset || l.Kind != tt.wantKind {
			t.Errorf("TimingLineAt(%v) = %v/%s, want %v/%s", tt.at, l.Offset, l.Kind, tt.wantOffset, tt.wantKind)
		}
	}
}

func TestUninheritedLineAt(t *testing.T) {
	b := &Beatmap{TimingLines: lines()}
	l, ok := b.UninheritedLineAt(4999)
	if !ok || l.Offset != 1000 || l.BPM() != 120 {
		t.Errorf("UninheritedLineAt(4999) = %+v", l)
	}
	l, _ = b.UninheritedLineAt(5000)
	if l.Meter != 3 || l.BPM() != 150 {
		t.Errorf("UninheritedLineAt(5000) = %+v", l)
	}
	if _, ok := (&Beatmap{}).UninheritedLineAt(0); ok {
		t.Error("expected no line for empty beatmap")
	}
}

func TestUninheritedLineAtOffset(t *testing.T) {
	b := &Beatmap{TimingLines: lines()}
	if _, ok := b.UninheritedLineAtOffset(5000.0000001); !ok {
		t.Error("expected drift below the grid to match")
	}
	if _, ok := b.UninheritedLineAtOffset(3000); ok {
		t.Error("inherited line must not match")
	}
	if got := len(b.UninheritedLines()); got != 2 {
		t.Errorf("uninherited lines = %d, want 2", got)
	}
}

func TestNextNonSpinner(t *testing.T) {
	b := &Beatmap{HitObjects: []HitObject{
		{Kind: KindSpinner, Time: 0, EndTime: 1000},
		{Kind: KindSpinner, Time: 1200, EndTime: 2000},
		{Kind: KindCircle, Time: 2500},
	}}
	next, ok := b.NextNonSpinner(0)
	if !ok || next.Time != 2500 {
		t.Errorf("NextNonSpinner(0) = %v, %v", next, ok)
	}
	if _, ok := b.NextNonSpinner(2500); ok {
		t.Error("expected no object after the last one")
	}
}

func TestSet_HasMode(t *testing.T) {
	s := &Set{Beatmaps: []*Beatmap{{Mode: ModeTaiko}, {Mode: ModeMania}}}
	if !s.HasMode(nil) {
		t.Error("empty mode list should match")
	}
	if s.HasMode([]Mode{ModeStandard, ModeCatch}) {
		t.Error("set has no osu or catch map")
	}
	if !s.HasMode([]Mode{ModeMania}) {
		t.Error("set has a mania map")
	}
}
