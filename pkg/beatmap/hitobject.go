package beatmap

import (
	"math"
	"strconv"
)

// ObjectKind tags the variant of a HitObject.
type ObjectKind string

const (
	KindCircle  ObjectKind = "circle"
	KindSlider  ObjectKind = "slider"
	KindSpinner ObjectKind = "spinner"
)

// Vec2 is a playfield position in osu!pixels.
type Vec2 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Distance returns the euclidean distance between two positions.
func (v Vec2) Distance(o Vec2) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// HitObject is a playable element. Kind selects which of the variant fields
// are meaningful: Nodes for sliders, EndTime for spinners.
type HitObject struct {
	Kind     ObjectKind `yaml:"kind"               json:"kind" jsonschema:"enum=circle,enum=slider,enum=spinner"`
	Time     float64    `yaml:"time"               json:"time" jsonschema:"minimum=0"`
	Position Vec2       `yaml:"position"           json:"position"`
	Nodes    []Vec2     `yaml:"nodes,omitempty"    json:"nodes,omitempty"`
	EndTime  float64    `yaml:"end_time,omitempty" json:"end_time,omitempty"`
}

func (h HitObject) String() string {
	return string(h.Kind) + "@" + strconv.FormatFloat(h.Time, 'f', -1, 64)
}

// IsCircle, IsSlider and IsSpinner test the variant tag.
func (h HitObject) IsCircle() bool  { return h.Kind == KindCircle }
func (h HitObject) IsSlider() bool  { return h.Kind == KindSlider }
func (h HitObject) IsSpinner() bool { return h.Kind == KindSpinner }

// NextHitObject returns the first hit object strictly after t.
func (b *Beatmap) NextHitObject(t float64) (HitObject, bool) {
	for _, h := range b.HitObjects {
		if h.Time > t {
			return h, true
		}
	}
	return HitObject{}, false
}

// NextNonSpinner returns the first object after t that is not a spinner,
// skipping over any chain of spinners in between.
func (b *Beatmap) NextNonSpinner(t float64) (HitObject, bool) {
	next, ok := b.NextHitObject(t)
	for ok && next.IsSpinner() {
		next, ok = b.NextHitObject(next.Time)
	}
	return next, ok
}
