// Package beatmap defines the parsed map model the checks run against.
//
// The model is produced by an external parser and is treated as read-only:
// nothing in this module mutates a Beatmap or Set after loading. The YAML
// form handled by Load is a serialization of this already-parsed model and
// not the original map file format.
package beatmap

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Mode is the game mode a beatmap is played in.
type Mode string

const (
	ModeStandard Mode = "osu"
	ModeTaiko    Mode = "taiko"
	ModeCatch    Mode = "catch"
	ModeMania    Mode = "mania"
)

// Modes lists every mode in declaration order.
var Modes = []Mode{ModeStandard, ModeTaiko, ModeCatch, ModeMania}

// Difficulty is the difficulty tier of a beatmap. Tiers are ordered, and the
// first three index the per-tier threshold tables used by spread checks.
type Difficulty int

const (
	Easy Difficulty = iota
	Normal
	Hard
	Insane
	Expert
	Ultra
)

// Difficulties lists every tier in ascending order.
var Difficulties = []Difficulty{Easy, Normal, Hard, Insane, Expert, Ultra}

var difficultyNames = [...]string{"easy", "normal", "hard", "insane", "expert", "ultra"}

func (d Difficulty) String() string {
	if d < 0 || int(d) >= len(difficultyNames) {
		return fmt.Sprintf("difficulty(%d)", int(d))
	}
	return difficultyNames[d]
}

// ParseDifficulty parses a tier name, case-insensitively.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range difficultyNames {
		if name == s {
			return Difficulty(i), nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(difficultyNames) {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(difficultyNames[d]), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// JSONSchema describes Difficulty as its textual enum.
func (Difficulty) JSONSchema() *jsonschema.Schema {
	enum := make([]any, len(difficultyNames))
	for i, n := range difficultyNames {
		enum[i] = n
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// Metadata holds the song and mapper fields of a beatmap. The unicode
// variants are absent in old file versions and are nil in that case.
type Metadata struct {
	Artist        string  `yaml:"artist"                   json:"artist"`
	ArtistUnicode *string `yaml:"artist_unicode,omitempty" json:"artist_unicode,omitempty"`
	Title         string  `yaml:"title"                    json:"title"`
	TitleUnicode  *string `yaml:"title_unicode,omitempty"  json:"title_unicode,omitempty"`
	Source        string  `yaml:"source,omitempty"         json:"source,omitempty"`
	Creator       string  `yaml:"creator"                  json:"creator"`
	Tags          string  `yaml:"tags,omitempty"           json:"tags,omitempty"`
	Version       string  `yaml:"version"                  json:"version" jsonschema:"minLength=1"`
}

// DifficultySettings holds the numeric difficulty sliders of a beatmap.
type DifficultySettings struct {
	HPDrain           float64 `yaml:"hp"                           json:"hp"                jsonschema:"minimum=0,maximum=10"`
	CircleSize        float64 `yaml:"cs"                           json:"cs"                jsonschema:"minimum=0,maximum=10"`
	OverallDifficulty float64 `yaml:"od"                           json:"od"                jsonschema:"minimum=0,maximum=10"`
	ApproachRate      float64 `yaml:"ar"                           json:"ar"                jsonschema:"minimum=0,maximum=10"`
	SliderMultiplier  float64 `yaml:"slider_multiplier,omitempty"  json:"slider_multiplier,omitempty"`
	SliderTickRate    float64 `yaml:"slider_tick_rate,omitempty"   json:"slider_tick_rate,omitempty"`
}

// CircleRadius returns the hit circle radius in osu!pixels for the
// configured circle size.
func (s DifficultySettings) CircleRadius() float64 {
	return 32 * (1 - 0.7*(s.CircleSize-5)/5)
}

// Video is a background video referenced from the events section.
type Video struct {
	Offset float64 `yaml:"offset,omitempty" json:"offset,omitempty"`
	Path   string  `yaml:"path"             json:"path" jsonschema:"minLength=1"`
}

// StoryHitSound is a sample played by the storyboard at a fixed time.
type StoryHitSound struct {
	Time   float64 `yaml:"time"   json:"time"`
	Path   string  `yaml:"path"   json:"path"`
	Volume float64 `yaml:"volume" json:"volume" jsonschema:"minimum=0,maximum=100"`
}

// Storyboard is the set-wide storyboard side file.
type Storyboard struct {
	StoryHitSounds []StoryHitSound `yaml:"story_hitsounds,omitempty" json:"story_hitsounds,omitempty"`
}

// Beatmap is one playable difficulty of a song.
type Beatmap struct {
	Mode           Mode               `yaml:"mode"                      json:"mode" jsonschema:"enum=osu,enum=taiko,enum=catch,enum=mania"`
	Difficulty     *Difficulty        `yaml:"difficulty,omitempty"      json:"difficulty,omitempty"`
	Metadata       Metadata           `yaml:"metadata"                  json:"metadata"`
	Settings       DifficultySettings `yaml:"settings"                  json:"settings"`
	HitObjects     []HitObject        `yaml:"hit_objects,omitempty"     json:"hit_objects,omitempty"`
	TimingLines    []TimingLine       `yaml:"timing_lines"              json:"timing_lines"`
	Videos         []Video            `yaml:"videos,omitempty"          json:"videos,omitempty"`
	StoryHitSounds []StoryHitSound    `yaml:"story_hitsounds,omitempty" json:"story_hitsounds,omitempty"`
}

// Version returns the difficulty name of the beatmap.
func (b *Beatmap) Version() string {
	return b.Metadata.Version
}

// String identifies the beatmap in messages.
func (b *Beatmap) String() string {
	return "[" + b.Metadata.Version + "]"
}

// Tier returns the declared difficulty tier, or one inferred from the
// version name when none is declared.
func (b *Beatmap) Tier() Difficulty {
	if b.Difficulty != nil {
		return *b.Difficulty
	}
	return InferDifficulty(b.Metadata.Version)
}

// tierKeywords maps version-name keywords to tiers, checked from the
// hardest tier down so "Insane Hard" style names resolve upwards.
var tierKeywords = []struct {
	tier  Difficulty
	words []string
}{
	{Ultra, []string{"ultra"}},
	{Expert, []string{"expert", "extra", "extreme"}},
	{Insane, []string{"insane", "another", "lunatic"}},
	{Hard, []string{"hard", "advanced", "hyper"}},
	{Normal, []string{"normal", "medium", "basic"}},
	{Easy, []string{"easy", "beginner", "novice", "cup"}},
}

// InferDifficulty guesses a tier from a version name. Names without a
// recognised keyword are treated as Insane.
func InferDifficulty(version string) Difficulty {
	v := strings.ToLower(version)
	for _, tk := range tierKeywords {
		for _, w := range tk.words {
			if strings.Contains(v, w) {
				return tk.tier
			}
		}
	}
	return Insane
}

// Set is the group of all difficulties of one song.
type Set struct {
	Beatmaps   []*Beatmap  `yaml:"beatmaps"             json:"beatmaps" jsonschema:"minItems=1"`
	Storyboard *Storyboard `yaml:"storyboard,omitempty" json:"storyboard,omitempty"`
	Files      []string    `yaml:"files,omitempty"      json:"files,omitempty"`
}

// Reference returns the first beatmap of the set, the conventional
// reference for set-wide comparisons.
func (s *Set) Reference() *Beatmap {
	if len(s.Beatmaps) == 0 {
		return nil
	}
	return s.Beatmaps[0]
}

// HasMode reports whether any beatmap of the set is of one of the given
// modes. An empty mode list matches every set.
func (s *Set) HasMode(modes []Mode) bool {
	if len(modes) == 0 {
		return true
	}
	for _, b := range s.Beatmaps {
		if b.IsMode(modes) {
			return true
		}
	}
	return false
}

// IsMode reports whether the beatmap is of one of the given modes. An empty
// mode list matches every beatmap.
func (b *Beatmap) IsMode(modes []Mode) bool {
	if len(modes) == 0 {
		return true
	}
	for _, m := range modes {
		if b.Mode == m {
			return true
		}
	}
	return false
}

// Beatmap returns the beatmap with the given version name.
func (s *Set) Beatmap(version string) (*Beatmap, bool) {
	for _, b := range s.Beatmaps {
		if b.Metadata.Version == version {
			return b, true
		}
	}
	return nil, false
}
