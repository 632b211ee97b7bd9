package beatmap

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads and structurally decodes a beatmapset YAML document.
// Returns a structural error if the YAML contains unknown fields.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open beatmapset: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a beatmapset document from a reader.
func Load(r io.Reader) (*Set, error) {
	var s Set
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // strict: reject unknown fields
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	normalizeOffsets(&s)
	return &s, nil
}

// LoadBeatmap reads a single beatmap document and wraps it in a one-map set.
func LoadBeatmap(r io.Reader) (*Set, error) {
	var b Beatmap
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("structural decode: %w", err)
	}
	s := &Set{Beatmaps: []*Beatmap{&b}}
	normalizeOffsets(s)
	return s, nil
}

// normalizeOffsets snaps every timing-line offset to the comparison grid so
// that set-wide checks can compare offsets exactly.
func normalizeOffsets(s *Set) {
	for _, b := range s.Beatmaps {
		if b == nil {
			continue
		}
		for i := range b.TimingLines {
			b.TimingLines[i].Offset = NormalizeOffset(b.TimingLines[i].Offset)
		}
	}
}
