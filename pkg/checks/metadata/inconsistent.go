// Package metadata holds the set-wide checks on song metadata: consistency
// between difficulties and the formatting of artist and title markers.
package metadata

import (
	"iter"
	"strings"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

const InconsistentID = "metadata/inconsistent"

// Inconsistent compares the metadata of every difficulty against the
// reference difficulty.
func Inconsistent() *check.Check {
	return check.ForSet(InconsistentID, check.Metadata{
		Category: "Metadata",
		Message:  "Inconsistent metadata.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose: "Keeping metadata consistent between all difficulties of a beatmapset.",
			Reasoning: "All difficulties are of the same song, so they should share its metadata. " +
				"The website assumes as much and only displays one artist, title and creator per set.",
		},
	}, map[string]issue.Template{
		"Tags": issue.NewTemplate(issue.Problem,
			"Inconsistent tags between {0} and {1}, difference being \"{2}\".",
			issue.BeatmapParam("difficulty"), issue.BeatmapParam("reference"), issue.TextParam("difference")).
			WithCause("A tag is present in one difficulty but missing in another. " +
				"Tag order and duplicate tags are ignored; only the set of tags is compared."),
		"Other Field": issue.NewTemplate(issue.Problem,
			"Inconsistent {0} fields between {1} and {2}; \"{3}\" and \"{4}\" respectively.",
			issue.TextParam("field"), issue.BeatmapParam("difficulty"), issue.BeatmapParam("reference"),
			issue.TextParam("value"), issue.TextParam("reference value")).
			WithCause("A metadata field is not consistent between all difficulties."),
	}, inconsistent)
}

// field reads one compared metadata field. Absent unicode fields read as "".
type field struct {
	name string
	get  func(beatmap.Metadata) string
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var comparedFields = []field{
	{"artist", func(m beatmap.Metadata) string { return m.Artist }},
	{"unicode artist", func(m beatmap.Metadata) string { return deref(m.ArtistUnicode) }},
	{"title", func(m beatmap.Metadata) string { return m.Title }},
	{"unicode title", func(m beatmap.Metadata) string { return deref(m.TitleUnicode) }},
	{"source", func(m beatmap.Metadata) string { return m.Source }},
	{"creator", func(m beatmap.Metadata) string { return m.Creator }},
}

func inconsistent(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		ref := s.Reference()
		for _, b := range s.Beatmaps[1:] {
			for _, f := range comparedFields {
				value, refValue := f.get(b.Metadata), f.get(ref.Metadata)
				if value == refValue {
					continue
				}
				if !yield(ts.New("Other Field", issue.Text(f.name),
					issue.Beatmap(b.Version()), issue.Beatmap(ref.Version()),
					issue.Text(value), issue.Text(refValue))) {
					return
				}
			}
			if diff := TagDifference(ref.Metadata.Tags, b.Metadata.Tags); len(diff) > 0 {
				if !yield(ts.New("Tags", issue.Beatmap(b.Version()), issue.Beatmap(ref.Version()),
					issue.Text(strings.Join(diff, " ")))) {
					return
				}
			}
		}
	}
}

// TagDifference returns the tags present in exactly one of two
// whitespace-separated tag lists: first those only in a, then those only in
// b, each in order of first appearance.
func TagDifference(a, b string) []string {
	as, bs := strings.Fields(a), strings.Fields(b)
	inA, inB := toSet(as), toSet(bs)
	var diff []string
	seen := make(map[string]bool)
	add := func(tags []string, other map[string]bool) {
		for _, t := range tags {
			if !other[t] && !seen[t] {
				seen[t] = true
				diff = append(diff, t)
			}
		}
	}
	add(as, inB)
	add(bs, inA)
	return diff
}

func toSet(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}
