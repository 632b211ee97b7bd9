package metadata

import (
	"iter"
	"regexp"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

const (
	MarkerFormatID  = "metadata/marker-format"
	VersionFormatID = "metadata/version-format"
)

// marker pairs a loose pattern for some spelling of a marker with the exact
// spelling it should use.
type marker struct {
	loose, exact *regexp.Regexp
}

// misspelled reports whether s contains some form of the marker but not
// its exact spelling.
func (m marker) misspelled(s string) bool {
	return m.loose.MatchString(s) && !m.exact.MatchString(s)
}

var (
	vsMarker = marker{
		loose: regexp.MustCompile(`(?i)( vs.)`),
		exact: regexp.MustCompile(`vs\.`),
	}
	cvMarker = marker{
		loose: regexp.MustCompile(`(?i)((\(| )cv(:|：)?.)`),
		exact: regexp.MustCompile(`CV(:|：)`),
	}
	featMarker = marker{
		loose: regexp.MustCompile(`(?i)((\(| )(ft|feat)(\.)?.)`),
		exact: regexp.MustCompile(`feat\.`),
	}

	tvSizeMarker = marker{
		loose: regexp.MustCompile(`(?i)(tv.(size|ver))`),
		exact: regexp.MustCompile(`\(TV Size\)`),
	}
)

// MarkerFormat flags artist and title fields of the reference difficulty
// that spell "vs.", "CV:" or "feat." in a non-standard way.
func MarkerFormat() *check.Check {
	return check.ForSet(MarkerFormatID, check.Metadata{
		Category: "Metadata",
		Message:  "Incorrect marker format.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose: `Standardizing the way metadata is written for ranked content, e.g. "featured by" should be "feat.".`,
			Reasoning: "Standard spellings remove small deviations and obvious formatting mistakes, " +
				"and keep metadata consistent across official content.",
		},
	}, map[string]issue.Template{
		"Wrong Format": issue.NewTemplate(issue.Problem,
			"{0} {1} field, \"{2}\".",
			issue.TextParam("romanized/unicode"), issue.TextParam("artist/title"), issue.TextParam("field")).
			WithCause(`The artist or title field of a difficulty includes an incorrect format of "CV:", "vs." or "feat.".`),
	}, markerFormat)
}

func markerFormat(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
	wrong := func(v string) bool {
		return vsMarker.misspelled(v) || cvMarker.misspelled(v) || featMarker.misspelled(v)
	}
	return func(yield func(issue.Issue) bool) {
		for _, f := range titleFields(s.Reference().Metadata, true) {
			if wrong(f.value) && !yield(ts.New("Wrong Format", issue.Text(f.variant), issue.Text(f.name), issue.Text(f.value))) {
				return
			}
		}
	}
}

// versionMarkers are tested in order against the reference title fields.
// All three are matched with the TV Size patterns, as the established rule
// set does; whether Game Ver. and Short Ver. should use patterns of their
// own is an open product question.
var versionMarkers = []struct {
	template string
	marker   marker
}{
	{"TV Size", tvSizeMarker},
	{"Game Ver", tvSizeMarker},
	{"Short Ver", tvSizeMarker},
}

// VersionFormat flags titles that spell (TV Size), (Game Ver.) or
// (Short Ver.) in a non-standard way.
func VersionFormat() *check.Check {
	tmpl := func(marker string) issue.Template {
		return issue.NewTemplate(issue.Unrankable,
			"{0} title field; \"{1}\" incorrect format of "+marker+".",
			issue.TextParam("romanized/unicode"), issue.TextParam("field")).
			WithCause(`The format of "` + marker + `" in either the romanized or unicode title is incorrect.`)
	}
	return check.ForSet(VersionFormatID, check.Metadata{
		Category: "Metadata",
		Message:  "Incorrect format of (TV Size) / (Game Ver.) / (Short Ver.) in title.",
		Author:   "Naxess",
	}, map[string]issue.Template{
		"TV Size":   tmpl("(TV Size)"),
		"Game Ver":  tmpl("(Game Ver.)"),
		"Short Ver": tmpl("(Short Ver.)"),
	}, versionFormat)
}

func versionFormat(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		fields := titleFields(s.Reference().Metadata, false)
		for _, vm := range versionMarkers {
			for _, f := range fields {
				if vm.marker.misspelled(f.value) && !yield(ts.New(vm.template, issue.Text(f.variant), issue.Text(f.value))) {
					return
				}
			}
		}
	}
}

type titleField struct {
	variant string // Romanized or Unicode
	name    string // artist or title
	value   string
}

// titleFields lists the romanized and unicode title fields, and the artist
// fields before them when withArtist is set. Absent unicode fields are
// skipped.
func titleFields(m beatmap.Metadata, withArtist bool) []titleField {
	var out []titleField
	if withArtist {
		out = append(out, titleField{"Romanized", "artist", m.Artist})
		if m.ArtistUnicode != nil {
			out = append(out, titleField{"Unicode", "artist", *m.ArtistUnicode})
		}
	}
	out = append(out, titleField{"Romanized", "title", m.Title})
	if m.TitleUnicode != nil {
		out = append(out, titleField{"Unicode", "title", *m.TitleUnicode})
	}
	return out
}
