// Package resources holds checks on files in the set folder that need to be
// inspected on disk: background videos and zero-byte files.
package resources

import (
	"fmt"
	"iter"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
)

const (
	AudioInVideoID    = "audio/audio-in-video"
	VideoResolutionID = "resources/video-resolution"
	ZeroBytesID       = "files/zero-bytes"
)

// Templates every video check declares besides its domain template.
const (
	TemplateLeavesFolder = "Leaves Folder"
	TemplateMissing      = "Missing"
	TemplateException    = "Exception"
)

// videoTemplates builds the template set of a video check: the domain
// template plus the probing outcome templates.
func videoTemplates(domain string, tmpl issue.Template, missing string) map[string]issue.Template {
	return map[string]issue.Template{
		domain: tmpl,
		TemplateLeavesFolder: issue.NewTemplate(issue.Problem,
			"\"{0}\" leaves the current song folder, which shouldn't ever happen.", issue.TextParam("path")).
			WithCause("The path of a video file goes outside the song folder."),
		TemplateMissing: issue.NewTemplate(issue.Warning, missing, issue.TextParam("path")).
			WithCause("A video file referenced by a difficulty is not in the song folder."),
		TemplateException: issue.NewTemplate(issue.Error,
			"\"{0}\" returned exception \"{1}\", so unable to check that.",
			issue.TextParam("path"), issue.TextParam("error")).
			WithCause("A video file could not be inspected."),
	}
}

// VideoPaths returns the distinct video paths referenced by the set's
// beatmaps, in order of first reference.
func VideoPaths(s *beatmap.Set) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, b := range s.Beatmaps {
		for _, v := range b.Videos {
			key := probe.Clean(v.Path)
			if seen[key] {
				continue
			}
			seen[key] = true
			paths = append(paths, v.Path)
		}
	}
	return paths
}

// ForEachVideo probes every video of the set and reports each one at most
// once: Missing, LeavesFolder and Failed outcomes with their own templates,
// and successfully probed files with the domain template when violates
// holds. A failure on one file does not stop the others from being probed.
func ForEachVideo(ts issue.Templates, s *beatmap.Set, p probe.Prober, domain string,
	violates func(probe.Properties) bool) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for _, v := range VideoPaths(s) {
			var i issue.Issue
			res := safeProbe(p, v)
			switch res.Status {
			case probe.Missing:
				i = ts.New(TemplateMissing, issue.Text(v))
			case probe.LeavesFolder:
				i = ts.New(TemplateLeavesFolder, issue.Text(v))
			case probe.Failed:
				i = ts.New(TemplateException, issue.Text(v), issue.Text(errText(res.Err)))
			default:
				if !violates(res.Properties) {
					continue
				}
				i = ts.New(domain, issue.Text(v))
			}
			if !yield(i) {
				return
			}
		}
	}
}

// safeProbe converts a panicking prober into a Failed result.
func safeProbe(p probe.Prober, path string) (res probe.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = probe.Failure("%v", r)
		}
	}()
	return p.Probe(path)
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// AudioInVideo flags background videos that carry audio channels.
func AudioInVideo(p probe.Prober) *check.Check {
	const domain = "Audio"
	return check.ForSet(AudioInVideoID, check.Metadata{
		Category: "Audio",
		Message:  "Audio channels in video.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose: "Preventing background videos from containing audio.",
			Reasoning: "Audio in a video is never played, since the song is played from its own file. " +
				"It only adds to the download size.",
		},
	}, videoTemplates(domain,
		issue.NewTemplate(issue.Problem, "\"{0}\"", issue.TextParam("path")).
			WithCause("A video file contains one or more audio channels."),
		"\"{0}\" is missing, so unable to check that. Make sure you've downloaded with video.",
	), func(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
		return ForEachVideo(ts, s, p, domain, func(props probe.Properties) bool {
			return props.HasVideo && props.AudioChannels > 0
		})
	})
}

// Largest accepted video resolution.
const (
	maxVideoWidth  = 1280
	maxVideoHeight = 720
)

// VideoResolution flags background videos larger than 1280x720.
func VideoResolution(p probe.Prober) *check.Check {
	const domain = "Resolution"
	return check.ForSet(VideoResolutionID, check.Metadata{
		Category: "Resources",
		Message:  "Too high video resolution.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose: fmt.Sprintf("Keeping background videos at or below %dx%d.", maxVideoWidth, maxVideoHeight),
			Reasoning: "The video sits behind the playfield and is usually dimmed, so higher resolutions " +
				"add download size and decoding cost without being noticeable.",
		},
	}, videoTemplates(domain,
		issue.NewTemplate(issue.Problem, "\"{0}\"", issue.TextParam("path")).
			WithCause(fmt.Sprintf("A video file is wider than %d or taller than %d pixels.", maxVideoWidth, maxVideoHeight)),
		"\"{0}\" is missing, so unable to check that.",
	), func(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
		return ForEachVideo(ts, s, p, domain, func(props probe.Properties) bool {
			return props.Width > maxVideoWidth || props.Height > maxVideoHeight
		})
	})
}
