package resources

import (
	"fmt"
	"iter"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
)

// ZeroBytes flags empty files in the set folder.
func ZeroBytes(p probe.Prober) *check.Check {
	return check.ForSet(ZeroBytesID, check.Metadata{
		Category: "Files",
		Message:  "0-byte files.",
		Author:   "Naxess",
		Documentation: check.Documentation{
			Purpose:   "Preventing empty files from being uploaded.",
			Reasoning: "Empty files fail to upload and usually point to a file that was not saved or exported properly.",
		},
	}, map[string]issue.Template{
		"0-byte": issue.NewTemplate(issue.Problem, "\"{0}\"", issue.TextParam("path")).
			WithCause("A file in the song folder contains no data."),
		TemplateException: issue.NewTemplate(issue.Error, "\"{0}\" threw \"{1}\"",
			issue.TextParam("path"), issue.TextParam("error")).
			WithCause("The size of a file could not be read."),
	}, func(ts issue.Templates, s *beatmap.Set) iter.Seq[issue.Issue] {
		return func(yield func(issue.Issue) bool) {
			for _, f := range s.Files {
				n, err := safeSize(p, f)
				var i issue.Issue
				switch {
				case err != nil:
					i = ts.New(TemplateException, issue.Text(f), issue.Text(err.Error()))
				case n == 0:
					i = ts.New("0-byte", issue.Text(f))
				default:
					continue
				}
				if !yield(i) {
					return
				}
			}
		}
	})
}

// safeSize converts a panicking prober into an error for that file alone.
func safeSize(p probe.Prober, path string) (n int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return p.Size(path)
}
