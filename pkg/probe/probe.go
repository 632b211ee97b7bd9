// Package probe inspects media files referenced by a beatmapset.
//
// Probing never returns an error: every outcome, including an unexpected
// failure inside a decoder, is a Result with a Status, so callers can turn
// each file into at most one issue and move on to the next file.
package probe

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// Status classifies the outcome of probing one file.
type Status uint8

const (
	// OK means Properties holds the decoded stream properties.
	OK Status = iota
	// Missing means the file is not present in the set folder.
	Missing
	// LeavesFolder means the path points outside the set folder.
	LeavesFolder
	// Failed means the file exists but could not be inspected; Err says why.
	Failed
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Missing:
		return "missing"
	case LeavesFolder:
		return "leaves-folder"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Properties are the stream properties the checks look at.
type Properties struct {
	Format        Format `json:"format"         yaml:"format"`
	HasVideo      bool   `json:"has_video"      yaml:"has_video"`
	AudioChannels int    `json:"audio_channels" yaml:"audio_channels"`
	Width         int    `json:"width"          yaml:"width"`
	Height        int    `json:"height"         yaml:"height"`
}

// Result is the outcome of probing one file.
type Result struct {
	Status     Status
	Properties Properties
	Err        error
}

// Failure builds a Failed result.
func Failure(format string, args ...any) Result {
	return Result{Status: Failed, Err: fmt.Errorf(format, args...)}
}

// Prober inspects files by path relative to the set folder.
type Prober interface {
	Probe(path string) Result
	// Size returns the size of a file in bytes.
	Size(path string) (int64, error)
}

// Escapes reports whether a set-relative path leaves the set folder.
// Backslashes count as separators, as map files are often written on
// Windows.
func Escapes(p string) bool {
	return !filepath.IsLocal(localPath(p))
}

// Clean returns the canonical slash-separated form of a set-relative path.
func Clean(p string) string {
	return path.Clean(strings.ReplaceAll(p, `\`, "/"))
}

func localPath(p string) string {
	return filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
}
