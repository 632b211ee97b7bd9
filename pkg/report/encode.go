package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

// Document is the machine-readable report of one checked set.
type Document struct {
	Source string         `json:"source"         yaml:"source"         msgpack:"source"`
	Counts map[string]int `json:"counts"         yaml:"counts"         msgpack:"counts"`
	Issues []Record       `json:"issues"         yaml:"issues"         msgpack:"issues"`
	Failed bool           `json:"failed"         yaml:"failed"         msgpack:"failed"`
}

// Record is one issue with its message rendered.
type Record struct {
	Check        string   `json:"check"                  yaml:"check"                  msgpack:"check"`
	Category     string   `json:"category,omitempty"     yaml:"category,omitempty"     msgpack:"category,omitempty"`
	Template     string   `json:"template"               yaml:"template"               msgpack:"template"`
	Severity     string   `json:"severity"               yaml:"severity"               msgpack:"severity"`
	Beatmap      string   `json:"beatmap,omitempty"      yaml:"beatmap,omitempty"      msgpack:"beatmap,omitempty"`
	Timestamp    *float64 `json:"timestamp,omitempty"    yaml:"timestamp,omitempty"    msgpack:"timestamp,omitempty"`
	End          *float64 `json:"end,omitempty"          yaml:"end,omitempty"          msgpack:"end,omitempty"`
	Message      string   `json:"message"                yaml:"message"                msgpack:"message"`
	Cause        string   `json:"cause,omitempty"        yaml:"cause,omitempty"        msgpack:"cause,omitempty"`
	Difficulties []string `json:"difficulties,omitempty" yaml:"difficulties,omitempty" msgpack:"difficulties,omitempty"`
}

// FailThreshold is the lowest severity that makes a run fail.
const FailThreshold = issue.Problem

// NewDocument builds the report of one set from its selected issues.
func NewDocument(source string, issues []issue.Issue, reg *check.Registry) Document {
	doc := Document{Source: source, Counts: map[string]int{}, Issues: make([]Record, 0, len(issues))}
	for _, i := range issues {
		doc.Counts[i.Severity.String()]++
		if i.Severity >= FailThreshold {
			doc.Failed = true
		}
		doc.Issues = append(doc.Issues, NewRecord(i, metaOf(reg, i.Check)))
	}
	return doc
}

// NewRecord flattens an issue for encoding.
func NewRecord(i issue.Issue, meta check.Metadata) Record {
	r := Record{
		Check:    i.Check,
		Category: meta.Category,
		Template: i.Template,
		Severity: i.Severity.String(),
		Beatmap:  i.Beatmap,
		Message:  i.Message(),
		Cause:    i.Cause,
	}
	if i.Timestamp != nil {
		ms := i.Timestamp.Millis()
		r.Timestamp = &ms
	}
	if i.End != nil {
		ms := i.End.Millis()
		r.End = &ms
	}
	for _, d := range i.Difficulties {
		r.Difficulties = append(r.Difficulties, d.String())
	}
	return r
}

// Encode writes v in one of the machine formats: json, yaml or msgpack.
func Encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "msgpack":
		return msgpack.NewEncoder(w).Encode(v)
	}
	return fmt.Errorf("unsupported format %q", format)
}
