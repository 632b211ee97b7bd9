// Package scenario implements the golden-scenario harness: a directory per
// scenario holding a beatmapset fixture and a test.yaml declaring the
// issues the built-in checks must and must not emit for it.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
)

// TestSpec declares what to assert about the issues of one scenario.
// All fields are optional; omitted fields produce no assertions.
type TestSpec struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Checks restricts the run to these check IDs or "category/" prefixes.
	Checks []string `yaml:"checks,omitempty" json:"checks,omitempty"`
	// ProbeFiles replaces the on-disk prober with recorded file properties.
	ProbeFiles []probe.StaticFile `yaml:"probe_files,omitempty" json:"probe_files,omitempty"`

	ExpectedIssues []ExpectedIssue `yaml:"expected_issues,omitempty" json:"expected_issues,omitempty"`
	MustNotEmit    []string        `yaml:"must_not_emit,omitempty" json:"must_not_emit,omitempty"` // check IDs or prefixes
	ExpectedTotal  *int            `yaml:"expected_total,omitempty" json:"expected_total,omitempty"`
	MaxSeverity    *issue.Severity `yaml:"max_severity,omitempty" json:"max_severity,omitempty"`
	Tags           []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// ExpectedIssue matches issues by any combination of fields. Message
// accepts /pattern/ for a regular expression match. Count, when set,
// requires exactly that many matches; otherwise at least one.
type ExpectedIssue struct {
	Check    string          `yaml:"check" json:"check"`
	Template string          `yaml:"template,omitempty" json:"template,omitempty"`
	Beatmap  string          `yaml:"beatmap,omitempty" json:"beatmap,omitempty"`
	Severity *issue.Severity `yaml:"severity,omitempty" json:"severity,omitempty"`
	Message  string          `yaml:"message,omitempty" json:"message,omitempty"`
	Count    *int            `yaml:"count,omitempty" json:"count,omitempty"`
}

// LoadTestSpec loads a test spec from a YAML file.
func LoadTestSpec(path string) (*TestSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test spec: %w", err)
	}
	return ParseTestSpec(data)
}

// ParseTestSpec parses test spec YAML, rejecting unknown fields.
func ParseTestSpec(data []byte) (*TestSpec, error) {
	var s TestSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse test spec: %w", err)
	}
	for i, e := range s.ExpectedIssues {
		if e.Check == "" {
			return nil, fmt.Errorf("parse test spec: expected_issues[%d]: check is required", i)
		}
	}
	return &s, nil
}

// AssertionResult is the result of a single assertion.
type AssertionResult struct {
	Type     string `json:"type"` // expected_issue, must_not_emit, expected_total, max_severity, trace_chain
	Key      string `json:"key,omitempty"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
	Message  string `json:"message,omitempty"`
}

// Evaluate runs all assertions from a TestSpec against the emitted issues.
func Evaluate(spec *TestSpec, issues []issue.Issue) []AssertionResult {
	var results []AssertionResult

	for _, e := range spec.ExpectedIssues {
		n := 0
		for _, i := range issues {
			if e.matches(i) {
				n++
			}
		}
		expected, passed := "at least 1", n > 0
		if e.Count != nil {
			expected, passed = fmt.Sprint(*e.Count), n == *e.Count
		}
		results = append(results, AssertionResult{
			Type:     "expected_issue",
			Key:      e.String(),
			Expected: expected,
			Actual:   fmt.Sprint(n),
			Passed:   passed,
			Message:  fmt.Sprintf("expected_issue %s: expected %s, got %d", e, expected, n),
		})
	}

	for _, id := range spec.MustNotEmit {
		n := 0
		for _, i := range issues {
			if matchesCheck(i.Check, id) {
				n++
			}
		}
		results = append(results, AssertionResult{
			Type:     "must_not_emit",
			Key:      id,
			Expected: "0",
			Actual:   fmt.Sprint(n),
			Passed:   n == 0,
			Message:  fmt.Sprintf("must_not_emit %q: %d issues", id, n),
		})
	}

	if spec.ExpectedTotal != nil {
		results = append(results, AssertionResult{
			Type:     "expected_total",
			Expected: fmt.Sprint(*spec.ExpectedTotal),
			Actual:   fmt.Sprint(len(issues)),
			Passed:   len(issues) == *spec.ExpectedTotal,
			Message:  fmt.Sprintf("total: expected %d, got %d", *spec.ExpectedTotal, len(issues)),
		})
	}

	if spec.MaxSeverity != nil {
		worst := "none"
		passed := true
		if len(issues) > 0 {
			top := slices.MaxFunc(issues, func(a, b issue.Issue) int { return int(a.Severity) - int(b.Severity) }).Severity
			worst = top.String()
			passed = top <= *spec.MaxSeverity
		}
		results = append(results, AssertionResult{
			Type:     "max_severity",
			Expected: spec.MaxSeverity.String(),
			Actual:   worst,
			Passed:   passed,
			Message:  fmt.Sprintf("max severity: expected at most %s, got %s", spec.MaxSeverity, worst),
		})
	}

	return results
}

// HasFailures returns true if any assertion failed.
func HasFailures(results []AssertionResult) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}

func (e ExpectedIssue) matches(i issue.Issue) bool {
	if !matchesCheck(i.Check, e.Check) {
		return false
	}
	if e.Template != "" && i.Template != e.Template {
		return false
	}
	if e.Beatmap != "" && i.Beatmap != e.Beatmap {
		return false
	}
	if e.Severity != nil && i.Severity != *e.Severity {
		return false
	}
	return e.Message == "" || compareValue(e.Message, i.Message())
}

func (e ExpectedIssue) String() string {
	parts := []string{e.Check}
	if e.Template != "" {
		parts = append(parts, e.Template)
	}
	if e.Beatmap != "" {
		parts = append(parts, "["+e.Beatmap+"]")
	}
	return strings.Join(parts, " ")
}

// matchesCheck reports whether id equals pattern, or starts with it when
// pattern ends in "/".
func matchesCheck(id, pattern string) bool {
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(id, pattern)
	}
	return id == pattern
}

// compareValue supports two match modes:
//   - /pattern/ → regex match
//   - exact string equality (default)
func compareValue(expected, actual string) bool {
	if strings.HasPrefix(expected, "/") && strings.HasSuffix(expected, "/") && len(expected) > 2 {
		re, err := regexp.Compile(expected[1 : len(expected)-1])
		if err != nil {
			return false
		}
		return re.MatchString(actual)
	}
	return expected == actual
}
