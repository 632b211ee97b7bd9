package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ormasoftchile/mapcheck/pkg/checks/all"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

func TestParseTestSpec(t *testing.T) {
	spec, err := ParseTestSpec([]byte(`
description: redundant red line
checks: [timing/]
expected_issues:
  - check: timing/unused-lines
    template: Problem Nothing
    severity: problem
    count: 1
must_not_emit: [spread/]
expected_total: 1
max_severity: problem
probe_files:
  - {path: bg.mp4, has_video: true, width: 640, height: 480}
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.ExpectedIssues) != 1 || *spec.ExpectedIssues[0].Severity != issue.Problem {
		t.Errorf("expected_issues = %+v", spec.ExpectedIssues)
	}
	if *spec.ExpectedTotal != 1 || *spec.MaxSeverity != issue.Problem {
		t.Errorf("spec = %+v", spec)
	}
	if len(spec.ProbeFiles) != 1 || spec.ProbeFiles[0].Width != 640 {
		t.Errorf("probe_files = %+v", spec.ProbeFiles)
	}
}

func TestParseTestSpec_Rejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field": "expect: []\n",
		"missing check": "expected_issues: [{template: X}]\n",
		"bad severity":  "max_severity: fatal\n",
	} {
		if _, err := ParseTestSpec([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func testIssues() []issue.Issue {
	ts := issue.NewTemplates("timing/unused-lines", map[string]issue.Template{
		"Problem Nothing": issue.NewTemplate(issue.Problem, "{0} Changes nothing.", issue.TimestampParam()),
	})
	return []issue.Issue{
		ts.New("Problem Nothing", issue.Time(8000)),
		issue.Failure("spread/close-overlap", "Easy", "boom"),
	}
}

func TestEvaluate(t *testing.T) {
	one, total := 1, 2
	sev := issue.Problem
	spec := &TestSpec{
		ExpectedIssues: []ExpectedIssue{
			{Check: "timing/", Message: "/Changes nothing/", Count: &one},
			{Check: "timing/unused-lines", Severity: &sev},
		},
		MustNotEmit:   []string{"metadata/"},
		ExpectedTotal: &total,
	}
	for _, r := range Evaluate(spec, testIssues()) {
		if !r.Passed {
			t.Errorf("unexpected failure: %s", r.Message)
		}
	}
}

func TestEvaluate_Failures(t *testing.T) {
	warn := issue.Warning
	spec := &TestSpec{
		ExpectedIssues: []ExpectedIssue{{Check: "timing/unused-lines", Template: "Warning Nothing"}},
		MustNotEmit:    []string{"spread/"},
		MaxSeverity:    &warn,
	}
	results := Evaluate(spec, testIssues())
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for _, r := range results {
		if r.Passed {
			t.Errorf("%s should fail: %s", r.Type, r.Message)
		}
	}
	if results[2].Actual != "error" {
		t.Errorf("max severity actual = %q", results[2].Actual)
	}
}

func TestCompareValue(t *testing.T) {
	tests := []struct {
		expected, actual string
		want             bool
	}{
		{"hello", "hello", true},
		{"hello", "world", false},
		{"/^00:0\\d/", "00:08:000 -  x", true},
		{"/[/", "anything", false},
	}
	for _, tt := range tests {
		if got := compareValue(tt.expected, tt.actual); got != tt.want {
			t.Errorf("compareValue(%q, %q) = %v, want %v", tt.expected, tt.actual, got, tt.want)
		}
	}
}

func TestRunAll_Golden(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata", "scenarios")
	r := &Runner{Registry: all.Registry}
	out, err := r.RunAll(dir)
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.Total < 5 {
		t.Errorf("discovered %d scenarios, want at least 5", out.Summary.Total)
	}
	for _, s := range out.Scenarios {
		if s.Status != "passed" {
			t.Errorf("scenario %s: %s %s", s.ScenarioName, s.Status, s.Error)
			for _, a := range s.Assertions {
				if !a.Passed {
					t.Errorf("  %s", a.Message)
				}
			}
		}
	}
}

func TestRunScenario_Statuses(t *testing.T) {
	dir := t.TempDir()
	write := func(name, file, content string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, name, file), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("no-spec", SetFile, "beatmaps: []\n")
	write("broken-set", SetFile, "beatmaps: []\n")
	write("broken-set", SpecFile, "expected_total: 0\n")
	write("not-a-scenario", "notes.txt", "ignored")

	r := &Runner{Registry: all.Registry}
	out, err := r.RunAll(dir)
	if err != nil {
		t.Fatal(err)
	}
	if out.Summary.Total != 2 || out.Summary.Skipped != 1 || out.Summary.Errors != 1 {
		t.Errorf("summary = %+v", out.Summary)
	}
}
