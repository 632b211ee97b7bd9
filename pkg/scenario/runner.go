package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
	"github.com/ormasoftchile/mapcheck/pkg/trace"
)

// File names inside a scenario directory.
const (
	SetFile  = "beatmapset.yaml"
	SpecFile = "test.yaml"
)

// TestResult is the result of running one scenario.
type TestResult struct {
	ScenarioName string            `json:"scenario_name"`
	Status       string            `json:"status"` // passed, failed, skipped, error
	DurationMs   int64             `json:"duration_ms"`
	Issues       int               `json:"issues"`
	Assertions   []AssertionResult `json:"assertions,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// TestSummary aggregates counts across scenarios.
type TestSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// TestOutput is the top-level output of a test run.
type TestOutput struct {
	Dir       string       `json:"dir"`
	Scenarios []TestResult `json:"scenarios"`
	Summary   TestSummary  `json:"summary"`
}

// Runner executes scenarios against a registry of checks.
type Runner struct {
	// Registry builds the checks to run, given the scenario's prober.
	Registry func(probe.Prober) *check.Registry
	Timeout  time.Duration
	FailFast bool
}

// ScenarioInfo describes a discovered scenario directory.
type ScenarioInfo struct {
	Name string
	Dir  string
}

// DiscoverScenarios finds scenario directories under dir: every
// subdirectory that holds a beatmapset.yaml.
func DiscoverScenarios(dir string) ([]ScenarioInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios dir: %w", err)
	}
	var scenarios []ScenarioInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		sub := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(sub, SetFile)); err == nil {
			scenarios = append(scenarios, ScenarioInfo{Name: entry.Name(), Dir: sub})
		}
	}
	return scenarios, nil
}

// RunAll discovers and runs all scenarios under dir.
func (r *Runner) RunAll(dir string) (*TestOutput, error) {
	scenarios, err := DiscoverScenarios(dir)
	if err != nil {
		return nil, err
	}
	output := &TestOutput{Dir: dir}
	for _, si := range scenarios {
		result := r.RunScenario(si)
		output.Scenarios = append(output.Scenarios, result)

		switch result.Status {
		case "passed":
			output.Summary.Passed++
		case "failed":
			output.Summary.Failed++
		case "skipped":
			output.Summary.Skipped++
		case "error":
			output.Summary.Errors++
		}
		output.Summary.Total++

		if r.FailFast && (result.Status == "failed" || result.Status == "error") {
			break
		}
	}
	return output, nil
}

// RunScenario runs one scenario and evaluates its test spec.
func (r *Runner) RunScenario(si ScenarioInfo) TestResult {
	start := time.Now()
	result := func(status string, err error) TestResult {
		tr := TestResult{ScenarioName: si.Name, Status: status, DurationMs: time.Since(start).Milliseconds()}
		if err != nil {
			tr.Error = err.Error()
		}
		return tr
	}

	specPath := filepath.Join(si.Dir, SpecFile)
	if _, err := os.Stat(specPath); err != nil {
		return result("skipped", nil)
	}
	spec, err := LoadTestSpec(specPath)
	if err != nil {
		return result("error", fmt.Errorf("load test spec: %w", err))
	}

	set, verrs := beatmap.ValidateFile(filepath.Join(si.Dir, SetFile))
	if beatmap.HasErrors(verrs) {
		return result("error", fmt.Errorf("beatmapset validation failed: %s", firstError(verrs)))
	}

	var prober probe.Prober = probe.NewFolder(si.Dir)
	if len(spec.ProbeFiles) > 0 {
		prober = probe.NewStatic(spec.ProbeFiles)
	}
	if r.Registry == nil {
		return result("error", fmt.Errorf("runner has no registry"))
	}
	reg := r.Registry(prober)
	if len(spec.Checks) > 0 {
		reg = reg.Select(spec.Checks, nil)
	}

	var traceBuf bytes.Buffer
	tw := trace.NewWriter(&traceBuf, "test-"+si.Name)
	d := check.NewDispatcher(reg, check.WithTrace(tw))

	issues, err := r.collect(d, si.Name, set)
	if err != nil {
		return result("error", err)
	}

	assertions := Evaluate(spec, issues)
	assertions = append(assertions, verifyTrace(&traceBuf))

	tr := result("passed", nil)
	tr.Issues = len(issues)
	tr.Assertions = assertions
	if HasFailures(assertions) {
		tr.Status = "failed"
	}
	return tr
}

// collect runs the dispatcher, bounded by the runner timeout if set.
func (r *Runner) collect(d *check.Dispatcher, name string, s *beatmap.Set) ([]issue.Issue, error) {
	if r.Timeout <= 0 {
		return d.Collect(name, s).Items(), nil
	}
	done := make(chan []issue.Issue, 1)
	go func() {
		done <- d.Collect(name, s).Items()
	}()
	select {
	case issues := <-done:
		return issues, nil
	case <-time.After(r.Timeout):
		return nil, fmt.Errorf("timeout after %s", r.Timeout)
	}
}

func verifyTrace(buf *bytes.Buffer) AssertionResult {
	res, err := trace.Verify(buf)
	if err != nil {
		return AssertionResult{Type: "trace_chain", Expected: "valid", Actual: "unreadable", Message: err.Error()}
	}
	passed := res.Valid && res.Complete
	actual := "valid"
	switch {
	case !res.Valid:
		actual = fmt.Sprintf("broken at event %d", res.BrokenAt)
	case !res.Complete:
		actual = "incomplete"
	}
	return AssertionResult{
		Type:     "trace_chain",
		Expected: "valid",
		Actual:   actual,
		Passed:   passed,
		Message:  fmt.Sprintf("trace chain: %s (%d events)", actual, res.EventCount),
	}
}

func firstError(errs []*beatmap.ValidationError) string {
	i := slices.IndexFunc(errs, func(e *beatmap.ValidationError) bool { return e.Severity == "error" })
	if i < 0 {
		return ""
	}
	return errs[i].Error()
}
