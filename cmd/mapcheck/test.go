package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ormasoftchile/mapcheck/pkg/checks/all"
	"github.com/ormasoftchile/mapcheck/pkg/scenario"
)

var (
	testScenario string
	testJSON     bool
	testFailFast bool
	testTimeout  string
)

var testCmd = &cobra.Command{
	Use:   "test [scenarios-dir...]",
	Short: "Run golden scenarios with assertions",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTest,
}

func init() {
	testCmd.Flags().StringVar(&testScenario, "scenario", "", "Run only the named scenario (default: all)")
	testCmd.Flags().BoolVar(&testJSON, "json", false, "Output results as JSON")
	testCmd.Flags().BoolVar(&testFailFast, "fail-fast", false, "Stop after first failure")
	testCmd.Flags().StringVar(&testTimeout, "timeout", "30s", "Per-scenario timeout")
}

func runTest(cmd *cobra.Command, args []string) error {
	timeout, err := time.ParseDuration(testTimeout)
	if err != nil {
		return fmt.Errorf("invalid --timeout: %w", err)
	}

	runner := &scenario.Runner{
		Registry: all.Registry,
		Timeout:  timeout,
		FailFast: testFailFast,
	}

	out := cmd.OutOrStdout()
	allPassed := true
	for _, dir := range args {
		output, err := runDir(runner, dir)
		if err != nil {
			return err
		}

		if testJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(output); err != nil {
				return err
			}
		} else {
			printTestOutput(out, output)
		}

		if output.Summary.Failed > 0 || output.Summary.Errors > 0 {
			allPassed = false
		}
	}

	if !allPassed {
		return fmt.Errorf("tests failed")
	}
	return nil
}

func runDir(runner *scenario.Runner, dir string) (*scenario.TestOutput, error) {
	if testScenario == "" {
		return runner.RunAll(dir)
	}
	scenarios, err := scenario.DiscoverScenarios(dir)
	if err != nil {
		return nil, err
	}
	for _, si := range scenarios {
		if si.Name != testScenario {
			continue
		}
		result := runner.RunScenario(si)
		output := &scenario.TestOutput{
			Dir:       dir,
			Scenarios: []scenario.TestResult{result},
			Summary:   scenario.TestSummary{Total: 1},
		}
		switch result.Status {
		case "passed":
			output.Summary.Passed = 1
		case "failed":
			output.Summary.Failed = 1
		case "skipped":
			output.Summary.Skipped = 1
		case "error":
			output.Summary.Errors = 1
		}
		return output, nil
	}
	return nil, fmt.Errorf("scenario %q not found in %s", testScenario, dir)
}

func printTestOutput(w io.Writer, output *scenario.TestOutput) {
	fmt.Fprintf(w, "\n  %s\n", output.Dir)
	for _, s := range output.Scenarios {
		icon := "✓"
		switch s.Status {
		case "failed":
			icon = "✗"
		case "error":
			icon = "!"
		case "skipped":
			icon = "○"
		}
		fmt.Fprintf(w, "    %s %s (%dms, %d issues)\n", icon, s.ScenarioName, s.DurationMs, s.Issues)
		if s.Error != "" {
			fmt.Fprintf(w, "      error: %s\n", s.Error)
		}
		for _, a := range s.Assertions {
			if !a.Passed {
				fmt.Fprintf(w, "      ✗ %s: %s\n", a.Type, a.Message)
			}
		}
	}
	fmt.Fprintf(w, "\n  %d passed, %d failed, %d skipped, %d errors (total: %d)\n",
		output.Summary.Passed, output.Summary.Failed, output.Summary.Skipped, output.Summary.Errors, output.Summary.Total)
}
