package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/checks/all"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
	"github.com/ormasoftchile/mapcheck/pkg/report"
)

// newTestShell checks the unused-timing scenario with the timing checks
// only, which yields one issue on Normal and two on Hard.
func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	set, err := beatmap.LoadFile("../../testdata/scenarios/unused-timing/beatmapset.yaml")
	if err != nil {
		t.Fatal(err)
	}
	reg := all.Registry(probe.NewStatic(nil))
	issues := check.NewDispatcher(reg.Select([]string{"timing/"}, nil)).Collect("test", set).Items()
	if len(issues) != 3 {
		t.Fatalf("fixture yields %d issues, want 3", len(issues))
	}
	var buf bytes.Buffer
	sh := New("unused-timing", set, reg, issues, report.Selection{})
	sh.SetOutput(&buf)
	sh.Style = "notty"
	return sh, &buf
}

func TestShellPrompt(t *testing.T) {
	sh, _ := newTestShell(t)
	if got := sh.buildPrompt(); got != "mapcheck[3/3]> " {
		t.Errorf("prompt = %q", got)
	}
}

func TestShellWhere(t *testing.T) {
	sh, buf := newTestShell(t)
	sh.Exec(`where beatmap == "Hard"`)
	if !strings.Contains(buf.String(), "2 of 3 issues match") {
		t.Errorf("output = %q", buf.String())
	}
	if got := sh.buildPrompt(); got != "mapcheck[2/3]> " {
		t.Errorf("prompt = %q", got)
	}

	buf.Reset()
	sh.Exec("where")
	if !strings.Contains(buf.String(), `beatmap == "Hard"`) {
		t.Errorf("where output = %q", buf.String())
	}

	buf.Reset()
	sh.Exec("where severity >=")
	if !strings.Contains(buf.String(), "Error:") {
		t.Errorf("expected compile error, got %q", buf.String())
	}
	if sh.sel.Where.String() != `beatmap == "Hard"` {
		t.Error("a bad expression should keep the previous filter")
	}

	sh.Exec("where off")
	if sh.sel.Where != nil {
		t.Error("where off should clear the filter")
	}
}

func TestShellMinAndReset(t *testing.T) {
	sh, buf := newTestShell(t)
	sh.Exec("min unrankable")
	if got := sh.buildPrompt(); got != "mapcheck[0/3]> " {
		t.Errorf("prompt = %q", got)
	}
	sh.Exec("min bogus")
	if !strings.Contains(buf.String(), "unknown severity") {
		t.Errorf("output = %q", buf.String())
	}
	sh.Exec("difficulty hard")
	sh.Exec("reset")
	if sh.sel.MinSeverity != nil || sh.sel.Difficulty != nil {
		t.Errorf("selection = %+v after reset", sh.sel)
	}
}

func TestShellList(t *testing.T) {
	sh, buf := newTestShell(t)
	sh.Exec("list")
	out := buf.String()
	for _, want := range []string{"Changes nothing.", "Missing uninherited line", "3 problems"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestShellSummary(t *testing.T) {
	sh, buf := newTestShell(t)
	sh.Exec("summary")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("summary = %q", buf.String())
	}
	if !strings.Contains(lines[0], "2  timing/inconsistent-lines") || !strings.Contains(lines[1], "1  timing/unused-lines") {
		t.Errorf("summary = %q", buf.String())
	}
}

func TestShellExplain(t *testing.T) {
	sh, buf := newTestShell(t)
	sh.Exec("explain timing/unused-lines")
	if !strings.Contains(buf.String(), "timing/unused-lines") {
		t.Errorf("explain output = %q", buf.String())
	}
	buf.Reset()
	sh.Exec("explain nope/nothing")
	if !strings.Contains(buf.String(), "Unknown check") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestShellCommandHelp(t *testing.T) {
	sh, buf := newTestShell(t)
	sh.Exec("help")
	for _, cmd := range []string{"list", "where", "min", "difficulty", "reset", "summary", "checks", "explain", "quit"} {
		if !strings.Contains(buf.String(), cmd) {
			t.Errorf("help output missing command %q", cmd)
		}
	}
}

func TestShellQuitAndUnknown(t *testing.T) {
	sh, buf := newTestShell(t)
	if sh.Exec("frobnicate") {
		t.Error("unknown command should not quit")
	}
	if !strings.Contains(buf.String(), "Unknown command") {
		t.Errorf("output = %q", buf.String())
	}
	if !sh.Exec("quit") {
		t.Error("quit should exit")
	}
}
