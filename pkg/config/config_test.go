package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
)

func TestLoadYAML(t *testing.T) {
	cfg, err := LoadYAML([]byte(`
disabled: [metadata/version-format]
only: [metadata/, timing/]
min_severity: problem
difficulty: hard
format: yaml
`))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(cfg.Disabled, []string{"metadata/version-format"}) || len(cfg.Only) != 2 {
		t.Errorf("ids = %v / %v", cfg.Disabled, cfg.Only)
	}
	if cfg.MinSeverity == nil || *cfg.MinSeverity != issue.Problem {
		t.Errorf("min_severity = %v", cfg.MinSeverity)
	}
	if cfg.Difficulty == nil || *cfg.Difficulty != beatmap.Hard {
		t.Errorf("difficulty = %v", cfg.Difficulty)
	}
	if cfg.OutputFormat() != "yaml" {
		t.Errorf("format = %q", cfg.OutputFormat())
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	cfg, err := LoadYAML(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MinSeverity != nil || cfg.OutputFormat() != "text" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadYAML_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":  "colour: red\n",
		"bad severity": "min_severity: fatal\n",
		"bad format":   "format: html\n",
		"negative":     "jobs: -1\n",
		"empty id":     "disabled: [\"\"]\n",
	}
	for name, doc := range tests {
		if _, err := LoadYAML([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadFile_TOML(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "mapcheck.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 4 || cfg.Format != "json" || len(cfg.Disabled) != 2 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MinSeverity == nil || *cfg.MinSeverity != issue.Warning {
		t.Errorf("min_severity = %v", cfg.MinSeverity)
	}
	if !strings.Contains(cfg.Where, "timing/") {
		t.Errorf("where = %q", cfg.Where)
	}
	if !strings.HasSuffix(cfg.Path, "mapcheck.toml") {
		t.Errorf("path = %q", cfg.Path)
	}
}

func TestLoadTOML_UnknownKey(t *testing.T) {
	if _, err := LoadTOML([]byte("format = \"text\"\ncolour = \"red\"\n")); err == nil || !strings.Contains(err.Error(), "colour") {
		t.Errorf("err = %v, want unknown key error", err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "songs", "set")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".mapcheck.yaml"), []byte("jobs: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 2 || cfg.Path != filepath.Join(root, ".mapcheck.yaml") {
		t.Errorf("cfg = %+v", cfg)
	}
}
