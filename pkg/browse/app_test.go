package browse

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/checks/all"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	set, err := beatmap.LoadFile("../../testdata/scenarios/unused-timing/beatmapset.yaml")
	if err != nil {
		t.Fatal(err)
	}
	reg := all.Registry(probe.NewStatic(nil)).Select([]string{"timing/"}, nil)
	bag := check.NewDispatcher(reg).Collect("test", set)
	bag.Sort()
	m := New(Config{Source: "unused-timing", Set: set, Registry: reg, Issues: bag.Items(), Style: "notty"})
	return send(m, tea.WindowSizeMsg{Width: 120, Height: 30})
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseNavigation(t *testing.T) {
	m := newTestModel(t)
	if m.Visible() != 3 {
		t.Fatalf("visible = %d, want 3", m.Visible())
	}
	first, _ := m.Selected()

	m = send(m, tea.KeyMsg{Type: tea.KeyDown})
	second, _ := m.Selected()
	if second.Equal(first) {
		t.Error("down should select the next issue")
	}

	m = send(m, runes("G"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d after G, want 2", m.cursor)
	}
	m = send(m, runes("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, should stop at the last issue", m.cursor)
	}
	m = send(m, runes("g"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d after g, want 0", m.cursor)
	}
}

func TestBrowseSearch(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("/"))
	if !m.search.active {
		t.Fatal("/ should open the search bar")
	}
	m = send(m, runes("meter"))
	if m.Visible() != 1 {
		t.Errorf("visible = %d while typing, want 1", m.Visible())
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.search.active || m.Visible() != 1 {
		t.Errorf("enter should keep the filter: active=%v visible=%d", m.search.active, m.Visible())
	}
	sel, ok := m.Selected()
	if !ok || sel.Template != "Inconsistent Meter" {
		t.Errorf("selected = %+v", sel)
	}
	if !strings.Contains(m.View(), "1 match") {
		t.Error("view should show the match count")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Visible() != 3 {
		t.Errorf("visible = %d after esc, want 3", m.Visible())
	}
	if sel2, _ := m.Selected(); !sel2.Equal(sel) {
		t.Error("clearing the search should keep the cursor on the same issue")
	}
}

func TestBrowseNoMatches(t *testing.T) {
	m := newTestModel(t)
	m = send(m, runes("/"), runes("zzz"), tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.Selected(); ok {
		t.Error("nothing should be selected")
	}
	if !strings.Contains(m.View(), "No issues match.") {
		t.Error("view should report no matches")
	}
}

func TestBrowseView(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	for _, want := range []string{"unused-timing", "3 issues", "[Hard]", "Details"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestDetailMarkdown(t *testing.T) {
	m := newTestModel(t)
	i, _ := m.Selected()
	md := detailMarkdown(i, m.cfg.Registry)
	if !strings.Contains(md, "PROBLEM") || !strings.Contains(md, i.Check) {
		t.Errorf("markdown = %q", md)
	}
}

func TestHighlight(t *testing.T) {
	if got := highlight("abc", ""); got != "abc" {
		t.Errorf("empty query changed content: %q", got)
	}
	if got := highlight("Missing line", "xyz"); got != "Missing line" {
		t.Errorf("no match changed content: %q", got)
	}
	if got := highlight("Missing line", "LINE"); !strings.Contains(got, "line") {
		t.Errorf("match lost original case: %q", got)
	}
}
