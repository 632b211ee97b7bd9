package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/ormasoftchile/mapcheck/pkg/check"
)

// CheckMarkdown documents a check: its applicability, purpose, reasoning
// and every template it can emit.
func CheckMarkdown(c *check.Check) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", c.ID, c.Meta.Message)

	fmt.Fprintf(&b, "- **Category:** %s\n", c.Meta.Category)
	fmt.Fprintf(&b, "- **Scope:** %s\n", c.Scope)
	if c.Meta.Author != "" {
		fmt.Fprintf(&b, "- **Author:** %s\n", c.Meta.Author)
	}
	if tags := applicability(c.Meta); tags != "" {
		fmt.Fprintf(&b, "- **Applies to:** %s\n", strings.Trim(tags, "()"))
	}

	if doc := c.Meta.Documentation; doc.Purpose != "" || doc.Reasoning != "" {
		if doc.Purpose != "" {
			fmt.Fprintf(&b, "\n## Purpose\n\n%s\n", doc.Purpose)
		}
		if doc.Reasoning != "" {
			fmt.Fprintf(&b, "\n## Reasoning\n\n%s\n", doc.Reasoning)
		}
	}

	b.WriteString("\n## Issues\n\n| Template | Severity | Message | Cause |\n|---|---|---|---|\n")
	for _, name := range c.Templates.Names() {
		t, _ := c.Templates.Get(name)
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", name, t.Severity, cell(t.Format), cell(t.Cause))
	}
	return b.String()
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// RenderMarkdown renders markdown for a terminal. Style is a glamour style
// name such as "dark", "light" or "notty"; empty picks one from the
// terminal. Width zero disables word wrap.
func RenderMarkdown(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
