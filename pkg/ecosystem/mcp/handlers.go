package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ormasoftchile/mapcheck/pkg/beatmap"
	"github.com/ormasoftchile/mapcheck/pkg/check"
	"github.com/ormasoftchile/mapcheck/pkg/checks/all"
	"github.com/ormasoftchile/mapcheck/pkg/issue"
	"github.com/ormasoftchile/mapcheck/pkg/probe"
	"github.com/ormasoftchile/mapcheck/pkg/report"
	"github.com/ormasoftchile/mapcheck/pkg/scenario"
)

// HandleCheck implements the mapcheck/check MCP tool.
func HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	path, _ := args["path"].(string)
	content, _ := args["content"].(string)

	var (
		set    *beatmap.Set
		errs   []*beatmap.ValidationError
		prober probe.Prober
		source string
	)
	switch {
	case path != "":
		set, errs = beatmap.ValidateFile(path)
		prober, source = probe.NewFolder(filepath.Dir(path)), path
	case content != "":
		s, err := beatmap.Load(strings.NewReader(content))
		if err != nil {
			return errorResult(err.Error()), nil
		}
		set, errs = s, beatmap.Validate(s)
		prober, source = probe.NewStatic(nil), "<content>"
	default:
		return errorResult("path or content argument is required"), nil
	}
	if beatmap.HasErrors(errs) {
		return errorResult(formatErrors(errs)), nil
	}

	if raw, ok := args["probe_files"]; ok {
		files, err := decodeProbeFiles(raw)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		prober = probe.NewStatic(files)
	}

	sel, err := selection(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	reg := all.Registry(prober)
	bag := check.NewDispatcher(reg).Collect(source, set)
	if err := sel.Apply(bag, reg, set); err != nil {
		return errorResult(err.Error()), nil
	}
	bag.Sort()

	doc := report.NewDocument(source, bag.Items(), reg)
	var buf bytes.Buffer
	if err := report.Encode(&buf, "json", doc); err != nil {
		return errorResult(err.Error()), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(buf.String())},
		IsError: doc.Failed,
	}, nil
}

// HandleList implements the mapcheck/list MCP tool.
func HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	reg := all.Registry(probe.NewStatic(nil))
	if sel, _ := args["select"].(string); sel != "" {
		reg = reg.Select(splitList(sel), nil)
	}

	type entry struct {
		ID        string         `json:"id"`
		Scope     check.Scope    `json:"scope"`
		Metadata  check.Metadata `json:"metadata"`
		Templates []string       `json:"templates"`
	}
	var out []entry
	for _, c := range reg.All() {
		out = append(out, entry{ID: c.ID, Scope: c.Scope, Metadata: c.Meta, Templates: c.Templates.Names()})
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return textResult(string(data)), nil
}

// HandleExplain implements the mapcheck/explain MCP tool.
func HandleExplain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, _ := args["id"].(string)
	if id == "" {
		return errorResult("id argument is required"), nil
	}
	c, ok := all.Registry(probe.NewStatic(nil)).Get(id)
	if !ok {
		return errorResult(fmt.Sprintf("unknown check %q", id)), nil
	}
	return textResult(report.CheckMarkdown(c)), nil
}

// HandleSchema implements the mapcheck/schema MCP tool.
func HandleSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	schemaType, _ := args["type"].(string)

	var data []byte
	var err error

	switch schemaType {
	case "beatmapset":
		data, err = beatmap.GenerateJSONSchema()
	case "scenario":
		data, err = scenario.GenerateJSONSchema()
	default:
		return errorResult(fmt.Sprintf("unknown schema type %q, use 'beatmapset' or 'scenario'", schemaType)), nil
	}

	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(string(data)), nil
}

func selection(args map[string]any) (report.Selection, error) {
	var sel report.Selection
	if v, _ := args["min_severity"].(string); v != "" {
		sev, err := issue.ParseSeverity(v)
		if err != nil {
			return sel, err
		}
		sel.MinSeverity = &sev
	}
	if v, _ := args["difficulty"].(string); v != "" {
		d, err := beatmap.ParseDifficulty(v)
		if err != nil {
			return sel, err
		}
		sel.Difficulty = &d
	}
	if v, _ := args["where"].(string); v != "" {
		f, err := report.NewFilter(v)
		if err != nil {
			return sel, err
		}
		sel.Where = f
	}
	return sel, nil
}

// decodeProbeFiles converts the loosely typed tool argument into fixture
// file descriptions by round-tripping it through JSON.
func decodeProbeFiles(raw any) ([]probe.StaticFile, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("probe_files: %w", err)
	}
	var files []probe.StaticFile
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, fmt.Errorf("probe_files: %w", err)
	}
	return files, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatErrors(errs []*beatmap.ValidationError) string {
	var msgs []string
	for _, e := range errs {
		if e.Severity == "error" {
			msgs = append(msgs, e.Error())
		}
	}
	return strings.Join(msgs, "; ")
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(msg),
		},
		IsError: true,
	}
}
