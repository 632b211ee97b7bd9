package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with mapcheck tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mapcheck",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("mapcheck/check",
			mcp.WithDescription("Run the check suite against a parsed beatmapset YAML document"),
			mcp.WithString("path", mcp.Description("Path to the beatmapset YAML file; media is probed next to it")),
			mcp.WithString("content", mcp.Description("Beatmapset YAML content, used when path is empty")),
			mcp.WithString("where", mcp.Description("Filter expression over issues, e.g. severity >= Problem")),
			mcp.WithString("min_severity", mcp.Description("Lowest severity to report: minor, warning, problem, unrankable or error")),
			mcp.WithString("difficulty", mcp.Description("Evaluate every issue against this tier: easy, normal, hard, insane or expert")),
			mcp.WithArray("probe_files", mcp.Description("Media files to probe instead of the folder, as objects with path, size, has_video, audio_channels, width and height")),
		),
		HandleCheck,
	)

	s.AddTool(
		mcp.NewTool("mapcheck/list",
			mcp.WithDescription("List registered checks with their category and applicability"),
			mcp.WithString("select", mcp.Description("Comma-separated check IDs or prefixes ending in '/' (optional)")),
		),
		HandleList,
	)

	s.AddTool(
		mcp.NewTool("mapcheck/explain",
			mcp.WithDescription("Show the documentation and issue templates of one check as markdown"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Check ID, e.g. timing/unused-lines")),
		),
		HandleExplain,
	)

	s.AddTool(
		mcp.NewTool("mapcheck/schema",
			mcp.WithDescription("Export mapcheck JSON Schema (beatmapset or scenario)"),
			mcp.WithString("type", mcp.Required(), mcp.Description("Schema type: 'beatmapset' or 'scenario'")),
		),
		HandleSchema,
	)

	return s
}
