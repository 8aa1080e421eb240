// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the outliner graph to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/outliner/internal/apperr"
	"github.com/starford/outliner/internal/models"
	"github.com/starford/outliner/internal/workspace"
)

const searchLimit = 20

// Server wraps the MCP server with outliner tools.
type Server struct {
	mcp *server.MCPServer
	svc *workspace.Service
}

func kindArg() mcp.ToolOption {
	return mcp.WithString("kind",
		mcp.Description("Page namespace: page (default) or journal"),
		mcp.Enum("page", "journal"),
	)
}

// New creates a new MCP server with all tools registered.
func New(svc *workspace.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Outliner",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Search blocks for a term. mode=fulltext uses the snapshot index, otherwise raw lines are matched."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term")),
		mcp.WithString("mode", mcp.Description("lines (default) or fulltext"), mcp.Enum("lines", "fulltext")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the outline markup of a page."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Page name, e.g. project/alpha or 2025_01_20")),
		kindArg(),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a page with its queries executed and its linked references, as Markdown."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Page name")),
		kindArg(),
	), s.renderPage)

	s.mcp.AddTool(mcp.NewTool("write_page",
		mcp.WithDescription("Create or replace a page. Content MUST follow the outline format; "+
			"read it first via get_page_contract or the outliner://page-format resource."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Page name")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Outline markup")),
		kindArg(),
	), s.writePage)

	s.mcp.AddTool(mcp.NewTool("get_page_contract",
		mcp.WithDescription("Returns the outline format that pages must follow."),
	), s.getPageContract)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List page names, optionally only those below a hierarchy prefix."),
		mcp.WithString("prefix", mcp.Description("Optional prefix such as project/")),
		kindArg(),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("List the pages that link to the given page."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Target page name")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("run_query",
		mcp.WithDescription("Render a query payload such as todos tag:\"x\" state:\"todo\" display:\"count\" against the graph."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Query payload without braces")),
	), s.runQuery)

	s.mcp.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Store an image or PDF in the graph from an http(s) URL or a base64 data URI."),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data>")),
		mcp.WithString("filename", mcp.Description("Optional target file name")),
	), s.uploadAsset)

	s.mcp.AddResource(
		mcp.NewResource("outliner://page-format", "Page Format",
			mcp.WithResourceDescription("Outline markup that all pages must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPageFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func pageID(req mcp.CallToolRequest) (models.PageID, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return models.PageID{}, err
	}
	return models.PageID{Name: name, Kind: models.ParsePageKind(req.GetString("kind", "page"))}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if req.GetString("mode", "lines") == "fulltext" {
		hits, err := s.svc.FullTextSearch(ctx, q, searchLimit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(hits)
	}
	return jsonResult(s.svc.Search(ctx, q))
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := pageID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Page(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return mcp.NewToolResultText(d.Content), nil
}

func (s *Server) renderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := pageID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Page(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	var sb strings.Builder
	writePrepared(&sb, d.Page)
	if len(d.References.Blocks) > 0 {
		sb.WriteString("\n## Linked references\n\n")
		writePrepared(&sb, d.References)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func writePrepared(sb *strings.Builder, p models.PreparedPage) {
	for _, b := range p.Blocks {
		pad := strings.Repeat("  ", b.Indentation)
		sb.WriteString(pad + "- ")
		sb.WriteString(strings.ReplaceAll(b.Content.PreparedMarkdown, "\n", "\n"+pad+"  "))
		sb.WriteByte('\n')
	}
}

func (s *Server) writePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := pageID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, existsErr := s.svc.Page(ctx, id)
	if _, err := s.svc.WritePage(ctx, id, content, ""); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write: %v", err)), nil
	}
	verb := "updated"
	if errors.Is(existsErr, apperr.ErrNotFound) {
		verb = "created"
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", verb, id)), nil
}

func (s *Server) getPageContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PageFormatContract), nil
}

func (s *Server) readPageFormatResource(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     PageFormatContract,
		},
	}, nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := req.GetString("prefix", "")
	kind := models.ParsePageKind(req.GetString("kind", "page"))
	var names []string
	for _, m := range s.svc.Pages(ctx, kind) {
		if strings.HasPrefix(m.ID.Name, prefix) {
			names = append(names, m.ID.Name)
		}
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("no pages found"), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	refs := s.svc.Backlinks(ctx, name)
	if len(refs) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	lines := make([]string, len(refs))
	for i, id := range refs {
		lines[i] = id.String()
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) runQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.svc.Query(ctx, q).InplaceMarkdown), nil
}
