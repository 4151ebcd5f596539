// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Ansuz metadata tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ansuz/internal/filter"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/noteservice"
	"github.com/starford/ansuz/internal/storage"
)

// Server wraps the MCP server with Ansuz tools.
type Server struct {
	mcp   *server.MCPServer
	svc   *noteservice.Service
	store storage.Provider
}

// New creates a new MCP server with all Ansuz tools registered.
func New(svc *noteservice.Service, store storage.Provider) *Server {
	s := &Server{svc: svc, store: store}

	s.mcp = server.NewMCPServer(
		"Ansuz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("query_notes",
		mcp.WithDescription("Find notes by metadata key, optionally narrowed to a value and a store."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Metadata key to look for")),
		mcp.WithString("value", mcp.Description("Optional value the key must carry")),
		mcp.WithString("kind", mcp.Description("Optional store: frontmatter or inline")),
	), s.queryNotes)

	s.mcp.AddTool(mcp.NewTool("get_metadata",
		mcp.WithDescription("Read the parsed metadata fields of a note as JSON."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.getMetadata)

	s.mcp.AddTool(mcp.NewTool("edit_metadata",
		mcp.WithDescription("Apply metadata operations to notes selected by a filter. "+
			"Operations MUST follow the metadata format contract; read it first via the "+
			"get_metadata_contract tool or the ansuz://metadata-format resource."),
		mcp.WithString("ops", mcp.Required(), mcp.Description(`JSON array of operations, e.g. [{"action":"add","key":"status","values":["done"],"kind":"inline","overwrite":true}]`)),
		mcp.WithString("prefix", mcp.Description("Only notes whose name starts with this prefix")),
		mcp.WithString("suffix", mcp.Description("Only notes whose name ends with this suffix")),
		mcp.WithString("pattern", mcp.Description("Only notes whose name matches this regular expression")),
		mcp.WithString("where", mcp.Description(`JSON array of metadata clauses, e.g. ["status=draft","inline:tags"]`)),
		mcp.WithString("dry_run", mcp.Description("Set to \"true\" to preview without writing")),
	), s.editMetadata)

	s.mcp.AddTool(mcp.NewTool("get_metadata_contract",
		mcp.WithDescription("Returns the canonical Ansuz metadata format contract. "+
			"Call this before editing metadata to ensure correct operations."),
	), s.getMetadataContract)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the full content of a Markdown note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all notes or notes in a specific folder."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listNotes)

	// Resource: metadata format contract.
	s.mcp.AddResource(
		mcp.NewResource("ansuz://metadata-format", "Metadata Format Contract",
			mcp.WithResourceDescription("Canonical metadata format that all notes follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMetadataFormatResource,
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

func (s *Server) queryNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q := index.FieldQuery{Key: key}
	if v, err := req.RequireString("value"); err == nil {
		q.Value = v
	}
	if k, err := req.RequireString("kind"); err == nil {
		q.Kind = k
	}

	paths, err := s.svc.Query(ctx, q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no matching notes"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(detail.Fields, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) editMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opsJSON, err := req.RequireString("ops")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var ops []noteservice.Op
	if err := json.Unmarshal([]byte(opsJSON), &ops); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid ops JSON: %v", err)), nil
	}
	if len(ops) == 0 {
		return mcp.NewToolResultError("at least one op is required"), nil
	}

	f := &filter.Filter{}
	if v, err := req.RequireString("prefix"); err == nil {
		f.Prefix = v
	}
	if v, err := req.RequireString("suffix"); err == nil {
		f.Suffix = v
	}
	if v, err := req.RequireString("pattern"); err == nil {
		f.Pattern = v
	}
	if v, err := req.RequireString("where"); err == nil && v != "" {
		var clauses []string
		if err := json.Unmarshal([]byte(v), &clauses); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid where JSON: %v", err)), nil
		}
		for _, w := range clauses {
			c, err := filter.ParseMetaClause(w)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			f.Meta = append(f.Meta, c)
		}
	}

	dryRun := false
	if v, err := req.RequireString("dry_run"); err == nil {
		dryRun = v == "true"
	}

	report, err := s.svc.Edit(ctx, f, ops, nil, dryRun)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := ""
	if f, err := req.RequireString("folder"); err == nil {
		folder = f
	}

	infos, err := s.store.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, info := range infos {
		paths = append(paths, info.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) getMetadataContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MetadataFormatContract), nil
}

func (s *Server) readMetadataFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "ansuz://metadata-format",
			MIMEType: "text/markdown",
			Text:     MetadataFormatContract,
		},
	}, nil
}
