// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes vault join tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/vaultjoin/internal/codec"
	"github.com/starford/vaultjoin/internal/joinservice"
)

const noteFormatURI = "vaultjoin://note-format"

// Server wraps the MCP server with vault join tools.
type Server struct {
	mcp *server.MCPServer
	svc *joinservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *joinservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"vaultjoin",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_strategies",
		mcp.WithDescription("List the configured join strategies by name."),
	), s.listStrategies)

	s.mcp.AddTool(mcp.NewTool("find_notes",
		mcp.WithDescription("Index the vault with a join strategy. Returns one {key, path} entry per key."),
		mcp.WithString("strategy", mcp.Required(), mcp.Description("Strategy name from list_strategies")),
	), s.findNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Parse a note into its frontmatter metadata and body."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path to the note (e.g. people/ada.md)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("join_note",
		mcp.WithDescription("Create or update the note for one domain object. "+
			"If a note already carries the key it is overwritten in place; otherwise a new "+
			"note is created at default_path (or dir + slugified title). Read the format "+
			"first via get_note_format or the "+noteFormatURI+" resource."),
		mcp.WithString("strategy", mcp.Required(), mcp.Description("Strategy name from list_strategies")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Key of the domain object")),
		mcp.WithString("default_path", mcp.Description("Vault-relative path for a new note")),
		mcp.WithString("dir", mcp.Description("Directory for a new note when default_path is empty")),
		mcp.WithString("title", mcp.Description("Title slugified into the file name when default_path is empty")),
		mcp.WithObject("metadata", mcp.Description("Frontmatter fields; must include whatever the strategy reads the key from")),
		mcp.WithString("contents", mcp.Description("Note body")),
	), s.joinNote)

	s.mcp.AddTool(mcp.NewTool("get_journal",
		mcp.WithDescription("List recorded note writes, newest first."),
		mcp.WithString("strategy", mcp.Description("Only writes made through this strategy")),
		mcp.WithString("key", mcp.Description("Only writes for this key")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries (default 50)")),
	), s.getJournal)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns the note format contract. "+
			"Call this before joining notes to ensure correct structure."),
	), s.getNoteFormat)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(noteFormatURI, "Note Format Contract",
			mcp.WithResourceDescription("Frontmatter note format that joined notes follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listStrategies(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.svc.Strategies(), "\n")), nil
}

func (s *Server) findNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	strategy, err := req.RequireString("strategy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.svc.Index(ctx, strategy)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.ReadNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) joinNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	strategy, err := req.RequireString("strategy")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metadata, err := metadataArg(req.GetArguments()["metadata"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.Join(ctx, strategy, joinservice.JoinRequest{
		Key:         key,
		DefaultPath: req.GetString("default_path", ""),
		Dir:         req.GetString("dir", ""),
		Title:       req.GetString("title", ""),
		Metadata:    metadata,
		Contents:    req.GetString("contents", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", res.Outcome, res.Path)), nil
}

// metadataArg accepts the metadata argument either as an object or as a
// JSON (with comments) string, which some clients send instead.
func metadataArg(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case string:
		var m map[string]any
		if err := codec.JSON.Unmarshal([]byte(v), &m); err != nil {
			return nil, fmt.Errorf("metadata: %w", err)
		}
		return m, nil
	}
	return nil, fmt.Errorf("metadata must be an object, got %T", raw)
}

func (s *Server) getJournal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.svc.History(ctx, req.GetString("strategy", ""), req.GetString("key", ""), req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no writes recorded"), nil
	}
	return jsonResult(entries)
}

func (s *Server) getNoteFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      noteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
