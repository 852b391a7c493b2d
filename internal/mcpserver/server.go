// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the obweb store to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/obweb/internal/apperr"
	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/loader"
	"github.com/starford/obweb/internal/objectservice"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/wood"
)

const recordFormatURI = "obweb://record-format"

// Server wraps the MCP server with obweb tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *objectservice.Service
	reg    *provider.Registry
	db     catalog.Index
	logger *slog.Logger
}

// New creates a new MCP server with all obweb tools registered.
func New(svc *objectservice.Service, reg *provider.Registry, db catalog.Index, logger *slog.Logger) *Server {
	s := &Server{svc: svc, reg: reg, db: db, logger: logger}

	s.mcp = server.NewMCPServer(
		"obweb",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("lookup_object",
		mcp.WithDescription("Fetch one object by its 22-character id token. Returns its fields, references and serialized form."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id token, e.g. AQAAAAAAAAAAAAAAAAAAAA")),
	), s.lookupObject)

	s.mcp.AddTool(mcp.NewTool("lookup_name",
		mcp.WithDescription("Find the objects carrying a name. Set fold to ignore case."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Exact name")),
		mcp.WithBoolean("fold", mcp.Description("Match under Unicode case folding")),
	), s.lookupName)

	s.mcp.AddTool(mcp.NewTool("search_objects",
		mcp.WithDescription("Full-text search through object names and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchObjects)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("List the objects that reference the given object."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id token of the referenced object")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("list_types",
		mcp.WithDescription("List the record type tags the store can decode."),
	), s.listTypes)

	s.mcp.AddTool(mcp.NewTool("insert_record",
		mcp.WithDescription("Insert one or more records into the in-memory store. "+
			"Records MUST follow the record format contract. Read it first via "+
			"the get_record_contract tool or the "+recordFormatURI+" resource."),
		mcp.WithString("records", mcp.Required(), mcp.Description("Record text, e.g. (profile (name Carol) (description \"new here\"))")),
	), s.insertRecord)

	s.mcp.AddTool(mcp.NewTool("get_record_contract",
		mcp.WithDescription("Returns the record format contract. "+
			"Call this before inserting records to ensure correct structure."),
	), s.getRecordContract)

	s.mcp.AddResource(
		mcp.NewResource(recordFormatURI, "Record Format Contract",
			mcp.WithResourceDescription("Text format of obweb records and load files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRecordFormatResource,
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

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) lookupObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ob, err := s.svc.GetObject(ctx, token)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", token)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ob), nil
}

func (s *Server) lookupName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids := s.svc.LookupName(ctx, name, req.GetBool("fold", false))
	if len(ids) == 0 {
		return mcp.NewToolResultText("no objects found"), nil
	}
	return mcp.NewToolResultText(strings.Join(ids, "\n")), nil
}

func (s *Server) searchObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, token)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	lines := make([]string, len(bl))
	for i, l := range bl {
		lines[i] = l.Source + " " + l.Kind
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listTypes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.reg.Tags(), "\n")), nil
}

type insertResult struct {
	Inserted []string `json:"inserted"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) insertRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("records")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, err := wood.Parse(text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if root.Len() == 0 {
		return mcp.NewToolResultError("no records given"), nil
	}

	items := []any{loader.DirectiveInsert}
	for _, rec := range root.Contents() {
		items = append(items, rec)
	}
	store := s.svc.Store()
	rep, err := loader.Load(wood.Branch(wood.Woods(items...)), s.reg, store, s.logger)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := insertResult{Inserted: []string{}}
	for _, in := range rep.Inserted {
		tok := in.ID.Token()
		res.Inserted = append(res.Inserted, tok)
		ob, ok := store.Lookup(in.ID)
		if !ok {
			continue
		}
		if err := catalog.IndexObject(s.db, ob); err != nil {
			s.logger.Warn("mcp: index failed", slog.String("id", tok), slog.String("error", err.Error()))
		}
	}
	for _, w := range rep.Warnings {
		res.Warnings = append(res.Warnings, w.String())
	}
	if len(res.Inserted) == 0 {
		return mcp.NewToolResultError("nothing inserted: " + strings.Join(res.Warnings, "; ")), nil
	}
	return jsonResult(res), nil
}

func (s *Server) getRecordContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(RecordFormatContract), nil
}

func (s *Server) readRecordFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      recordFormatURI,
			MIMEType: "text/markdown",
			Text:     RecordFormatContract,
		},
	}, nil
}
