// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Notekit search, link and analytics tools for LLM integration
// via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notekit/internal/apperr"
	"github.com/starford/notekit/internal/index"
	"github.com/starford/notekit/internal/noteservice"
	"github.com/starford/notekit/internal/search"
)

// Server wraps the MCP server with Notekit tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Notekit tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Notekit",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Ranked, typo-tolerant search over notes. "+
			"Supports \"phrases\", tag:x, #x, folder:x, -exclude, before:date and after:date. "+
			"See the "+querySyntaxURI+" resource for details."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithString("sort", mcp.Description("relevance (default) or date")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("suggest",
		mcp.WithDescription("Complete a partial query from note titles and tags."),
		mcp.WithString("partial", mcp.Required(), mcp.Description("Partial input")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of suggestions")),
	), s.suggest)

	s.mcp.AddTool(mcp.NewTool("parse_query",
		mcp.WithDescription("Show how a query is split into terms, phrases, tags, folders, exclusions and dates."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Raw query")),
	), s.parseQuery)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note with its outbound links and backlinks."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes, optionally filtered by folder or tag."),
		mcp.WithString("folder", mcp.Description("Optional folder filter")),
		mcp.WithString("tag", mcp.Description("Optional tag filter")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. Link other notes with [[Title]]."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
		mcp.WithString("folder", mcp.Description("Optional folder")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all notes that link to the specified note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Id of the note to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("get_analytics",
		mcp.WithDescription("Vault statistics: totals, folders, top tags, recent activity and writing streak."),
	), s.getAnalytics)

	s.mcp.AddResource(
		mcp.NewResource(querySyntaxURI, "Query Syntax",
			mcp.WithResourceDescription("Search operators and link forms understood by Notekit."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQuerySyntax,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := search.Options{
		SortBy:     search.SortOrder(req.GetString("sort", "")),
		MaxResults: req.GetInt("limit", 0),
	}
	results, err := s.svc.Search(ctx, q, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type hit struct {
		ID     string   `json:"id"`
		Title  string   `json:"title"`
		Folder string   `json:"folder,omitempty"`
		Tags   []string `json:"tags"`
		Score  float64  `json:"score"`
	}
	hits := make([]hit, len(results))
	for i, r := range results {
		hits[i] = hit{ID: r.Note.ID, Title: r.Note.Title, Folder: r.Note.Folder, Tags: r.Note.Tags, Score: r.Score}
	}
	return jsonResult(hits)
}

func (s *Server) suggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	partial, err := req.RequireString("partial")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Suggest(ctx, partial, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.Join(out, "\n")), nil
}

func (s *Server) parseQuery(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.ParseQuery(q))
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.GetNote(ctx, id)
	if err != nil {
		return toolError(id, err), nil
	}
	return jsonResult(d)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListNotes(ctx, index.ListQuery{
		Folder: req.GetString("folder", ""),
		Tag:    req.GetString("tag", ""),
		Sort:   index.SortPath,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.ID + "\t" + it.Title
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var tags []string
	for _, t := range strings.Split(req.GetString("tags", ""), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	d, err := s.svc.CreateNote(ctx, noteservice.NoteInput{
		Title:   title,
		Content: content,
		Folder:  req.GetString("folder", ""),
		Tags:    tags,
	})
	if err != nil {
		return toolError(title, err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", d.ID, d.Path)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, id)
	if err != nil {
		return toolError(id, err), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	lines := make([]string, len(bl))
	for i, b := range bl {
		lines[i] = b.SourceID + "\t" + b.SourceTitle + "\t" + b.LinkText
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getAnalytics(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.svc.Analytics(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap)
}

func (s *Server) readQuerySyntax(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      querySyntaxURI,
			MIMEType: "text/markdown",
			Text:     QuerySyntax,
		},
	}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func toolError(subject string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", subject))
	case errors.Is(err, apperr.ErrAlreadyExists):
		return mcp.NewToolResultError(fmt.Sprintf("note already exists: %s", subject))
	}
	return mcp.NewToolResultError(err.Error())
}
