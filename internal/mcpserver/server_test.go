package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notekit/internal/analytics"
	"github.com/starford/notekit/internal/index"
	"github.com/starford/notekit/internal/noteservice"
	"github.com/starford/notekit/internal/query"
	"github.com/starford/notekit/internal/testutil"
)

func testServer(t *testing.T, files map[string]string) *Server {
	t.Helper()

	vaultDir, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	testutil.WriteNotes(t, vaultDir, files)
	if err := index.Sync(db, store, testutil.Logger()); err != nil {
		t.Fatal(err)
	}
	return New(noteservice.NewService(store, db, testutil.Logger()), "test")
}

var vault = map[string]string{
	"desserts/chocolate-cake.md": "---\nid: choc\ntitle: Chocolate Cake\ntags: [dessert, chocolate]\n---\nRich dessert. See [[Carrot Cake]].\n",
	"desserts/carrot-cake.md":    "---\nid: carrot\ntitle: Carrot Cake\ntags: [dessert]\n---\nMoist cake.\n",
	"code/js.md":                 "---\nid: js\ntitle: JavaScript Guide\ntags: [programming]\n---\nClosures and promises.\n",
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no in-process "call tool" helper, so dispatch to the
	// handlers directly.
	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"search_notes":  srv.searchNotes,
		"suggest":       srv.suggest,
		"parse_query":   srv.parseQuery,
		"read_note":     srv.readNote,
		"list_notes":    srv.listNotes,
		"create_note":   srv.createNote,
		"get_backlinks": srv.getBacklinks,
		"get_analytics": srv.getAnalytics,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSearchNotes(t *testing.T) {
	srv := testServer(t, vault)

	r := callTool(t, srv, "search_notes", map[string]any{"query": "cake -chocolate"})
	if r.IsError {
		t.Fatalf("search error: %s", resultText(r))
	}
	var hits []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &hits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "carrot" {
		t.Errorf("hits = %+v", hits)
	}
}

func TestSearchNotesBadSort(t *testing.T) {
	srv := testServer(t, vault)
	r := callTool(t, srv, "search_notes", map[string]any{"query": "cake", "sort": "size"})
	if !r.IsError {
		t.Error("expected error for unknown sort order")
	}
}

func TestSearchNotesMissingQuery(t *testing.T) {
	srv := testServer(t, vault)
	r := callTool(t, srv, "search_notes", map[string]any{})
	if !r.IsError {
		t.Error("expected error for missing query")
	}
}

func TestSuggest(t *testing.T) {
	srv := testServer(t, vault)
	r := callTool(t, srv, "suggest", map[string]any{"partial": "des"})
	if got := resultText(r); got != "tag:dessert" {
		t.Errorf("suggest = %q", got)
	}
}

func TestParseQuery(t *testing.T) {
	srv := testServer(t, vault)
	r := callTool(t, srv, "parse_query", map[string]any{"query": "#Dessert cake"})
	var p query.Parsed
	if err := json.Unmarshal([]byte(resultText(r)), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Tags) != 1 || p.Tags[0] != "dessert" || len(p.Terms) != 1 || p.Terms[0] != "cake" {
		t.Errorf("parsed = %+v", p)
	}
}

func TestReadNote(t *testing.T) {
	srv := testServer(t, vault)

	r := callTool(t, srv, "read_note", map[string]any{"id": "carrot"})
	var d noteservice.NoteDetail
	if err := json.Unmarshal([]byte(resultText(r)), &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.Title != "Carrot Cake" || len(d.Backlinks) != 1 {
		t.Errorf("detail = %+v", d)
	}

	r = callTool(t, srv, "read_note", map[string]any{"id": "nope"})
	if !r.IsError || resultText(r) != "not found: nope" {
		t.Errorf("missing note result = %q", resultText(r))
	}
}

func TestListNotes(t *testing.T) {
	srv := testServer(t, vault)
	r := callTool(t, srv, "list_notes", map[string]any{"folder": "desserts"})
	lines := strings.Split(resultText(r), "\n")
	if len(lines) != 2 {
		t.Errorf("list = %q", resultText(r))
	}
}

func TestCreateNoteAndBacklinks(t *testing.T) {
	srv := testServer(t, vault)

	r := callTool(t, srv, "create_note", map[string]any{
		"title":   "Frosting",
		"content": "Goes on [[carrot cake]].",
		"tags":    "topping, dessert",
	})
	if r.IsError || !strings.HasPrefix(resultText(r), "created: ") {
		t.Fatalf("create = %q", resultText(r))
	}

	r = callTool(t, srv, "get_backlinks", map[string]any{"id": "carrot"})
	if lines := strings.Split(resultText(r), "\n"); len(lines) != 2 {
		t.Errorf("backlinks = %q", resultText(r))
	}

	r = callTool(t, srv, "create_note", map[string]any{"title": "Frosting", "content": "again"})
	if !r.IsError {
		t.Error("expected duplicate create to fail")
	}
}

func TestGetBacklinksNone(t *testing.T) {
	srv := testServer(t, vault)
	r := callTool(t, srv, "get_backlinks", map[string]any{"id": "js"})
	if resultText(r) != "no backlinks found" {
		t.Errorf("backlinks = %q", resultText(r))
	}
}

func TestGetAnalytics(t *testing.T) {
	srv := testServer(t, vault)
	r := callTool(t, srv, "get_analytics", map[string]any{})
	var snap analytics.Snapshot
	if err := json.Unmarshal([]byte(resultText(r)), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TotalNotes != 3 || snap.Folders["desserts"].Count != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestQuerySyntaxResource(t *testing.T) {
	srv := testServer(t, nil)
	contents, err := srv.readQuerySyntax(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != querySyntaxURI || !strings.Contains(tc.Text, "folder:x") {
		t.Errorf("resource = %+v", contents[0])
	}
}
