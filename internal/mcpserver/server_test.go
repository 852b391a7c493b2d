package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/objectservice"
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/testutil"
)

func testServer(t *testing.T) (*Server, *knowledge.Store) {
	t.Helper()

	store := testutil.TestStore(t, testutil.Sample)
	db := testutil.TestDB(t)
	if err := catalog.Sync(db, store, testutil.Logger()); err != nil {
		t.Fatal(err)
	}
	reg, err := provider.Default()
	if err != nil {
		t.Fatal(err)
	}
	svc := objectservice.NewService(knowledge.NewRef(store), db)
	return New(svc, reg, db, testutil.Logger()), store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handlers are
	// invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "lookup_object":
		result, err = srv.lookupObject(ctx, req)
	case "lookup_name":
		result, err = srv.lookupName(ctx, req)
	case "search_objects":
		result, err = srv.searchObjects(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "list_types":
		result, err = srv.listTypes(ctx, req)
	case "insert_record":
		result, err = srv.insertRecord(ctx, req)
	case "get_record_contract":
		result, err = srv.getRecordContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

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

func TestLookupObject(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "lookup_object", map[string]interface{}{"id": "AQAAAAAAAAAAAAAAAAAAAA"})
	if r.IsError {
		t.Fatalf("lookup error: %s", resultText(r))
	}
	var ob objectservice.ObjectDetail
	if err := json.Unmarshal([]byte(resultText(r)), &ob); err != nil {
		t.Fatal(err)
	}
	if ob.Tag != "profile" || len(ob.Names) != 1 || ob.Names[0] != "Alice" {
		t.Errorf("object = %+v", ob)
	}
}

func TestLookupObjectMissing(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "lookup_object", map[string]interface{}{"id": oid.FromUint64(90).Token()})
	if !r.IsError {
		t.Error("expected error for missing object")
	}
	r = callTool(t, srv, "lookup_object", map[string]interface{}{"id": "???"})
	if !r.IsError {
		t.Error("expected error for malformed id")
	}
}

func TestLookupName(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "lookup_name", map[string]interface{}{"name": "bob", "fold": true})
	if got := resultText(r); got != oid.FromUint64(2).Token() {
		t.Errorf("folded lookup = %q", got)
	}
	r = callTool(t, srv, "lookup_name", map[string]interface{}{"name": "bob"})
	if got := resultText(r); got != "no objects found" {
		t.Errorf("exact lookup = %q", got)
	}
}

func TestSearchObjects(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "search_objects", map[string]interface{}{"query": "labeled"})
	var results []catalog.SearchResult
	if err := json.Unmarshal([]byte(resultText(r)), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Tag != "post" {
		t.Errorf("results = %+v", results)
	}
}

func TestGetBacklinks(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"id": oid.FromUint64(2).Token()})
	want := oid.FromUint64(4).Token() + " endorser"
	if got := resultText(r); got != want {
		t.Errorf("backlinks = %q, want %q", got, want)
	}
}

func TestListTypes(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "list_types", nil)
	if got := resultText(r); got != "endorsement\npost\nprofile" {
		t.Errorf("types = %q", got)
	}
}

func TestInsertRecord(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "insert_record", map[string]interface{}{
		"records": `(profile (name Carol) (description "new here"))`,
	})
	if r.IsError {
		t.Fatalf("insert error: %s", resultText(r))
	}
	var res insertResult
	if err := json.Unmarshal([]byte(resultText(r)), &res); err != nil {
		t.Fatal(err)
	}
	want := oid.FromUint64(5).Token()
	if len(res.Inserted) != 1 || res.Inserted[0] != want {
		t.Fatalf("inserted = %v, want [%s]", res.Inserted, want)
	}
	if ids := store.LookupByName("Carol"); len(ids) != 1 {
		t.Errorf("Carol not indexed by name: %v", ids)
	}

	r = callTool(t, srv, "search_objects", map[string]interface{}{"query": "Carol"})
	if !strings.Contains(resultText(r), want) {
		t.Errorf("catalog missing inserted record: %s", resultText(r))
	}
}

func TestInsertRecordRejected(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "insert_record", map[string]interface{}{"records": "(widget (name x))"})
	if !r.IsError {
		t.Error("expected error for unknown record type")
	}
	r = callTool(t, srv, "insert_record", map[string]interface{}{"records": "(profile"})
	if !r.IsError {
		t.Error("expected error for malformed text")
	}
}

func TestRecordContract(t *testing.T) {
	srv, _ := testServer(t)

	r := callTool(t, srv, "get_record_contract", nil)
	if !strings.Contains(resultText(r), "report_ids") {
		t.Error("contract does not mention report_ids")
	}
}
