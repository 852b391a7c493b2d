package catalog

import (
	"os"
	"testing"
	"time"

	"github.com/starford/obweb/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "obweb-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func row(tok, tag, name, cs string) models.CatalogEntry {
	return models.CatalogEntry{Token: tok, Tag: tag, Name: name, Checksum: cs, UpdatedAt: time.Now()}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM objects`).Scan(&count); err != nil {
		t.Fatalf("objects table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	links := []models.Link{{Target: "B", Kind: "author"}}
	if err := db.UpsertObject(row("A", "post", "", "abc123"), "(post ...)", links); err != nil {
		t.Fatalf("UpsertObject: %v", err)
	}
	cs, err := db.GetChecksum("A")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestBacklinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertObject(row("A", "post", "", "1"), "body", []models.Link{{Target: "P", Kind: "author"}})
	_ = db.UpsertObject(row("C", "endorsement", "", "2"), "body", []models.Link{
		{Target: "P", Kind: "endorses"},
		{Target: "Q", Kind: "endorser"},
	})

	bl, err := db.Backlinks("P")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if len(bl) != 2 {
		t.Fatalf("expected 2 backlinks, got %d", len(bl))
	}
	if bl[0].Source != "A" || bl[0].Kind != "author" || bl[1].Source != "C" {
		t.Errorf("backlinks = %+v", bl)
	}
}

func TestDeleteObject(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertObject(row("D", "post", "", "x"), "body", []models.Link{{Target: "T", Kind: "author"}})

	if err := db.DeleteObject("D"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
	cs, _ := db.GetChecksum("D")
	if cs != "" {
		t.Errorf("deleted object still has checksum %q", cs)
	}
	bl, _ := db.Backlinks("T")
	if len(bl) != 0 {
		t.Errorf("expected 0 backlinks after delete, got %d", len(bl))
	}
}

func TestUpsertReplacesLinks(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertObject(row("U", "post", "", "1"), "old", []models.Link{{Target: "X", Kind: "author"}})
	_ = db.UpsertObject(row("U", "post", "", "2"), "new", []models.Link{{Target: "Y", Kind: "author"}})

	cs, _ := db.GetChecksum("U")
	if cs != "2" {
		t.Errorf("checksum = %q, want %q", cs, "2")
	}
	if bl, _ := db.Backlinks("X"); len(bl) != 0 {
		t.Error("old link should be removed on upsert")
	}
	if bl, _ := db.Backlinks("Y"); len(bl) != 1 {
		t.Error("new link should exist")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertObject(row("S", "profile", "Alice", "1"), "(profile (name Alice) (description uniqueword))", nil)

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Token != "S" || results[0].Tag != "profile" {
		t.Errorf("search results = %+v, want 1 hit for S", results)
	}
}

func TestTagCounts(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertObject(row("A", "profile", "a", "1"), "a", nil)
	_ = db.UpsertObject(row("B", "profile", "b", "2"), "b", nil)
	_ = db.UpsertObject(row("C", "post", "", "3"), "c", nil)

	counts, err := db.TagCounts()
	if err != nil {
		t.Fatalf("TagCounts: %v", err)
	}
	if counts["profile"] != 2 || counts["post"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
