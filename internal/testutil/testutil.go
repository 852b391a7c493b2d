// Package testutil provides shared test helpers for data directories, stores
// and catalog databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/loader"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/storage"
	"github.com/starford/obweb/internal/wood"
)

// Sample is a small document exercising every built-in record type.
const Sample = `insert
  profile (id AQAAAAAAAAAAAAAAAAAAAA) (name Alice) (description "writes about wood")
  profile (id AgAAAAAAAAAAAAAAAAAAAA) (name Bob) (description "reads a lot")
  post (id AwAAAAAAAAAAAAAAAAAAAA) (author AQAAAAAAAAAAAAAAAAAAAA) (title "On wood") (body "labeled trees everywhere")
  endorsement (by AgAAAAAAAAAAAAAAAAAAAA) (of AQAAAAAAAAAAAAAAAAAAAA) (statement "worth reading")
`

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDB creates a temporary catalog database that is cleaned up with t.
func TestDB(t *testing.T) *catalog.DB {
	t.Helper()
	dbFile, err := os.CreateTemp(t.TempDir(), "obweb-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()

	db, err := catalog.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestData creates a temporary data directory holding files (path -> content).
func TestData(t *testing.T, files map[string]string) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	for p, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestStore returns a store loaded from src.
func TestStore(t *testing.T, src string, opts ...knowledge.Option) *knowledge.Store {
	t.Helper()
	root, err := wood.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	reg, err := provider.Default()
	if err != nil {
		t.Fatal(err)
	}
	store := knowledge.New(opts...)
	if _, err := loader.Load(root, reg, store, Logger()); err != nil {
		t.Fatal(err)
	}
	return store
}
