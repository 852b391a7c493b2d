package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/mcpserver"
	"github.com/starford/obweb/internal/objectservice"
	"github.com/starford/obweb/internal/wood"
)

// Load builds the store once, refreshes the catalog and prints the ids of
// records whose insert directive asked for them, then a summary line.
func Load(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg.App.LogLevel, os.Stderr)

	data, err := openDataset(cfg, logger, nil)
	if err != nil {
		return err
	}
	store := data.ds.Store()

	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()
	if err := catalog.Sync(db, store, logger); err != nil {
		return fmt.Errorf("catalog sync: %w", err)
	}

	rep := data.report
	for _, in := range rep.Reported() {
		fmt.Fprintf(app.out, "%s (%s): %s\n", in.ID.Token(), in.ID.Decimal(), in.Tag)
	}
	fmt.Fprintf(app.out, "loaded %d objects (%d generated ids, %d skipped, %d warnings)\n",
		store.Len(), rep.Generated, rep.Skipped, len(rep.Warnings))
	return nil
}

// Dump writes every cached object as one insert directive. An output path of
// "-" writes to the command output; any other path is written atomically
// under the data directory.
func Dump(_ context.Context, output string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg.App.LogLevel, os.Stderr)

	data, err := openDataset(cfg, logger, nil)
	if err != nil {
		return err
	}
	store := data.ds.Store()
	doc := DumpDocument(store)

	if output == "" || output == "-" {
		_, err := fmt.Fprint(app.out, doc)
		return err
	}
	if err := data.fs.Write(output, []byte(doc)); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	logger.Info("Dump written", slog.String("path", output), slog.Int("objects", store.Len()))
	return nil
}

// DumpDocument renders store as a load file that rebuilds it.
func DumpDocument(store *knowledge.Store) string {
	items := []any{"insert"}
	for _, ob := range store.Objects() {
		items = append(items, ob.Wood())
	}
	return wood.Document([]*wood.Wood{wood.Woods(items...)})
}

// ServeMCP serves the MCP tools on stdio. Logs go to stderr since stdout
// carries the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg.App.LogLevel, os.Stderr)

	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	data, err := openDataset(cfg, logger, nil)
	if err != nil {
		return err
	}
	if err := catalog.Sync(db, data.ds.Store(), logger); err != nil {
		logger.Warn("initial catalog sync failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(objectservice.NewService(data.ds.Ref(), db), data.reg, db, logger)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
