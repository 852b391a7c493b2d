package catalog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/starford/obweb/internal/checksum"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/object"
	"github.com/starford/obweb/internal/oid"
)

// Sync brings the catalog in line with store:
//   - new or changed objects are upserted
//   - rows whose object is no longer in the store are deleted
func Sync(db Index, store *knowledge.Store, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, store.Len())
	for _, ob := range store.Objects() {
		tok := ob.ID().Token()
		live[tok] = struct{}{}

		w := ob.Wood()
		if checksums[tok] == checksum.Wood(w) {
			continue
		}
		if err := IndexObject(db, ob); err != nil {
			logger.Warn("catalog: index failed", slog.String("id", tok), slog.String("error", err.Error()))
		} else {
			logger.Debug("catalog: indexed", slog.String("id", tok))
		}
	}

	for tok := range checksums {
		if _, ok := live[tok]; ok {
			continue
		}
		if err := db.DeleteObject(tok); err != nil {
			logger.Warn("catalog: delete failed", slog.String("id", tok), slog.String("error", err.Error()))
		} else {
			logger.Debug("catalog: removed stale", slog.String("id", tok))
		}
	}
	return nil
}

// IndexObject upserts one object.
func IndexObject(db Index, ob object.Object) error {
	w := ob.Wood()
	row := models.CatalogEntry{
		Token:     ob.ID().Token(),
		Tag:       ob.TypeTag(),
		Name:      strings.Join(object.NamesOf(ob), " "),
		Checksum:  checksum.Wood(w),
		UpdatedAt: time.Now().UTC(),
	}
	refs := ob.References()
	links := make([]models.Link, 0, len(refs))
	for _, r := range refs {
		links = append(links, models.Link{Source: row.Token, Target: r.Target.Token(), Kind: r.Kind})
	}
	return db.UpsertObject(row, w.Indented(), links)
}

// Apply mirrors one store change into the catalog.
func Apply(db Index, store *knowledge.Store, c models.Change, logger *slog.Logger) {
	switch c.Kind {
	case models.ChangeEvicted:
		if err := db.DeleteObject(c.Token); err != nil {
			logger.Warn("catalog: delete failed", slog.String("id", c.Token), slog.String("error", err.Error()))
		}
	case models.ChangeConsidered:
		id, err := oid.Parse(c.Token)
		if err != nil {
			return
		}
		ob, ok := store.Lookup(id)
		if !ok {
			return
		}
		if err := IndexObject(db, ob); err != nil {
			logger.Warn("catalog: index failed", slog.String("id", c.Token), slog.String("error", err.Error()))
		}
	}
}
