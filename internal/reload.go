package internal

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/dataset"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/sse"
)

// reloadEvent is the payload of a store.reloaded event.
type reloadEvent struct {
	ReloadID string   `json:"reload_id"`
	Paths    []string `json:"paths"`
	Objects  int      `json:"objects"`
	Warnings int      `json:"warnings"`
}

// changeHook mirrors store changes into the catalog and the event stream.
func changeHook(current func() *knowledge.Store, db catalog.Index, broker *sse.Broker, logger *slog.Logger) func(models.Change) {
	return func(c models.Change) {
		catalog.Apply(db, current(), c, logger)
		broker.PublishChange(c)
	}
}

// reloader rebuilds the dataset after the watcher reports changed paths,
// re-syncs the catalog and announces the new store. Each run gets an id
// shared by its log lines and its event.
func reloader(ds *dataset.Dataset, db catalog.Index, broker *sse.Broker, logger *slog.Logger) func(paths []string) {
	return func(paths []string) {
		reloadID := uuid.NewString()
		log := logger.With(slog.String("reload_id", reloadID))
		log.Info("Data changed, reloading", slog.Any("paths", paths))

		changed, rep, err := ds.Reload()
		if err != nil {
			log.Error("Reload failed, keeping current store", slog.String("error", err.Error()))
			return
		}
		if !changed {
			return
		}

		store := ds.Store()
		if err := catalog.Sync(db, store, log); err != nil {
			log.Warn("Catalog sync failed", slog.String("error", err.Error()))
		}
		broker.Publish(sse.Event{Type: sse.TypeStoreReloaded, Data: reloadEvent{
			ReloadID: reloadID,
			Paths:    paths,
			Objects:  store.Len(),
			Warnings: len(rep.Warnings),
		}})
	}
}
