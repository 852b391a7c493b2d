// Package dataset builds the knowledge store from the data directory and
// rebuilds it when the documents change.
//
// The init file is loaded first, followed by every other .term file under the
// data root in path order. All documents form one batch, so ids generated for
// one file never collide with explicit ids in another.
package dataset

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/starford/obweb/internal/checksum"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/loader"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/storage"
	"github.com/starford/obweb/internal/wood"
)

// Options configures a Dataset.
type Options struct {
	// InitFile is the data-relative path of the document loaded first.
	InitFile string
	// StoreOptions are applied to every store the dataset builds.
	StoreOptions []knowledge.Option
	// OnChange receives store changes made after a build completes.
	OnChange func(models.Change)
}

// Dataset owns the current store.
type Dataset struct {
	src    storage.Provider
	reg    *provider.Registry
	opts   Options
	logger *slog.Logger

	ref *knowledge.Ref

	mu       sync.Mutex
	checksum string
}

// New returns a dataset holding an empty store. Call Load to populate it.
func New(src storage.Provider, reg *provider.Registry, opts Options, logger *slog.Logger) *Dataset {
	d := &Dataset{src: src, reg: reg, opts: opts, logger: logger}
	d.ref = knowledge.NewRef(knowledge.New(opts.StoreOptions...))
	return d
}

// Store returns the current store.
func (d *Dataset) Store() *knowledge.Store { return d.ref.Load() }

// Ref exposes the swappable store pointer.
func (d *Dataset) Ref() *knowledge.Ref { return d.ref }

// Load builds a store from the data directory and installs it. Any read or
// syntax error is returned and leaves the current store in place.
func (d *Dataset) Load() (*loader.Report, error) {
	_, rep, err := d.reload(true)
	return rep, err
}

// Reload rebuilds the store when the documents changed since the last
// successful load. changed is false when the checksum matched and nothing
// was done.
func (d *Dataset) Reload() (changed bool, rep *loader.Report, err error) {
	return d.reload(false)
}

func (d *Dataset) reload(force bool) (bool, *loader.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	files, sum, err := d.files()
	if err != nil {
		return false, nil, err
	}
	if !force && sum == d.checksum {
		d.logger.Debug("dataset: unchanged, skipping reload")
		return false, nil, nil
	}

	store, rep, err := d.build(files)
	if err != nil {
		return false, rep, err
	}
	d.ref.Swap(store)
	d.checksum = sum
	d.logger.Info("dataset: loaded",
		slog.Int("files", len(files)),
		slog.Int("objects", store.Len()),
		slog.Int("generated", rep.Generated),
		slog.Int("warnings", len(rep.Warnings)))
	return true, rep, nil
}

// files returns the documents in load order and a checksum over their
// contents.
func (d *Dataset) files() ([]string, string, error) {
	metas, err := d.src.List("")
	if err != nil {
		return nil, "", fmt.Errorf("dataset: %w", err)
	}
	var (
		paths []string
		sums  strings.Builder
		found bool
	)
	for _, m := range metas {
		if m.Path == d.opts.InitFile {
			found = true
			paths = append([]string{m.Path}, paths...)
			continue
		}
		paths = append(paths, m.Path)
	}
	if !found {
		return nil, "", fmt.Errorf("dataset: init file %q not found", d.opts.InitFile)
	}
	byPath := make(map[string]string, len(metas))
	for _, m := range metas {
		byPath[m.Path] = m.Checksum
	}
	for _, p := range paths {
		fmt.Fprintf(&sums, "%s %s\n", p, byPath[p])
	}
	return paths, checksum.Sum([]byte(sums.String())), nil
}

func (d *Dataset) build(paths []string) (*knowledge.Store, *loader.Report, error) {
	var terms []*wood.Wood
	for _, p := range paths {
		data, err := d.src.Read(p)
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: %w", err)
		}
		root, err := wood.Parse(string(data))
		if err != nil {
			return nil, nil, fmt.Errorf("dataset: parse %s: %w", p, err)
		}
		terms = append(terms, root.Contents()...)
	}

	var armed atomic.Bool
	opts := slices.Clone(d.opts.StoreOptions)
	if d.opts.OnChange != nil {
		opts = append(opts, knowledge.WithOnChange(func(c models.Change) {
			if armed.Load() {
				d.opts.OnChange(c)
			}
		}))
	}
	store := knowledge.New(opts...)
	rep, err := loader.Load(wood.Branch(terms...), d.reg, store, d.logger)
	if err != nil {
		return nil, rep, err
	}
	armed.Store(true)
	return store, rep, nil
}
