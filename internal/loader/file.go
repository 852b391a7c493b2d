package loader

import (
	"fmt"
	"log/slog"

	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/provider"
	"github.com/starford/obweb/internal/storage"
	"github.com/starford/obweb/internal/wood"
)

// LoadFile reads and parses path from src and loads it into store. Read and
// syntax errors are fatal.
func LoadFile(src storage.Provider, path string, reg *provider.Registry, store *knowledge.Store, logger *slog.Logger) (*Report, error) {
	data, err := src.Read(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	root, err := wood.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", path, err)
	}
	return Load(root, reg, store, logger)
}
