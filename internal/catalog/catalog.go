package catalog

import "github.com/starford/obweb/internal/models"

// Index defines the catalog operations used by the rest of obweb.
type Index interface {
	UpsertObject(row models.CatalogEntry, body string, links []models.Link) error
	DeleteObject(token string) error
	GetChecksum(token string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(target string) ([]models.Link, error)
	TagCounts() (map[string]int, error)
	Close() error
}

var _ Index = (*DB)(nil)
