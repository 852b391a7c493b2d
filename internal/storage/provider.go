// Package storage gives path-safe access to the data directory holding the
// bulk-load documents.
package storage

import "github.com/starford/obweb/internal/models"

// Ext is the file extension of Wood documents.
const Ext = ".term"

// Provider is the interface for data file operations. Paths are relative to
// the data root.
type Provider interface {
	// List returns metadata for every .term file under dir, sorted by path.
	List(dir string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path.
	Write(path string, content []byte) error
}
