// Package models defines the shared value types passed between obweb
// components.
package models

import "time"

// ChangeKind names a store mutation.
type ChangeKind string

const (
	ChangeConsidered ChangeKind = "considered"
	ChangeEvicted    ChangeKind = "evicted"
)

// Change describes one mutation of the knowledge store.
type Change struct {
	Kind  ChangeKind `json:"kind"`
	Token string     `json:"id"`
	Tag   string     `json:"tag"`
}

// FileMeta is a lightweight description of a data file.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link is a directed edge between two objects, by token.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// CatalogEntry is a row of the search catalog.
type CatalogEntry struct {
	Token     string    `json:"id"`
	Tag       string    `json:"tag"`
	Name      string    `json:"name,omitempty"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
