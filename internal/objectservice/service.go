// Package objectservice turns store and catalog state into the response
// shapes served by the HTTP API and the MCP tools.
package objectservice

import (
	"context"
	"fmt"
	"time"

	"github.com/starford/obweb/internal/apperr"
	"github.com/starford/obweb/internal/catalog"
	"github.com/starford/obweb/internal/checksum"
	"github.com/starford/obweb/internal/knowledge"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/object"
	"github.com/starford/obweb/internal/oid"
)

// ObjectDetail is the full representation of a cached object.
type ObjectDetail struct {
	ID           string          `json:"id"`
	Decimal      string          `json:"decimal"`
	Tag          string          `json:"tag"`
	BranchRoot   string          `json:"branch_root"`
	EditingPrior []string        `json:"editing_prior"`
	Names        []string        `json:"names"`
	ShortName    string          `json:"short_name,omitempty"`
	References   []ReferenceItem `json:"references"`
	Backlinks    []models.Link   `json:"backlinks"`
	Wood         string          `json:"wood"`
	Checksum     string          `json:"checksum"`
	DateSeen     time.Time       `json:"date_seen"`
	Priority     int8            `json:"priority"`
	Tier         int             `json:"tier"`
}

// ReferenceItem is an outgoing reference of an object.
type ReferenceItem struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// ObjectListItem is a lightweight item in a list response.
type ObjectListItem struct {
	ID        string   `json:"id"`
	Tag       string   `json:"tag"`
	Names     []string `json:"names"`
	ShortName string   `json:"short_name,omitempty"`
}

// LineageResult is the first-prior chain of an object, newest first.
type LineageResult struct {
	Chain    []string `json:"chain"`
	Complete bool     `json:"complete"`
}

// NameMatch pairs a name with the objects carrying it.
type NameMatch struct {
	Name string   `json:"name"`
	IDs  []string `json:"ids"`
}

// Stats summarises the store.
type Stats struct {
	Objects    int            `json:"objects"`
	Tiers      []int          `json:"tiers"`
	MaxKnownID string         `json:"max_known_id"`
	Tags       map[string]int `json:"tags"`
}

// Service reads the store currently held by a knowledge.Ref, so a reload
// swapping the store is picked up by the next call.
type Service struct {
	ref *knowledge.Ref
	db  catalog.Index
}

// NewService creates a new object service.
func NewService(ref *knowledge.Ref, db catalog.Index) *Service {
	return &Service{ref: ref, db: db}
}

// Store returns the current store.
func (s *Service) Store() *knowledge.Store { return s.ref.Load() }

// ParseID parses an id token, reporting apperr.ErrInvalidID on failure.
func ParseID(token string) (oid.OID, error) {
	id, err := oid.Parse(token)
	if err != nil {
		return oid.OID{}, fmt.Errorf("%w: %v", apperr.ErrInvalidID, err)
	}
	return id, nil
}

// GetObject returns the detail of the object with the given token.
func (s *Service) GetObject(_ context.Context, token string) (*ObjectDetail, error) {
	ob, err := s.lookup(token)
	if err != nil {
		return nil, err
	}
	store := s.Store()
	info, _ := store.Info(ob.ID())

	var bl []models.Link
	if s.db != nil {
		if bl, err = s.db.Backlinks(ob.ID().Token()); err != nil {
			return nil, err
		}
	}

	w := ob.Wood()
	refs := ob.References()
	items := make([]ReferenceItem, len(refs))
	for i, r := range refs {
		items[i] = ReferenceItem{Kind: r.Kind, Target: r.Target.Token()}
	}
	return &ObjectDetail{
		ID:           ob.ID().Token(),
		Decimal:      ob.ID().Decimal(),
		Tag:          ob.TypeTag(),
		BranchRoot:   ob.BranchRoot().Token(),
		EditingPrior: tokens(ob.EditingPrior()),
		Names:        nonNilSlice(object.NamesOf(ob)),
		ShortName:    info.ShortName,
		References:   items,
		Backlinks:    nonNilSlice(bl),
		Wood:         w.Indented(),
		Checksum:     checksum.Wood(w),
		DateSeen:     info.DateSeen,
		Priority:     info.Priority,
		Tier:         info.Tier,
	}, nil
}

// Wood returns the indented serialized form of an object and its checksum.
func (s *Service) Wood(_ context.Context, token string) (text, sum string, err error) {
	ob, err := s.lookup(token)
	if err != nil {
		return "", "", err
	}
	w := ob.Wood()
	return w.Indented(), checksum.Wood(w), nil
}

// ListObjects returns a page of objects ordered by id, optionally restricted
// to one type tag, and the total number of matches.
func (s *Service) ListObjects(_ context.Context, limit, offset int, tag string) ([]ObjectListItem, int, error) {
	store := s.Store()
	all := store.Objects()
	if tag != "" {
		kept := all[:0]
		for _, ob := range all {
			if ob.TypeTag() == tag {
				kept = append(kept, ob)
			}
		}
		all = kept
	}
	total := len(all)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}

	items := make([]ObjectListItem, 0, end-offset)
	for _, ob := range all[offset:end] {
		short, _ := store.ShortName(ob.ID())
		items = append(items, ObjectListItem{
			ID:        ob.ID().Token(),
			Tag:       ob.TypeTag(),
			Names:     nonNilSlice(object.NamesOf(ob)),
			ShortName: short,
		})
	}
	return items, total, nil
}

// Lineage returns the first-prior chain of an object.
func (s *Service) Lineage(_ context.Context, token string) (*LineageResult, error) {
	id, err := ParseID(token)
	if err != nil {
		return nil, err
	}
	chain, complete, err := s.Store().Lineage(id)
	if err != nil {
		return nil, err
	}
	out := &LineageResult{Chain: make([]string, len(chain)), Complete: complete}
	for i, ob := range chain {
		out.Chain[i] = ob.ID().Token()
	}
	return out, nil
}

// Backlinks returns the catalog edges pointing at an object.
func (s *Service) Backlinks(_ context.Context, token string) ([]models.Link, error) {
	if _, err := ParseID(token); err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(token)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(bl), nil
}

// LookupName returns the ids carrying name. With folded set the match
// ignores case.
func (s *Service) LookupName(_ context.Context, name string, folded bool) []string {
	store := s.Store()
	if folded {
		return tokens(store.LookupFolded(name))
	}
	return tokens(store.LookupByName(name))
}

// Names returns names starting with prefix in lexical order.
func (s *Service) Names(_ context.Context, prefix string, limit int) []NameMatch {
	entries := s.Store().NamesWithPrefix(prefix, limit)
	out := make([]NameMatch, len(entries))
	for i, e := range entries {
		out[i] = NameMatch{Name: e.Name, IDs: tokens(e.IDs)}
	}
	return out
}

// Search delegates full-text search to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	res, err := s.db.Search(query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// SetShortName assigns or clears the display alias of an object.
func (s *Service) SetShortName(_ context.Context, token, name string) error {
	id, err := ParseID(token)
	if err != nil {
		return err
	}
	return s.Store().SetShortName(id, name)
}

// Stats returns store counters and per-tag counts from the catalog.
func (s *Service) Stats(_ context.Context) (*Stats, error) {
	store := s.Store()
	tags := map[string]int{}
	if s.db != nil {
		var err error
		if tags, err = s.db.TagCounts(); err != nil {
			return nil, err
		}
	}
	return &Stats{
		Objects:    store.Len(),
		Tiers:      store.TierLens(),
		MaxKnownID: store.MaxKnownID().Token(),
		Tags:       tags,
	}, nil
}

func (s *Service) lookup(token string) (object.Object, error) {
	id, err := ParseID(token)
	if err != nil {
		return nil, err
	}
	return s.Store().Get(id)
}

func tokens(ids []oid.OID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Token()
	}
	return out
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
