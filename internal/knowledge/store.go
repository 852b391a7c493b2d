// Package knowledge implements the in-memory object store: the object cache,
// per-tier expiry queues, name indexes, user short names and the id counter.
//
// All of that state is one consistency unit guarded by a single RWMutex.
// Every mutation updates the cache entry, its queue slot and the name
// indexes together.
package knowledge

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/starford/obweb/internal/apperr"
	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/object"
	"github.com/starford/obweb/internal/oid"
)

type entry struct {
	ob         object.Object
	names      []string
	dateSeen   time.Time
	priority   int8
	tier       int
	queuePlace int
}

// Store is the knowledge store. The zero value is not usable; call New.
type Store struct {
	mu         sync.RWMutex
	cache      map[oid.OID]*entry
	queues     []*expiryQueue
	names      *nameIndex
	folded     foldedIndex
	shortNames map[oid.OID]string
	maxKnownID oid.OID

	opts options
}

// New returns an empty store.
func New(opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := &Store{
		cache:      make(map[oid.OID]*entry),
		queues:     make([]*expiryQueue, o.tiers),
		names:      newNameIndex(),
		folded:     make(foldedIndex),
		shortNames: make(map[oid.OID]string),
		maxKnownID: o.idFloor,
		opts:       o,
	}
	for i := range s.queues {
		s.queues[i] = &expiryQueue{}
	}
	return s
}

// GenID advances the counter and returns the new value. The counter only
// grows and Consider raises it past every stored id, so the result is never
// in use.
func (s *Store) GenID() (oid.OID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.maxKnownID.Next()
	if err != nil {
		return oid.OID{}, fmt.Errorf("knowledge: gen id: %w", err)
	}
	s.maxKnownID = next
	return next, nil
}

// Observe raises the counter to at least id.
func (s *Store) Observe(id oid.OID) {
	s.mu.Lock()
	s.maxKnownID = oid.Greater(s.maxKnownID, id)
	s.mu.Unlock()
}

// MaxKnownID returns the counter's high-water mark.
func (s *Store) MaxKnownID() oid.OID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxKnownID
}

// Contains reports whether id is cached.
func (s *Store) Contains(id oid.OID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.cache[id]
	return ok
}

// Consider inserts or refreshes ob at the default priority.
func (s *Store) Consider(id oid.OID, ob object.Object) error {
	return s.ConsiderPriority(id, ob, s.opts.defaultPriority)
}

// ConsiderPriority inserts ob under id, or refreshes the existing entry:
// its date seen moves to now, it moves to the tier of priority and the name
// indexes are brought in line with ob's names. Repeating a call with equal
// input leaves the indexes unchanged.
func (s *Store) ConsiderPriority(id oid.OID, ob object.Object, priority int8) error {
	if ob == nil {
		return fmt.Errorf("knowledge: consider %s: nil object", id)
	}
	if ob.ID() != id {
		return fmt.Errorf("knowledge: consider %s: object carries id %s: %w", id, ob.ID(), apperr.ErrInvalidID)
	}

	var changes []models.Change
	s.mu.Lock()
	now := s.opts.now()
	tier := s.tierOf(priority)
	names := uniqueNames(object.NamesOf(ob))

	e, ok := s.cache[id]
	if ok {
		s.reindexNames(id, e.names, names)
		e.ob = ob
		e.names = names
		e.dateSeen = now
		e.priority = priority
		if e.tier != tier {
			s.queues[e.tier].remove(e)
			e.tier = tier
			s.queues[tier].add(e)
		} else {
			s.queues[tier].fix(e)
		}
	} else {
		if s.opts.maxObjects > 0 {
			for len(s.cache) >= s.opts.maxObjects {
				victim := s.lowestOldest()
				if victim == nil {
					break
				}
				changes = append(changes, s.removeLocked(victim))
			}
		}
		e = &entry{ob: ob, names: names, dateSeen: now, priority: priority, tier: tier}
		s.cache[id] = e
		s.queues[tier].add(e)
		s.reindexNames(id, nil, names)
	}
	s.maxKnownID = oid.Greater(s.maxKnownID, id)
	changes = append(changes, models.Change{Kind: models.ChangeConsidered, Token: id.Token(), Tag: ob.TypeTag()})
	s.mu.Unlock()

	s.notify(changes)
	return nil
}

func (s *Store) tierOf(priority int8) int {
	t := int(priority)
	if t < 0 {
		return 0
	}
	if t >= len(s.queues) {
		return len(s.queues) - 1
	}
	return t
}

func (s *Store) reindexNames(id oid.OID, old, cur []string) {
	oldSet := make(map[string]bool, len(old))
	for _, n := range old {
		oldSet[n] = true
	}
	curSet := make(map[string]bool, len(cur))
	for _, n := range cur {
		curSet[n] = true
	}
	for n := range oldSet {
		if !curSet[n] {
			s.names.remove(n, id)
		}
	}
	for n := range curSet {
		if !oldSet[n] {
			s.names.add(n, id)
		}
	}

	oldFolded := foldSet(old)
	curFolded := foldSet(cur)
	for k := range oldFolded {
		if !curFolded[k] {
			s.folded.remove(k, id)
		}
	}
	for k := range curFolded {
		if !oldFolded[k] {
			s.folded.add(k, id)
		}
	}
}

func foldSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[fold(n)] = true
	}
	return out
}

func uniqueNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Lookup returns the object stored under id.
func (s *Store) Lookup(id oid.OID) (object.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache[id]
	if !ok {
		return nil, false
	}
	return e.ob, true
}

// Get is Lookup returning an error wrapping apperr.ErrNotFound on a miss.
func (s *Store) Get(id oid.OID) (object.Object, error) {
	ob, ok := s.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("knowledge: object %s: %w", id, apperr.ErrNotFound)
	}
	return ob, nil
}

// EntryInfo describes the cache bookkeeping of one object.
type EntryInfo struct {
	DateSeen   time.Time
	Priority   int8
	Tier       int
	QueuePlace int
	ShortName  string
}

// Info returns the cache bookkeeping for id.
func (s *Store) Info(id oid.OID) (EntryInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache[id]
	if !ok {
		return EntryInfo{}, false
	}
	return EntryInfo{
		DateSeen:   e.dateSeen,
		Priority:   e.priority,
		Tier:       e.tier,
		QueuePlace: e.queuePlace,
		ShortName:  s.shortNames[id],
	}, true
}

// LookupByName returns the ids carrying exactly name, in id order.
func (s *Store) LookupByName(name string) []oid.OID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names.lookup(name)
}

// LookupFolded returns the ids whose name matches name under Unicode case
// folding, in the order they were first indexed.
func (s *Store) LookupFolded(name string) []oid.OID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.folded[fold(name)]
	if len(ids) == 0 {
		return nil
	}
	return append([]oid.OID(nil), ids...)
}

// NamesWithPrefix returns the names starting with prefix in lexical order,
// at most limit of them when limit is positive.
func (s *Store) NamesWithPrefix(prefix string, limit int) []NameEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names.withPrefix(prefix, limit)
}

// Objects returns every cached object ordered by id.
func (s *Store) Objects() []object.Object {
	s.mu.RLock()
	out := make([]object.Object, 0, len(s.cache))
	for _, e := range s.cache {
		out = append(out, e.ob)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID().Less(out[j].ID()) })
	return out
}

// Len returns the number of cached objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}

// TierLens returns the number of entries queued in each tier.
func (s *Store) TierLens() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int, len(s.queues))
	for i, q := range s.queues {
		out[i] = q.Len()
	}
	return out
}

// SetShortName assigns a display alias to id. An empty name clears it.
func (s *Store) SetShortName(id oid.OID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cache[id]; !ok {
		return fmt.Errorf("knowledge: short name for %s: %w", id, apperr.ErrNotFound)
	}
	if name == "" {
		delete(s.shortNames, id)
		return nil
	}
	s.shortNames[id] = name
	return nil
}

// ShortName returns the display alias of id.
func (s *Store) ShortName(id oid.OID) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.shortNames[id]
	return n, ok
}

func (s *Store) notify(changes []models.Change) {
	if s.opts.onChange == nil {
		return
	}
	for _, c := range changes {
		s.opts.onChange(c)
	}
}
