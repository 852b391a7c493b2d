package knowledge

import (
	"time"

	"github.com/starford/obweb/internal/models"
	"github.com/starford/obweb/internal/oid"
)

// Evict removes id from the cache, its expiry queue and every index.
// It reports whether id was present.
func (s *Store) Evict(id oid.OID) bool {
	s.mu.Lock()
	e, ok := s.cache[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	c := s.removeLocked(e)
	s.mu.Unlock()

	s.notify([]models.Change{c})
	return true
}

// Sweep evicts every entry that has gone unseen for at least its tier's
// TTL as of now, and returns the evicted ids oldest first within each tier.
func (s *Store) Sweep(now time.Time) []oid.OID {
	var (
		evicted []oid.OID
		changes []models.Change
	)
	s.mu.Lock()
	for tier, q := range s.queues {
		ttl := s.ttl(tier)
		if ttl <= 0 {
			continue
		}
		cutoff := now.Add(-ttl)
		for {
			e := q.oldest()
			if e == nil || e.dateSeen.After(cutoff) {
				break
			}
			evicted = append(evicted, e.ob.ID())
			changes = append(changes, s.removeLocked(e))
		}
	}
	s.mu.Unlock()

	s.notify(changes)
	return evicted
}

func (s *Store) ttl(tier int) time.Duration {
	if tier < len(s.opts.ttls) {
		return s.opts.ttls[tier]
	}
	return 0
}

// lowestOldest returns the oldest entry of the lowest non-empty tier.
func (s *Store) lowestOldest() *entry {
	for _, q := range s.queues {
		if e := q.oldest(); e != nil {
			return e
		}
	}
	return nil
}

// removeLocked is the only place an entry leaves the store. Cache, queue,
// both name indexes and the short name go together.
func (s *Store) removeLocked(e *entry) models.Change {
	id := e.ob.ID()
	s.queues[e.tier].remove(e)
	s.reindexNames(id, e.names, nil)
	delete(s.shortNames, id)
	delete(s.cache, id)
	return models.Change{Kind: models.ChangeEvicted, Token: id.Token(), Tag: e.ob.TypeTag()}
}
