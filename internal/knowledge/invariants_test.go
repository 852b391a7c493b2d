package knowledge

import (
	"fmt"

	"github.com/starford/obweb/internal/oid"
)

// checkInvariants verifies that every indexed id is cached and that every
// cache entry sits at its recorded place in its tier's queue.
func (s *Store) checkInvariants() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inCache := func(where string, id oid.OID) error {
		if _, ok := s.cache[id]; !ok {
			return fmt.Errorf("%s references %s which is not cached", where, id)
		}
		return nil
	}
	for name, set := range s.names.ids {
		for id := range set {
			if err := inCache("name "+name, id); err != nil {
				return err
			}
		}
	}
	if len(s.names.keys) != len(s.names.ids) {
		return fmt.Errorf("sorted names %d != name sets %d", len(s.names.keys), len(s.names.ids))
	}
	for k, ids := range s.folded {
		seen := map[oid.OID]bool{}
		for _, id := range ids {
			if seen[id] {
				return fmt.Errorf("folded %q lists %s twice", k, id)
			}
			seen[id] = true
			if err := inCache("folded "+k, id); err != nil {
				return err
			}
		}
	}
	for id := range s.shortNames {
		if err := inCache("short name", id); err != nil {
			return err
		}
	}
	queued := 0
	for tier, q := range s.queues {
		for i, e := range q.items {
			if err := inCache(fmt.Sprintf("tier %d", tier), e.ob.ID()); err != nil {
				return err
			}
			if e.queuePlace != i || e.tier != tier {
				return fmt.Errorf("%s at tier %d slot %d records tier %d slot %d", e.ob.ID(), tier, i, e.tier, e.queuePlace)
			}
		}
		queued += q.Len()
	}
	if queued != len(s.cache) {
		return fmt.Errorf("queued %d != cached %d", queued, len(s.cache))
	}
	return nil
}
