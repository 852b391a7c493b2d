package knowledge

import (
	"fmt"
	"strings"

	"github.com/starford/obweb/internal/apperr"
	"github.com/starford/obweb/internal/object"
	"github.com/starford/obweb/internal/oid"
)

// BranchRootOf returns the branch root recorded on id.
func (s *Store) BranchRootOf(id oid.OID) (oid.OID, error) {
	ob, err := s.Get(id)
	if err != nil {
		return oid.OID{}, err
	}
	return ob.BranchRoot(), nil
}

// Priors resolves the records id edits. Priors that are not loaded are
// skipped and reported in an error wrapping apperr.ErrNotFound; the ones that
// were found are returned either way.
func (s *Store) Priors(id oid.OID) ([]object.Object, error) {
	ob, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var (
		found   []object.Object
		missing []string
	)
	for _, p := range ob.EditingPrior() {
		if prior, ok := s.Lookup(p); ok {
			found = append(found, prior)
		} else {
			missing = append(missing, p.Token())
		}
	}
	if len(missing) > 0 {
		return found, fmt.Errorf("knowledge: priors of %s: %s: %w", id, strings.Join(missing, ", "), apperr.ErrNotFound)
	}
	return found, nil
}

// Lineage follows first priors back from id. The chain starts with id itself.
// complete is false when the walk stopped at a record that is not loaded or
// at a cycle.
func (s *Store) Lineage(id oid.OID) (chain []object.Object, complete bool, err error) {
	ob, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}
	seen := map[oid.OID]bool{id: true}
	chain = append(chain, ob)
	for {
		priors := ob.EditingPrior()
		if len(priors) == 0 {
			return chain, true, nil
		}
		next := priors[0]
		if seen[next] {
			return chain, false, nil
		}
		prior, ok := s.Lookup(next)
		if !ok {
			return chain, false, nil
		}
		seen[next] = true
		chain = append(chain, prior)
		ob = prior
	}
}
