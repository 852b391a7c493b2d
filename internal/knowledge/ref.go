package knowledge

import "sync/atomic"

// Ref holds the current store and lets a reload replace it atomically.
type Ref struct {
	p atomic.Pointer[Store]
}

func NewRef(s *Store) *Ref {
	r := &Ref{}
	r.p.Store(s)
	return r
}

// Load returns the current store.
func (r *Ref) Load() *Store { return r.p.Load() }

// Swap installs s and returns the previous store.
func (r *Ref) Swap(s *Store) *Store { return r.p.Swap(s) }
