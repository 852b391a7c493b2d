package knowledge

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/starford/obweb/internal/oid"
)

// nameIndex maps names to id sets and keeps the names sorted for range
// queries.
type nameIndex struct {
	keys []string
	ids  map[string]map[oid.OID]struct{}
}

func newNameIndex() *nameIndex {
	return &nameIndex{ids: make(map[string]map[oid.OID]struct{})}
}

func (n *nameIndex) add(name string, id oid.OID) {
	set, ok := n.ids[name]
	if !ok {
		set = make(map[oid.OID]struct{})
		n.ids[name] = set
		i := sort.SearchStrings(n.keys, name)
		n.keys = append(n.keys, "")
		copy(n.keys[i+1:], n.keys[i:])
		n.keys[i] = name
	}
	set[id] = struct{}{}
}

func (n *nameIndex) remove(name string, id oid.OID) {
	set, ok := n.ids[name]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) > 0 {
		return
	}
	delete(n.ids, name)
	i := sort.SearchStrings(n.keys, name)
	if i < len(n.keys) && n.keys[i] == name {
		n.keys = append(n.keys[:i], n.keys[i+1:]...)
	}
}

func (n *nameIndex) lookup(name string) []oid.OID {
	return sortedIDs(n.ids[name])
}

// NameEntry is one name and the ids that carry it.
type NameEntry struct {
	Name string    `json:"name"`
	IDs  []oid.OID `json:"ids"`
}

func (n *nameIndex) withPrefix(prefix string, limit int) []NameEntry {
	var out []NameEntry
	for i := sort.SearchStrings(n.keys, prefix); i < len(n.keys); i++ {
		k := n.keys[i]
		if !strings.HasPrefix(k, prefix) {
			break
		}
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, NameEntry{Name: k, IDs: sortedIDs(n.ids[k])})
	}
	return out
}

func sortedIDs(set map[oid.OID]struct{}) []oid.OID {
	if len(set) == 0 {
		return nil
	}
	out := make([]oid.OID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// foldedIndex maps case-folded names to the ids carrying them, in insertion
// order. Keys are produced by fold.
type foldedIndex map[string][]oid.OID

func fold(name string) string {
	return cases.Fold().String(name)
}

func (f foldedIndex) add(k string, id oid.OID) {
	for _, have := range f[k] {
		if have == id {
			return
		}
	}
	f[k] = append(f[k], id)
}

func (f foldedIndex) remove(k string, id oid.OID) {
	ids := f[k]
	for i, have := range ids {
		if have == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(f, k)
		return
	}
	f[k] = ids
}
