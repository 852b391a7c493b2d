package object

import (
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/wood"
)

// Lineage holds the identity and edit history shared by every variant.
type Lineage struct {
	Self  oid.OID
	Root  oid.OID
	Edits []oid.OID
}

// NewLineage returns the lineage of a record that starts its own branch.
func NewLineage(id oid.OID) Lineage {
	return Lineage{Self: id, Root: id}
}

// EditOf returns the lineage of a record with id that edits prior without
// branching: the branch root is inherited.
func EditOf(prior Object, id oid.OID) Lineage {
	return Lineage{Self: id, Root: prior.BranchRoot(), Edits: []oid.OID{prior.ID()}}
}

// BranchOf returns the lineage of an edit of prior that opens a new branch
// rooted at id.
func BranchOf(prior Object, id oid.OID) Lineage {
	return Lineage{Self: id, Root: id, Edits: []oid.OID{prior.ID()}}
}

func (l Lineage) ID() oid.OID             { return l.Self }
func (l Lineage) BranchRoot() oid.OID     { return l.Root }
func (l Lineage) EditingPrior() []oid.OID { return l.Edits }

func (Lineage) sealed() {}

func (l Lineage) woods() []*wood.Wood {
	out := []*wood.Wood{wood.Woods("id", l.Self.Wood())}
	if l.Root != l.Self {
		out = append(out, wood.Woods("branch_root", l.Root.Wood()))
	}
	if len(l.Edits) > 0 {
		edits := []any{"edits"}
		for _, e := range l.Edits {
			edits = append(edits, e.Wood())
		}
		out = append(out, wood.Woods(edits...))
	}
	return out
}

func (l Lineage) references() []Reference {
	var refs []Reference
	if l.Root != l.Self {
		refs = append(refs, Reference{Kind: RefBranchRoot, Target: l.Root})
	}
	for _, e := range l.Edits {
		refs = append(refs, Reference{Kind: RefEdits, Target: e})
	}
	return refs
}

func decodeLineage(w *wood.Wood, id oid.OID) (Lineage, error) {
	l := NewLineage(id)
	if v := w.SeekVal("branch_root"); v != nil {
		root, err := oid.Dewood(v)
		if err != nil {
			return Lineage{}, err
		}
		l.Root = root
	}
	if e := w.Seek("edits"); e != nil {
		for _, c := range e.Tail() {
			prior, err := oid.Dewood(c)
			if err != nil {
				return Lineage{}, err
			}
			l.Edits = append(l.Edits, prior)
		}
	}
	return l, nil
}
