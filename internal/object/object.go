// Package object defines the record variants held by the knowledge store.
//
// The variant set is closed: Object carries an unexported method, so only
// types in this package satisfy it. Each variant encodes itself to Wood and
// has a matching Decode function that takes the externally resolved id.
package object

import (
	"fmt"

	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/wood"
)

// Object is a record known to the store.
type Object interface {
	ID() oid.OID
	// BranchRoot is the id of the first record in this record's edit branch.
	BranchRoot() oid.OID
	// EditingPrior lists the records this one edits. Usually zero or one,
	// several for a merge.
	EditingPrior() []oid.OID
	// TypeTag is the provider key of the variant. It does not depend on the
	// receiver's contents and is safe to call on a nil pointer.
	TypeTag() string
	Wood() *wood.Wood
	// References lists the ids this record points at.
	References() []Reference

	sealed()
}

// Named is implemented by objects that carry human-readable names.
type Named interface {
	Names() []string
}

// Reference kinds.
const (
	RefBranchRoot = "branch_root"
	RefEdits      = "edits"
	RefAuthor     = "author"
	RefReplyingTo = "replying_to"
	RefEndorser   = "endorser"
	RefEndorses   = "endorses"
)

// Reference is a directed edge from an object to another id.
type Reference struct {
	Kind   string  `json:"kind"`
	Target oid.OID `json:"target"`
}

// NamesOf returns the names carried by ob, or nil.
func NamesOf(ob Object) []string {
	if n, ok := ob.(Named); ok {
		return n.Names()
	}
	return nil
}

func decodeErr(tag string, w *wood.Wood, err error) error {
	return wood.NewDecodeError(w, fmt.Sprintf("decode %s", tag), err)
}

// idField decodes a required id-valued field.
func idField(w *wood.Wood, key string) (oid.OID, error) {
	v, err := w.FindVal(key)
	if err != nil {
		return oid.OID{}, err
	}
	return oid.Dewood(v)
}

// optIDField decodes an id-valued field that may be absent.
func optIDField(w *wood.Wood, key string) (*oid.OID, error) {
	v := w.SeekVal(key)
	if v == nil {
		return nil, nil
	}
	id, err := oid.Dewood(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// optText decodes a text field that may be absent.
func optText(w *wood.Wood, key string) (string, error) {
	v := w.SeekVal(key)
	if v == nil {
		return "", nil
	}
	return v.Text()
}
