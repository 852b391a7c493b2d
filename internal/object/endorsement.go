package object

import (
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/wood"
)

// TagEndorsement is the provider key of Endorsement.
const TagEndorsement = "endorsement"

// Endorsement records that one object vouches for another.
type Endorsement struct {
	Lineage
	By        oid.OID
	Of        oid.OID
	Statement string
}

func (*Endorsement) TypeTag() string { return TagEndorsement }

func (e *Endorsement) References() []Reference {
	return append(e.references(),
		Reference{Kind: RefEndorser, Target: e.By},
		Reference{Kind: RefEndorses, Target: e.Of},
	)
}

func (e *Endorsement) Wood() *wood.Wood {
	items := []any{TagEndorsement}
	for _, w := range e.woods() {
		items = append(items, w)
	}
	items = append(items, wood.Woods("by", e.By.Wood()), wood.Woods("of", e.Of.Wood()))
	if e.Statement != "" {
		items = append(items, wood.Woods("statement", e.Statement))
	}
	return wood.Woods(items...)
}

// DecodeEndorsement decodes an endorsement record.
func DecodeEndorsement(w *wood.Wood, id oid.OID) (*Endorsement, error) {
	l, err := decodeLineage(w, id)
	if err != nil {
		return nil, decodeErr(TagEndorsement, w, err)
	}
	by, err := idField(w, "by")
	if err != nil {
		return nil, decodeErr(TagEndorsement, w, err)
	}
	of, err := idField(w, "of")
	if err != nil {
		return nil, decodeErr(TagEndorsement, w, err)
	}
	stmt, err := optText(w, "statement")
	if err != nil {
		return nil, decodeErr(TagEndorsement, w, err)
	}
	return &Endorsement{Lineage: l, By: by, Of: of, Statement: stmt}, nil
}
