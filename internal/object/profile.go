package object

import (
	"strings"

	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/wood"
)

// TagProfile is the provider key of Profile.
const TagProfile = "profile"

// NameSeparator (EM QUAD) joins the tokens of a multi-token name field.
const NameSeparator = "\u2001"

// Profile describes a person or agent.
type Profile struct {
	Lineage
	Name        string
	Description string
}

// NewProfile returns a profile that starts its own branch.
func NewProfile(id oid.OID, name, description string) *Profile {
	return &Profile{Lineage: NewLineage(id), Name: name, Description: description}
}

func (*Profile) TypeTag() string { return TagProfile }

// Names returns the profile name.
func (p *Profile) Names() []string {
	if p.Name == "" {
		return nil
	}
	return []string{p.Name}
}

func (p *Profile) References() []Reference { return p.references() }

func (p *Profile) Wood() *wood.Wood {
	name := []any{"name"}
	for _, part := range strings.Split(p.Name, NameSeparator) {
		name = append(name, part)
	}
	items := []any{TagProfile}
	for _, w := range p.woods() {
		items = append(items, w)
	}
	items = append(items, wood.Woods(name...), wood.Woods("description", p.Description))
	return wood.Woods(items...)
}

// DecodeProfile decodes a profile record. Every token after the name label
// is part of the name.
func DecodeProfile(w *wood.Wood, id oid.OID) (*Profile, error) {
	l, err := decodeLineage(w, id)
	if err != nil {
		return nil, decodeErr(TagProfile, w, err)
	}
	nameNode, err := w.Find("name")
	if err != nil {
		return nil, decodeErr(TagProfile, w, err)
	}
	parts := make([]string, 0, len(nameNode.Tail()))
	for _, c := range nameNode.Tail() {
		s, err := c.Text()
		if err != nil {
			return nil, decodeErr(TagProfile, w, err)
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil, decodeErr(TagProfile, w, wood.NewDecodeError(nameNode, `"name" field has no value`, nil))
	}
	desc, err := w.FindText("description")
	if err != nil {
		return nil, decodeErr(TagProfile, w, err)
	}
	return &Profile{Lineage: l, Name: strings.Join(parts, NameSeparator), Description: desc}, nil
}
