package object

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/wood"
)

func id(n uint64) oid.OID { return oid.FromUint64(n) }

func roundTrip(t *testing.T, ob Object) Object {
	t.Helper()
	text := ob.Wood().String()
	root, err := wood.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	node := root.Contents()[0]
	if node.InitialStr() != ob.TypeTag() {
		t.Fatalf("encoded tag = %q, want %q", node.InitialStr(), ob.TypeTag())
	}
	var out Object
	switch ob.(type) {
	case *Profile:
		out, err = DecodeProfile(node, ob.ID())
	case *Endorsement:
		out, err = DecodeEndorsement(node, ob.ID())
	case *Post:
		out, err = DecodePost(node, ob.ID())
	}
	if err != nil {
		t.Fatalf("decode %s: %v", text, err)
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	reply := id(9)
	alice := NewProfile(id(1), "Alice", "bio")
	cases := map[string]Object{
		"profile":           alice,
		"profile multiword": NewProfile(id(2), "Ada\u2001King\u2001Lovelace", "first programmer"),
		"profile spaced":    NewProfile(id(3), "Grace Hopper", ""),
		"profile edit":      &Profile{Lineage: EditOf(alice, id(4)), Name: "Alice B", Description: "bio v2"},
		"profile branch":    &Profile{Lineage: BranchOf(alice, id(5)), Name: "Alice", Description: "fork"},
		"endorsement": &Endorsement{
			Lineage: NewLineage(id(6)), By: id(1), Of: id(2), Statement: "trustworthy",
		},
		"endorsement bare": &Endorsement{Lineage: NewLineage(id(7)), By: id(2), Of: id(1)},
		"post": &Post{
			Lineage: NewLineage(id(8)), Author: id(1), Title: "On wood", Body: "text", ReplyingTo: &reply,
		},
		"post merge": &Post{
			Lineage: Lineage{Self: id(10), Root: id(8), Edits: []oid.OID{id(8), id(9)}},
			Author:  oid.Max, Body: "merged",
		},
	}
	for name, ob := range cases {
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, ob)
			if diff := cmp.Diff(ob, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeProfile_FromSource(t *testing.T) {
	root, err := wood.Parse(`(profile (id AAAAAAAAAAAAAAAAAAAAAA) (name Mary Ann) (description "bio"))`)
	if err != nil {
		t.Fatal(err)
	}
	p, err := DecodeProfile(root.Contents()[0], id(0))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Mary\u2001Ann" {
		t.Errorf("Name = %q, want tokens joined by EM QUAD", p.Name)
	}
	if p.BranchRoot() != p.ID() {
		t.Errorf("BranchRoot = %s, want own id", p.BranchRoot())
	}
	if diff := cmp.Diff([]string{"Mary\u2001Ann"}, NamesOf(p)); diff != "" {
		t.Errorf("NamesOf (-want +got):\n%s", diff)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		dec  func(*wood.Wood, oid.OID) (Object, error)
	}{
		{"profile missing description", `(profile (name Bob))`, asObject(DecodeProfile)},
		{"profile empty name", `(profile (name) (description x))`, asObject(DecodeProfile)},
		{"profile nested name", `(profile (name (a b)) (description x))`, asObject(DecodeProfile)},
		{"endorsement bad id", `(endorsement (by nope) (of AAAAAAAAAAAAAAAAAAAAAA))`, asObject(DecodeEndorsement)},
		{"post missing author", `(post (body hi))`, asObject(DecodePost)},
		{"post bad edits", `(post (edits zz) (author AAAAAAAAAAAAAAAAAAAAAA) (body hi))`, asObject(DecodePost)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := wood.Parse(tc.src)
			if err != nil {
				t.Fatal(err)
			}
			node := root.Contents()[0]
			_, err = tc.dec(node, id(1))
			var de *wood.DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("err = %v, want *wood.DecodeError", err)
			}
			if de.Node != node {
				t.Error("outer DecodeError should carry the record")
			}
			if de.Cause == nil {
				t.Error("DecodeError should wrap a cause")
			}
		})
	}
}

func asObject[T Object](f func(*wood.Wood, oid.OID) (T, error)) func(*wood.Wood, oid.OID) (Object, error) {
	return func(w *wood.Wood, id oid.OID) (Object, error) {
		ob, err := f(w, id)
		if err != nil {
			return nil, err
		}
		return ob, nil
	}
}

func TestReferences(t *testing.T) {
	reply := id(3)
	p := &Post{Lineage: Lineage{Self: id(5), Root: id(4), Edits: []oid.OID{id(4)}}, Author: id(1), Body: "b", ReplyingTo: &reply}
	want := []Reference{
		{Kind: RefBranchRoot, Target: id(4)},
		{Kind: RefEdits, Target: id(4)},
		{Kind: RefAuthor, Target: id(1)},
		{Kind: RefReplyingTo, Target: id(3)},
	}
	if diff := cmp.Diff(want, p.References()); diff != "" {
		t.Errorf("References (-want +got):\n%s", diff)
	}
	if refs := NewProfile(id(1), "a", "b").References(); len(refs) != 0 {
		t.Errorf("fresh profile references = %v", refs)
	}
}

func TestTypeTag_NilReceiver(t *testing.T) {
	var p *Profile
	var e *Endorsement
	var po *Post
	if p.TypeTag() != TagProfile || e.TypeTag() != TagEndorsement || po.TypeTag() != TagPost {
		t.Error("TypeTag should not depend on the receiver")
	}
}
