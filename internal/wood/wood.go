// Package wood implements the labeled-tree text format used by obweb for the
// bulk-load file and for the serialized form of every object.
//
// A Wood is either a leaf holding a string or a branch holding an ordered list
// of children. By convention the first child of a branch is its label (the
// "initial"), so `(name Alice)` is a branch labeled "name" whose tail is the
// single leaf "Alice".
package wood

import (
	"fmt"
)

// Wood is a node of the tree. The zero value is an empty branch.
type Wood struct {
	leaf     bool
	str      string
	children []*Wood

	// Line and Col locate the node in the parsed source (1-based). Both are
	// zero for nodes built in code.
	Line int
	Col  int
}

// Leaf returns a leaf node holding s.
func Leaf(s string) *Wood {
	return &Wood{leaf: true, str: s}
}

// Branch returns a branch node with the given children.
func Branch(children ...*Wood) *Wood {
	return &Wood{children: children}
}

// Woods builds a branch from mixed items: strings become leaves, *Wood values
// are used as-is and anything else is formatted with fmt.Sprint.
func Woods(items ...any) *Wood {
	children := make([]*Wood, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case *Wood:
			children = append(children, v)
		case string:
			children = append(children, Leaf(v))
		default:
			children = append(children, Leaf(fmt.Sprint(v)))
		}
	}
	return &Wood{children: children}
}

// IsLeaf reports whether w is a leaf.
func (w *Wood) IsLeaf() bool { return w.leaf }

// Str returns the text of a leaf, or "" for a branch.
func (w *Wood) Str() string { return w.str }

// Children returns the children of a branch (nil for a leaf).
func (w *Wood) Children() []*Wood { return w.children }

// Contents is an alias of Children, read as "the terms of a document" when w
// is the root returned by Parse.
func (w *Wood) Contents() []*Wood { return w.children }

// Len returns the number of children.
func (w *Wood) Len() int { return len(w.children) }

// Head returns the first child of a branch, w itself for a leaf, and nil for
// an empty branch.
func (w *Wood) Head() *Wood {
	if w.leaf {
		return w
	}
	if len(w.children) == 0 {
		return nil
	}
	return w.children[0]
}

// Tail returns every child after the first.
func (w *Wood) Tail() []*Wood {
	if w.leaf || len(w.children) < 2 {
		return nil
	}
	return w.children[1:]
}

// Initial descends through first children until it reaches a leaf. An empty
// branch is its own initial.
func (w *Wood) Initial() *Wood {
	cur := w
	for !cur.leaf && len(cur.children) > 0 {
		cur = cur.children[0]
	}
	return cur
}

// InitialStr returns the text of Initial.
func (w *Wood) InitialStr() string {
	return w.Initial().str
}

// Seek returns the first tail child whose initial is key, or nil.
func (w *Wood) Seek(key string) *Wood {
	for _, c := range w.Tail() {
		if !c.leaf && c.InitialStr() == key {
			return c
		}
	}
	return nil
}

// SeekVal returns the second element of the child found by Seek, or nil when
// the child is absent or carries no value.
func (w *Wood) SeekVal(key string) *Wood {
	c := w.Seek(key)
	if c == nil || len(c.children) < 2 {
		return nil
	}
	return c.children[1]
}

// Find is Seek reporting a DecodeError on a miss.
func (w *Wood) Find(key string) (*Wood, error) {
	if c := w.Seek(key); c != nil {
		return c, nil
	}
	return nil, &DecodeError{Node: w, Msg: fmt.Sprintf("missing %q field", key)}
}

// FindVal is SeekVal reporting a DecodeError on a miss.
func (w *Wood) FindVal(key string) (*Wood, error) {
	c, err := w.Find(key)
	if err != nil {
		return nil, err
	}
	if len(c.children) < 2 {
		return nil, &DecodeError{Node: c, Msg: fmt.Sprintf("%q field has no value", key)}
	}
	return c.children[1], nil
}

// Text returns the string held by a leaf, or a DecodeError for a branch.
func (w *Wood) Text() (string, error) {
	if !w.leaf {
		return "", &DecodeError{Node: w, Msg: "expected text, found a list"}
	}
	return w.str, nil
}

// FindText combines FindVal and Text.
func (w *Wood) FindText(key string) (string, error) {
	v, err := w.FindVal(key)
	if err != nil {
		return "", err
	}
	return v.Text()
}

// Equal reports structural equality, ignoring source positions.
func (w *Wood) Equal(o *Wood) bool {
	if w == nil || o == nil {
		return w == o
	}
	if w.leaf != o.leaf {
		return false
	}
	if w.leaf {
		return w.str == o.str
	}
	if len(w.children) != len(o.children) {
		return false
	}
	for i := range w.children {
		if !w.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// promote turns a leaf into a branch headed by that leaf, in place, so that
// parents holding the pointer observe the change.
func (w *Wood) promote() {
	if !w.leaf {
		return
	}
	head := &Wood{leaf: true, str: w.str, Line: w.Line, Col: w.Col}
	*w = Wood{children: []*Wood{head}, Line: w.Line, Col: w.Col}
}
