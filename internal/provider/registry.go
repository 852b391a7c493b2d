// Package provider maps record type tags to decode functions.
package provider

import (
	"fmt"
	"sort"

	"github.com/starford/obweb/internal/apperr"
	"github.com/starford/obweb/internal/object"
	"github.com/starford/obweb/internal/oid"
	"github.com/starford/obweb/internal/wood"
)

// DecodeFunc builds an object from a record node and its resolved id.
type DecodeFunc func(node *wood.Wood, id oid.OID) (object.Object, error)

// Sink receives decoded objects. *knowledge.Store satisfies it.
type Sink interface {
	Consider(id oid.OID, ob object.Object) error
}

// Registry holds one decode function per type tag.
type Registry struct {
	decoders map[string]DecodeFunc
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]DecodeFunc)}
}

// Register adds fn under tag. A tag may be registered once.
func (r *Registry) Register(tag string, fn DecodeFunc) error {
	if tag == "" {
		return fmt.Errorf("provider: register: empty tag")
	}
	if _, ok := r.decoders[tag]; ok {
		return fmt.Errorf("provider: register %q: %w", tag, apperr.ErrDuplicateProviderTag)
	}
	r.decoders[tag] = fn
	return nil
}

// Add registers a variant's decoder under the variant's own tag.
func Add[T object.Object](r *Registry, decode func(*wood.Wood, oid.OID) (T, error)) error {
	var zero T
	return r.Register(zero.TypeTag(), func(node *wood.Wood, id oid.OID) (object.Object, error) {
		ob, err := decode(node, id)
		if err != nil {
			return nil, err
		}
		return ob, nil
	})
}

// Default returns a registry holding every built-in variant.
func Default() (*Registry, error) {
	r := NewRegistry()
	for _, add := range []func(*Registry) error{
		func(r *Registry) error { return Add(r, object.DecodeProfile) },
		func(r *Registry) error { return Add(r, object.DecodeEndorsement) },
		func(r *Registry) error { return Add(r, object.DecodePost) },
	} {
		if err := add(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	_, ok := r.decoders[tag]
	return ok
}

// Tags returns the registered tags in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.decoders))
	for t := range r.decoders {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Decode runs the decoder registered for tag. An unregistered tag yields an
// error wrapping apperr.ErrUnknownType.
func (r *Registry) Decode(tag string, node *wood.Wood, id oid.OID) (object.Object, error) {
	fn, ok := r.decoders[tag]
	if !ok {
		return nil, fmt.Errorf("provider: %q: %w", tag, apperr.ErrUnknownType)
	}
	return fn(node, id)
}

// Dispatch decodes node and hands the object to sink.
func (r *Registry) Dispatch(sink Sink, tag string, node *wood.Wood, id oid.OID) (object.Object, error) {
	ob, err := r.Decode(tag, node, id)
	if err != nil {
		return nil, err
	}
	if err := sink.Consider(id, ob); err != nil {
		return nil, err
	}
	return ob, nil
}
