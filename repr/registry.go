package repr

import (
	"fmt"

	"github.com/chazu/metamodel/heap"
)

// Registry maps representation names to representations. It is built
// once and never changes, so it is safe for concurrent use without
// locking.
type Registry struct {
	byName map[string]Representation
	ids    map[string]int
	names  []string
}

// NewRegistry builds a registry. IDs follow the argument order, starting
// at 0.
func NewRegistry(reprs ...Representation) (*Registry, error) {
	reg := &Registry{
		byName: make(map[string]Representation, len(reprs)),
		ids:    make(map[string]int, len(reprs)),
		names:  make([]string, 0, len(reprs)),
	}
	for _, r := range reprs {
		if r == nil {
			return nil, fmt.Errorf("repr: nil representation at position %d", len(reg.names))
		}
		name := r.Name()
		if name == "" {
			return nil, fmt.Errorf("repr: representation at position %d has no name", len(reg.names))
		}
		if _, dup := reg.byName[name]; dup {
			return nil, fmt.Errorf("repr: %q: %w", name, ErrDuplicateREPR)
		}
		reg.byName[name] = r
		reg.ids[name] = len(reg.names)
		reg.names = append(reg.names, name)
	}
	return reg, nil
}

// MustRegistry is NewRegistry that panics on error. Use it for
// package-level registries.
func MustRegistry(reprs ...Representation) *Registry {
	reg, err := NewRegistry(reprs...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Lookup returns the representation registered under name.
func (reg *Registry) Lookup(name string) (Representation, bool) {
	r, ok := reg.byName[name]
	return r, ok
}

// MustLookup returns the representation registered under name or panics.
func (reg *Registry) MustLookup(name string) Representation {
	r, ok := reg.byName[name]
	if !ok {
		panic(fmt.Sprintf("repr: %q not registered", name))
	}
	return r
}

// ID returns the registration index of name.
func (reg *Registry) ID(name string) (int, bool) {
	id, ok := reg.ids[name]
	return id, ok
}

// Names returns the registered names in registration order.
func (reg *Registry) Names() []string {
	out := make([]string, len(reg.names))
	copy(out, reg.names)
	return out
}

// Len returns the number of registered representations.
func (reg *Registry) Len() int {
	return len(reg.names)
}

// Subset builds a new registry holding only the named representations,
// in the given order.
func (reg *Registry) Subset(names ...string) (*Registry, error) {
	reprs := make([]Representation, 0, len(names))
	for _, name := range names {
		r, ok := reg.byName[name]
		if !ok {
			return nil, fmt.Errorf("repr: %q: %w", name, ErrUnknownREPR)
		}
		reprs = append(reprs, r)
	}
	return NewRegistry(reprs...)
}

// TypeObjectFor creates a type object of the named representation.
func (reg *Registry) TypeObjectFor(a heap.Allocator, name string, how Object) (Object, error) {
	r, ok := reg.byName[name]
	if !ok {
		return nil, fmt.Errorf("repr: %q: %w", name, ErrUnknownREPR)
	}
	return r.TypeObjectFor(a, how), nil
}

var defaultRegistry = MustRegistry(
	KnowHOW,
	Opaque,
	HashStore,
	BoxedInt,
	BoxedNum,
	BoxedStr,
)

// DefaultRegistry returns the process-wide registry of every built-in
// representation.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
