package repr

import (
	"github.com/chazu/metamodel/heap"
)

// Hint is an opaque token that speeds up repeated attribute lookups.
// Hints never affect results: a stale or foreign hint falls back to a
// lookup by name.
type Hint int

// NoHint means the representation has no hint for an attribute.
const NoHint Hint = -1

// Representation is the contract every object layout implements.
//
// Operations a representation cannot support return an
// *UnsupportedOperationError. Implementations must be immutable after
// construction; one value serves every type that uses it and may be read
// from any goroutine.
//
// The allocator passed to TypeObjectFor and InstanceOf receives every
// record the representation creates. It may be nil.
type Representation interface {
	// Name is the representation's registered name.
	Name() string

	// TypeObjectFor creates a type object with a fresh STable linking
	// this representation, the new type object and how.
	TypeObjectFor(a heap.Allocator, how Object) Object

	// InstanceOf creates a new object sharing what's STable.
	InstanceOf(a heap.Allocator, what Object) Object

	// Defined reports whether obj has concrete identity (is not a type
	// object).
	Defined(obj Object) bool

	GetAttribute(obj, classHandle Object, name string) (heap.Ref, error)
	GetAttributeWithHint(obj, classHandle Object, name string, hint Hint) (heap.Ref, error)
	BindAttribute(obj, classHandle Object, name string, value heap.Ref) error
	BindAttributeWithHint(obj, classHandle Object, name string, hint Hint, value heap.Ref) error

	// HintFor returns a lookup hint for name declared by classHandle, or
	// NoHint. It never fails.
	HintFor(classHandle Object, name string) Hint

	SetInt(obj Object, value int64) error
	GetInt(obj Object) (int64, error)
	SetNum(obj Object, value float64) error
	GetNum(obj Object) (float64, error)
	SetStr(obj Object, value string) error
	GetStr(obj Object) (string, error)

	// Trace calls visit once for every reference obj owns. It must not
	// allocate or mutate shared state.
	Trace(obj Object, visit heap.Visitor)
}
