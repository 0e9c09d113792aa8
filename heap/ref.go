package heap

import (
	"fmt"
	"reflect"
	"strconv"
)

// Ref is any value that lives on the managed heap.
//
// Trace must call visit once for every reference the value owns. It is
// invoked by the collector during marking and must not allocate or mutate
// shared state.
//
// Implementations must be comparable: the heap and the collector use refs
// as map keys. Pointer types and the leaf values here qualify; slice, map
// and func types do not and are rejected by Track and Mark.
type Ref interface {
	Trace(visit Visitor)
}

// mustBeComparable panics with a descriptive message when ref cannot be
// used as a map key.
func mustBeComparable(op string, ref Ref) {
	if !reflect.TypeOf(ref).Comparable() {
		panic(fmt.Sprintf("heap.%s: %T is not comparable", op, ref))
	}
}

// Visitor is the callback handed to Trace. Calling it more than once for
// the same Ref is allowed; marking is idempotent.
type Visitor func(ref Ref)

// Allocator receives every record a representation creates. The collector
// only sweeps what an allocator has tracked.
type Allocator interface {
	Track(ref Ref)
}

// Track registers ref with a, tolerating a nil allocator.
func Track(a Allocator, ref Ref) {
	if a != nil && ref != nil {
		a.Track(ref)
	}
}

// Kinded is implemented by heap values that want a stable name in
// snapshots and debugging output.
type Kinded interface {
	Kind() string
}

// ---------------------------------------------------------------------------
// Leaf values
// ---------------------------------------------------------------------------

// Int is a native integer value.
type Int int64

func (Int) Trace(Visitor) {}
func (Int) Kind() string { return "Int" }
func (i Int) String() string {
	return strconv.FormatInt(int64(i), 10)
}

// Num is a native floating point value.
type Num float64

func (Num) Trace(Visitor) {}
func (Num) Kind() string { return "Num" }
func (n Num) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// Str is a native string value.
type Str string

func (Str) Trace(Visitor) {}
func (Str) Kind() string { return "Str" }
func (s Str) String() string { return string(s) }

// Func is a callable stored in a method table.
type Func struct {
	Name string
	Fn   func(args ...Ref) (Ref, error)
}

// NewFunc creates a named callable.
func NewFunc(name string, fn func(args ...Ref) (Ref, error)) *Func {
	return &Func{Name: name, Fn: fn}
}

func (*Func) Trace(Visitor) {}
func (*Func) Kind() string { return "Func" }

// Call invokes the function. A Func with no body returns nil.
func (f *Func) Call(args ...Ref) (Ref, error) {
	if f.Fn == nil {
		return nil, nil
	}
	return f.Fn(args...)
}

func (f *Func) String() string {
	return "&" + f.Name
}
