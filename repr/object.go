package repr

import (
	"github.com/chazu/metamodel/heap"
)

// Object is a heap value laid out by some Representation.
type Object interface {
	heap.Ref
	STable() *STable
}

// Common is embedded at the start of every representation's instance
// record. It holds the back-reference to the object's STable.
type Common struct {
	stable *STable
}

// NewCommon returns a Common pointing at st.
func NewCommon(st *STable) Common {
	return Common{stable: st}
}

// STable returns the shared table of the object's type.
func (c *Common) STable() *STable {
	if c == nil {
		return nil
	}
	return c.stable
}

// ---------------------------------------------------------------------------
// STable
// ---------------------------------------------------------------------------

// STable holds the metadata shared by every object of one type: the
// representation backing it, its type object (WHAT) and its meta-object
// (HOW).
//
// REPRData is private to the representation, e.g. a computed slot layout.
type STable struct {
	REPR     Representation
	WHAT     Object
	HOW      Object
	REPRData any
}

// NewSTable creates the STable for a new type. The type object is attached
// later with Publish.
func NewSTable(r Representation, how Object) *STable {
	if r == nil {
		panic("NewSTable: nil representation")
	}
	return &STable{REPR: r, HOW: how}
}

// Publish attaches the type object. It must be called exactly once, with
// an object whose back-reference already points at st, before the type
// object is handed to anyone.
func (st *STable) Publish(what Object) {
	if st.WHAT != nil {
		panic("STable.Publish: type object already published")
	}
	if what == nil || what.STable() != st {
		panic("STable.Publish: type object does not point back at this STable")
	}
	st.WHAT = what
}

// SetHOW replaces the meta-object. Bootstrapping uses it to make KnowHOW
// describe itself.
func (st *STable) SetHOW(how Object) {
	st.HOW = how
}

// Trace visits the type object then the meta-object.
func (st *STable) Trace(visit heap.Visitor) {
	if st.WHAT != nil {
		visit(st.WHAT)
	}
	if st.HOW != nil {
		visit(st.HOW)
	}
}

func (*STable) Kind() string { return "STable" }

func (st *STable) String() string {
	return st.REPR.Name()
}

// traceVia forwards tracing to the representation registered in obj's
// STable, falling back to r for an object that has lost its STable.
func traceVia(obj Object, r Representation, visit heap.Visitor) {
	if st := obj.STable(); st != nil && st.REPR != nil {
		st.REPR.Trace(obj, visit)
		return
	}
	r.Trace(obj, visit)
}
