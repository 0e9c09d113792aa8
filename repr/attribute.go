package repr

import (
	"github.com/chazu/metamodel/heap"
)

// Attribute describes one attribute declared by a type. Descriptors are
// recorded on the type's meta-object and read by representations that lay
// out attribute storage.
type Attribute struct {
	Name string
}

// NewAttribute creates a descriptor and tracks it with a.
func NewAttribute(a heap.Allocator, name string) *Attribute {
	attr := &Attribute{Name: name}
	heap.Track(a, attr)
	return attr
}

func (*Attribute) Trace(heap.Visitor) {}
func (*Attribute) Kind() string { return "Attribute" }
func (attr *Attribute) String() string { return attr.Name }

// attributeName accepts *Attribute and plain heap.Str descriptors.
func attributeName(desc heap.Ref) (string, bool) {
	switch d := desc.(type) {
	case *Attribute:
		if d == nil {
			return "", false
		}
		return d.Name, true
	case heap.Str:
		return string(d), true
	}
	return "", false
}
