package repr

import (
	"fmt"

	"github.com/chazu/metamodel/heap"
)

// HashStoreName is the registered name of the keyed attribute store.
const HashStoreName = "HashAttrStore"

// HashStore keeps attributes in a table keyed by (class handle, name). It
// needs no layout, so any attribute can be bound, and it never hands out
// hints.
var HashStore Representation = HashStoreREPR{}

// HashStoreREPR implements Representation for keyed attribute storage.
type HashStoreREPR struct{}

type hashKey struct {
	class *STable
	name  string
}

type hashEntry struct {
	class Object
	name  string
	value heap.Ref
}

// HashStoreInstance holds bound attributes in binding order.
type HashStoreInstance struct {
	Common
	concrete bool
	entries  []hashEntry
	index    map[hashKey]int
}

func (HashStoreREPR) Name() string { return HashStoreName }

func (r HashStoreREPR) TypeObjectFor(a heap.Allocator, how Object) Object {
	st := NewSTable(r, how)
	obj := &HashStoreInstance{Common: NewCommon(st)}
	st.Publish(obj)

	heap.Track(a, st)
	heap.Track(a, obj)
	return obj
}

func (HashStoreREPR) InstanceOf(a heap.Allocator, what Object) Object {
	obj := &HashStoreInstance{
		Common:   NewCommon(what.STable()),
		concrete: true,
		index:    make(map[hashKey]int),
	}
	heap.Track(a, obj)
	return obj
}

func (HashStoreREPR) Defined(obj Object) bool {
	h, ok := obj.(*HashStoreInstance)
	return ok && h.concrete
}

func (HashStoreREPR) lookup(obj, classHandle Object) (*HashStoreInstance, *STable, error) {
	h, ok := obj.(*HashStoreInstance)
	if !ok {
		return nil, nil, fmt.Errorf("%s: %T: %w", HashStoreName, obj, ErrWrongREPR)
	}
	if !h.concrete {
		return nil, nil, fmt.Errorf("%s: cannot access attributes of a type object: %w", HashStoreName, ErrNotDefined)
	}
	if classHandle == nil || classHandle.STable() == nil {
		return nil, nil, fmt.Errorf("%s: class handle: %w", HashStoreName, ErrNoSTable)
	}
	return h, classHandle.STable(), nil
}

// GetAttribute returns the bound value, or nil if the attribute was never
// bound.
func (r HashStoreREPR) GetAttribute(obj, classHandle Object, name string) (heap.Ref, error) {
	h, st, err := r.lookup(obj, classHandle)
	if err != nil {
		return nil, err
	}
	if i, ok := h.index[hashKey{class: st, name: name}]; ok {
		return h.entries[i].value, nil
	}
	return nil, nil
}

func (r HashStoreREPR) GetAttributeWithHint(obj, classHandle Object, name string, hint Hint) (heap.Ref, error) {
	return r.GetAttribute(obj, classHandle, name)
}

func (r HashStoreREPR) BindAttribute(obj, classHandle Object, name string, value heap.Ref) error {
	h, st, err := r.lookup(obj, classHandle)
	if err != nil {
		return err
	}
	key := hashKey{class: st, name: name}
	if i, ok := h.index[key]; ok {
		h.entries[i].value = value
		return nil
	}
	h.index[key] = len(h.entries)
	h.entries = append(h.entries, hashEntry{class: classHandle, name: name, value: value})
	return nil
}

func (r HashStoreREPR) BindAttributeWithHint(obj, classHandle Object, name string, hint Hint, value heap.Ref) error {
	return r.BindAttribute(obj, classHandle, name, value)
}

func (HashStoreREPR) HintFor(classHandle Object, name string) Hint {
	return NoHint
}

func (HashStoreREPR) SetInt(obj Object, value int64) error {
	return CannotBox(HashStoreName, OpBoxInt, "int")
}

func (HashStoreREPR) GetInt(obj Object) (int64, error) {
	return 0, CannotUnbox(HashStoreName, OpUnboxInt, "int")
}

func (HashStoreREPR) SetNum(obj Object, value float64) error {
	return CannotBox(HashStoreName, OpBoxNum, "num")
}

func (HashStoreREPR) GetNum(obj Object) (float64, error) {
	return 0, CannotUnbox(HashStoreName, OpUnboxNum, "num")
}

func (HashStoreREPR) SetStr(obj Object, value string) error {
	return CannotBox(HashStoreName, OpBoxStr, "string")
}

func (HashStoreREPR) GetStr(obj Object) (string, error) {
	return "", CannotUnbox(HashStoreName, OpUnboxStr, "string")
}

// Trace visits the STable, then the class handle and value of each entry.
func (HashStoreREPR) Trace(obj Object, visit heap.Visitor) {
	h, ok := obj.(*HashStoreInstance)
	if !ok {
		return
	}
	if h.stable != nil {
		visit(h.stable)
	}
	for _, e := range h.entries {
		if e.class != nil {
			visit(e.class)
		}
		if e.value != nil {
			visit(e.value)
		}
	}
}

// Trace forwards to the object's representation.
func (h *HashStoreInstance) Trace(visit heap.Visitor) {
	traceVia(h, HashStore, visit)
}

func (*HashStoreInstance) Kind() string { return HashStoreName }

// Len returns the number of bound attributes.
func (h *HashStoreInstance) Len() int {
	return len(h.entries)
}
