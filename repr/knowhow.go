package repr

import (
	"github.com/chazu/metamodel/heap"
)

// KnowHOWName is the registered name of the bootstrap representation.
const KnowHOWName = "KnowHOWREPR"

// KnowHOW is the representation of the meta-objects that bootstrap the
// type system. A KnowHOW object keeps its methods and attribute
// descriptors in dedicated fields; it has no generic attribute storage and
// cannot box native values.
var KnowHOW Representation = KnowHOWREPR{}

// KnowHOWREPR implements Representation for KnowHOW meta-objects.
type KnowHOWREPR struct{}

// KnowHOWInstance is the record behind every KnowHOW object.
//
// A type object has nil methods and attributes. An instance made by
// InstanceOf always has both, which is what makes it defined.
type KnowHOWInstance struct {
	Common
	methods    *heap.Hash
	attributes *heap.Array
}

func (KnowHOWREPR) Name() string { return KnowHOWName }

// TypeObjectFor creates a KnowHOW type object described by how.
func (r KnowHOWREPR) TypeObjectFor(a heap.Allocator, how Object) Object {
	st := NewSTable(r, how)
	obj := &KnowHOWInstance{Common: NewCommon(st)}
	st.Publish(obj)

	heap.Track(a, st)
	heap.Track(a, obj)
	return obj
}

// InstanceOf creates a KnowHOW meta-object with an empty method table and
// an empty attribute list.
func (KnowHOWREPR) InstanceOf(a heap.Allocator, what Object) Object {
	obj := &KnowHOWInstance{
		Common:     NewCommon(what.STable()),
		methods:    heap.NewHash(a),
		attributes: heap.NewArray(a),
	}
	heap.Track(a, obj)
	return obj
}

// Defined reports whether obj has a method table.
func (KnowHOWREPR) Defined(obj Object) bool {
	k, ok := obj.(*KnowHOWInstance)
	return ok && k.methods != nil
}

func (KnowHOWREPR) GetAttribute(obj, classHandle Object, name string) (heap.Ref, error) {
	return nil, NoAttributeStorage(KnowHOWName, OpGetAttribute)
}

func (KnowHOWREPR) GetAttributeWithHint(obj, classHandle Object, name string, hint Hint) (heap.Ref, error) {
	return nil, NoAttributeStorage(KnowHOWName, OpGetAttributeWithHint)
}

func (KnowHOWREPR) BindAttribute(obj, classHandle Object, name string, value heap.Ref) error {
	return NoAttributeStorage(KnowHOWName, OpBindAttribute)
}

func (KnowHOWREPR) BindAttributeWithHint(obj, classHandle Object, name string, hint Hint, value heap.Ref) error {
	return NoAttributeStorage(KnowHOWName, OpBindAttributeWithHint)
}

// HintFor always returns NoHint.
func (KnowHOWREPR) HintFor(classHandle Object, name string) Hint {
	return NoHint
}

func (KnowHOWREPR) SetInt(obj Object, value int64) error {
	return CannotBox(KnowHOWName, OpBoxInt, "int")
}

func (KnowHOWREPR) GetInt(obj Object) (int64, error) {
	return 0, CannotUnbox(KnowHOWName, OpUnboxInt, "int")
}

func (KnowHOWREPR) SetNum(obj Object, value float64) error {
	return CannotBox(KnowHOWName, OpBoxNum, "num")
}

func (KnowHOWREPR) GetNum(obj Object) (float64, error) {
	return 0, CannotUnbox(KnowHOWName, OpUnboxNum, "num")
}

func (KnowHOWREPR) SetStr(obj Object, value string) error {
	return CannotBox(KnowHOWName, OpBoxStr, "string")
}

func (KnowHOWREPR) GetStr(obj Object) (string, error) {
	return "", CannotUnbox(KnowHOWName, OpUnboxStr, "string")
}

// Trace visits the STable, the method table and the attribute list, in
// that order, skipping any that are nil.
func (KnowHOWREPR) Trace(obj Object, visit heap.Visitor) {
	k, ok := obj.(*KnowHOWInstance)
	if !ok {
		return
	}
	if k.stable != nil {
		visit(k.stable)
	}
	if k.methods != nil {
		visit(k.methods)
	}
	if k.attributes != nil {
		visit(k.attributes)
	}
}

// ---------------------------------------------------------------------------
// Meta-object bookkeeping
// ---------------------------------------------------------------------------

// Trace forwards to the object's representation.
func (k *KnowHOWInstance) Trace(visit heap.Visitor) {
	traceVia(k, KnowHOW, visit)
}

func (*KnowHOWInstance) Kind() string { return "KnowHOW" }

// Methods returns the method table, nil for a type object.
func (k *KnowHOWInstance) Methods() *heap.Hash {
	return k.methods
}

// Attributes returns the attribute descriptors, nil for a type object.
func (k *KnowHOWInstance) Attributes() *heap.Array {
	return k.attributes
}

// AddMethod binds code under name in the method table.
func (k *KnowHOWInstance) AddMethod(name string, code heap.Ref) error {
	if k.methods == nil {
		return ErrNotDefined
	}
	k.methods.Bind(name, code)
	return nil
}

// Method returns the code bound under name.
func (k *KnowHOWInstance) Method(name string) (heap.Ref, bool) {
	if k.methods == nil {
		return nil, false
	}
	return k.methods.At(name)
}

// AddAttribute appends an attribute descriptor.
func (k *KnowHOWInstance) AddAttribute(desc heap.Ref) error {
	if k.attributes == nil {
		return ErrNotDefined
	}
	k.attributes.Push(desc)
	return nil
}

// AttributeNames returns the names of the recorded attribute descriptors
// in declaration order.
func (k *KnowHOWInstance) AttributeNames() []string {
	if k.attributes == nil {
		return nil
	}
	names := make([]string, 0, k.attributes.Len())
	k.attributes.Each(func(_ int, desc heap.Ref) {
		if name, ok := attributeName(desc); ok {
			names = append(names, name)
		}
	})
	return names
}
