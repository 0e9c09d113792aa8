package repr

import (
	"fmt"

	"github.com/chazu/metamodel/heap"
)

// OpaqueName is the registered name of the slot-based representation.
const OpaqueName = "P6opaque"

// Opaque lays out attributes in fixed slots. The slot layout is computed
// once, when the type object is created, from the attribute descriptors
// on the type's KnowHOW meta-object.
var Opaque Representation = OpaqueREPR{}

// OpaqueREPR implements Representation for slot-based objects.
type OpaqueREPR struct{}

// NumInlineSlots is the number of slots stored directly in an
// OpaqueInstance.
const NumInlineSlots = 4

// OpaqueInstance uses a hybrid slot layout:
//   - 4 inline slots for types with at most 4 attributes
//   - an overflow slice for the rest
//
// Unbound slots hold nil.
type OpaqueInstance struct {
	Common
	concrete bool

	slot0 heap.Ref
	slot1 heap.Ref
	slot2 heap.Ref
	slot3 heap.Ref

	// Only allocated when the type has more than NumInlineSlots attributes.
	overflow []heap.Ref
}

// opaqueLayout maps attribute names to slot indexes for one type.
type opaqueLayout struct {
	names []string
	index map[string]int
}

func newOpaqueLayout(how Object) *opaqueLayout {
	l := &opaqueLayout{index: make(map[string]int)}
	k, ok := how.(*KnowHOWInstance)
	if !ok || k == nil {
		return l
	}
	for _, name := range k.AttributeNames() {
		if _, dup := l.index[name]; dup {
			continue
		}
		l.index[name] = len(l.names)
		l.names = append(l.names, name)
	}
	return l
}

func layoutOf(st *STable) *opaqueLayout {
	if st == nil {
		return nil
	}
	l, _ := st.REPRData.(*opaqueLayout)
	return l
}

func (OpaqueREPR) Name() string { return OpaqueName }

// TypeObjectFor creates a type object and freezes its slot layout.
func (r OpaqueREPR) TypeObjectFor(a heap.Allocator, how Object) Object {
	st := NewSTable(r, how)
	st.REPRData = newOpaqueLayout(how)
	obj := &OpaqueInstance{Common: NewCommon(st)}
	st.Publish(obj)

	heap.Track(a, st)
	heap.Track(a, obj)
	return obj
}

// InstanceOf creates an object with every slot unbound.
func (OpaqueREPR) InstanceOf(a heap.Allocator, what Object) Object {
	st := what.STable()
	obj := &OpaqueInstance{Common: NewCommon(st), concrete: true}
	if l := layoutOf(st); l != nil && len(l.names) > NumInlineSlots {
		obj.overflow = make([]heap.Ref, len(l.names)-NumInlineSlots)
	}
	heap.Track(a, obj)
	return obj
}

func (OpaqueREPR) Defined(obj Object) bool {
	o, ok := obj.(*OpaqueInstance)
	return ok && o.concrete
}

// slotFor resolves name for an access through classHandle. Attributes are
// only found through the object's own type.
func (OpaqueREPR) slotFor(o *OpaqueInstance, classHandle Object, name string, hint Hint) (int, error) {
	if classHandle == nil || classHandle.STable() != o.stable {
		return 0, fmt.Errorf("%s: attribute %q not declared by that class: %w", OpaqueName, name, ErrNoSuchAttribute)
	}
	l := layoutOf(o.stable)
	if l == nil {
		return 0, fmt.Errorf("%s: attribute %q: %w", OpaqueName, name, ErrNoSuchAttribute)
	}
	if hint >= 0 && int(hint) < len(l.names) && l.names[hint] == name {
		return int(hint), nil
	}
	i, ok := l.index[name]
	if !ok {
		return 0, fmt.Errorf("%s: attribute %q: %w", OpaqueName, name, ErrNoSuchAttribute)
	}
	return i, nil
}

func (r OpaqueREPR) concreteInstance(obj Object) (*OpaqueInstance, error) {
	o, ok := obj.(*OpaqueInstance)
	if !ok {
		return nil, fmt.Errorf("%s: %T: %w", OpaqueName, obj, ErrWrongREPR)
	}
	if !o.concrete {
		return nil, fmt.Errorf("%s: cannot access attributes of a type object: %w", OpaqueName, ErrNotDefined)
	}
	return o, nil
}

func (r OpaqueREPR) GetAttribute(obj, classHandle Object, name string) (heap.Ref, error) {
	return r.GetAttributeWithHint(obj, classHandle, name, NoHint)
}

func (r OpaqueREPR) GetAttributeWithHint(obj, classHandle Object, name string, hint Hint) (heap.Ref, error) {
	o, err := r.concreteInstance(obj)
	if err != nil {
		return nil, err
	}
	i, err := r.slotFor(o, classHandle, name, hint)
	if err != nil {
		return nil, err
	}
	return o.GetSlot(i), nil
}

func (r OpaqueREPR) BindAttribute(obj, classHandle Object, name string, value heap.Ref) error {
	return r.BindAttributeWithHint(obj, classHandle, name, NoHint, value)
}

func (r OpaqueREPR) BindAttributeWithHint(obj, classHandle Object, name string, hint Hint, value heap.Ref) error {
	o, err := r.concreteInstance(obj)
	if err != nil {
		return err
	}
	i, err := r.slotFor(o, classHandle, name, hint)
	if err != nil {
		return err
	}
	o.SetSlot(i, value)
	return nil
}

// HintFor returns the slot index of name in classHandle's layout.
func (OpaqueREPR) HintFor(classHandle Object, name string) Hint {
	if classHandle == nil {
		return NoHint
	}
	l := layoutOf(classHandle.STable())
	if l == nil {
		return NoHint
	}
	if i, ok := l.index[name]; ok {
		return Hint(i)
	}
	return NoHint
}

func (OpaqueREPR) SetInt(obj Object, value int64) error {
	return CannotBox(OpaqueName, OpBoxInt, "int")
}

func (OpaqueREPR) GetInt(obj Object) (int64, error) {
	return 0, CannotUnbox(OpaqueName, OpUnboxInt, "int")
}

func (OpaqueREPR) SetNum(obj Object, value float64) error {
	return CannotBox(OpaqueName, OpBoxNum, "num")
}

func (OpaqueREPR) GetNum(obj Object) (float64, error) {
	return 0, CannotUnbox(OpaqueName, OpUnboxNum, "num")
}

func (OpaqueREPR) SetStr(obj Object, value string) error {
	return CannotBox(OpaqueName, OpBoxStr, "string")
}

func (OpaqueREPR) GetStr(obj Object) (string, error) {
	return "", CannotUnbox(OpaqueName, OpUnboxStr, "string")
}

// Trace visits the STable, then every bound slot in slot order.
func (OpaqueREPR) Trace(obj Object, visit heap.Visitor) {
	o, ok := obj.(*OpaqueInstance)
	if !ok {
		return
	}
	if o.stable != nil {
		visit(o.stable)
	}
	if o.slot0 != nil {
		visit(o.slot0)
	}
	if o.slot1 != nil {
		visit(o.slot1)
	}
	if o.slot2 != nil {
		visit(o.slot2)
	}
	if o.slot3 != nil {
		visit(o.slot3)
	}
	for _, v := range o.overflow {
		if v != nil {
			visit(v)
		}
	}
}

// ---------------------------------------------------------------------------
// Slot access
// ---------------------------------------------------------------------------

// Trace forwards to the object's representation.
func (o *OpaqueInstance) Trace(visit heap.Visitor) {
	traceVia(o, Opaque, visit)
}

func (*OpaqueInstance) Kind() string { return OpaqueName }

// slot resolves index to its storage, inline or overflow. op names the
// caller in the out-of-range panic.
func (o *OpaqueInstance) slot(op string, index int) *heap.Ref {
	switch index {
	case 0:
		return &o.slot0
	case 1:
		return &o.slot1
	case 2:
		return &o.slot2
	case 3:
		return &o.slot3
	}
	if i := index - NumInlineSlots; i >= 0 && i < len(o.overflow) {
		return &o.overflow[i]
	}
	panic(fmt.Sprintf("OpaqueInstance.%s: slot %d out of range [0,%d)", op, index, o.NumSlots()))
}

// GetSlot returns the value in slot index. It panics when index is outside
// the type's layout.
func (o *OpaqueInstance) GetSlot(index int) heap.Ref {
	return *o.slot("GetSlot", index)
}

// SetSlot stores value in slot index. It panics when index is outside the
// type's layout.
func (o *OpaqueInstance) SetSlot(index int, value heap.Ref) {
	*o.slot("SetSlot", index) = value
}

// NumSlots returns the total number of slots, inline ones included.
func (o *OpaqueInstance) NumSlots() int {
	return NumInlineSlots + len(o.overflow)
}

// ForEachSlot calls fn for each slot, bound or not.
func (o *OpaqueInstance) ForEachSlot(fn func(index int, value heap.Ref)) {
	fn(0, o.slot0)
	fn(1, o.slot1)
	fn(2, o.slot2)
	fn(3, o.slot3)
	for i, v := range o.overflow {
		fn(NumInlineSlots+i, v)
	}
}
