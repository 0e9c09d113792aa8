package repr

import (
	"fmt"
	"strconv"

	"github.com/chazu/metamodel/heap"
)

// Registered names of the boxed primitive representations.
const (
	IntName = "P6int"
	NumName = "P6num"
	StrName = "P6str"
)

type nativeKind uint8

const (
	nativeInt nativeKind = iota
	nativeNum
	nativeStr
)

// Boxed primitive representations. Each holds exactly one native kind and
// rejects the other two.
var (
	BoxedInt Representation = BoxedREPR{kind: nativeInt}
	BoxedNum Representation = BoxedREPR{kind: nativeNum}
	BoxedStr Representation = BoxedREPR{kind: nativeStr}
)

// BoxedREPR implements Representation for boxed native values.
type BoxedREPR struct {
	kind nativeKind
}

// BoxedInstance carries one native value. Only the field matching the
// representation's kind is used.
type BoxedInstance struct {
	Common
	concrete bool
	i        int64
	n        float64
	s        string
}

func (r BoxedREPR) Name() string {
	switch r.kind {
	case nativeNum:
		return NumName
	case nativeStr:
		return StrName
	default:
		return IntName
	}
}

func (r BoxedREPR) TypeObjectFor(a heap.Allocator, how Object) Object {
	st := NewSTable(r, how)
	obj := &BoxedInstance{Common: NewCommon(st)}
	st.Publish(obj)

	heap.Track(a, st)
	heap.Track(a, obj)
	return obj
}

// InstanceOf creates a box holding the zero value.
func (BoxedREPR) InstanceOf(a heap.Allocator, what Object) Object {
	obj := &BoxedInstance{Common: NewCommon(what.STable()), concrete: true}
	heap.Track(a, obj)
	return obj
}

func (BoxedREPR) Defined(obj Object) bool {
	b, ok := obj.(*BoxedInstance)
	return ok && b.concrete
}

func (r BoxedREPR) GetAttribute(obj, classHandle Object, name string) (heap.Ref, error) {
	return nil, NoAttributeStorage(r.Name(), OpGetAttribute)
}

func (r BoxedREPR) GetAttributeWithHint(obj, classHandle Object, name string, hint Hint) (heap.Ref, error) {
	return nil, NoAttributeStorage(r.Name(), OpGetAttributeWithHint)
}

func (r BoxedREPR) BindAttribute(obj, classHandle Object, name string, value heap.Ref) error {
	return NoAttributeStorage(r.Name(), OpBindAttribute)
}

func (r BoxedREPR) BindAttributeWithHint(obj, classHandle Object, name string, hint Hint, value heap.Ref) error {
	return NoAttributeStorage(r.Name(), OpBindAttributeWithHint)
}

func (BoxedREPR) HintFor(classHandle Object, name string) Hint {
	return NoHint
}

// box checks that obj is a concrete box of the wanted kind.
func (r BoxedREPR) box(obj Object, want nativeKind, op, native string, unbox bool) (*BoxedInstance, error) {
	if r.kind != want {
		if unbox {
			return nil, CannotUnbox(r.Name(), op, native)
		}
		return nil, CannotBox(r.Name(), op, native)
	}
	b, ok := obj.(*BoxedInstance)
	if !ok {
		return nil, fmt.Errorf("%s: %T: %w", r.Name(), obj, ErrWrongREPR)
	}
	if !b.concrete {
		return nil, fmt.Errorf("%s: %s on a type object: %w", r.Name(), op, ErrNotDefined)
	}
	return b, nil
}

func (r BoxedREPR) SetInt(obj Object, value int64) error {
	b, err := r.box(obj, nativeInt, OpBoxInt, "int", false)
	if err != nil {
		return err
	}
	b.i = value
	return nil
}

func (r BoxedREPR) GetInt(obj Object) (int64, error) {
	b, err := r.box(obj, nativeInt, OpUnboxInt, "int", true)
	if err != nil {
		return 0, err
	}
	return b.i, nil
}

func (r BoxedREPR) SetNum(obj Object, value float64) error {
	b, err := r.box(obj, nativeNum, OpBoxNum, "num", false)
	if err != nil {
		return err
	}
	b.n = value
	return nil
}

func (r BoxedREPR) GetNum(obj Object) (float64, error) {
	b, err := r.box(obj, nativeNum, OpUnboxNum, "num", true)
	if err != nil {
		return 0, err
	}
	return b.n, nil
}

func (r BoxedREPR) SetStr(obj Object, value string) error {
	b, err := r.box(obj, nativeStr, OpBoxStr, "string", false)
	if err != nil {
		return err
	}
	b.s = value
	return nil
}

func (r BoxedREPR) GetStr(obj Object) (string, error) {
	b, err := r.box(obj, nativeStr, OpUnboxStr, "string", true)
	if err != nil {
		return "", err
	}
	return b.s, nil
}

// Trace visits the STable only; native values hold no references.
func (BoxedREPR) Trace(obj Object, visit heap.Visitor) {
	b, ok := obj.(*BoxedInstance)
	if !ok {
		return
	}
	if b.stable != nil {
		visit(b.stable)
	}
}

// Trace forwards to the object's representation.
func (b *BoxedInstance) Trace(visit heap.Visitor) {
	traceVia(b, BoxedInt, visit)
}

func (b *BoxedInstance) Kind() string {
	if b.stable == nil {
		return "Boxed"
	}
	return b.stable.REPR.Name()
}

func (b *BoxedInstance) String() string {
	if !b.concrete || b.stable == nil {
		return ""
	}
	switch b.stable.REPR.Name() {
	case NumName:
		return strconv.FormatFloat(b.n, 'g', -1, 64)
	case StrName:
		return b.s
	default:
		return strconv.FormatInt(b.i, 10)
	}
}
