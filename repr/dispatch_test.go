package repr

import (
	"errors"
	"testing"

	"github.com/chazu/metamodel/heap"
)

func TestDispatchForwardsToREPR(t *testing.T) {
	what := newOpaqueType(t, "$!x")
	obj, err := InstanceOf(nil, what)
	if err != nil {
		t.Fatalf("InstanceOf: %v", err)
	}
	if !Defined(obj) || Defined(what) {
		t.Fatal("Defined should follow the representation")
	}

	hint := HintFor(what, "$!x")
	if hint != 0 {
		t.Errorf("HintFor = %d, want 0", hint)
	}
	if err := BindAttributeWithHint(obj, what, "$!x", hint, heap.Int(9)); err != nil {
		t.Fatalf("BindAttributeWithHint: %v", err)
	}
	if got, err := GetAttribute(obj, what, "$!x"); err != nil || got != heap.Int(9) {
		t.Errorf("GetAttribute = (%v, %v), want 9", got, err)
	}
}

func TestDispatchReturnsUnsupportedUnchanged(t *testing.T) {
	_, inst := newKnowHOWPair(t)

	err := BindAttribute(inst, inst, "x", heap.Int(42))
	var uerr *UnsupportedOperationError
	if !errors.As(err, &uerr) {
		t.Fatalf("err = %v, want *UnsupportedOperationError", err)
	}
	if uerr.REPR != KnowHOWName || uerr.Op != OpBindAttribute {
		t.Errorf("error = %+v", uerr)
	}

	if _, err := UnboxStr(inst); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("UnboxStr err = %v", err)
	}
	if HintFor(inst, "x") != NoHint {
		t.Error("KnowHOW HintFor should be NoHint")
	}
}

func TestDispatchBoxing(t *testing.T) {
	n, _ := InstanceOf(nil, BoxedNum.TypeObjectFor(nil, nil))
	if err := BoxNum(n, 3.25); err != nil {
		t.Fatalf("BoxNum: %v", err)
	}
	if got, _ := UnboxNum(n); got != 3.25 {
		t.Errorf("UnboxNum = %g, want 3.25", got)
	}
	if err := BoxInt(n, 1); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("BoxInt on P6num err = %v", err)
	}
	s, _ := InstanceOf(nil, BoxedStr.TypeObjectFor(nil, nil))
	if err := BoxStr(s, "str"); err != nil {
		t.Fatalf("BoxStr: %v", err)
	}
	i, _ := InstanceOf(nil, BoxedInt.TypeObjectFor(nil, nil))
	if err := BoxInt(i, 5); err != nil {
		t.Fatalf("BoxInt: %v", err)
	}
	if got, _ := UnboxInt(i); got != 5 {
		t.Errorf("UnboxInt = %d, want 5", got)
	}
}

func TestDispatchWithoutSTable(t *testing.T) {
	orphan := &KnowHOWInstance{}

	if _, err := InstanceOf(nil, orphan); !errors.Is(err, ErrNoSTable) {
		t.Errorf("InstanceOf err = %v, want ErrNoSTable", err)
	}
	if _, err := InstanceOf(nil, nil); !errors.Is(err, ErrNoSTable) {
		t.Errorf("InstanceOf(nil) err = %v, want ErrNoSTable", err)
	}
	if Defined(orphan) {
		t.Error("object without STable should not be defined")
	}
	if _, err := GetAttribute(orphan, nil, "x"); !errors.Is(err, ErrNoSTable) {
		t.Errorf("GetAttribute err = %v, want ErrNoSTable", err)
	}
	if HintFor(nil, "x") != NoHint {
		t.Error("HintFor(nil) should be NoHint")
	}

	called := false
	Trace(orphan, func(heap.Ref) { called = true })
	if called {
		t.Error("Trace on an object without STable should report nothing")
	}
}

func TestDispatchTypedNil(t *testing.T) {
	objs := []Object{
		(*KnowHOWInstance)(nil),
		(*OpaqueInstance)(nil),
		(*BoxedInstance)(nil),
	}
	for _, obj := range objs {
		if Defined(obj) {
			t.Errorf("%T(nil) should not be defined", obj)
		}
		if _, err := REPROf(obj); !errors.Is(err, ErrNoSTable) {
			t.Errorf("REPROf(%T(nil)) err = %v, want ErrNoSTable", obj, err)
		}
		if _, err := InstanceOf(nil, obj); !errors.Is(err, ErrNoSTable) {
			t.Errorf("InstanceOf(%T(nil)) err = %v, want ErrNoSTable", obj, err)
		}
		if err := BoxInt(obj, 1); !errors.Is(err, ErrNoSTable) {
			t.Errorf("BoxInt(%T(nil)) err = %v, want ErrNoSTable", obj, err)
		}
		if HintFor(obj, "x") != NoHint {
			t.Errorf("HintFor(%T(nil)) should be NoHint", obj)
		}
	}

	var c *Common
	if c.STable() != nil {
		t.Error("nil Common should report no STable")
	}
}

func TestSTablePublishOnce(t *testing.T) {
	st := NewSTable(KnowHOW, nil)
	obj := &KnowHOWInstance{Common: NewCommon(st)}
	st.Publish(obj)

	defer func() {
		if recover() == nil {
			t.Error("second Publish should panic")
		}
	}()
	st.Publish(&KnowHOWInstance{Common: NewCommon(st)})
}

func TestSTablePublishRequiresBackReference(t *testing.T) {
	st := NewSTable(KnowHOW, nil)
	defer func() {
		if recover() == nil {
			t.Error("Publish with a foreign object should panic")
		}
	}()
	st.Publish(&KnowHOWInstance{Common: NewCommon(NewSTable(KnowHOW, nil))})
}

func TestSTableTrace(t *testing.T) {
	how := &KnowHOWInstance{}
	what := KnowHOW.TypeObjectFor(nil, how)

	var seen []heap.Ref
	what.STable().Trace(func(ref heap.Ref) { seen = append(seen, ref) })
	if len(seen) != 2 || seen[0] != what || seen[1] != how {
		t.Errorf("STable should report WHAT then HOW, got %d refs", len(seen))
	}
}

func TestObjectTraceForwardsToREPR(t *testing.T) {
	_, inst := newKnowHOWPair(t)
	var viaObject, viaREPR []heap.Ref
	inst.Trace(func(ref heap.Ref) { viaObject = append(viaObject, ref) })
	Trace(inst, func(ref heap.Ref) { viaREPR = append(viaREPR, ref) })

	if len(viaObject) != len(viaREPR) {
		t.Fatalf("object trace reported %d refs, dispatch reported %d", len(viaObject), len(viaREPR))
	}
	for i := range viaObject {
		if viaObject[i] != viaREPR[i] {
			t.Errorf("ref %d differs", i)
		}
	}
}
