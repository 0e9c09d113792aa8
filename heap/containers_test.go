package heap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHashBindAndAt(t *testing.T) {
	h := NewHash(nil)
	h.Bind("b", Int(2))
	h.Bind("a", Int(1))
	h.Bind("b", Int(3))

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
	if v, ok := h.At("b"); !ok || v != Int(3) {
		t.Errorf("At(b) = %v, %v; want 3", v, ok)
	}
	if _, ok := h.At("missing"); ok {
		t.Error("At(missing) should not be found")
	}
	if !h.Has("a") || h.Has("c") {
		t.Error("Has reported wrong membership")
	}
	if diff := cmp.Diff([]string{"b", "a"}, h.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
}

func TestHashTraceSkipsNil(t *testing.T) {
	h := NewHash(nil)
	f := NewFunc("f", nil)
	h.Bind("f", f)
	h.Bind("nothing", nil)

	var seen []Ref
	h.Trace(func(r Ref) { seen = append(seen, r) })
	if len(seen) != 1 || seen[0] != f {
		t.Errorf("Trace visited %v, want only f", seen)
	}
}

func TestArrayPushAndTrace(t *testing.T) {
	arr := NewArray(nil)
	arr.Push(Str("x"))
	arr.Push(nil)
	arr.Push(Num(1.5))

	if arr.Len() != 3 {
		t.Errorf("Len() = %d, want 3", arr.Len())
	}
	if arr.At(2) != Num(1.5) {
		t.Errorf("At(2) = %v, want 1.5", arr.At(2))
	}

	var seen []Ref
	arr.Trace(func(r Ref) { seen = append(seen, r) })
	if diff := cmp.Diff([]Ref{Str("x"), Num(1.5)}, seen); diff != "" {
		t.Errorf("Trace mismatch (-want +got):\n%s", diff)
	}
}

func TestArrayAtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At out of range should panic")
		}
	}()
	NewArray(nil).At(0)
}

func TestContainersTracked(t *testing.T) {
	h := New()
	hash := NewHash(h)
	arr := NewArray(h)
	if !h.Tracked(hash) || !h.Tracked(arr) {
		t.Error("containers should be tracked by their allocator")
	}
	if h.ID(hash) == 0 || h.ID(arr) == h.ID(hash) {
		t.Errorf("IDs = %d, %d; want distinct non-zero", h.ID(hash), h.ID(arr))
	}
}

func TestFuncCall(t *testing.T) {
	double := NewFunc("double", func(args ...Ref) (Ref, error) {
		return args[0].(Int) * 2, nil
	})
	got, err := double.Call(Int(21))
	if err != nil || got != Int(42) {
		t.Errorf("Call = (%v, %v), want 42", got, err)
	}
	if got, err := NewFunc("empty", nil).Call(); got != nil || err != nil {
		t.Errorf("empty Call = (%v, %v), want (nil, nil)", got, err)
	}
	if double.String() != "&double" {
		t.Errorf("String() = %q", double.String())
	}
}
