package repr

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	want := []string{KnowHOWName, OpaqueName, HashStoreName, IntName, NumName, StrName}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	for i, name := range want {
		id, ok := reg.ID(name)
		if !ok || id != i {
			t.Errorf("ID(%s) = %d, %v; want %d", name, id, ok, i)
		}
		if r, ok := reg.Lookup(name); !ok || r.Name() != name {
			t.Errorf("Lookup(%s) failed", name)
		}
	}
	if DefaultRegistry() != reg {
		t.Error("DefaultRegistry should return the same table every time")
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(KnowHOW, Opaque, KnowHOW)
	if !errors.Is(err, ErrDuplicateREPR) {
		t.Errorf("err = %v, want ErrDuplicateREPR", err)
	}
	if _, err := NewRegistry(KnowHOW, nil); err == nil {
		t.Error("nil representation should be rejected")
	}
}

func TestMustRegistryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegistry should panic on duplicates")
		}
	}()
	MustRegistry(BoxedInt, BoxedInt)
}

func TestRegistrySubset(t *testing.T) {
	sub, err := DefaultRegistry().Subset(StrName, KnowHOWName)
	if err != nil {
		t.Fatalf("Subset: %v", err)
	}
	if diff := cmp.Diff([]string{StrName, KnowHOWName}, sub.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := sub.Lookup(OpaqueName); ok {
		t.Error("subset should not contain P6opaque")
	}
	if _, err := DefaultRegistry().Subset("P6nope"); !errors.Is(err, ErrUnknownREPR) {
		t.Errorf("err = %v, want ErrUnknownREPR", err)
	}
}

func TestRegistryTypeObjectFor(t *testing.T) {
	reg := DefaultRegistry()
	what, err := reg.TypeObjectFor(nil, HashStoreName, nil)
	if err != nil {
		t.Fatalf("TypeObjectFor: %v", err)
	}
	if what.STable().REPR != HashStore {
		t.Error("type object should be backed by HashAttrStore")
	}
	if _, err := reg.TypeObjectFor(nil, "P6nope", nil); !errors.Is(err, ErrUnknownREPR) {
		t.Errorf("err = %v, want ErrUnknownREPR", err)
	}
}

func TestRegistryConcurrentReads(t *testing.T) {
	reg := DefaultRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, name := range reg.Names() {
					reg.MustLookup(name)
				}
			}
		}()
	}
	wg.Wait()
}
