// Package bootstrap builds the self-describing KnowHOW meta-object and a
// World in which types are defined on top of the registered
// representations.
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/metamodel/heap"
	"github.com/chazu/metamodel/repr"
)

var log = commonlog.GetLogger("metamodel.bootstrap")

// KnowHOWTypeName is the global name of the KnowHOW type object.
const KnowHOWTypeName = "KnowHOW"

var (
	ErrDuplicateType = errors.New("type already defined")
	ErrUnknownType   = errors.New("unknown type")
)

// Options configures New.
type Options struct {
	// Registry defaults to repr.DefaultRegistry().
	Registry *repr.Registry

	// REPRs restricts the registry to the named representations.
	// KnowHOWREPR must be among them. Empty keeps every representation.
	REPRs []string

	// GCInterval is the period of background collection.
	GCInterval time.Duration

	// Background starts periodic collection.
	Background bool
}

// World is a bootstrapped object space.
type World struct {
	Heap      *heap.Heap
	Registry  *repr.Registry
	Collector *heap.Collector

	// KnowHOW is the KnowHOW type object; MetaHOW is its meta-object,
	// itself a KnowHOW instance whose STable is KnowHOW's own.
	KnowHOW repr.Object
	MetaHOW *repr.KnowHOWInstance

	// Globals maps type names to type objects. It is the root of the heap.
	Globals *heap.Hash

	types map[string]*Type
}

// Type is a type defined in a World.
type Type struct {
	Name string
	WHAT repr.Object
	HOW  *repr.KnowHOWInstance
}

// TypeSpec describes a type to define.
type TypeSpec struct {
	Name       string
	REPR       string
	Attributes []string
	Methods    []*heap.Func
}

// New bootstraps a World.
func New(opts Options) (*World, error) {
	reg := opts.Registry
	if reg == nil {
		reg = repr.DefaultRegistry()
	}
	if len(opts.REPRs) > 0 {
		sub, err := reg.Subset(opts.REPRs...)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		reg = sub
	}
	knowHOW, ok := reg.Lookup(repr.KnowHOWName)
	if !ok {
		return nil, fmt.Errorf("bootstrap: %s: %w", repr.KnowHOWName, repr.ErrUnknownREPR)
	}

	h := heap.New()
	w := &World{
		Heap:     h,
		Registry: reg,
		types:    make(map[string]*Type),
	}

	// KnowHOW describes itself: its type object is created without a HOW,
	// then the first instance becomes the HOW of the type object's STable.
	what := knowHOW.TypeObjectFor(h, nil)
	meta, ok := knowHOW.InstanceOf(h, what).(*repr.KnowHOWInstance)
	if !ok {
		return nil, fmt.Errorf("bootstrap: %s did not produce a KnowHOW instance", repr.KnowHOWName)
	}
	what.STable().SetHOW(meta)
	w.KnowHOW = what
	w.MetaHOW = meta
	w.installMetaMethods()

	w.Globals = heap.NewHash(h)
	w.Globals.Bind(KnowHOWTypeName, what)
	w.types[KnowHOWTypeName] = &Type{Name: KnowHOWTypeName, WHAT: what, HOW: meta}

	w.Collector = heap.NewCollector(h, w.Roots, opts.GCInterval)
	if opts.Background {
		w.Collector.Start()
	}

	log.Infof("bootstrapped %s with %d representations", KnowHOWTypeName, reg.Len())
	return w, nil
}

// Close stops background collection.
func (w *World) Close() {
	w.Collector.Stop()
}

// NewMetaObject creates a fresh KnowHOW meta-object.
func (w *World) NewMetaObject() *repr.KnowHOWInstance {
	return w.KnowHOW.STable().REPR.InstanceOf(w.Heap, w.KnowHOW).(*repr.KnowHOWInstance)
}

// DefineType creates a meta-object carrying spec's methods and attribute
// descriptors, then asks spec.REPR for a type object described by it.
func (w *World) DefineType(spec TypeSpec) (*Type, error) {
	if spec.Name == "" {
		return nil, errors.New("bootstrap: type needs a name")
	}
	r, ok := w.Registry.Lookup(spec.REPR)
	if !ok {
		return nil, fmt.Errorf("bootstrap: type %s: %q: %w", spec.Name, spec.REPR, repr.ErrUnknownREPR)
	}

	var (
		t   *Type
		err error
	)
	w.Heap.Do(func() {
		if _, dup := w.types[spec.Name]; dup {
			err = fmt.Errorf("bootstrap: %s: %w", spec.Name, ErrDuplicateType)
			return
		}
		how := w.NewMetaObject()
		for _, m := range spec.Methods {
			if m == nil {
				continue
			}
			heap.Track(w.Heap, m)
			if err = how.AddMethod(m.Name, m); err != nil {
				return
			}
		}
		for _, name := range spec.Attributes {
			if err = how.AddAttribute(repr.NewAttribute(w.Heap, name)); err != nil {
				return
			}
		}
		what := r.TypeObjectFor(w.Heap, how)
		t = &Type{Name: spec.Name, WHAT: what, HOW: how}
		w.types[spec.Name] = t
		w.Globals.Bind(spec.Name, what)
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("defined type %s (%s, %d attributes, %d methods)",
		spec.Name, spec.REPR, len(spec.Attributes), len(spec.Methods))
	return t, nil
}

// Lookup returns the type defined under name.
func (w *World) Lookup(name string) (*Type, bool) {
	t, ok := w.types[name]
	return t, ok
}

// Types returns the defined type names in definition order.
func (w *World) Types() []string {
	return w.Globals.Keys()
}

// New creates an instance of the named type through the dispatch layer.
func (w *World) New(name string) (repr.Object, error) {
	t, ok := w.types[name]
	if !ok {
		return nil, fmt.Errorf("bootstrap: %s: %w", name, ErrUnknownType)
	}
	var (
		obj repr.Object
		err error
	)
	w.Heap.Do(func() {
		obj, err = repr.InstanceOf(w.Heap, t.WHAT)
	})
	return obj, err
}

// Roots returns the root set of the world's heap.
func (w *World) Roots() []heap.Ref {
	return []heap.Ref{w.Globals, w.KnowHOW}
}

// Collect runs a collection from the world's roots plus extra.
func (w *World) Collect(extra ...heap.Ref) *heap.Stats {
	if len(extra) == 0 {
		return w.Collector.Collect(nil)
	}
	return w.Collector.Collect(append(w.Roots(), extra...))
}

// Snapshot captures the reachable graph.
func (w *World) Snapshot() *heap.Snapshot {
	var s *heap.Snapshot
	w.Heap.Do(func() {
		s = heap.TakeSnapshot(w.Roots())
	})
	return s
}
