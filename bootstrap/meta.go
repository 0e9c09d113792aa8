package bootstrap

import (
	"fmt"

	"github.com/chazu/metamodel/heap"
	"github.com/chazu/metamodel/repr"
)

// Names of the methods installed on the KnowHOW meta-object.
const (
	MethodNewType      = "new_type"
	MethodAddMethod    = "add_method"
	MethodAddAttribute = "add_attribute"
	MethodMethods      = "methods"
	MethodAttributes   = "attributes"
)

// installMetaMethods gives the KnowHOW meta-object the callables needed to
// build other meta-objects. Each takes the target meta-object as its first
// argument.
func (w *World) installMetaMethods() {
	add := func(name string, fn func(args ...heap.Ref) (heap.Ref, error)) {
		f := heap.NewFunc(name, fn)
		heap.Track(w.Heap, f)
		// MetaHOW is always defined, AddMethod cannot fail here.
		_ = w.MetaHOW.AddMethod(name, f)
	}

	add(MethodNewType, func(args ...heap.Ref) (heap.Ref, error) {
		return w.NewMetaObject(), nil
	})

	add(MethodAddMethod, func(args ...heap.Ref) (heap.Ref, error) {
		how, err := metaArg(MethodAddMethod, args, 3)
		if err != nil {
			return nil, err
		}
		name, ok := args[1].(heap.Str)
		if !ok {
			return nil, fmt.Errorf("%s: method name must be a Str, got %T", MethodAddMethod, args[1])
		}
		return nil, how.AddMethod(string(name), args[2])
	})

	add(MethodAddAttribute, func(args ...heap.Ref) (heap.Ref, error) {
		how, err := metaArg(MethodAddAttribute, args, 2)
		if err != nil {
			return nil, err
		}
		desc := args[1]
		if s, ok := desc.(heap.Str); ok {
			desc = repr.NewAttribute(w.Heap, string(s))
		}
		return nil, how.AddAttribute(desc)
	})

	add(MethodMethods, func(args ...heap.Ref) (heap.Ref, error) {
		how, err := metaArg(MethodMethods, args, 1)
		if err != nil {
			return nil, err
		}
		return how.Methods(), nil
	})

	add(MethodAttributes, func(args ...heap.Ref) (heap.Ref, error) {
		how, err := metaArg(MethodAttributes, args, 1)
		if err != nil {
			return nil, err
		}
		return how.Attributes(), nil
	})
}

func metaArg(method string, args []heap.Ref, want int) (*repr.KnowHOWInstance, error) {
	if len(args) != want {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", method, want, len(args))
	}
	how, ok := args[0].(*repr.KnowHOWInstance)
	if !ok {
		return nil, fmt.Errorf("%s: expected a KnowHOW meta-object, got %T", method, args[0])
	}
	return how, nil
}
