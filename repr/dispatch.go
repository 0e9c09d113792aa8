package repr

import (
	"reflect"

	"github.com/chazu/metamodel/heap"
)

// ---------------------------------------------------------------------------
// Dispatch
//
// These functions are the single call site the runtime uses. Each one
// finds the representation through the object's STable and forwards the
// call. Errors from the representation are returned as they are.
// ---------------------------------------------------------------------------

// REPROf returns the representation backing obj. A nil obj, including a
// nil pointer of a concrete object type, has no STable.
func REPROf(obj Object) (Representation, error) {
	if isNil(obj) {
		return nil, ErrNoSTable
	}
	st := obj.STable()
	if st == nil || st.REPR == nil {
		return nil, ErrNoSTable
	}
	return st.REPR, nil
}

// InstanceOf creates a new instance of the type object what.
func InstanceOf(a heap.Allocator, what Object) (Object, error) {
	r, err := REPROf(what)
	if err != nil {
		return nil, err
	}
	return r.InstanceOf(a, what), nil
}

// Defined reports whether obj has concrete identity. Objects without an
// STable are never defined.
func Defined(obj Object) bool {
	r, err := REPROf(obj)
	if err != nil {
		return false
	}
	return r.Defined(obj)
}

// GetAttribute reads attribute name declared by classHandle.
func GetAttribute(obj, classHandle Object, name string) (heap.Ref, error) {
	r, err := REPROf(obj)
	if err != nil {
		return nil, err
	}
	return r.GetAttribute(obj, classHandle, name)
}

// GetAttributeWithHint reads an attribute using a hint from HintFor.
func GetAttributeWithHint(obj, classHandle Object, name string, hint Hint) (heap.Ref, error) {
	r, err := REPROf(obj)
	if err != nil {
		return nil, err
	}
	return r.GetAttributeWithHint(obj, classHandle, name, hint)
}

// BindAttribute stores value in attribute name declared by classHandle.
func BindAttribute(obj, classHandle Object, name string, value heap.Ref) error {
	r, err := REPROf(obj)
	if err != nil {
		return err
	}
	return r.BindAttribute(obj, classHandle, name, value)
}

// BindAttributeWithHint stores value using a hint from HintFor.
func BindAttributeWithHint(obj, classHandle Object, name string, hint Hint, value heap.Ref) error {
	r, err := REPROf(obj)
	if err != nil {
		return err
	}
	return r.BindAttributeWithHint(obj, classHandle, name, hint, value)
}

// HintFor asks classHandle's representation for a hint. It returns NoHint
// when classHandle has no STable.
func HintFor(classHandle Object, name string) Hint {
	r, err := REPROf(classHandle)
	if err != nil {
		return NoHint
	}
	return r.HintFor(classHandle, name)
}

func BoxInt(obj Object, value int64) error {
	r, err := REPROf(obj)
	if err != nil {
		return err
	}
	return r.SetInt(obj, value)
}

func UnboxInt(obj Object) (int64, error) {
	r, err := REPROf(obj)
	if err != nil {
		return 0, err
	}
	return r.GetInt(obj)
}

func BoxNum(obj Object, value float64) error {
	r, err := REPROf(obj)
	if err != nil {
		return err
	}
	return r.SetNum(obj, value)
}

func UnboxNum(obj Object) (float64, error) {
	r, err := REPROf(obj)
	if err != nil {
		return 0, err
	}
	return r.GetNum(obj)
}

func BoxStr(obj Object, value string) error {
	r, err := REPROf(obj)
	if err != nil {
		return err
	}
	return r.SetStr(obj, value)
}

func UnboxStr(obj Object) (string, error) {
	r, err := REPROf(obj)
	if err != nil {
		return "", err
	}
	return r.GetStr(obj)
}

// Trace reports every reference obj owns. Objects without an STable
// report nothing.
func Trace(obj Object, visit heap.Visitor) {
	r, err := REPROf(obj)
	if err != nil {
		return
	}
	r.Trace(obj, visit)
}

// isNil reports whether obj is nil or a typed nil pointer. Records embed
// Common by value, so calling STable on a nil record would dereference it.
func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
