package repr

import (
	"errors"
)

// Sentinel errors.
var (
	ErrUnsupportedOperation = errors.New("unsupported representation operation")
	ErrNoSTable             = errors.New("object has no STable")
	ErrNotDefined           = errors.New("object is a type object")
	ErrNoSuchAttribute      = errors.New("no such attribute")
	ErrWrongREPR            = errors.New("object belongs to another representation")
	ErrDuplicateREPR        = errors.New("representation already registered")
	ErrUnknownREPR          = errors.New("unknown representation")
)

// Operation names reported in UnsupportedOperationError.
const (
	OpGetAttribute          = "get_attribute"
	OpGetAttributeWithHint  = "get_attribute_with_hint"
	OpBindAttribute         = "bind_attribute"
	OpBindAttributeWithHint = "bind_attribute_with_hint"
	OpBoxInt                = "box_int"
	OpUnboxInt              = "unbox_int"
	OpBoxNum                = "box_num"
	OpUnboxNum              = "unbox_num"
	OpBoxStr                = "box_str"
	OpUnboxStr              = "unbox_str"
)

// UnsupportedOperationError is returned when a representation is asked to
// do something it does not support. It is a caller contract violation and
// is passed back unmodified by the dispatch functions.
type UnsupportedOperationError struct {
	REPR   string // representation name
	Op     string // operation name, e.g. "bind_attribute"
	Reason string // e.g. "does not support attribute storage"
}

func (e *UnsupportedOperationError) Error() string {
	return e.REPR + " " + e.Reason
}

// Is makes errors.Is(err, ErrUnsupportedOperation) hold.
func (e *UnsupportedOperationError) Is(target error) bool {
	return target == ErrUnsupportedOperation
}

// NoAttributeStorage is the failure for representations without attribute
// slots.
func NoAttributeStorage(reprName, op string) error {
	return &UnsupportedOperationError{
		REPR:   reprName,
		Op:     op,
		Reason: "does not support attribute storage",
	}
}

// CannotBox is the failure for representations that cannot hold the given
// native kind ("int", "num" or "string").
func CannotBox(reprName, op, native string) error {
	return &UnsupportedOperationError{
		REPR:   reprName,
		Op:     op,
		Reason: "cannot box a native " + native,
	}
}

// CannotUnbox is the failure for representations that cannot produce the
// given native kind.
func CannotUnbox(reprName, op, native string) error {
	return &UnsupportedOperationError{
		REPR:   reprName,
		Op:     op,
		Reason: "cannot unbox to a native " + native,
	}
}
