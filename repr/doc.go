// Package repr implements pluggable object representations.
//
// A representation (REPR) decides how objects of a type are laid out, how
// their attributes are stored, whether they can box a native value, and
// which references they report to the collector. Each type points at its
// representation through a shared STable, so callers go through the
// dispatch functions in this package and never switch on a concrete
// layout.
//
// This package contains:
//   - STable, Object and the Representation interface
//   - Dispatch functions used by the runtime
//   - The immutable representation Registry
//   - KnowHOWREPR, the bootstrap meta-object representation
//   - P6opaque, HashAttrStore, P6int, P6num and P6str
package repr
