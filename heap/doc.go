// Package heap provides the managed heap that object representations
// allocate into.
//
// Every heap value implements Ref and reports the references it owns
// through Trace. The Collector marks from a root set using nothing but
// those Trace calls and sweeps tracked records that were not reached.
// TakeSnapshot walks the same edges to record the reachable graph, which
// can be written out as canonical CBOR.
package heap
