package heap

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Snapshot is the reachable object graph at one point in time. Node IDs
// are assigned in breadth-first visit order starting at 1; edges keep the
// order in which Trace reported them.
type Snapshot struct {
	ID    string   `cbor:"1,keyasint"`
	Taken int64    `cbor:"2,keyasint"` // unix nanoseconds
	Roots []uint64 `cbor:"3,keyasint,omitempty"`
	Nodes []Node   `cbor:"4,keyasint,omitempty"`
}

// Node is one heap value in a Snapshot.
type Node struct {
	ID    uint64   `cbor:"1,keyasint"`
	Kind  string   `cbor:"2,keyasint"`
	Label string   `cbor:"3,keyasint,omitempty"`
	Edges []uint64 `cbor:"4,keyasint,omitempty"`
}

// Node returns the node with the given ID.
func (s *Snapshot) Node(id uint64) (Node, bool) {
	if id == 0 || id > uint64(len(s.Nodes)) {
		return Node{}, false
	}
	return s.Nodes[id-1], true
}

// CountKind returns how many nodes have the given kind.
func (s *Snapshot) CountKind(kind string) int {
	n := 0
	for _, node := range s.Nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

// TakeSnapshot walks everything reachable from roots. Like Mark, it panics
// on a ref that is not comparable.
// It must run while no mutator is active, e.g. inside Heap.Do.
func TakeSnapshot(roots []Ref) *Snapshot {
	s := &Snapshot{
		ID:    uuid.NewString(),
		Taken: time.Now().UnixNano(),
	}

	ids := make(map[Ref]uint64)
	var order []Ref
	idOf := func(ref Ref) uint64 {
		mustBeComparable("TakeSnapshot", ref)
		if id, ok := ids[ref]; ok {
			return id
		}
		order = append(order, ref)
		id := uint64(len(order))
		ids[ref] = id
		return id
	}

	for _, r := range roots {
		if r != nil {
			s.Roots = append(s.Roots, idOf(r))
		}
	}

	for i := 0; i < len(order); i++ {
		ref := order[i]
		node := Node{
			ID:    uint64(i + 1),
			Kind:  KindOf(ref),
			Label: labelOf(ref),
		}
		ref.Trace(func(child Ref) {
			if child != nil {
				node.Edges = append(node.Edges, idOf(child))
			}
		})
		s.Nodes = append(s.Nodes, node)
	}
	return s
}

// KindOf names the kind of ref, preferring Kinded over the Go type.
func KindOf(ref Ref) string {
	if k, ok := ref.(Kinded); ok {
		return k.Kind()
	}
	return fmt.Sprintf("%T", ref)
}

func labelOf(ref Ref) string {
	if s, ok := ref.(fmt.Stringer); ok {
		return s.String()
	}
	return ""
}

// ---------------------------------------------------------------------------
// CBOR encoding
// ---------------------------------------------------------------------------

var snapshotEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("heap: failed to create CBOR enc mode: %v", err))
	}
	snapshotEncMode = em
}

// MarshalSnapshot serializes a Snapshot to canonical CBOR.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return snapshotEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("heap: unmarshal snapshot: %w", err)
	}
	return &s, nil
}
