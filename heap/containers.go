package heap

// ---------------------------------------------------------------------------
// Hash: string-keyed mapping with unique keys
// ---------------------------------------------------------------------------

// Hash maps names to heap values. Keys are unique; iteration follows
// insertion order so tracing and snapshots are deterministic.
type Hash struct {
	keys   []string
	values []Ref
	index  map[string]int
}

// NewHash creates an empty Hash and tracks it with a.
func NewHash(a Allocator) *Hash {
	h := &Hash{index: make(map[string]int)}
	Track(a, h)
	return h
}

// Bind stores value under key, replacing any previous value.
func (h *Hash) Bind(key string, value Ref) {
	if i, ok := h.index[key]; ok {
		h.values[i] = value
		return
	}
	h.index[key] = len(h.keys)
	h.keys = append(h.keys, key)
	h.values = append(h.values, value)
}

// At returns the value bound to key.
func (h *Hash) At(key string) (Ref, bool) {
	i, ok := h.index[key]
	if !ok {
		return nil, false
	}
	return h.values[i], true
}

// Has reports whether key is bound.
func (h *Hash) Has(key string) bool {
	_, ok := h.index[key]
	return ok
}

// Len returns the number of bound keys.
func (h *Hash) Len() int {
	return len(h.keys)
}

// Keys returns the keys in insertion order.
func (h *Hash) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Each calls fn for every entry in insertion order.
func (h *Hash) Each(fn func(key string, value Ref)) {
	for i, k := range h.keys {
		fn(k, h.values[i])
	}
}

// Trace visits every non-nil value.
func (h *Hash) Trace(visit Visitor) {
	for _, v := range h.values {
		if v != nil {
			visit(v)
		}
	}
}

func (*Hash) Kind() string { return "Hash" }

// ---------------------------------------------------------------------------
// Array: ordered, append-only sequence
// ---------------------------------------------------------------------------

// Array is an ordered sequence of heap values.
type Array struct {
	elems []Ref
}

// NewArray creates an empty Array and tracks it with a.
func NewArray(a Allocator) *Array {
	arr := &Array{}
	Track(a, arr)
	return arr
}

// Push appends value.
func (arr *Array) Push(value Ref) {
	arr.elems = append(arr.elems, value)
}

// At returns the element at index i.
// Panics if i is out of range.
func (arr *Array) At(i int) Ref {
	if i < 0 || i >= len(arr.elems) {
		panic("Array.At: index out of range")
	}
	return arr.elems[i]
}

// Len returns the number of elements.
func (arr *Array) Len() int {
	return len(arr.elems)
}

// Each calls fn for every element in order.
func (arr *Array) Each(fn func(i int, value Ref)) {
	for i, v := range arr.elems {
		fn(i, v)
	}
}

// Trace visits every non-nil element in order.
func (arr *Array) Trace(visit Visitor) {
	for _, v := range arr.elems {
		if v != nil {
			visit(v)
		}
	}
}

func (*Array) Kind() string { return "Array" }
