package store

// hashValue is an insertion-ordered field map. The index maps a field name
// to its position in entries; deletions compact the slice and re-index the
// shifted tail. Iteration order is therefore always insertion order, which
// keeps repeated HGETALL calls stable absent intervening writes.
//
// Thread-safety: hashValue is not synchronized itself. All access happens
// inside the per-key atomic section of Store.
type hashValue struct {
	index   map[string]int
	entries []HashEntry
}

func newHashValue() *hashValue {
	return &hashValue{
		index: make(map[string]int),
	}
}

// set inserts or overwrites a field and reports whether it was newly created.
func (h *hashValue) set(field string, value []byte) bool {
	if pos, ok := h.index[field]; ok {
		h.entries[pos].Value = value
		return false
	}
	h.index[field] = len(h.entries)
	h.entries = append(h.entries, HashEntry{Field: field, Value: value})
	return true
}

// get returns the value for a field. The boolean return value indicates
// whether the field exists.
func (h *hashValue) get(field string) ([]byte, bool) {
	pos, ok := h.index[field]
	if !ok {
		return nil, false
	}
	return h.entries[pos].Value, true
}

// del removes a field and reports whether it existed.
func (h *hashValue) del(field string) bool {
	pos, ok := h.index[field]
	if !ok {
		return false
	}
	delete(h.index, field)
	h.entries = append(h.entries[:pos], h.entries[pos+1:]...)
	for i := pos; i < len(h.entries); i++ {
		h.index[h.entries[i].Field] = i
	}
	return true
}

// len returns the number of fields.
func (h *hashValue) len() int {
	return len(h.entries)
}

// all returns a snapshot of the entries in insertion order. The slice is
// copied so callers may hold it after the atomic section ends; the value
// byte slices are shared and immutable by convention.
func (h *hashValue) all() []HashEntry {
	out := make([]HashEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
