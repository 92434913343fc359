package ids

import "reflect"

// Entity is anything that carries an allocator-assigned ID.
type Entity interface {
	EntityID() int
}

// NextID returns the smallest ID not held at its own position in seq.
// seq must be ordered by ID. Position i holding a nil entry or an entity whose
// ID is not i is a hole; with no holes the next ID is len(seq).
func NextID[E Entity](seq []E) int {
	for i, e := range seq {
		if isNil(e) || e.EntityID() != i {
			return i
		}
	}
	return len(seq)
}

// Insert places e at position e.EntityID(), shifting later entries right,
// or appends it when the ID equals the current length. A nil entry at that
// position is filled in place.
func Insert[E Entity](seq []E, e E) []E {
	id := e.EntityID()
	if id >= len(seq) {
		return append(seq, e)
	}
	if isNil(seq[id]) {
		seq[id] = e
		return seq
	}
	var zero E
	seq = append(seq, zero)
	copy(seq[id+1:], seq[id:])
	seq[id] = e
	return seq
}

// Create allocates the next ID, builds the entity with mk and inserts it.
func Create[E Entity](seq []E, mk func(id int) E) ([]E, E) {
	e := mk(NextID(seq))
	return Insert(seq, e), e
}

// Remove drops the entity with the given ID from an ordered seq. The gap it
// leaves is reused by the next Create.
func Remove[E Entity](seq []E, id int) ([]E, bool) {
	for i, e := range seq {
		if !isNil(e) && e.EntityID() == id {
			return append(seq[:i], seq[i+1:]...), true
		}
	}
	return seq, false
}

// isNil reports whether e is a nil interface or a nil pointer-like value.
func isNil[E any](e E) bool {
	v := reflect.ValueOf(any(e))
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
