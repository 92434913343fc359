package ids

type slot[T any] struct {
	val  T
	used bool
}

// Table stores values at the position equal to their ID. Removing a value
// leaves an explicit vacant slot rather than shifting the rest, so IDs stay
// stable and vacant slots are handed out again smallest first.
//
// Table is not safe for concurrent use.
type Table[T any] struct {
	slots []slot[T]
	n     int
}

// NextID returns the ID the next Create will assign.
func (t *Table[T]) NextID() int {
	for i := range t.slots {
		if !t.slots[i].used {
			return i
		}
	}
	return len(t.slots)
}

// Create allocates an ID, builds the value with mk and stores it.
func (t *Table[T]) Create(mk func(id int) T) (int, T) {
	id := t.NextID()
	v := mk(id)
	t.Put(id, v)
	return id, v
}

// Put stores v at id, growing the table with vacant slots when needed.
// It is used to rebuild a table from persisted state.
func (t *Table[T]) Put(id int, v T) {
	if id < 0 {
		panic("ids: negative id")
	}
	for len(t.slots) <= id {
		t.slots = append(t.slots, slot[T]{})
	}
	if !t.slots[id].used {
		t.n++
	}
	t.slots[id] = slot[T]{val: v, used: true}
}

func (t *Table[T]) Get(id int) (T, bool) {
	if id < 0 || id >= len(t.slots) || !t.slots[id].used {
		var zero T
		return zero, false
	}
	return t.slots[id].val, true
}

// Remove vacates id. Trailing vacant slots are trimmed.
func (t *Table[T]) Remove(id int) (T, bool) {
	v, ok := t.Get(id)
	if !ok {
		return v, false
	}
	t.slots[id] = slot[T]{}
	t.n--
	for len(t.slots) > 0 && !t.slots[len(t.slots)-1].used {
		t.slots = t.slots[:len(t.slots)-1]
	}
	return v, true
}

// Len returns the number of occupied slots.
func (t *Table[T]) Len() int { return t.n }

// Each visits occupied slots in ID order until fn returns false.
func (t *Table[T]) Each(fn func(id int, v T) bool) {
	for i := range t.slots {
		if !t.slots[i].used {
			continue
		}
		if !fn(i, t.slots[i].val) {
			return
		}
	}
}
