package ids

import "testing"

type ent struct{ id int }

func (e ent) EntityID() int { return e.id }

func seqOf(idList ...int) []ent {
	out := make([]ent, 0, len(idList))
	for _, id := range idList {
		out = append(out, ent{id: id})
	}
	return out
}

func TestNextID_DenseReturnsCount(t *testing.T) {
	for n := 0; n < 6; n++ {
		seq := make([]ent, 0, n)
		for i := 0; i < n; i++ {
			seq = append(seq, ent{id: i})
		}
		if got := NextID(seq); got != n {
			t.Fatalf("n=%d: NextID=%d", n, got)
		}
	}
}

func TestNextID_ReturnsFirstHole(t *testing.T) {
	tests := []struct {
		seq  []ent
		want int
	}{
		{seqOf(1, 2, 3), 0},
		{seqOf(0, 2, 3), 1},
		{seqOf(0, 1, 3), 2},
		{seqOf(0, 1, 2, 5, 6), 3},
	}
	for _, tc := range tests {
		if got := NextID(tc.seq); got != tc.want {
			t.Fatalf("NextID(%v)=%d want %d", tc.seq, got, tc.want)
		}
	}
}

func TestRemoveThenCreateReusesHole(t *testing.T) {
	var seq []ent
	for i := 0; i < 5; i++ {
		var e ent
		seq, e = Create(seq, func(id int) ent { return ent{id: id} })
		if e.id != i {
			t.Fatalf("create %d got id %d", i, e.id)
		}
	}
	seq, ok := Remove(seq, 2)
	if !ok {
		t.Fatalf("remove 2 failed")
	}
	if got := NextID(seq); got != 2 {
		t.Fatalf("NextID after remove = %d, want 2", got)
	}
	seq, e := Create(seq, func(id int) ent { return ent{id: id} })
	if e.id != 2 {
		t.Fatalf("reused id = %d, want 2", e.id)
	}
	for i, x := range seq {
		if x.id != i {
			t.Fatalf("seq not ordered after insert: %v", seq)
		}
	}
	if _, ok := Remove(seq, 99); ok {
		t.Fatalf("remove of unknown id reported ok")
	}
}

func TestInsertAppendsAtLength(t *testing.T) {
	seq := Insert(seqOf(0, 1), ent{id: 2})
	if len(seq) != 3 || seq[2].id != 2 {
		t.Fatalf("unexpected seq: %v", seq)
	}
}

type pent struct{ id int }

func (p *pent) EntityID() int { return p.id }

func TestNextID_NilEntryIsHole(t *testing.T) {
	tests := []struct {
		name string
		seq  []Entity
		want int
	}{
		{"nil interface", []Entity{&pent{0}, nil, &pent{2}}, 1},
		{"typed nil pointer", []Entity{&pent{0}, &pent{1}, (*pent)(nil)}, 2},
		{"leading nil", []Entity{nil, &pent{1}}, 0},
	}
	for _, tc := range tests {
		if got := NextID(tc.seq); got != tc.want {
			t.Fatalf("%s: NextID=%d want %d", tc.name, got, tc.want)
		}
	}

	ptrs := []*pent{{0}, nil, {2}}
	if got := NextID(ptrs); got != 1 {
		t.Fatalf("[]*pent: NextID=%d want 1", got)
	}
}

func TestCreate_FillsNilSlot(t *testing.T) {
	seq := []*pent{{0}, nil, {2}}
	seq, e := Create(seq, func(id int) *pent { return &pent{id} })
	if e.id != 1 || len(seq) != 3 || seq[1] != e {
		t.Fatalf("Create into nil slot: id=%d seq=%v", e.id, seq)
	}
	if got := NextID(seq); got != 3 {
		t.Fatalf("NextID after fill = %d, want 3", got)
	}
	if seq, ok := Remove(append(seq, nil), 2); !ok || len(seq) != 3 {
		t.Fatalf("Remove past a nil entry: ok=%v seq=%v", ok, seq)
	}
}
