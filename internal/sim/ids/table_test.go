package ids

import "testing"

func TestTable_CreateRemoveReuse(t *testing.T) {
	var tb Table[string]
	for i := 0; i < 4; i++ {
		id, _ := tb.Create(func(id int) string { return "c" })
		if id != i {
			t.Fatalf("create #%d got id %d", i, id)
		}
	}
	if _, ok := tb.Remove(1); !ok {
		t.Fatalf("remove 1")
	}
	if _, ok := tb.Remove(2); !ok {
		t.Fatalf("remove 2")
	}
	if tb.Len() != 2 {
		t.Fatalf("len=%d want 2", tb.Len())
	}
	if got := tb.NextID(); got != 1 {
		t.Fatalf("NextID=%d want 1", got)
	}
	id, _ := tb.Create(func(id int) string { return "d" })
	if id != 1 {
		t.Fatalf("reused id=%d want 1", id)
	}
	if got := tb.NextID(); got != 2 {
		t.Fatalf("NextID=%d want 2", got)
	}
	if _, ok := tb.Get(2); ok {
		t.Fatalf("vacant slot reported occupied")
	}
}

func TestTable_RemoveTrimsTail(t *testing.T) {
	var tb Table[int]
	tb.Put(0, 10)
	tb.Put(3, 13)
	if got := tb.NextID(); got != 1 {
		t.Fatalf("NextID=%d want 1", got)
	}
	tb.Remove(3)
	tb.Remove(0)
	if got := tb.NextID(); got != 0 {
		t.Fatalf("NextID on empty=%d want 0", got)
	}
	if tb.Len() != 0 {
		t.Fatalf("len=%d", tb.Len())
	}
}

func TestTable_EachInIDOrder(t *testing.T) {
	var tb Table[int]
	tb.Put(2, 2)
	tb.Put(0, 0)
	tb.Put(5, 5)
	var got []int
	tb.Each(func(id int, v int) bool {
		got = append(got, id)
		return true
	})
	if len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 5 {
		t.Fatalf("order=%v", got)
	}
}
