package world

import (
	"errors"
	"sync"
	"testing"

	"swole.dev/internal/sim/muscle"
)

type memAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (m *memAudit) WriteAudit(e AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func f64(v float64) *float64 { return &v }

func newTestRegistry() *Registry {
	return NewRegistry(Config{MaxWorlds: 4, MaxCharactersPerWorld: 3, MaxNameLen: 8})
}

func TestRegistry_CharacterIDsReuseSmallestHole(t *testing.T) {
	r := newTestRegistry()
	w, err := r.CreateWorld("GYM")
	if err != nil {
		t.Fatalf("CreateWorld: %v", err)
	}
	for i, name := range []string{"a", "b", "c"} {
		c, err := r.CreateCharacter(w.ID, name)
		if err != nil {
			t.Fatalf("CreateCharacter %s: %v", name, err)
		}
		if c.ID != i {
			t.Fatalf("character %s id=%d want %d", name, c.ID, i)
		}
	}
	if _, err := r.CreateCharacter(w.ID, "d"); !errors.Is(err, ErrWorldFull) {
		t.Fatalf("expected ErrWorldFull, got %v", err)
	}
	if err := r.RemoveCharacter(w.ID, 1); err != nil {
		t.Fatalf("RemoveCharacter: %v", err)
	}
	info, _ := r.World(w.ID)
	if info.NextCharacterID != 1 || info.Characters != 2 {
		t.Fatalf("world info after remove: %+v", info)
	}
	c, err := r.CreateCharacter(w.ID, "e")
	if err != nil {
		t.Fatalf("CreateCharacter e: %v", err)
	}
	if c.ID != 1 {
		t.Fatalf("reused id=%d want 1", c.ID)
	}
	list, _ := r.Characters(w.ID)
	if len(list) != 3 || list[1].Name != "e" {
		t.Fatalf("characters: %+v", list)
	}
}

func TestRegistry_WorldIDs(t *testing.T) {
	r := newTestRegistry()
	for _, n := range []string{"A", "B", "C"} {
		if _, err := r.CreateWorld(n); err != nil {
			t.Fatalf("CreateWorld %s: %v", n, err)
		}
	}
	if err := r.RemoveWorld(0); err != nil {
		t.Fatalf("RemoveWorld: %v", err)
	}
	w, err := r.CreateWorld("D")
	if err != nil || w.ID != 0 {
		t.Fatalf("CreateWorld D: id=%d err=%v", w.ID, err)
	}
	if _, err := r.CreateWorld("E"); err != nil {
		t.Fatalf("CreateWorld E: %v", err)
	}
	if _, err := r.CreateWorld("F"); !errors.Is(err, ErrRegistryFull) {
		t.Fatalf("expected ErrRegistryFull, got %v", err)
	}
	if err := r.RemoveWorld(42); !errors.Is(err, ErrWorldNotFound) {
		t.Fatalf("expected ErrWorldNotFound, got %v", err)
	}
	ws := r.Worlds()
	if len(ws) != 4 || ws[0].Name != "D" || ws[3].Name != "E" {
		t.Fatalf("worlds: %+v", ws)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.CreateWorld("   "); !errors.Is(err, ErrBadName) {
		t.Fatalf("expected ErrBadName for blank, got %v", err)
	}
	if _, err := r.CreateWorld("waytoolongname"); !errors.Is(err, ErrBadName) {
		t.Fatalf("expected ErrBadName for long, got %v", err)
	}
	w, _ := r.CreateWorld(" GYM ")
	if w.Name != "GYM" {
		t.Fatalf("name not trimmed: %q", w.Name)
	}
}

func TestRegistry_SetMuscle(t *testing.T) {
	r := newTestRegistry()
	audit := &memAudit{}
	r.SetAuditLogger(audit)

	w, _ := r.CreateWorld("GYM")
	c, _ := r.CreateCharacter(w.ID, "arnold")

	rd, err := r.SetMuscle(w.ID, c.ID, MuscleUpdate{Group: muscle.Biceps, Side: muscle.Left, Mass: f64(1), Pump: f64(2)})
	if err != nil {
		t.Fatalf("SetMuscle: %v", err)
	}
	if rd.Mass != 8191 || rd.Pump != 65535 || rd.Flex != 0 {
		t.Fatalf("reading: %+v", rd)
	}
	rd, err = r.SetMuscle(w.ID, c.ID, MuscleUpdate{Group: muscle.Biceps, Side: muscle.Left, Flex: f64(1)})
	if err != nil {
		t.Fatalf("SetMuscle flex: %v", err)
	}
	if rd.Mass != 8191 || rd.Flex != 43690 {
		t.Fatalf("partial update clobbered values: %+v", rd)
	}
	got, err := r.Muscle(w.ID, c.ID, muscle.Biceps, muscle.Left)
	if err != nil || got != rd {
		t.Fatalf("Muscle: %+v err=%v", got, err)
	}
	if _, err := r.SetMuscle(w.ID, 9, MuscleUpdate{Group: muscle.Chest}); !errors.Is(err, ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
	if _, err := r.SetMuscle(w.ID, c.ID, MuscleUpdate{Group: muscle.Group(0)}); !errors.Is(err, ErrBadName) {
		t.Fatalf("expected ErrBadName for group 0, got %v", err)
	}

	if len(audit.entries) != 4 {
		t.Fatalf("audit entries=%d want 4", len(audit.entries))
	}
	last := audit.entries[3]
	if last.Action != AuditMuscleSet || last.Group != "BICEPS" || last.Side != "LEFT" || last.Flex != 43690 || last.Seq != 4 {
		t.Fatalf("last audit: %+v", last)
	}
	if r.Seq() != 4 {
		t.Fatalf("Seq=%d", r.Seq())
	}
}

func TestRegistry_SnapshotRoundTripKeepsHoles(t *testing.T) {
	r := newTestRegistry()
	w, _ := r.CreateWorld("GYM")
	for _, n := range []string{"a", "b", "c"} {
		_, _ = r.CreateCharacter(w.ID, n)
	}
	_, _ = r.SetMuscle(w.ID, 2, MuscleUpdate{Group: muscle.Calves, Side: muscle.Right, Mass: f64(0.5)})
	_ = r.RemoveCharacter(w.ID, 1)

	snap := r.ExportSnapshot()
	if snap.Header.Worlds != 1 || snap.CharacterCount() != 2 {
		t.Fatalf("snapshot: %+v", snap)
	}

	r2 := newTestRegistry()
	if err := r2.ImportSnapshot(snap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	if r2.Seq() != r.Seq() {
		t.Fatalf("seq %d != %d", r2.Seq(), r.Seq())
	}
	got, err := r2.Muscle(w.ID, 2, muscle.Calves, muscle.Right)
	if err != nil || got.Mass != muscle.Encode(muscle.Mass, 0.5) {
		t.Fatalf("restored muscle: %+v err=%v", got, err)
	}
	c, err := r2.CreateCharacter(w.ID, "d")
	if err != nil || c.ID != 1 {
		t.Fatalf("hole not reused after import: id=%d err=%v", c.ID, err)
	}
}

func TestRegistry_ImportRejectsDuplicates(t *testing.T) {
	r := newTestRegistry()
	w, _ := r.CreateWorld("GYM")
	_, _ = r.CreateCharacter(w.ID, "a")
	snap := r.ExportSnapshot()
	snap.Worlds[0].Characters = append(snap.Worlds[0].Characters, snap.Worlds[0].Characters[0])
	if err := newTestRegistry().ImportSnapshot(snap); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}
