package world

import (
	"reflect"
	"testing"

	"swole.dev/internal/sim/muscle"
)

func TestApplyAudit_RollsSnapshotForward(t *testing.T) {
	live := newTestRegistry()
	audit := &memAudit{}
	live.SetAuditLogger(audit)

	w, _ := live.CreateWorld("GYM")
	_, _ = live.CreateCharacter(w.ID, "a")
	snap := live.ExportSnapshot()

	_, _ = live.CreateCharacter(w.ID, "b")
	_, _ = live.SetMuscle(w.ID, 1, MuscleUpdate{Group: muscle.Back, Mass: f64(0.75)})
	_ = live.RemoveCharacter(w.ID, 0)
	_, _ = live.CreateWorld("BEACH")

	restored := newTestRegistry()
	if err := restored.ImportSnapshot(snap); err != nil {
		t.Fatalf("ImportSnapshot: %v", err)
	}
	applied := 0
	for _, e := range audit.entries {
		ok, err := restored.ApplyAudit(e)
		if err != nil {
			t.Fatalf("ApplyAudit seq=%d: %v", e.Seq, err)
		}
		if ok {
			applied++
		}
	}
	if applied != 4 {
		t.Fatalf("applied=%d want 4", applied)
	}

	want := live.ExportSnapshot()
	got := restored.ExportSnapshot()
	if !reflect.DeepEqual(want.Worlds, got.Worlds) || want.Seq != got.Seq {
		t.Fatalf("replayed state differs:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestApplyAudit_DetectsGap(t *testing.T) {
	r := newTestRegistry()
	if _, err := r.ApplyAudit(AuditEntry{Seq: 2, Action: AuditWorldCreate, Name: "X"}); err == nil {
		t.Fatalf("expected gap error")
	}
	if _, err := r.ApplyAudit(AuditEntry{Seq: 1, Action: AuditCharacterCreate, WorldID: 0, CharacterID: 0, Name: "x"}); err == nil {
		t.Fatalf("expected missing world error")
	}
}
