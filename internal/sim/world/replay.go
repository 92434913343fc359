package world

import (
	"fmt"

	"swole.dev/internal/sim/muscle"
)

// ApplyAudit re-applies a recorded mutation. Entries at or below the current
// Seq are skipped so a snapshot can be rolled forward with the audit log that
// overlaps it. IDs come from the entry, not from allocation.
func (r *Registry) ApplyAudit(e AuditEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Seq <= r.seq {
		return false, nil
	}
	if e.Seq != r.seq+1 {
		return false, fmt.Errorf("audit gap: have seq %d, got %d", r.seq, e.Seq)
	}
	if e.WorldID < 0 || (e.Action == AuditCharacterCreate && e.CharacterID < 0) {
		return false, fmt.Errorf("seq %d: negative id", e.Seq)
	}

	switch e.Action {
	case AuditWorldCreate:
		if _, ok := r.worlds.Get(e.WorldID); ok {
			return false, fmt.Errorf("seq %d: world %d already exists", e.Seq, e.WorldID)
		}
		r.worlds.Put(e.WorldID, newGameWorld(e.WorldID, e.Name))
	case AuditWorldRemove:
		if _, ok := r.worlds.Remove(e.WorldID); !ok {
			return false, fmt.Errorf("seq %d: world %d: %w", e.Seq, e.WorldID, ErrWorldNotFound)
		}
	case AuditCharacterCreate:
		gw, ok := r.worlds.Get(e.WorldID)
		if !ok {
			return false, fmt.Errorf("seq %d: world %d: %w", e.Seq, e.WorldID, ErrWorldNotFound)
		}
		if _, ok := gw.chars.Get(e.CharacterID); ok {
			return false, fmt.Errorf("seq %d: character %d/%d already exists", e.Seq, e.WorldID, e.CharacterID)
		}
		gw.chars.Put(e.CharacterID, newCharacter(e.CharacterID, e.Name))
	case AuditCharacterRemove:
		gw, ok := r.worlds.Get(e.WorldID)
		if !ok {
			return false, fmt.Errorf("seq %d: world %d: %w", e.Seq, e.WorldID, ErrWorldNotFound)
		}
		if _, ok := gw.chars.Remove(e.CharacterID); !ok {
			return false, fmt.Errorf("seq %d: character %d/%d: %w", e.Seq, e.WorldID, e.CharacterID, ErrCharacterNotFound)
		}
	case AuditMuscleSet:
		c, err := r.lookupLocked(e.WorldID, e.CharacterID)
		if err != nil {
			return false, fmt.Errorf("seq %d: %w", e.Seq, err)
		}
		g, err := muscle.ParseGroup(e.Group)
		if err != nil {
			return false, fmt.Errorf("seq %d: %w", e.Seq, err)
		}
		s, err := muscle.ParseSide(e.Side)
		if err != nil {
			return false, fmt.Errorf("seq %d: %w", e.Seq, err)
		}
		c.physique.Put(muscle.Reading{Group: g, Side: s, Mass: e.Mass, Flex: e.Flex, Pump: e.Pump})
	default:
		return false, fmt.Errorf("seq %d: unknown action %q", e.Seq, e.Action)
	}
	r.seq = e.Seq
	return true, nil
}
