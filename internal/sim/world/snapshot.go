package world

import (
	"fmt"
	"time"

	"swole.dev/internal/persistence/snapshot"
	"swole.dev/internal/sim/ids"
	"swole.dev/internal/sim/muscle"
)

func (r *Registry) ExportSnapshot() snapshot.SnapshotV1 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := snapshot.SnapshotV1{Seq: r.seq}
	r.worlds.Each(func(_ int, gw *GameWorld) bool {
		wv := snapshot.WorldV1{ID: gw.ID, Name: gw.Name}
		gw.chars.Each(func(_ int, c *Character) bool {
			cv := snapshot.CharacterV1{ID: c.ID, Name: c.Name}
			for _, rd := range c.physique.Readings() {
				cv.Muscles = append(cv.Muscles, snapshot.MuscleV1{
					Group: rd.Group.String(),
					Side:  rd.Side.String(),
					Mass:  rd.Mass,
					Flex:  rd.Flex,
					Pump:  rd.Pump,
				})
			}
			wv.Characters = append(wv.Characters, cv)
			return true
		})
		snap.Worlds = append(snap.Worlds, wv)
		return true
	})
	snap.Header = snapshot.Header{
		Version:   snapshot.Version,
		Seq:       snap.Seq,
		CreatedAt: r.now().UTC().Format(time.RFC3339),
		Worlds:    len(snap.Worlds),
	}
	return snap
}

// ImportSnapshot replaces the registry contents. IDs are restored in place,
// so gaps left by removals before the snapshot are reused afterwards.
func (r *Registry) ImportSnapshot(snap snapshot.SnapshotV1) error {
	var worlds ids.Table[*GameWorld]
	for _, wv := range snap.Worlds {
		if wv.ID < 0 {
			return fmt.Errorf("world %q: negative id %d", wv.Name, wv.ID)
		}
		if _, dup := worlds.Get(wv.ID); dup {
			return fmt.Errorf("duplicate world id %d", wv.ID)
		}
		gw := newGameWorld(wv.ID, wv.Name)
		for _, cv := range wv.Characters {
			if cv.ID < 0 {
				return fmt.Errorf("character %q: negative id %d", cv.Name, cv.ID)
			}
			if _, dup := gw.chars.Get(cv.ID); dup {
				return fmt.Errorf("world %d: duplicate character id %d", wv.ID, cv.ID)
			}
			c := newCharacter(cv.ID, cv.Name)
			for _, mv := range cv.Muscles {
				g, err := muscle.ParseGroup(mv.Group)
				if err != nil {
					return fmt.Errorf("character %d/%d: %w", wv.ID, cv.ID, err)
				}
				s, err := muscle.ParseSide(mv.Side)
				if err != nil {
					return fmt.Errorf("character %d/%d: %w", wv.ID, cv.ID, err)
				}
				c.physique.Put(muscle.Reading{Group: g, Side: s, Mass: mv.Mass, Flex: mv.Flex, Pump: mv.Pump})
			}
			gw.chars.Put(cv.ID, c)
		}
		worlds.Put(wv.ID, gw)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.worlds = worlds
	r.seq = snap.Seq
	return nil
}
