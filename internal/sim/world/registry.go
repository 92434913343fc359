package world

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"swole.dev/internal/sim/ids"
	"swole.dev/internal/sim/muscle"
)

var (
	ErrWorldNotFound     = errors.New("world not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrRegistryFull      = errors.New("registry full")
	ErrWorldFull         = errors.New("world full")
	ErrBadName           = errors.New("bad name")
)

type Config struct {
	MaxWorlds             int
	MaxCharactersPerWorld int
	MaxNameLen            int
}

type AuditLogger interface {
	WriteAudit(entry AuditEntry) error
}

// Registry owns every GameWorld and, through them, every Character.
// World and character IDs are both allocated smallest-hole first.
type Registry struct {
	cfg Config

	mu     sync.RWMutex
	worlds ids.Table[*GameWorld]
	seq    uint64

	audit AuditLogger
	now   func() time.Time
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, now: time.Now}
}

func (r *Registry) SetAuditLogger(l AuditLogger) {
	r.mu.Lock()
	r.audit = l
	r.mu.Unlock()
}

// Seq returns the number of mutations applied so far.
func (r *Registry) Seq() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seq
}

func (r *Registry) checkName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty", ErrBadName)
	}
	if r.cfg.MaxNameLen > 0 && len(name) > r.cfg.MaxNameLen {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrBadName, r.cfg.MaxNameLen)
	}
	return name, nil
}

func (r *Registry) CreateWorld(name string) (WorldInfo, error) {
	name, err := r.checkName(name)
	if err != nil {
		return WorldInfo{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.MaxWorlds > 0 && r.worlds.Len() >= r.cfg.MaxWorlds {
		return WorldInfo{}, ErrRegistryFull
	}
	_, gw := r.worlds.Create(func(id int) *GameWorld { return newGameWorld(id, name) })
	r.record(AuditEntry{Action: AuditWorldCreate, WorldID: gw.ID, CharacterID: -1, Name: name})
	return gw.info(), nil
}

func (r *Registry) RemoveWorld(worldID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	gw, ok := r.worlds.Remove(worldID)
	if !ok {
		return fmt.Errorf("world %d: %w", worldID, ErrWorldNotFound)
	}
	r.record(AuditEntry{Action: AuditWorldRemove, WorldID: worldID, CharacterID: -1, Name: gw.Name})
	return nil
}

func (r *Registry) World(worldID int) (WorldInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gw, ok := r.worlds.Get(worldID)
	if !ok {
		return WorldInfo{}, fmt.Errorf("world %d: %w", worldID, ErrWorldNotFound)
	}
	return gw.info(), nil
}

// Worlds lists every world in ID order.
func (r *Registry) Worlds() []WorldInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]WorldInfo, 0, r.worlds.Len())
	r.worlds.Each(func(_ int, gw *GameWorld) bool {
		out = append(out, gw.info())
		return true
	})
	return out
}

func (r *Registry) CreateCharacter(worldID int, name string) (CharacterInfo, error) {
	name, err := r.checkName(name)
	if err != nil {
		return CharacterInfo{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	gw, ok := r.worlds.Get(worldID)
	if !ok {
		return CharacterInfo{}, fmt.Errorf("world %d: %w", worldID, ErrWorldNotFound)
	}
	if r.cfg.MaxCharactersPerWorld > 0 && gw.chars.Len() >= r.cfg.MaxCharactersPerWorld {
		return CharacterInfo{}, fmt.Errorf("world %d: %w", worldID, ErrWorldFull)
	}
	c := gw.createCharacter(name)
	r.record(AuditEntry{Action: AuditCharacterCreate, WorldID: worldID, CharacterID: c.ID, Name: name})
	return c.info(worldID), nil
}

func (r *Registry) RemoveCharacter(worldID, charID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	gw, ok := r.worlds.Get(worldID)
	if !ok {
		return fmt.Errorf("world %d: %w", worldID, ErrWorldNotFound)
	}
	c, ok := gw.chars.Remove(charID)
	if !ok {
		return fmt.Errorf("character %d/%d: %w", worldID, charID, ErrCharacterNotFound)
	}
	r.record(AuditEntry{Action: AuditCharacterRemove, WorldID: worldID, CharacterID: charID, Name: c.Name})
	return nil
}

func (r *Registry) Character(worldID, charID int) (CharacterInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, err := r.lookupLocked(worldID, charID)
	if err != nil {
		return CharacterInfo{}, err
	}
	return c.info(worldID), nil
}

func (r *Registry) Characters(worldID int) ([]CharacterInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gw, ok := r.worlds.Get(worldID)
	if !ok {
		return nil, fmt.Errorf("world %d: %w", worldID, ErrWorldNotFound)
	}
	out := make([]CharacterInfo, 0, gw.chars.Len())
	gw.chars.Each(func(_ int, c *Character) bool {
		out = append(out, c.info(worldID))
		return true
	})
	return out, nil
}

// MuscleUpdate carries normalized values; nil fields are left unchanged.
type MuscleUpdate struct {
	Group muscle.Group
	Side  muscle.Side
	Mass  *float64
	Flex  *float64
	Pump  *float64
}

// SetMuscle applies u to one reading of a character and returns the stored result.
func (r *Registry) SetMuscle(worldID, charID int, u MuscleUpdate) (muscle.Reading, error) {
	if !u.Group.Valid() {
		return muscle.Reading{}, fmt.Errorf("muscle group %d: %w", u.Group, ErrBadName)
	}
	if !u.Side.Valid() {
		return muscle.Reading{}, fmt.Errorf("body side %d: %w", u.Side, ErrBadName)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, err := r.lookupLocked(worldID, charID)
	if err != nil {
		return muscle.Reading{}, err
	}
	rd := c.physique.Update(u.Group, u.Side, func(rd *muscle.Reading) {
		if u.Mass != nil {
			rd.Set(muscle.Mass, *u.Mass)
		}
		if u.Flex != nil {
			rd.Set(muscle.Flex, *u.Flex)
		}
		if u.Pump != nil {
			rd.Set(muscle.Pump, *u.Pump)
		}
	})
	r.record(AuditEntry{
		Action:      AuditMuscleSet,
		WorldID:     worldID,
		CharacterID: charID,
		Group:       rd.Group.String(),
		Side:        rd.Side.String(),
		Mass:        rd.Mass,
		Flex:        rd.Flex,
		Pump:        rd.Pump,
	})
	return rd, nil
}

func (r *Registry) Muscle(worldID, charID int, g muscle.Group, s muscle.Side) (muscle.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, err := r.lookupLocked(worldID, charID)
	if err != nil {
		return muscle.Reading{}, err
	}
	rd, _ := c.physique.Reading(g, s)
	return rd, nil
}

func (r *Registry) lookupLocked(worldID, charID int) (*Character, error) {
	gw, ok := r.worlds.Get(worldID)
	if !ok {
		return nil, fmt.Errorf("world %d: %w", worldID, ErrWorldNotFound)
	}
	c, ok := gw.chars.Get(charID)
	if !ok {
		return nil, fmt.Errorf("character %d/%d: %w", worldID, charID, ErrCharacterNotFound)
	}
	return c, nil
}

// record must be called with mu held.
func (r *Registry) record(e AuditEntry) {
	r.seq++
	if r.audit == nil {
		return
	}
	e.Seq = r.seq
	e.Time = r.now().UTC().Format(time.RFC3339Nano)
	_ = r.audit.WriteAudit(e)
}
