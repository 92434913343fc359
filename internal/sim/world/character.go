package world

import (
	"swole.dev/internal/sim/ids"
	"swole.dev/internal/sim/muscle"
)

type GameWorld struct {
	ID   int
	Name string

	chars ids.Table[*Character]
}

func newGameWorld(id int, name string) *GameWorld {
	return &GameWorld{ID: id, Name: name}
}

func (gw *GameWorld) createCharacter(name string) *Character {
	_, c := gw.chars.Create(func(id int) *Character { return newCharacter(id, name) })
	return c
}

func (gw *GameWorld) info() WorldInfo {
	return WorldInfo{ID: gw.ID, Name: gw.Name, Characters: gw.chars.Len(), NextCharacterID: gw.chars.NextID()}
}

// Character IDs are unique within their world and never change.
type Character struct {
	ID   int
	Name string

	physique *muscle.Physique
}

func newCharacter(id int, name string) *Character {
	return &Character{ID: id, Name: name, physique: muscle.NewPhysique()}
}

func (c *Character) info(worldID int) CharacterInfo {
	return CharacterInfo{WorldID: worldID, ID: c.ID, Name: c.Name, Muscles: c.physique.Readings()}
}

// WorldInfo and CharacterInfo are copies safe to hold outside the registry lock.
type WorldInfo struct {
	ID              int
	Name            string
	Characters      int
	NextCharacterID int
}

type CharacterInfo struct {
	WorldID int
	ID      int
	Name    string
	Muscles []muscle.Reading
}
