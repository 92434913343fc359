package world

const (
	AuditWorldCreate     = "WORLD_CREATE"
	AuditWorldRemove     = "WORLD_REMOVE"
	AuditCharacterCreate = "CHARACTER_CREATE"
	AuditCharacterRemove = "CHARACTER_REMOVE"
	AuditMuscleSet       = "MUSCLE_SET"
)

type AuditEntry struct {
	Seq         uint64 `json:"seq"`
	Time        string `json:"time"`
	Action      string `json:"action"`
	WorldID     int    `json:"world_id"`
	CharacterID int    `json:"character_id"`
	Name        string `json:"name,omitempty"`

	// MUSCLE_SET only: the stored values after the update.
	Group string `json:"group,omitempty"`
	Side  string `json:"side,omitempty"`
	Mass  uint16 `json:"mass,omitempty"`
	Flex  uint16 `json:"flex,omitempty"`
	Pump  uint16 `json:"pump,omitempty"`
}
