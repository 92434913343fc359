package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	SessionID       string     `json:"session_id"`
	Worlds          []WorldRef `json:"worlds"`
}

type WorldRef struct {
	WorldID    int    `json:"world_id"`
	Name       string `json:"name"`
	Characters int    `json:"characters"`
}

type ListWorldsMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref,omitempty"`
}

type WorldsMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Ref             string     `json:"ref,omitempty"`
	Worlds          []WorldRef `json:"worlds"`
}

type CreateWorldMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref,omitempty"`
	Name            string `json:"name"`
}

type RemoveWorldMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref,omitempty"`
	WorldID         int    `json:"world_id"`
}

type CreateCharacterMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref,omitempty"`
	WorldID         int    `json:"world_id"`
	Name            string `json:"name"`
}

type RemoveCharacterMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref,omitempty"`
	WorldID         int    `json:"world_id"`
	CharacterID     int    `json:"character_id"`
}

// SET_MUSCLE values are normalized; omitted attributes keep their stored value.
type SetMuscleMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	Ref             string   `json:"ref,omitempty"`
	WorldID         int      `json:"world_id"`
	CharacterID     int      `json:"character_id"`
	Group           string   `json:"group"`
	Side            string   `json:"side,omitempty"`
	Mass            *float64 `json:"mass,omitempty"`
	Flex            *float64 `json:"flex,omitempty"`
	Pump            *float64 `json:"pump,omitempty"`
}

type GetCharacterMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref,omitempty"`
	WorldID         int    `json:"world_id"`
	CharacterID     int    `json:"character_id"`
}

// RESULT (server -> client) answers every mutating request.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Ref             string `json:"ref,omitempty"`
	For             string `json:"for"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	WorldID         *int   `json:"world_id,omitempty"`
	CharacterID     *int   `json:"character_id,omitempty"`
}

type CharacterMsg struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	Ref             string        `json:"ref,omitempty"`
	WorldID         int           `json:"world_id"`
	CharacterID     int           `json:"character_id"`
	Name            string        `json:"name"`
	Muscles         []MuscleState `json:"muscles"`
}

// MuscleState reports both the stored fixed-point values and their normalized reading.
type MuscleState struct {
	Group   string  `json:"group"`
	Side    string  `json:"side"`
	MassRaw uint16  `json:"mass_raw"`
	FlexRaw uint16  `json:"flex_raw"`
	PumpRaw uint16  `json:"pump_raw"`
	Mass    float64 `json:"mass"`
	Flex    float64 `json:"flex"`
	Pump    float64 `json:"pump"`
}
