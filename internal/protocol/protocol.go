package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeResult  = "RESULT"

	TypeListWorlds      = "LIST_WORLDS"
	TypeWorlds          = "WORLDS"
	TypeCreateWorld     = "CREATE_WORLD"
	TypeRemoveWorld     = "REMOVE_WORLD"
	TypeCreateCharacter = "CREATE_CHARACTER"
	TypeRemoveCharacter = "REMOVE_CHARACTER"
	TypeSetMuscle       = "SET_MUSCLE"
	TypeGetCharacter    = "GET_CHARACTER"
	TypeCharacter       = "CHARACTER"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	Ref             string `json:"ref,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
