package ws

import (
	"encoding/json"
	"errors"

	"swole.dev/internal/protocol"
	"swole.dev/internal/sim/muscle"
	"swole.dev/internal/sim/world"
)

// Dispatch handles one client message and returns the reply to send.
// Every failure becomes a RESULT with ok=false; nothing here closes the session.
func (s *Server) Dispatch(raw []byte) any {
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		return failure(base, protocol.ErrProtoBadRequest, "malformed json")
	}
	if base.ProtocolVersion != protocol.Version {
		return failure(base, protocol.ErrProtoBadRequest, "bad protocol_version")
	}
	if base.Type == protocol.TypeHello || !s.validate.Known(base.Type) {
		return failure(base, protocol.ErrUnknownType, "unsupported message type")
	}
	if err := s.validate.Validate(base.Type, raw); err != nil {
		return failure(base, protocol.ErrProtoBadRequest, err.Error())
	}

	switch base.Type {
	case protocol.TypeListWorlds:
		return protocol.WorldsMsg{
			Type:            protocol.TypeWorlds,
			ProtocolVersion: protocol.Version,
			Ref:             base.Ref,
			Worlds:          worldRefs(s.reg.Worlds()),
		}

	case protocol.TypeCreateWorld:
		var m protocol.CreateWorldMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return failure(base, protocol.ErrProtoBadRequest, err.Error())
		}
		w, err := s.reg.CreateWorld(m.Name)
		if err != nil {
			return fromError(base, err)
		}
		res := success(base)
		res.WorldID = &w.ID
		return res

	case protocol.TypeRemoveWorld:
		var m protocol.RemoveWorldMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return failure(base, protocol.ErrProtoBadRequest, err.Error())
		}
		if err := s.reg.RemoveWorld(m.WorldID); err != nil {
			return fromError(base, err)
		}
		res := success(base)
		res.WorldID = &m.WorldID
		return res

	case protocol.TypeCreateCharacter:
		var m protocol.CreateCharacterMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return failure(base, protocol.ErrProtoBadRequest, err.Error())
		}
		c, err := s.reg.CreateCharacter(m.WorldID, m.Name)
		if err != nil {
			return fromError(base, err)
		}
		res := success(base)
		res.WorldID = &c.WorldID
		res.CharacterID = &c.ID
		return res

	case protocol.TypeRemoveCharacter:
		var m protocol.RemoveCharacterMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return failure(base, protocol.ErrProtoBadRequest, err.Error())
		}
		if err := s.reg.RemoveCharacter(m.WorldID, m.CharacterID); err != nil {
			return fromError(base, err)
		}
		res := success(base)
		res.WorldID = &m.WorldID
		res.CharacterID = &m.CharacterID
		return res

	case protocol.TypeSetMuscle:
		var m protocol.SetMuscleMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return failure(base, protocol.ErrProtoBadRequest, err.Error())
		}
		g, err := muscle.ParseGroup(m.Group)
		if err != nil {
			return failure(base, protocol.ErrBadRequest, err.Error())
		}
		side, err := muscle.ParseSide(m.Side)
		if err != nil {
			return failure(base, protocol.ErrBadRequest, err.Error())
		}
		if _, err := s.reg.SetMuscle(m.WorldID, m.CharacterID, world.MuscleUpdate{
			Group: g, Side: side, Mass: m.Mass, Flex: m.Flex, Pump: m.Pump,
		}); err != nil {
			return fromError(base, err)
		}
		res := success(base)
		res.WorldID = &m.WorldID
		res.CharacterID = &m.CharacterID
		return res

	case protocol.TypeGetCharacter:
		var m protocol.GetCharacterMsg
		if err := json.Unmarshal(raw, &m); err != nil {
			return failure(base, protocol.ErrProtoBadRequest, err.Error())
		}
		c, err := s.reg.Character(m.WorldID, m.CharacterID)
		if err != nil {
			return fromError(base, err)
		}
		return characterMsg(base.Ref, c)
	}
	return failure(base, protocol.ErrUnknownType, "unsupported message type")
}

func characterMsg(ref string, c world.CharacterInfo) protocol.CharacterMsg {
	out := protocol.CharacterMsg{
		Type:            protocol.TypeCharacter,
		ProtocolVersion: protocol.Version,
		Ref:             ref,
		WorldID:         c.WorldID,
		CharacterID:     c.ID,
		Name:            c.Name,
		Muscles:         make([]protocol.MuscleState, 0, len(c.Muscles)),
	}
	for _, r := range c.Muscles {
		out.Muscles = append(out.Muscles, protocol.MuscleState{
			Group:   r.Group.String(),
			Side:    r.Side.String(),
			MassRaw: r.Mass,
			FlexRaw: r.Flex,
			PumpRaw: r.Pump,
			Mass:    r.Get(muscle.Mass),
			Flex:    r.Get(muscle.Flex),
			Pump:    r.Get(muscle.Pump),
		})
	}
	return out
}

func worldRefs(ws []world.WorldInfo) []protocol.WorldRef {
	out := make([]protocol.WorldRef, 0, len(ws))
	for _, w := range ws {
		out = append(out, protocol.WorldRef{WorldID: w.ID, Name: w.Name, Characters: w.Characters})
	}
	return out
}

func success(base protocol.BaseMessage) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Ref:             base.Ref,
		For:             base.Type,
		OK:              true,
	}
}

func failure(base protocol.BaseMessage, code, msg string) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Ref:             base.Ref,
		For:             base.Type,
		Code:            code,
		Message:         msg,
	}
}

func fromError(base protocol.BaseMessage, err error) protocol.ResultMsg {
	code := protocol.ErrInternal
	switch {
	case errors.Is(err, world.ErrWorldNotFound), errors.Is(err, world.ErrCharacterNotFound):
		code = protocol.ErrNotFound
	case errors.Is(err, world.ErrWorldFull), errors.Is(err, world.ErrRegistryFull):
		code = protocol.ErrFull
	case errors.Is(err, world.ErrBadName):
		code = protocol.ErrBadRequest
	}
	return failure(base, code, err.Error())
}
