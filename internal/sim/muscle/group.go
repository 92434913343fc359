package muscle

import (
	"fmt"
	"strings"
)

type Group uint8

const (
	Chest Group = iota + 1
	Back
	Shoulders
	Biceps
	Triceps
	Forearms
	Abs
	Glutes
	Quads
	Hamstrings
	Calves
	Neck
)

var groupNames = map[Group]string{
	Chest:      "CHEST",
	Back:       "BACK",
	Shoulders:  "SHOULDERS",
	Biceps:     "BICEPS",
	Triceps:    "TRICEPS",
	Forearms:   "FOREARMS",
	Abs:        "ABS",
	Glutes:     "GLUTES",
	Quads:      "QUADS",
	Hamstrings: "HAMSTRINGS",
	Calves:     "CALVES",
	Neck:       "NECK",
}

func (g Group) String() string {
	if s, ok := groupNames[g]; ok {
		return s
	}
	return fmt.Sprintf("GROUP(%d)", uint8(g))
}

func (g Group) Valid() bool {
	_, ok := groupNames[g]
	return ok
}

func ParseGroup(s string) (Group, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for g, name := range groupNames {
		if name == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown muscle group %q", s)
}

type Side uint8

const (
	Center Side = iota
	Left
	Right
)

func (s Side) String() string {
	switch s {
	case Center:
		return "CENTER"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	default:
		return fmt.Sprintf("SIDE(%d)", uint8(s))
	}
}

func (s Side) Valid() bool { return s <= Right }

// ParseSide accepts the side name; empty means CENTER.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "CENTER":
		return Center, nil
	case "LEFT":
		return Left, nil
	case "RIGHT":
		return Right, nil
	default:
		return 0, fmt.Errorf("unknown body side %q", s)
	}
}
