package muscle

import "math"

type Attr uint8

const (
	Mass Attr = iota + 1
	Flex
	Pump
)

// Full-scale thresholds: the stored value that decodes to 1.0.
// Anything above decodes past 1.0 until storage saturates.
const (
	MassFull = 65535 / 8
	FlexFull = 43690
	PumpFull = 65535
)

const maxStored = math.MaxUint16

func (a Attr) String() string {
	switch a {
	case Mass:
		return "mass"
	case Flex:
		return "flex"
	case Pump:
		return "pump"
	default:
		return "unknown"
	}
}

// Threshold returns the full-scale value for a, or 0 for an unknown attribute.
func Threshold(a Attr) float64 {
	switch a {
	case Mass:
		return MassFull
	case Flex:
		return FlexFull
	case Pump:
		return PumpFull
	default:
		return 0
	}
}

// Encode quantizes a normalized value. Out-of-range input is clamped, never rejected.
func Encode(a Attr, v float64) uint16 {
	th := Threshold(a)
	if th == 0 || math.IsNaN(v) {
		return 0
	}
	x := math.Round(v * th)
	if x <= 0 {
		return 0
	}
	if x >= maxStored {
		return maxStored
	}
	return uint16(x)
}

func Decode(a Attr, s uint16) float64 {
	th := Threshold(a)
	if th == 0 {
		return 0
	}
	return float64(s) / th
}

// Step is the normalized size of one quantization step for a.
func Step(a Attr) float64 {
	th := Threshold(a)
	if th == 0 {
		return 0
	}
	return 1 / th
}
