package muscle

import "sort"

// Reading is the stored state of one muscle on one side of the body.
type Reading struct {
	Group Group
	Side  Side

	Mass uint16
	Flex uint16
	Pump uint16
}

func (r Reading) Raw(a Attr) uint16 {
	switch a {
	case Mass:
		return r.Mass
	case Flex:
		return r.Flex
	case Pump:
		return r.Pump
	default:
		return 0
	}
}

func (r *Reading) SetRaw(a Attr, v uint16) {
	switch a {
	case Mass:
		r.Mass = v
	case Flex:
		r.Flex = v
	case Pump:
		r.Pump = v
	}
}

// Get returns the normalized value of a.
func (r Reading) Get(a Attr) float64 { return Decode(a, r.Raw(a)) }

// Set stores a normalized value of a, clamped to storage range.
func (r *Reading) Set(a Attr, v float64) { r.SetRaw(a, Encode(a, v)) }

type Key struct {
	Group Group
	Side  Side
}

// Physique holds every reading of one character.
type Physique struct {
	readings map[Key]Reading
}

func NewPhysique() *Physique {
	return &Physique{readings: map[Key]Reading{}}
}

// Reading returns the stored reading; a missing one is all zero.
func (p *Physique) Reading(g Group, s Side) (Reading, bool) {
	r, ok := p.readings[Key{g, s}]
	if !ok {
		return Reading{Group: g, Side: s}, false
	}
	return r, true
}

func (p *Physique) Put(r Reading) {
	p.readings[Key{r.Group, r.Side}] = r
}

// Update applies fn to the reading for (g, s), creating it if absent.
func (p *Physique) Update(g Group, s Side, fn func(r *Reading)) Reading {
	r, _ := p.Reading(g, s)
	fn(&r)
	p.Put(r)
	return r
}

func (p *Physique) Len() int { return len(p.readings) }

// Readings returns all readings sorted by group then side.
func (p *Physique) Readings() []Reading {
	out := make([]Reading, 0, len(p.readings))
	for _, r := range p.readings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Group != out[j].Group {
			return out[i].Group < out[j].Group
		}
		return out[i].Side < out[j].Side
	})
	return out
}
