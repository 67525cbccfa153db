package combat

import (
	"fmt"
	"strings"
)

// Archetype identifies one of the four fixed unit classes.
type Archetype uint8

const (
	Sniper Archetype = iota
	Commando
	Tank
	Ravager
	archetypeCount // sentinel
)

// Archetypes lists every archetype in table order.
var Archetypes = [archetypeCount]Archetype{Sniper, Commando, Tank, Ravager}

func (a Archetype) String() string {
	switch a {
	case Sniper:
		return "Sniper"
	case Commando:
		return "Commando"
	case Tank:
		return "Tank"
	case Ravager:
		return "Ravager"
	default:
		return fmt.Sprintf("Archetype(%d)", uint8(a))
	}
}

// ParseArchetype accepts an archetype name (case-insensitive) or its initial.
func ParseArchetype(s string) (Archetype, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sniper", "s":
		return Sniper, nil
	case "commando", "c":
		return Commando, nil
	case "tank", "t":
		return Tank, nil
	case "ravager", "r":
		return Ravager, nil
	}
	return 0, fmt.Errorf("unknown archetype %q", s)
}

// UnmarshalText lets archetypes be read straight from YAML and config files.
func (a *Archetype) UnmarshalText(b []byte) error {
	v, err := ParseArchetype(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Archetype) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// TargetClass is the tag attack tables consult for damage modifiers.
type TargetClass uint8

const (
	Infantry TargetClass = iota
	Armored
)

func (c TargetClass) String() string {
	if c == Armored {
		return "armored"
	}
	return "infantry"
}

// Faction is one of the two rosters.
type Faction uint8

const (
	Player Faction = iota
	Opponent
)

func (f Faction) String() string {
	if f == Opponent {
		return "opponent"
	}
	return "player"
}

// Other returns the opposing faction.
func (f Faction) Other() Faction {
	if f == Player {
		return Opponent
	}
	return Player
}

// stats is the fixed per-archetype stat line.
type stats struct {
	hp    int
	armor int
	speed int
	rng   int
	class TargetClass
}

var statTable = [archetypeCount]stats{
	Sniper:   {hp: 150, armor: 20, speed: 2, rng: 8, class: Infantry},
	Commando: {hp: 350, armor: 10, speed: 5, rng: 3, class: Infantry},
	Tank:     {hp: 500, armor: 100, speed: 2, rng: 5, class: Armored},
	Ravager:  {hp: 300, armor: 0, speed: 4, rng: 1, class: Infantry},
}

// Class returns the target class units of this archetype carry.
func (a Archetype) Class() TargetClass { return statTable[a].class }

// Counters reports whether archetype a is a good match-up against b.
// Ravagers and Commandos counter everything, every archetype counters its own
// kind, and Snipers also counter Commandos and Ravagers.
func Counters(a, b Archetype) bool {
	switch {
	case a == Ravager || a == Commando:
		return true
	case a == b:
		return true
	case a == Sniper:
		return b == Commando || b == Ravager
	}
	return false
}
