package combat

import (
	"errors"
	"fmt"
)

// RosterCapacity is the maximum number of units a faction may field.
const RosterCapacity = 5

// ErrRosterFull is returned when adding a sixth unit to a roster.
var ErrRosterFull = errors.New("roster is full")

// Roster is the ordered list of a faction's living units.
type Roster struct {
	faction Faction
	units   []*Unit
	added   int // labels are never reused, even after deaths
}

// NewRoster creates an empty roster for faction f.
func NewRoster(f Faction) *Roster {
	return &Roster{faction: f, units: make([]*Unit, 0, RosterCapacity)}
}

func (r *Roster) Faction() Faction { return r.faction }
func (r *Roster) Len() int         { return len(r.units) }
func (r *Roster) Full() bool       { return len(r.units) >= RosterCapacity }

// Units returns the roster in insertion order. Callers must not modify it.
func (r *Roster) Units() []*Unit { return r.units }

// Add appends u and assigns its label ("P0", "O1", ...).
func (r *Roster) Add(u *Unit) error {
	if u.faction != r.faction {
		return fmt.Errorf("add %s to %s roster: faction mismatch", u.Label(), r.faction)
	}
	if r.Full() {
		return ErrRosterFull
	}
	prefix := "P"
	if r.faction == Opponent {
		prefix = "O"
	}
	u.SetLabel(fmt.Sprintf("%s%d", prefix, r.added))
	r.added++
	r.units = append(r.units, u)
	return nil
}

// Remove drops u from the roster. Returns false if u was not a member.
func (r *Roster) Remove(u *Unit) bool {
	for i, m := range r.units {
		if m == u {
			r.units = append(r.units[:i], r.units[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether u is in the roster.
func (r *Roster) Contains(u *Unit) bool {
	for _, m := range r.units {
		if m == u {
			return true
		}
	}
	return false
}
