package combat

import "fmt"

const (
	// MaxBleed caps bleed stacks on a unit.
	MaxBleed = 3
	// BleedDamage is the fixed damage one bleed stack deals per tick.
	BleedDamage = 5
)

// Unit is a single combatant. A unit's position is owned by the world: only
// world placement calls SetPosition, so a deployed unit's position always
// matches the occupant of exactly one cell.
type Unit struct {
	label     string
	archetype Archetype
	faction   Faction

	hp    int
	maxHP int
	armor int
	speed int
	rng   int

	x, y     int
	deployed bool

	cooldown int // heavy weapon recharge, in half-round ticks
	roared   bool
	bleed    int
	alive    bool
}

// NewUnit creates a unit with its archetype's starting stats.
func NewUnit(a Archetype, f Faction) *Unit {
	st := statTable[a]
	return &Unit{
		archetype: a,
		faction:   f,
		hp:        st.hp,
		maxHP:     st.hp,
		armor:     st.armor,
		speed:     st.speed,
		rng:       st.rng,
		alive:     true,
		x:         -1,
		y:         -1,
	}
}

func (u *Unit) Archetype() Archetype  { return u.archetype }
func (u *Unit) Class() TargetClass    { return u.archetype.Class() }
func (u *Unit) Faction() Faction      { return u.faction }
func (u *Unit) HP() int               { return u.hp }
func (u *Unit) MaxHP() int            { return u.maxHP }
func (u *Unit) Armor() int            { return u.armor }
func (u *Unit) Speed() int            { return u.speed }
func (u *Unit) Range() int            { return u.rng }
func (u *Unit) Bleed() int            { return u.bleed }
func (u *Unit) Alive() bool           { return u.alive }
func (u *Unit) Cooldown() int         { return u.cooldown }
func (u *Unit) RoarUsed() bool        { return u.roared }
func (u *Unit) Position() (int, int)  { return u.x, u.y }
func (u *Unit) Deployed() bool        { return u.deployed }
func (u *Unit) SetLabel(label string) { u.label = label }

// Label returns the short display name, e.g. "P0" or "O3".
func (u *Unit) Label() string {
	if u.label == "" {
		return u.archetype.String()
	}
	return u.label
}

// Wounded reports whether the unit is below its maximum HP.
func (u *Unit) Wounded() bool { return u.hp < u.maxHP }

// SetPosition records the unit's cell. deployed=false marks it as off the grid.
func (u *Unit) SetPosition(x, y int, deployed bool) {
	if !deployed {
		x, y = -1, -1
	}
	u.x, u.y, u.deployed = x, y, deployed
}

// Defend subtracts damage from HP. Negative damage counts as zero.
func (u *Unit) Defend(amount int) {
	if amount < 0 {
		amount = 0
	}
	u.hp -= amount
	u.updateStatus()
}

func (u *Unit) updateStatus() {
	if u.hp < 1 {
		u.hp = 0
		u.bleed = 0
		u.alive = false
	}
}

// ApplyBleed adds stacks to a unit that is below the cap. Returns false when
// the unit is already at the cap (or dead) and nothing changed.
func (u *Unit) ApplyBleed(stacks int) bool {
	if !u.alive || stacks <= 0 || u.bleed >= MaxBleed {
		return false
	}
	u.bleed = min(u.bleed+stacks, MaxBleed)
	return true
}

// EndOfRoundTick resolves one bleed stack and advances the heavy weapon
// cooldown by one half-round. Returns the bleed damage taken.
func (u *Unit) EndOfRoundTick() int {
	dmg := 0
	if u.bleed > 0 && u.alive {
		dmg = BleedDamage
		u.hp -= BleedDamage
		u.bleed--
		u.updateStatus()
	}
	if u.cooldown > 0 {
		u.cooldown--
	}
	return dmg
}

// Describe returns a one-line status summary.
func (u *Unit) Describe() string {
	s := fmt.Sprintf("%s %s | HP: %d/%d | Armor: %d | Range: %d | Speed: %d | Bleeding: %d",
		u.Label(), u.archetype, u.hp, u.maxHP, u.armor, u.rng, u.speed, u.bleed)
	if name := heavyWeaponName(u.archetype); name != "" {
		s += fmt.Sprintf(" | %s cooldown: %d", name, u.cooldown/2)
	}
	return s
}
