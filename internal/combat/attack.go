package combat

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// ErrIllegalAttack is returned when an attack id is not in the attacker's
// table or its governing cooldown has not elapsed. No state changes.
var ErrIllegalAttack = errors.New("illegal attack")

// AttackError carries the user-facing reason an attack was rejected.
type AttackError struct {
	Unit   string
	ID     int
	Reason string
}

func (e *AttackError) Error() string { return e.Reason }

func (e *AttackError) Unwrap() error { return ErrIllegalAttack }

// Report describes a resolved attack.
type Report struct {
	AttackID int
	Name     string
	Hit      bool
	Damage   int // damage dealt before HP clamping, never negative
	Bleed    int // bleed stacks added to the target
	Killed   bool
	Summary  string
}

// attackSpec is one row of an archetype's attack table.
type attackSpec struct {
	id   int
	name string
	help string
	// cooldown is the half-round recharge charged on use. Zero means always usable.
	cooldown int
	// selfOnly attacks are limited to one use per unit lifetime and ignore the target.
	selfOnly bool
	resolve  func(rng *rand.Rand, u, target *Unit) Report
	expected func(u, target *Unit) float64
}

var attackTable = [archetypeCount][]attackSpec{
	Sniper: {
		{id: 1, name: "Snipe", help: "90-110 damage, causes bleed", resolve: snipe,
			expected: func(_, t *Unit) float64 { return meanAfterArmor(90, 110, t.armor) }},
	},
	Commando: {
		{id: 1, name: "Bazooka", help: "300-350 damage, effective against tanks", cooldown: 6, resolve: bazooka,
			expected: func(_, t *Unit) float64 {
				if t.Class() == Armored {
					return meanOf(300, 350, identity)
				}
				return meanOf(300, 350, func(v int) int { return v / 4 }) / 3
			}},
		{id: 2, name: "Rifle", help: "100-150 damage, effective against soldiers", resolve: rifle,
			expected: func(_, t *Unit) float64 { return meanAfterArmor(100, 150, t.armor) }},
		{id: 3, name: "Knife", help: "200-300 damage, applies bleed, 50% chance to hit", resolve: knife,
			expected: func(_, t *Unit) float64 {
				if t.Class() == Armored {
					return 0
				}
				return meanAfterArmor(200, 300, t.armor) / 2
			}},
	},
	Tank: {
		{id: 1, name: "Cannon", help: "200-300 damage, effective against tanks", cooldown: 4, resolve: cannon,
			expected: func(_, t *Unit) float64 {
				if t.Class() == Armored {
					return meanOf(200, 300, identity)
				}
				return meanOf(200, 300, func(v int) int { return 80 * (v / 100) }) / 5
			}},
		{id: 2, name: "Turret", help: "50-100 damage, effective against soldiers", resolve: turret,
			expected: func(_, t *Unit) float64 { return meanAfterArmor(50, 100, t.armor) }},
	},
	Ravager: {
		{id: 1, name: "Punch", help: "100-300 damage, unaffected by armor", resolve: punch,
			expected: func(_, _ *Unit) float64 { return meanOf(100, 300, identity) }},
		{id: 2, name: "Roar", help: "increase own armor by 20", selfOnly: true, resolve: roar,
			expected: func(_, _ *Unit) float64 { return 0 }},
	},
}

func lookupAttack(a Archetype, id int) (attackSpec, bool) {
	for _, spec := range attackTable[a] {
		if spec.id == id {
			return spec, true
		}
	}
	return attackSpec{}, false
}

// AttackIDs returns the attack ids available to an archetype, in table order.
func (a Archetype) AttackIDs() []int {
	ids := make([]int, 0, len(attackTable[a]))
	for _, spec := range attackTable[a] {
		ids = append(ids, spec.id)
	}
	return ids
}

// AttackName returns the display name of an attack id, or "" if unknown.
func (a Archetype) AttackName(id int) string {
	spec, ok := lookupAttack(a, id)
	if !ok {
		return ""
	}
	return spec.name
}

// AttackOptions returns the help line listing every attack of the archetype.
func (a Archetype) AttackOptions() string {
	parts := make([]string, 0, len(attackTable[a]))
	for _, spec := range attackTable[a] {
		parts = append(parts, fmt.Sprintf("%d - %s: %s", spec.id, spec.name, spec.help))
	}
	return strings.Join(parts, " | ")
}

// SelfOnly reports whether attack id affects only the attacker.
func (a Archetype) SelfOnly(id int) bool {
	spec, ok := lookupAttack(a, id)
	return ok && spec.selfOnly
}

func heavyWeaponName(a Archetype) string {
	for _, spec := range attackTable[a] {
		if spec.cooldown > 0 {
			return spec.name
		}
	}
	return ""
}

// CanUse reports whether attack id is in the unit's table and ready.
func (u *Unit) CanUse(id int) bool {
	return u.checkAttack(id) == nil
}

func (u *Unit) checkAttack(id int) error {
	spec, ok := lookupAttack(u.archetype, id)
	if !ok {
		return &AttackError{Unit: u.Label(), ID: id, Reason: "This attack style doesn't exist"}
	}
	if spec.cooldown > 0 && u.cooldown != 0 {
		return &AttackError{Unit: u.Label(), ID: id,
			Reason: fmt.Sprintf("%s can be used again in %d turns", spec.name, u.cooldown/2)}
	}
	if spec.selfOnly && u.roared {
		return &AttackError{Unit: u.Label(), ID: id,
			Reason: fmt.Sprintf("%s has already been used by this unit", spec.name)}
	}
	return nil
}

// Attack resolves attack id against target. A rejected attack returns an
// *AttackError wrapping ErrIllegalAttack and leaves both units untouched.
func (u *Unit) Attack(rng *rand.Rand, target *Unit, id int) (Report, error) {
	if err := u.checkAttack(id); err != nil {
		return Report{AttackID: id}, err
	}
	spec, _ := lookupAttack(u.archetype, id)
	u.cooldown += spec.cooldown
	r := spec.resolve(rng, u, target)
	r.AttackID = id
	r.Name = spec.name
	if !spec.selfOnly {
		r.Killed = !target.alive
	}
	return r, nil
}

// ExpectedAttackDamage is the closed-form expected damage of one attack id
// against target. Unusable attacks are worth zero.
func ExpectedAttackDamage(u *Unit, id int, target *Unit) float64 {
	spec, ok := lookupAttack(u.archetype, id)
	if !ok || u.checkAttack(id) != nil {
		return 0
	}
	return spec.expected(u, target)
}

// BestAttack picks the usable attack with the highest expected damage
// against target. Ties keep the lowest id.
func BestAttack(u, target *Unit) (int, bool) {
	best, bestDmg := 0, -1.0
	for _, spec := range attackTable[u.archetype] {
		if u.checkAttack(spec.id) != nil {
			continue
		}
		if d := spec.expected(u, target); d > bestDmg {
			best, bestDmg = spec.id, d
		}
	}
	return best, best != 0
}

// AverageDamage is the heuristic damage estimate the opponent uses to score
// targets. It never mutates either unit.
func AverageDamage(u, target *Unit) float64 {
	switch u.archetype {
	case Sniper:
		return float64(100-target.armor) + 10
	case Commando:
		if target.Class() == Armored && u.cooldown == 0 {
			return 325
		}
		return float64(125 - target.armor)
	case Tank:
		if target.Class() == Armored {
			return 250
		}
		return 75
	case Ravager:
		return 200
	}
	return 0
}

// --- resolvers ---

func snipe(rng *rand.Rand, u, t *Unit) Report {
	dmg := roll(rng, 90, 110) - t.armor
	t.Defend(dmg)
	r := hitReport(u, t, dmg)
	r.Bleed = addBleed(t, 2)
	return r
}

func bazooka(rng *rand.Rand, u, t *Unit) Report {
	if t.Class() == Armored {
		dmg := roll(rng, 300, 350)
		t.Defend(dmg)
		return hitReport(u, t, dmg)
	}
	if rng.Intn(3) != 0 {
		return Report{Summary: fmt.Sprintf("%s's bazooka misses and the enemy laughs!", u.Label())}
	}
	dmg := roll(rng, 300, 350) / 4
	t.Defend(dmg)
	return hitReport(u, t, dmg)
}

func rifle(rng *rand.Rand, u, t *Unit) Report {
	dmg := roll(rng, 100, 150) - t.armor
	t.Defend(dmg)
	return hitReport(u, t, dmg)
}

func knife(rng *rand.Rand, u, t *Unit) Report {
	if t.Class() == Armored {
		return Report{Summary: fmt.Sprintf("%s's knife bounces off the hard shell of %s", u.Label(), t.Label())}
	}
	if rng.Intn(2) != 0 {
		return Report{Summary: fmt.Sprintf("%s's throwing knife misses!", u.Label())}
	}
	dmg := roll(rng, 200, 300) - t.armor
	t.Defend(dmg)
	r := hitReport(u, t, dmg)
	r.Bleed = addBleed(t, 4)
	return r
}

func cannon(rng *rand.Rand, u, t *Unit) Report {
	if t.Class() == Armored {
		dmg := roll(rng, 200, 300)
		t.Defend(dmg)
		return hitReport(u, t, dmg)
	}
	if rng.Intn(5) != 0 {
		return Report{Summary: fmt.Sprintf("%s's cannon fires... and misses!", u.Label())}
	}
	dmg := 80 * (roll(rng, 200, 300) / 100)
	t.Defend(dmg)
	return hitReport(u, t, dmg)
}

func turret(rng *rand.Rand, u, t *Unit) Report {
	dmg := roll(rng, 50, 100) - t.armor
	t.Defend(dmg)
	return hitReport(u, t, dmg)
}

func punch(rng *rand.Rand, u, t *Unit) Report {
	dmg := roll(rng, 100, 300)
	t.Defend(dmg)
	return hitReport(u, t, dmg)
}

func roar(_ *rand.Rand, u, _ *Unit) Report {
	u.armor += 20
	u.roared = true
	return Report{Hit: true, Summary: fmt.Sprintf("%s roars and increases its armor by 20", u.Label())}
}

func hitReport(u, t *Unit, dmg int) Report {
	dmg = max(dmg, 0)
	return Report{
		Hit:     true,
		Damage:  dmg,
		Summary: fmt.Sprintf("%s did %d damage to %s, leaving it with %d HP", u.Label(), dmg, t.Label(), t.hp),
	}
}

// addBleed applies stacks to a surviving target and returns how many landed.
func addBleed(t *Unit, stacks int) int {
	before := t.bleed
	t.ApplyBleed(stacks)
	return t.bleed - before
}

// roll returns a uniform integer in [lo, hi].
func roll(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func identity(v int) int { return v }

// meanOf is the exact mean of f over the uniform integer range [lo, hi].
func meanOf(lo, hi int, f func(int) int) float64 {
	sum := 0
	for v := lo; v <= hi; v++ {
		sum += f(v)
	}
	return float64(sum) / float64(hi-lo+1)
}

// meanAfterArmor is the mean of max(v-armor, 0) over [lo, hi].
func meanAfterArmor(lo, hi, armor int) float64 {
	return meanOf(lo, hi, func(v int) int { return max(v-armor, 0) })
}
