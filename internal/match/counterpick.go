package match

import (
	"math/rand"

	"github.com/Garsondee/Skirmish/internal/combat"
)

// counterPicks maps a player archetype to the two opponent answers a coin
// flip chooses between: index 1 on heads, index 0 on tails.
var counterPicks = map[combat.Archetype][2]combat.Archetype{
	combat.Sniper:   {combat.Sniper, combat.Tank},
	combat.Commando: {combat.Ravager, combat.Sniper},
	combat.Tank:     {combat.Commando, combat.Ravager},
	combat.Ravager:  {combat.Tank, combat.Commando},
}

// CounterPick builds a full opponent roster that answers the player's picks
// slot by slot. Slots the player left empty are answered against a random
// archetype.
func CounterPick(rng *rand.Rand, player []combat.Archetype) []combat.Archetype {
	out := make([]combat.Archetype, 0, combat.RosterCapacity)
	for i := 0; i < combat.RosterCapacity; i++ {
		heads := rng.Intn(2)
		var against combat.Archetype
		if i < len(player) {
			against = player[i]
		} else {
			against = combat.Archetypes[rng.Intn(len(combat.Archetypes))]
		}
		out = append(out, counterPicks[against][heads])
	}
	return out
}
