package combat

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) // #nosec G404 -- test only
}

func TestNewUnit_Stats(t *testing.T) {
	cases := []struct {
		a                     Archetype
		hp, armor, speed, rng int
		class                 TargetClass
	}{
		{Sniper, 150, 20, 2, 8, Infantry},
		{Commando, 350, 10, 5, 3, Infantry},
		{Tank, 500, 100, 2, 5, Armored},
		{Ravager, 300, 0, 4, 1, Infantry},
	}
	for _, tc := range cases {
		u := NewUnit(tc.a, Player)
		assert.Equal(t, tc.hp, u.HP(), tc.a.String())
		assert.Equal(t, tc.hp, u.MaxHP(), tc.a.String())
		assert.Equal(t, tc.armor, u.Armor(), tc.a.String())
		assert.Equal(t, tc.speed, u.Speed(), tc.a.String())
		assert.Equal(t, tc.rng, u.Range(), tc.a.String())
		assert.Equal(t, tc.class, u.Class(), tc.a.String())
		assert.True(t, u.Alive())
		assert.False(t, u.Deployed())
		assert.Zero(t, u.Bleed())
		assert.Zero(t, u.Cooldown())
	}
}

func TestParseArchetype(t *testing.T) {
	for in, want := range map[string]Archetype{
		"sniper": Sniper, "S": Sniper, "Commando": Commando, "c": Commando,
		"TANK": Tank, "t": Tank, " ravager ": Ravager, "r": Ravager,
	} {
		got, err := ParseArchetype(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseArchetype("wizard")
	assert.Error(t, err)
}

func TestCounters(t *testing.T) {
	assert.True(t, Counters(Commando, Tank))
	assert.True(t, Counters(Ravager, Sniper))
	assert.True(t, Counters(Tank, Tank))
	assert.True(t, Counters(Sniper, Commando))
	assert.True(t, Counters(Sniper, Ravager))
	assert.False(t, Counters(Sniper, Tank))
	assert.False(t, Counters(Tank, Ravager))
	assert.False(t, Counters(Tank, Commando))
}

func TestDefend_ClampsAtZero(t *testing.T) {
	u := NewUnit(Sniper, Player)
	u.Defend(-50)
	assert.Equal(t, 150, u.HP(), "negative damage never heals")

	u.ApplyBleed(2)
	u.Defend(1000)
	assert.Equal(t, 0, u.HP())
	assert.False(t, u.Alive())
	assert.Zero(t, u.Bleed(), "the dead do not bleed")
}

func TestApplyBleed_Cap(t *testing.T) {
	u := NewUnit(Ravager, Opponent)
	assert.True(t, u.ApplyBleed(2))
	assert.Equal(t, 2, u.Bleed())
	assert.True(t, u.ApplyBleed(4))
	assert.Equal(t, MaxBleed, u.Bleed())
	assert.False(t, u.ApplyBleed(1), "already at the cap")
	assert.Equal(t, MaxBleed, u.Bleed())
}

func TestEndOfRoundTick(t *testing.T) {
	u := NewUnit(Commando, Player)
	u.cooldown = 2
	u.ApplyBleed(1)

	assert.Equal(t, BleedDamage, u.EndOfRoundTick())
	assert.Equal(t, 345, u.HP())
	assert.Equal(t, 0, u.Bleed())
	assert.Equal(t, 1, u.Cooldown())

	assert.Equal(t, 0, u.EndOfRoundTick())
	assert.Equal(t, 345, u.HP())
	assert.Equal(t, 0, u.Cooldown())

	u.EndOfRoundTick()
	assert.Equal(t, 0, u.Cooldown(), "cooldown never goes negative")
}

func TestBleedCanKill(t *testing.T) {
	u := NewUnit(Sniper, Player)
	u.Defend(147)
	u.ApplyBleed(1)
	u.EndOfRoundTick()
	assert.Equal(t, 0, u.HP())
	assert.False(t, u.Alive())
}

func TestTankCannon_CooldownGatesSecondShot(t *testing.T) {
	rng := newRand(1)
	a := NewUnit(Tank, Player)
	b := NewUnit(Tank, Opponent)

	rep, err := a.Attack(rng, b, 1)
	require.NoError(t, err)
	assert.True(t, rep.Hit)
	assert.GreaterOrEqual(t, rep.Damage, 200)
	assert.LessOrEqual(t, rep.Damage, 300)
	assert.Equal(t, 500-rep.Damage, b.HP())
	assert.Equal(t, 4, a.Cooldown())

	for tick := 0; tick < 4; tick++ {
		hpBefore := b.HP()
		_, err := a.Attack(rng, b, 1)
		require.ErrorIs(t, err, ErrIllegalAttack, "after %d ticks", tick)
		assert.Equal(t, hpBefore, b.HP(), "rejected attack must not change the target")
		a.EndOfRoundTick()
	}
	_, err = a.Attack(rng, b, 1)
	require.NoError(t, err, "cannon is ready after four ticks")
}

func TestSniperBleed_TwoTicks(t *testing.T) {
	rng := newRand(7)
	s := NewUnit(Sniper, Player)
	r := NewUnit(Ravager, Opponent)

	rep, err := s.Attack(rng, r, 1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rep.Damage, 90)
	assert.LessOrEqual(t, rep.Damage, 110)
	assert.Equal(t, 2, r.Bleed())
	assert.Equal(t, 2, rep.Bleed)

	after := r.HP()
	r.EndOfRoundTick()
	r.EndOfRoundTick()
	assert.Equal(t, after-10, r.HP())
	assert.Equal(t, 0, r.Bleed())
}

func TestSnipe_KillAppliesNoBleed(t *testing.T) {
	s := NewUnit(Sniper, Player)
	r := NewUnit(Ravager, Opponent)
	r.Defend(290)

	rep, err := s.Attack(newRand(3), r, 1)
	require.NoError(t, err)
	assert.True(t, rep.Killed)
	assert.Zero(t, rep.Bleed)
	assert.Zero(t, r.Bleed())
}

func TestKnife_BouncesOffArmor(t *testing.T) {
	c := NewUnit(Commando, Player)
	tank := NewUnit(Tank, Opponent)
	for seed := int64(0); seed < 10; seed++ {
		rep, err := c.Attack(newRand(seed), tank, 3)
		require.NoError(t, err)
		assert.False(t, rep.Hit)
		assert.Equal(t, 500, tank.HP())
		assert.Zero(t, tank.Bleed())
	}
}

func TestKnife_HitBleedsUpToCap(t *testing.T) {
	rng := newRand(21)
	var hits, misses int
	for i := 0; i < 40; i++ {
		c := NewUnit(Commando, Player)
		target := NewUnit(Commando, Opponent)
		target.ApplyBleed(2)
		rep, err := c.Attack(rng, target, 3)
		require.NoError(t, err)
		if !rep.Hit {
			misses++
			assert.Equal(t, 350, target.HP())
			assert.Equal(t, 2, target.Bleed())
			continue
		}
		hits++
		assert.GreaterOrEqual(t, rep.Damage, 190)
		assert.LessOrEqual(t, rep.Damage, 290)
		assert.Equal(t, 350-rep.Damage, target.HP())
		assert.Equal(t, MaxBleed, target.Bleed())
		assert.Equal(t, 1, rep.Bleed)
	}
	assert.Positive(t, hits)
	assert.Positive(t, misses)
}

func TestKnife_KillingHitAddsNoBleed(t *testing.T) {
	rng := newRand(22)
	kills := 0
	for i := 0; i < 40; i++ {
		c := NewUnit(Commando, Player)
		target := NewUnit(Sniper, Opponent)
		target.Defend(100)
		rep, err := c.Attack(rng, target, 3)
		require.NoError(t, err)
		if !rep.Hit {
			continue
		}
		kills++
		assert.True(t, rep.Killed)
		assert.False(t, target.Alive())
		assert.Zero(t, target.Bleed())
		assert.Zero(t, rep.Bleed)
	}
	assert.Positive(t, kills)
}

func TestCannon_AgainstSoldiers(t *testing.T) {
	rng := newRand(23)
	hits := 0
	for i := 0; i < 200; i++ {
		tank := NewUnit(Tank, Player)
		target := NewUnit(Ravager, Opponent)
		rep, err := tank.Attack(rng, target, 1)
		require.NoError(t, err)
		assert.Positive(t, tank.Cooldown())
		if !rep.Hit {
			assert.Equal(t, 300, target.HP())
			continue
		}
		hits++
		assert.Contains(t, []int{160, 240}, rep.Damage)
		assert.Equal(t, 300-rep.Damage, target.HP())
	}
	// One in five lands.
	assert.Greater(t, hits, 15)
	assert.Less(t, hits, 70)
}

func TestBazooka_MissStillCostsCooldown(t *testing.T) {
	rng := newRand(11)
	for i := 0; i < 20; i++ {
		c := NewUnit(Commando, Player)
		s := NewUnit(Sniper, Opponent)
		rep, err := c.Attack(rng, s, 1)
		require.NoError(t, err)
		assert.Equal(t, 6, c.Cooldown())
		if rep.Hit {
			assert.GreaterOrEqual(t, rep.Damage, 75)
			assert.LessOrEqual(t, rep.Damage, 87)
		} else {
			assert.Equal(t, 150, s.HP())
		}
	}
}

func TestRoar_OncePerLifetime(t *testing.T) {
	r := NewUnit(Ravager, Player)
	rep, err := r.Attack(newRand(1), r, 2)
	require.NoError(t, err)
	assert.True(t, rep.Hit)
	assert.Equal(t, 20, r.Armor())
	assert.True(t, r.RoarUsed())
	assert.False(t, rep.Killed)

	_, err = r.Attack(newRand(1), r, 2)
	var ae *AttackError
	require.True(t, errors.As(err, &ae))
	assert.Contains(t, ae.Reason, "already been used")
	assert.Equal(t, 20, r.Armor())
}

func TestAttack_UnknownID(t *testing.T) {
	s := NewUnit(Sniper, Player)
	target := NewUnit(Tank, Opponent)
	_, err := s.Attack(newRand(1), target, 2)
	require.ErrorIs(t, err, ErrIllegalAttack)
	assert.False(t, s.CanUse(2))
	assert.True(t, s.CanUse(1))
	assert.Equal(t, 500, target.HP())
}

func TestSelfOnly(t *testing.T) {
	assert.True(t, Ravager.SelfOnly(2))
	assert.False(t, Ravager.SelfOnly(1))
	assert.False(t, Tank.SelfOnly(9))
}

func TestAverageDamage(t *testing.T) {
	sniper := NewUnit(Sniper, Player)
	commando := NewUnit(Commando, Player)
	tank := NewUnit(Tank, Player)
	ravager := NewUnit(Ravager, Player)
	enemyTank := NewUnit(Tank, Opponent)
	enemySniper := NewUnit(Sniper, Opponent)

	assert.Equal(t, 10.0, AverageDamage(sniper, enemyTank))
	assert.Equal(t, 90.0, AverageDamage(sniper, enemySniper))
	assert.Equal(t, 325.0, AverageDamage(commando, enemyTank))
	assert.Equal(t, 105.0, AverageDamage(commando, enemySniper))
	commando.cooldown = 2
	assert.Equal(t, 25.0, AverageDamage(commando, enemyTank))
	assert.Equal(t, 250.0, AverageDamage(tank, enemyTank))
	assert.Equal(t, 75.0, AverageDamage(tank, enemySniper))
	assert.Equal(t, 200.0, AverageDamage(ravager, enemyTank))

	assert.Equal(t, 500, enemyTank.HP(), "estimates never mutate")
	assert.Equal(t, 2, commando.Cooldown())
}

func TestBestAttack(t *testing.T) {
	commando := NewUnit(Commando, Player)
	enemyTank := NewUnit(Tank, Opponent)
	enemySniper := NewUnit(Sniper, Opponent)

	id, ok := BestAttack(commando, enemyTank)
	require.True(t, ok)
	assert.Equal(t, 1, id, "bazooka against armour")

	id, _ = BestAttack(commando, enemySniper)
	assert.Equal(t, 3, id, "knife's expected 115 beats rifle's 105")

	commando.cooldown = 6
	id, _ = BestAttack(commando, enemyTank)
	assert.Equal(t, 2, id, "rifle while the bazooka recharges")

	tank := NewUnit(Tank, Player)
	id, _ = BestAttack(tank, enemySniper)
	assert.Equal(t, 2, id, "turret against infantry")
	id, _ = BestAttack(tank, enemyTank)
	assert.Equal(t, 1, id)

	ravager := NewUnit(Ravager, Player)
	id, _ = BestAttack(ravager, enemySniper)
	assert.Equal(t, 1, id)
}

func TestExpectedAttackDamage(t *testing.T) {
	commando := NewUnit(Commando, Player)
	ravager := NewUnit(Ravager, Opponent)
	assert.InDelta(t, 125.0, ExpectedAttackDamage(commando, 3, ravager), 1e-9)
	assert.InDelta(t, 125.0, ExpectedAttackDamage(commando, 2, ravager), 1e-9)
	assert.Zero(t, ExpectedAttackDamage(commando, 7, ravager))
}

func TestRoster_Labels(t *testing.T) {
	r := NewRoster(Opponent)
	a := NewUnit(Tank, Opponent)
	b := NewUnit(Sniper, Opponent)
	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(b))
	assert.Equal(t, "O0", a.Label())
	assert.Equal(t, "O1", b.Label())

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a))
	c := NewUnit(Ravager, Opponent)
	require.NoError(t, r.Add(c))
	assert.Equal(t, "O2", c.Label(), "labels are not reused")
	assert.Equal(t, []*Unit{b, c}, r.Units())

	assert.Error(t, r.Add(NewUnit(Tank, Player)), "faction mismatch")
}

func TestRoster_Capacity(t *testing.T) {
	r := NewRoster(Player)
	for i := 0; i < RosterCapacity; i++ {
		require.NoError(t, r.Add(NewUnit(Sniper, Player)))
	}
	assert.True(t, r.Full())
	assert.ErrorIs(t, r.Add(NewUnit(Sniper, Player)), ErrRosterFull)
}

func TestDescribe(t *testing.T) {
	c := NewUnit(Commando, Player)
	c.SetLabel("P3")
	c.cooldown = 6
	d := c.Describe()
	assert.Contains(t, d, "P3 Commando")
	assert.Contains(t, d, "HP: 350/350")
	assert.Contains(t, d, "Bazooka cooldown: 3")

	assert.NotContains(t, NewUnit(Sniper, Player).Describe(), "cooldown")
}
