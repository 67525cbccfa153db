package ai

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Skirmish/internal/combat"
	"github.com/Garsondee/Skirmish/internal/world"
)

type placement struct {
	a    combat.Archetype
	f    combat.Faction
	x, y int
}

func buildWorld(t *testing.T, w, h int, walls []world.Point, units ...placement) (*world.World, []*combat.Unit) {
	t.Helper()
	wd := world.New(w, h, world.WithObstacles(walls...))
	out := make([]*combat.Unit, 0, len(units))
	for _, p := range units {
		u := combat.NewUnit(p.a, p.f)
		require.NoError(t, wd.DeployAt(u, p.x, p.y))
		out = append(out, u)
	}
	return wd, out
}

func TestSelectMove_HeadsForNearestEnemy(t *testing.T) {
	w, units := buildWorld(t, 10, 10, nil,
		placement{combat.Tank, combat.Opponent, 5, 0},
		placement{combat.Sniper, combat.Player, 5, 9},
	)
	mv, ok := New(combat.Opponent).SelectMove(w)
	require.True(t, ok)
	assert.Same(t, units[0], mv.Unit)
	assert.Equal(t, world.Point{X: 5, Y: 0}, mv.From)
	assert.Equal(t, world.Point{X: 5, Y: 2}, mv.To)
}

func TestSelectMove_PrefersMoveThatEnablesAttack(t *testing.T) {
	w, units := buildWorld(t, 10, 10, nil,
		placement{combat.Ravager, combat.Opponent, 0, 0},
		placement{combat.Sniper, combat.Opponent, 9, 0},
		placement{combat.Tank, combat.Player, 9, 9},
	)
	mv, ok := New(combat.Opponent).SelectMove(w)
	require.True(t, ok)
	assert.Same(t, units[1], mv.Unit, "the sniper can shoot after moving, the ravager cannot")
	assert.Equal(t, world.Point{X: 9, Y: 2}, mv.To)
}

func TestSelectMove_FirstCandidateWhenNoneEnablesAttack(t *testing.T) {
	w, units := buildWorld(t, 12, 12, nil,
		placement{combat.Ravager, combat.Opponent, 0, 0},
		placement{combat.Tank, combat.Opponent, 11, 0},
		placement{combat.Sniper, combat.Player, 6, 11},
	)
	mv, ok := New(combat.Opponent).SelectMove(w)
	require.True(t, ok)
	assert.Same(t, units[0], mv.Unit)
}

func TestSelectMove_UnitsInRangeStay(t *testing.T) {
	w, _ := buildWorld(t, 10, 10, nil,
		placement{combat.Sniper, combat.Opponent, 5, 0},
		placement{combat.Tank, combat.Player, 5, 6},
	)
	_, ok := New(combat.Opponent).SelectMove(w)
	assert.False(t, ok)
}

func TestSelectMove_RespectsPathDistance(t *testing.T) {
	// A wall forces a detour, so the straight-line cell two steps ahead is
	// Manhattan-close but not reachable in two moves.
	walls := []world.Point{{X: 4, Y: 1}, {X: 5, Y: 1}, {X: 6, Y: 1}}
	w, _ := buildWorld(t, 10, 10, walls,
		placement{combat.Tank, combat.Opponent, 5, 0},
		placement{combat.Ravager, combat.Player, 5, 9},
	)
	mv, ok := New(combat.Opponent).SelectMove(w)
	require.True(t, ok)
	from := w.MustCell(5, 0)
	to := w.MustCell(mv.To.X, mv.To.Y)
	assert.True(t, to.IsFree())
	assert.LessOrEqual(t, world.Manhattan(from.Point(), to.Point()), 2)
	assert.NotEqual(t, world.Point{X: 5, Y: 2}, mv.To)
	assert.Equal(t, 2, mv.Steps)
}

func TestScore(t *testing.T) {
	s := combat.NewUnit(combat.Sniper, combat.Opponent)
	c := combat.NewUnit(combat.Commando, combat.Player)
	assert.Equal(t, 10+10000, Score(s, c))

	c.Defend(1)
	assert.Equal(t, 10+10+10000, Score(s, c))

	tank := combat.NewUnit(combat.Tank, combat.Player)
	assert.Equal(t, 1000, Score(s, tank), "no counter, no wound, avg 10")
}

func TestCanKill(t *testing.T) {
	s := combat.NewUnit(combat.Sniper, combat.Opponent)
	r := combat.NewUnit(combat.Ravager, combat.Player)
	assert.False(t, CanKill(s, r))
	r.Defend(190)
	assert.True(t, CanKill(s, r), "110 HP left, average 110")
}

func TestSelectAttack_LethalShortcut(t *testing.T) {
	w, units := buildWorld(t, 10, 10, nil,
		placement{combat.Sniper, combat.Opponent, 5, 0},
		placement{combat.Commando, combat.Player, 4, 3},
		placement{combat.Tank, combat.Player, 6, 3},
	)
	units[2].Defend(495)
	st, ok := New(combat.Opponent).SelectAttack(w)
	require.True(t, ok)
	assert.True(t, st.Lethal)
	assert.Same(t, units[2], st.Target)
}

func TestSelectAttack_HighestScoreFirstSeenOnTies(t *testing.T) {
	w, units := buildWorld(t, 10, 10, nil,
		placement{combat.Tank, combat.Opponent, 5, 0},
		placement{combat.Ravager, combat.Player, 4, 2},
		placement{combat.Ravager, combat.Player, 6, 2},
		placement{combat.Tank, combat.Player, 5, 3},
	)
	st, ok := New(combat.Opponent).SelectAttack(w)
	require.True(t, ok)
	assert.False(t, st.Lethal)
	// Tank vs tank scores 25010; tank vs ravager 7500.
	assert.Same(t, units[3], st.Target)
	assert.Equal(t, 25010, st.Score)

	w2, u2 := buildWorld(t, 10, 10, nil,
		placement{combat.Tank, combat.Opponent, 5, 0},
		placement{combat.Ravager, combat.Player, 4, 2},
		placement{combat.Ravager, combat.Player, 6, 2},
	)
	st, ok = New(combat.Opponent).SelectAttack(w2)
	require.True(t, ok)
	assert.Same(t, u2[1], st.Target, "equal scores keep the first pair")
}

func TestSelectAttack_NoLegalPair(t *testing.T) {
	w, _ := buildWorld(t, 10, 10, []world.Point{{X: 5, Y: 1}},
		placement{combat.Tank, combat.Opponent, 5, 0},
		placement{combat.Tank, combat.Player, 5, 2},
	)
	_, ok := New(combat.Opponent).SelectAttack(w)
	assert.False(t, ok, "the wall blocks the only line of sight")
}

func TestTakeTurn_KillRemovesTarget(t *testing.T) {
	w, units := buildWorld(t, 10, 10, nil,
		placement{combat.Ravager, combat.Opponent, 5, 5},
		placement{combat.Sniper, combat.Player, 5, 6},
	)
	units[1].Defend(140)

	turn := New(combat.Opponent).TakeTurn(w, rand.New(rand.NewSource(1)))
	assert.False(t, turn.Moved, "already adjacent")
	require.True(t, turn.Attacked)
	assert.True(t, turn.Killed)
	assert.Equal(t, "Punch", turn.Report.Name)
	assert.Equal(t, 0, w.Roster(combat.Player).Len())
	assert.Nil(t, w.MustCell(5, 6).Occupant())
}

func TestTakeTurn_MovesThenAttacks(t *testing.T) {
	w, units := buildWorld(t, 10, 10, nil,
		placement{combat.Sniper, combat.Opponent, 9, 0},
		placement{combat.Tank, combat.Player, 9, 9},
	)
	turn := New(combat.Opponent).TakeTurn(w, rand.New(rand.NewSource(2)))
	require.True(t, turn.Moved)
	assert.Equal(t, world.Point{X: 9, Y: 2}, turn.Move.To)
	require.True(t, turn.Attacked, "attack is chosen after the move")
	assert.Same(t, units[1], turn.Strike.Target)
	x, y := units[0].Position()
	assert.Equal(t, [2]int{9, 2}, [2]int{x, y})
}

func TestTakeTurn_NothingToDo(t *testing.T) {
	w, _ := buildWorld(t, 6, 6, nil,
		placement{combat.Tank, combat.Opponent, 1, 1},
	)
	turn := New(combat.Opponent).TakeTurn(w, rand.New(rand.NewSource(3)))
	assert.False(t, turn.Moved)
	assert.False(t, turn.Attacked)
}

func TestEngine_DrivesEitherFaction(t *testing.T) {
	w, units := buildWorld(t, 10, 10, nil,
		placement{combat.Tank, combat.Player, 5, 9},
		placement{combat.Sniper, combat.Opponent, 5, 0},
	)
	mv, ok := New(combat.Player).SelectMove(w)
	require.True(t, ok)
	assert.Same(t, units[0], mv.Unit)
	assert.Equal(t, world.Point{X: 5, Y: 7}, mv.To)
}
