package scenario

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Skirmish/internal/combat"
	"github.com/Garsondee/Skirmish/internal/world"
)

func TestLoad_CornerDuel(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "corner_duel.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "corner duel", s.Name)
	assert.Equal(t, int64(7), s.Seed)
	require.Len(t, s.Player, 2)
	assert.Equal(t, combat.Tank, s.Player[0].Archetype)
	assert.Equal(t, combat.Commando, s.Player[1].Archetype)
	assert.Nil(t, s.Player[1].X)

	w, err := s.Build(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []world.Point{{X: 3, Y: 8}}, w.Obstacles())

	tank := w.Units(combat.Player)[0]
	x, y := tank.Position()
	assert.Equal(t, [2]int{9, 4}, [2]int{x, y})

	commando := w.Units(combat.Player)[1]
	x, y = commando.Position()
	assert.Equal(t, w.StartRow(combat.Player), y)
	assert.Equal(t, world.FirstDeployColumn(10), x)

	sniper := w.Units(combat.Opponent)[0]
	assert.Equal(t, 10, sniper.HP())
	assert.Equal(t, "O0", sniper.Label())
}

func TestParse_Defaults(t *testing.T) {
	s, err := Parse([]byte("name: empty\n"))
	require.NoError(t, err)
	assert.Equal(t, 10, s.Width)
	assert.Equal(t, 10, s.Height)

	w, err := s.Build(zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, w.Obstacles(), "scenarios never add random walls")
}

func TestParse_ArchetypeInitials(t *testing.T) {
	s, err := Parse([]byte("player:\n  - {archetype: R}\n  - {archetype: s}\n"))
	require.NoError(t, err)
	assert.Equal(t, combat.Ravager, s.Player[0].Archetype)
	assert.Equal(t, combat.Sniper, s.Player[1].Archetype)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"tiny grid":         "width: 2\nheight: 2\n",
		"bad obstacle":      "obstacles: [[1, 2, 3]]\n",
		"half position":     "player:\n  - {archetype: tank, x: 1}\n",
		"unknown archetype": "player:\n  - {archetype: dragon}\n",
		"zero hp":           "player:\n  - {archetype: tank, x: 1, y: 1, hp: 0}\n",
		"negative hp":       "opponent:\n  - {archetype: sniper, hp: -5}\n",
		"hp above max":      "player:\n  - {archetype: tank, hp: 5000}\n",
		"wall off the grid": "obstacles: [[20, 20]]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
	_, err := Parse([]byte("width: 2\n"))
	assert.ErrorIs(t, err, ErrBadSize)
	_, err = Parse([]byte("player:\n  - {archetype: tank, x: 1, y: 1, hp: 0}\n"))
	assert.ErrorIs(t, err, ErrBadHP)
	_, err = Parse([]byte("width: 5\nheight: 5\nobstacles: [[5, 0]]\n"))
	assert.ErrorIs(t, err, ErrBadObstacle)
}

func TestBuild_HPOverrideLeavesUnitAlive(t *testing.T) {
	s, err := Parse([]byte("player:\n  - {archetype: tank, x: 1, y: 1, hp: 1}\n"))
	require.NoError(t, err)
	w, err := s.Build(zerolog.Nop())
	require.NoError(t, err)
	units := w.Roster(combat.Player).Units()
	require.Len(t, units, 1)
	assert.True(t, units[0].Alive())
	assert.Equal(t, 1, units[0].HP())
	assert.Same(t, units[0], w.MustCell(1, 1).Occupant())
}

func TestBuild_RejectsWalledPlacement(t *testing.T) {
	s, err := Parse([]byte("obstacles: [[4, 4]]\nplayer:\n  - {archetype: tank, x: 4, y: 4}\n"))
	require.NoError(t, err)

	_, err = s.Build(zerolog.Nop())
	require.ErrorIs(t, err, world.ErrCellBlocked)
}

func TestBuild_RejectsSixthUnit(t *testing.T) {
	s, err := Parse([]byte("player: [{archetype: t}, {archetype: t}, {archetype: t}, {archetype: t}, {archetype: t}, {archetype: t}]\n"))
	require.NoError(t, err)

	_, err = s.Build(zerolog.Nop())
	require.ErrorIs(t, err, combat.ErrRosterFull)
}
