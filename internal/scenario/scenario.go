// Package scenario loads declarative board setups from YAML.
//
//	name: corner duel
//	width: 10
//	height: 10
//	seed: 7
//	obstacles: [[3, 8], [4, 4]]
//	player:
//	  - {archetype: tank, x: 9, y: 4}
//	opponent:
//	  - {archetype: sniper}   # no position: deployed on the starting row
package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/Garsondee/Skirmish/internal/combat"
	"github.com/Garsondee/Skirmish/internal/world"
)

var (
	ErrBadSize     = errors.New("scenario grid must be at least 3x3")
	ErrBadObstacle = errors.New("obstacle must be an [x, y] pair inside the grid")
	ErrBadHP       = errors.New("unit hp must be between 1 and the archetype maximum")
)

// UnitSpec places one unit. X and Y must be given together; without them
// the unit is deployed on its faction's starting row.
type UnitSpec struct {
	Archetype combat.Archetype `yaml:"archetype"`
	X         *int             `yaml:"x,omitempty"`
	Y         *int             `yaml:"y,omitempty"`
	HP        *int             `yaml:"hp,omitempty"`
}

// Scenario is one parsed document.
type Scenario struct {
	Name      string     `yaml:"name"`
	Width     int        `yaml:"width"`
	Height    int        `yaml:"height"`
	Seed      int64      `yaml:"seed"`
	Obstacles [][]int    `yaml:"obstacles"`
	Player    []UnitSpec `yaml:"player"`
	Opponent  []UnitSpec `yaml:"opponent"`
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario and fills defaults (10×10 board).
func Parse(b []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Width == 0 {
		s.Width = 10
	}
	if s.Height == 0 {
		s.Height = 10
	}
	if s.Width < 3 || s.Height < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrBadSize, s.Width, s.Height)
	}
	for i, o := range s.Obstacles {
		if len(o) != 2 || o[0] < 0 || o[0] >= s.Width || o[1] < 0 || o[1] >= s.Height {
			return nil, fmt.Errorf("obstacle %d %v: %w", i, o, ErrBadObstacle)
		}
	}
	for i, u := range append(append([]UnitSpec(nil), s.Player...), s.Opponent...) {
		if (u.X == nil) != (u.Y == nil) {
			return nil, fmt.Errorf("unit %d (%s): x and y must be given together", i, u.Archetype)
		}
		if u.HP != nil {
			if top := combat.NewUnit(u.Archetype, combat.Player).MaxHP(); *u.HP < 1 || *u.HP > top {
				return nil, fmt.Errorf("unit %d (%s) hp %d: %w", i, u.Archetype, *u.HP, ErrBadHP)
			}
		}
	}
	return &s, nil
}

// Build creates the world: the listed walls only (no random obstacles), then
// the player roster, then the opponent roster.
func (s *Scenario) Build(logger zerolog.Logger) (*world.World, error) {
	walls := make([]world.Point, 0, len(s.Obstacles))
	for _, o := range s.Obstacles {
		walls = append(walls, world.Point{X: o[0], Y: o[1]})
	}
	w := world.New(s.Width, s.Height,
		world.WithSeed(s.Seed),
		world.WithObstacles(walls...),
		world.WithLogger(logger))

	for _, side := range []struct {
		f     combat.Faction
		units []UnitSpec
	}{{combat.Player, s.Player}, {combat.Opponent, s.Opponent}} {
		for _, us := range side.units {
			u := combat.NewUnit(us.Archetype, side.f)
			var err error
			if us.X != nil {
				err = w.DeployAt(u, *us.X, *us.Y)
			} else {
				err = w.Deploy(u)
			}
			if err != nil {
				return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			if us.HP != nil {
				u.Defend(u.HP() - *us.HP)
			}
		}
	}
	logger.Info().Str("scenario", s.Name).Int("width", s.Width).Int("height", s.Height).
		Int("walls", len(walls)).Msg("scenario built")
	return w, nil
}
