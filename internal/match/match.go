// Package match runs one game: roster assembly, turn bookkeeping, end-of-round
// ticks, and the computer opponent's turns.
package match

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Skirmish/internal/ai"
	"github.com/Garsondee/Skirmish/internal/combat"
	"github.com/Garsondee/Skirmish/internal/nav"
	"github.com/Garsondee/Skirmish/internal/world"
)

var (
	ErrWrongPhase      = errors.New("not allowed in this phase")
	ErrNotYourTurn     = errors.New("it is not this unit's turn")
	ErrAlreadyMoved    = errors.New("a unit has already moved this turn")
	ErrAlreadyAttacked = errors.New("a unit has already attacked this turn")
	ErrCellOccupied    = errors.New("this tile is occupied")
	ErrTooFar          = errors.New("this unit can't move that far")
	ErrFriendlyFire    = errors.New("cannot attack a friendly unit")
	ErrOutOfRange      = errors.New("that unit is out of range")
	ErrNoLineOfSight   = errors.New("no line of sight")
	ErrUnitDown        = errors.New("unit is no longer on the field")
	ErrNoTarget        = errors.New("this attack needs a target")
)

// Phase is the match lifecycle stage.
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhaseBattle
	PhaseOver
)

// Outcome is the result of a match.
type Outcome uint8

const (
	Ongoing Outcome = iota
	PlayerWon
	OpponentWon
	Draw
)

func (o Outcome) String() string {
	switch o {
	case PlayerWon:
		return "player won"
	case OpponentWon:
		return "opponent won"
	case Draw:
		return "draw"
	default:
		return "ongoing"
	}
}

// Settings are the per-game parameters.
type Settings struct {
	Width     int
	Height    int
	Obstacles int   // random obstacle draws; <0 means "width"
	Seed      int64 // 0 seeds from the clock
	MaxRounds int   // 0 means unlimited; reaching it ends in a draw
}

// DefaultSettings is the classic 10×10 board.
func DefaultSettings() Settings {
	return Settings{Width: 10, Height: 10, Obstacles: -1}
}

// Match owns one game's world, randomness, and turn state.
type Match struct {
	settings Settings
	world    *world.World
	rng      *rand.Rand
	logger   zerolog.Logger
	log      *BattleLog

	phase    Phase
	turn     combat.Faction
	moved    bool
	attacked bool
	round    int
	outcome  Outcome

	opponent     *ai.Engine
	autoOpponent bool
	started      time.Time
	ended        time.Time
}

// Option configures a Match.
type Option func(*Match)

// WithLogger attaches a logger to the match, its world, and its engine.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Match) { m.logger = l }
}

// WithWorld uses a pre-built world (e.g. from a scenario) instead of
// generating one. Units already deployed stay where they are.
func WithWorld(w *world.World) Option {
	return func(m *Match) { m.world = w }
}

// WithAutoOpponent controls whether EndTurn plays the opponent's turn
// automatically. Headless runs disable it and drive both sides.
func WithAutoOpponent(auto bool) Option {
	return func(m *Match) { m.autoOpponent = auto }
}

// New creates a match in the setup phase.
func New(s Settings, opts ...Option) *Match {
	m := &Match{
		settings:     s,
		logger:       zerolog.Nop(),
		log:          NewBattleLog(),
		autoOpponent: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	m.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
	if m.world == nil {
		m.world = world.New(s.Width, s.Height,
			world.WithRand(m.rng),
			world.WithObstacleCount(s.Obstacles),
			world.WithLogger(m.logger))
	}
	m.opponent = &ai.Engine{Faction: combat.Opponent, Logger: m.logger}
	m.logger.Info().Int("width", m.world.Width()).Int("height", m.world.Height()).
		Int64("seed", seed).Int("obstacles", len(m.world.Obstacles())).Msg("match created")
	return m
}

func (m *Match) World() *world.World { return m.world }
func (m *Match) Log() *BattleLog { return m.log }
func (m *Match) Phase() Phase { return m.phase }
func (m *Match) Turn() combat.Faction { return m.turn }
func (m *Match) Round() int { return m.round }
func (m *Match) HasMoved() bool { return m.moved }
func (m *Match) HasAttacked() bool { return m.attacked }
func (m *Match) Outcome() Outcome { return m.outcome }
func (m *Match) Rand() *rand.Rand { return m.rng }
func (m *Match) Settings() Settings { return m.settings }
func (m *Match) Units(f combat.Faction) []*combat.Unit { return m.world.Units(f) }

// Elapsed is the wall-clock duration of the battle so far (or in total once over).
func (m *Match) Elapsed() time.Duration {
	if m.started.IsZero() {
		return 0
	}
	if !m.ended.IsZero() {
		return m.ended.Sub(m.started)
	}
	return time.Since(m.started)
}

// AddPlayerUnit deploys a new player unit during setup.
func (m *Match) AddPlayerUnit(a combat.Archetype) (*combat.Unit, error) {
	if m.phase != PhaseSetup {
		return nil, fmt.Errorf("add unit: %w", ErrWrongPhase)
	}
	u := combat.NewUnit(a, combat.Player)
	if err := m.world.Deploy(u); err != nil {
		return nil, err
	}
	x, y := u.Position()
	m.log.Add(0, u.Label(), u.Faction().String(), CatSetup, "deploy",
		fmt.Sprintf("%s deployed at (%d,%d)", a, x, y), 0)
	return u, nil
}

// Start fills the opponent roster by counter-picking the player's units
// (unless the world already has opponents) and begins the battle with the
// player to move.
func (m *Match) Start() error {
	if m.phase != PhaseSetup {
		return fmt.Errorf("start: %w", ErrWrongPhase)
	}
	if m.world.Roster(combat.Opponent).Len() == 0 {
		var picks []combat.Archetype
		for _, u := range m.world.Units(combat.Player) {
			picks = append(picks, u.Archetype())
		}
		for _, a := range CounterPick(m.rng, picks) {
			u := combat.NewUnit(a, combat.Opponent)
			if err := m.world.Deploy(u); err != nil {
				return fmt.Errorf("deploy opponent: %w", err)
			}
			x, y := u.Position()
			m.log.Add(0, u.Label(), u.Faction().String(), CatSetup, "deploy",
				fmt.Sprintf("%s deployed at (%d,%d)", a, x, y), 0)
		}
	}
	m.world.RecomputeAdjacency()
	m.phase = PhaseBattle
	m.turn = combat.Player
	m.round = 1
	m.started = time.Now()
	m.logger.Info().
		Int("player_units", m.world.Roster(combat.Player).Len()).
		Int("opponent_units", m.world.Roster(combat.Opponent).Len()).
		Msg("battle started")
	m.checkOutcome()
	return nil
}

func (m *Match) checkActor(u *combat.Unit) error {
	if m.phase != PhaseBattle {
		return ErrWrongPhase
	}
	if u.Faction() != m.turn {
		return ErrNotYourTurn
	}
	if !u.Alive() || !u.Deployed() {
		return ErrUnitDown
	}
	return nil
}

// Move walks u to (x, y). The destination must be free and within u's speed
// along a shortest path. One move per turn.
func (m *Match) Move(u *combat.Unit, x, y int) error {
	if err := m.checkActor(u); err != nil {
		return fmt.Errorf("move %s: %w", u.Label(), err)
	}
	if m.moved {
		return ErrAlreadyMoved
	}
	dest, err := m.world.Cell(x, y)
	if err != nil {
		return err
	}
	if !dest.IsFree() {
		return ErrCellOccupied
	}
	from := m.world.CellOf(u)
	if world.Manhattan(from.Point(), dest.Point()) > u.Speed() {
		return ErrTooFar
	}
	d := nav.Distance(m.world, from, dest)
	if d > u.Speed() {
		return ErrTooFar
	}
	fx, fy := u.Position()
	if err := m.world.MoveUnit(u, x, y); err != nil {
		return err
	}
	m.moved = true
	m.log.Add(m.round, u.Label(), u.Faction().String(), CatMove, "move",
		fmt.Sprintf("(%d,%d) -> (%d,%d)", fx, fy, x, y), float64(d))
	return nil
}

// Attack resolves attack id from attacker on target after checking range and
// line of sight. Self-only attacks ignore target. One attack per turn; a
// rejected attack does not use it up.
func (m *Match) Attack(attacker, target *combat.Unit, id int) (combat.Report, error) {
	if err := m.checkActor(attacker); err != nil {
		return combat.Report{}, fmt.Errorf("attack with %s: %w", attacker.Label(), err)
	}
	if m.attacked {
		return combat.Report{}, ErrAlreadyAttacked
	}
	if attacker.Archetype().SelfOnly(id) {
		target = attacker
	} else if target == nil {
		return combat.Report{}, ErrNoTarget
	} else if !target.Alive() {
		return combat.Report{}, fmt.Errorf("attack %s: %w", target.Label(), ErrUnitDown)
	} else if target.Faction() == attacker.Faction() {
		return combat.Report{}, ErrFriendlyFire
	} else {
		tx, ty := target.Position()
		if !world.InRange(attacker, world.Point{X: tx, Y: ty}) {
			return combat.Report{}, ErrOutOfRange
		}
		if !m.world.CanAttack(attacker, target) {
			return combat.Report{}, ErrNoLineOfSight
		}
	}
	rep, err := attacker.Attack(m.rng, target, id)
	if err != nil {
		return rep, err
	}
	m.attacked = true
	m.recordAttack(attacker, target, rep)
	return rep, nil
}

func (m *Match) recordAttack(attacker, target *combat.Unit, rep combat.Report) {
	key := "miss"
	if rep.Hit {
		key = "hit"
	}
	m.log.Add(m.round, attacker.Label(), attacker.Faction().String(), CatAttack, key, rep.Summary, float64(rep.Damage))
	if rep.Killed {
		m.kill(target)
	}
	m.checkOutcome()
}

func (m *Match) kill(u *combat.Unit) {
	if err := m.world.RemoveUnit(u); err != nil {
		m.logger.Error().Err(err).Str("unit", u.Label()).Msg("remove dead unit")
	}
	m.log.Add(m.round, u.Label(), u.Faction().String(), CatDeath, "killed",
		fmt.Sprintf("%s %s destroyed", u.Faction(), u.Archetype()), 0)
}

// PlayTurn lets engine e act for the side to move. The engine's faction must
// match the current turn.
func (m *Match) PlayTurn(e *ai.Engine) (ai.Turn, error) {
	if m.phase != PhaseBattle {
		return ai.Turn{}, ErrWrongPhase
	}
	if e.Faction != m.turn {
		return ai.Turn{}, ErrNotYourTurn
	}
	t := e.TakeTurn(m.world, m.rng)
	if t.Moved {
		m.moved = true
		m.log.Add(m.round, t.Move.Unit.Label(), e.Faction.String(), CatMove, "move",
			fmt.Sprintf("(%d,%d) -> (%d,%d)", t.Move.From.X, t.Move.From.Y, t.Move.To.X, t.Move.To.Y),
			float64(t.Move.Steps))
	}
	if t.Attacked {
		m.attacked = true
		key := "miss"
		if t.Report.Hit {
			key = "hit"
		}
		m.log.Add(m.round, t.Strike.Attacker.Label(), e.Faction.String(), CatAttack, key, t.Report.Summary, float64(t.Report.Damage))
		if t.Killed {
			// The engine has already removed the target from the world.
			m.log.Add(m.round, t.Strike.Target.Label(), t.Strike.Target.Faction().String(), CatDeath, "killed",
				fmt.Sprintf("%s %s destroyed", t.Strike.Target.Faction(), t.Strike.Target.Archetype()), 0)
		}
	}
	m.checkOutcome()
	return t, nil
}

// EndTurn closes the current side's turn: every unit on both sides takes an
// end-of-round tick (bleed, cooldown), the dead are removed, and the turn
// passes. When the player ends a turn and the opponent is automatic, the
// opponent plays immediately and its turn is closed too; its turn is returned.
func (m *Match) EndTurn() (*ai.Turn, error) {
	if m.phase != PhaseBattle {
		return nil, ErrWrongPhase
	}
	ending := m.turn
	m.tick()
	m.passTurn()
	if m.phase != PhaseBattle || ending != combat.Player || !m.autoOpponent {
		return nil, nil
	}
	t, err := m.PlayTurn(m.opponent)
	if err != nil {
		return nil, err
	}
	if m.phase == PhaseBattle {
		m.tick()
		m.passTurn()
	}
	return &t, nil
}

func (m *Match) passTurn() {
	m.log.Add(m.round, "--", m.turn.String(), CatTurn, "end", fmt.Sprintf("%s turn ends", m.turn), 0)
	if m.turn == combat.Opponent {
		m.round++
	}
	m.turn = m.turn.Other()
	m.moved, m.attacked = false, false
	m.checkOutcome()
}

// tick applies the end-of-round tick to every unit and removes the dead.
func (m *Match) tick() {
	for _, f := range [2]combat.Faction{combat.Player, combat.Opponent} {
		units := append([]*combat.Unit(nil), m.world.Units(f)...)
		for _, u := range units {
			if dmg := u.EndOfRoundTick(); dmg > 0 {
				m.log.Add(m.round, u.Label(), f.String(), CatBleed, "bleed",
					fmt.Sprintf("bleeds for %d, %d HP left, %d stacks", dmg, u.HP(), u.Bleed()), float64(dmg))
			}
			if !u.Alive() {
				m.kill(u)
			}
		}
	}
}

func (m *Match) checkOutcome() {
	if m.phase != PhaseBattle {
		return
	}
	players := m.world.Roster(combat.Player).Len()
	opponents := m.world.Roster(combat.Opponent).Len()
	switch {
	case players == 0 && opponents == 0:
		m.outcome = Draw
	case opponents == 0:
		m.outcome = PlayerWon
	case players == 0:
		m.outcome = OpponentWon
	case m.settings.MaxRounds > 0 && m.round > m.settings.MaxRounds:
		m.outcome = Draw
	default:
		return
	}
	m.phase = PhaseOver
	m.ended = time.Now()
	m.log.Add(m.round, "--", "--", CatOutcome, "over", m.outcome.String(), float64(m.round))
	m.logger.Info().Stringer("outcome", m.outcome).Int("round", m.round).
		Dur("elapsed", m.Elapsed()).Msg("match over")
}
