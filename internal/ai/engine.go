// Package ai picks one move and one attack per turn for a computer-controlled faction.
package ai

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Skirmish/internal/combat"
	"github.com/Garsondee/Skirmish/internal/nav"
	"github.com/Garsondee/Skirmish/internal/world"
)

const (
	woundedBonus = 10 // target already below max HP
	counterBonus = 10 // attacker's archetype counters the target's
)

// Move is a chosen relocation.
type Move struct {
	Unit  *combat.Unit
	From  world.Point
	To    world.Point
	Steps int // shortest-path length from From to To
}

// Strike is a chosen (attacker, target) pair.
type Strike struct {
	Attacker *combat.Unit
	Target   *combat.Unit
	Score    int
	Lethal   bool
}

// Turn records what the engine did so the front-end can display it.
type Turn struct {
	Moved    bool
	Move     Move
	Attacked bool
	Strike   Strike
	Report   combat.Report
	Killed   bool
}

// Engine drives one faction.
type Engine struct {
	Faction combat.Faction
	Logger  zerolog.Logger
}

// New returns an engine for faction f with logging disabled.
func New(f combat.Faction) *Engine {
	return &Engine{Faction: f, Logger: zerolog.Nop()}
}

// TakeTurn performs at most one move and then at most one attack, chosen
// against the world as it stands after the move. A killed target is removed
// from the world. With nothing legal to do the turn is a no-op.
func (e *Engine) TakeTurn(w *world.World, rng *rand.Rand) Turn {
	var t Turn
	if mv, ok := e.SelectMove(w); ok {
		if err := w.MoveUnit(mv.Unit, mv.To.X, mv.To.Y); err != nil {
			e.Logger.Error().Err(err).Str("unit", mv.Unit.Label()).Msg("chosen move rejected by world")
		} else {
			t.Moved, t.Move = true, mv
		}
	}

	st, ok := e.SelectAttack(w)
	if !ok {
		return t
	}
	id, ok := combat.BestAttack(st.Attacker, st.Target)
	if !ok {
		return t
	}
	rep, err := st.Attacker.Attack(rng, st.Target, id)
	if err != nil {
		e.Logger.Error().Err(err).Str("unit", st.Attacker.Label()).Int("attack", id).Msg("chosen attack rejected")
		return t
	}
	t.Attacked, t.Strike, t.Report = true, st, rep
	if rep.Killed {
		t.Killed = true
		if err := w.RemoveUnit(st.Target); err != nil {
			e.Logger.Error().Err(err).Str("unit", st.Target.Label()).Msg("remove killed unit")
		}
	}
	e.Logger.Debug().
		Str("attacker", st.Attacker.Label()).
		Str("target", st.Target.Label()).
		Str("attack", rep.Name).
		Int("damage", rep.Damage).
		Bool("killed", rep.Killed).
		Msg("engine attack")
	return t
}

// SelectMove finds the unit that should move and where. Units that can
// already attack stay put. Each other unit heads for a free cell next to its
// Manhattan-nearest enemy, taking the furthest reachable cell along the
// shortest path. A candidate that would allow an attack is preferred;
// otherwise the first candidate in roster order wins.
func (e *Engine) SelectMove(w *world.World) (Move, bool) {
	var moves []Move
	for _, u := range w.Units(e.Faction) {
		if w.CanAttackAny(u) {
			continue
		}
		if c := e.moveCloser(w, u); c != nil {
			from := w.CellOf(u)
			moves = append(moves, Move{Unit: u, From: from.Point(), To: c.Point(), Steps: nav.Distance(w, from, c)})
		}
	}
	for _, m := range moves {
		if w.CanAttackFrom(m.Unit, m.To) {
			return m, true
		}
	}
	if len(moves) > 0 {
		return moves[0], true
	}
	return Move{}, false
}

// moveCloser returns the cell u should step to on its way to the nearest enemy, or nil.
func (e *Engine) moveCloser(w *world.World, u *combat.Unit) *world.Cell {
	enemy := nearestEnemy(w, u)
	if enemy == nil {
		return nil
	}
	from := w.CellOf(u)
	for _, goal := range w.CellOf(enemy).Neighbours() {
		path, ok := nav.Path(w, from, goal)
		if !ok {
			continue
		}
		// Path runs goal-first, so the first reachable cell is the furthest forward.
		for _, c := range path {
			if canMove(w, u, from, c) {
				return c
			}
		}
	}
	return nil
}

func nearestEnemy(w *world.World, u *combat.Unit) *combat.Unit {
	ux, uy := u.Position()
	var closest *combat.Unit
	best := math.MaxInt
	for _, en := range w.Enemies(u.Faction()) {
		ex, ey := en.Position()
		if d := world.Manhattan(world.Point{X: ux, Y: uy}, world.Point{X: ex, Y: ey}); d < best {
			best, closest = d, en
		}
	}
	return closest
}

// canMove reports whether u can legally reach c this turn.
func canMove(w *world.World, u *combat.Unit, from, c *world.Cell) bool {
	if !c.IsFree() {
		return false
	}
	if world.Manhattan(from.Point(), c.Point()) > u.Speed() {
		return false
	}
	return nav.Distance(w, from, c) <= u.Speed()
}

// SelectAttack picks the attacker/target pair for this turn. Any pair whose
// average damage would finish the target is taken immediately; otherwise
// pairs are scored and the first strictly highest score wins.
func (e *Engine) SelectAttack(w *world.World) (Strike, bool) {
	var best Strike
	found := false
	for _, u := range w.Units(e.Faction) {
		for _, en := range w.Enemies(e.Faction) {
			if !w.CanAttack(u, en) {
				continue
			}
			if CanKill(u, en) {
				return Strike{Attacker: u, Target: en, Lethal: true}, true
			}
			s := Score(u, en)
			if !found || s > best.Score {
				best = Strike{Attacker: u, Target: en, Score: s}
				found = true
			}
		}
	}
	return best, found
}

// CanKill reports whether u's average damage would bring target to 0 HP.
func CanKill(u, target *combat.Unit) bool {
	return float64(target.HP())-combat.AverageDamage(u, target) <= 0
}

// Score rates attacking target with u.
func Score(u, target *combat.Unit) int {
	score := 0
	if target.Wounded() {
		score += woundedBonus
	}
	if combat.Counters(u.Archetype(), target.Archetype()) {
		score += counterBonus
	}
	score += int(math.Floor(combat.AverageDamage(u, target) * 100))
	return score
}
