package world

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Skirmish/internal/combat"
)

var (
	// ErrOutOfBounds marks a coordinate outside the grid. It is a caller bug.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
	// ErrCellBlocked is returned when placing onto an occupied or wall cell.
	ErrCellBlocked = errors.New("cell is not free")
	// ErrNotDeployed is returned when moving or removing a unit that is not on the grid.
	ErrNotDeployed = errors.New("unit is not on the grid")
	// ErrNoDeploySlot is returned when a starting row has no column left.
	ErrNoDeploySlot = errors.New("no free deployment slot")
)

// World is the authoritative spatial state of one game: cells, walls,
// occupancy, adjacency, and both rosters.
type World struct {
	width  int
	height int
	cells  []Cell // row-major: index = y*width + x

	rosters [2]*combat.Roster
	// nextColumn is each faction's deployment cursor on its starting row.
	nextColumn [2]int

	rng    *rand.Rand
	logger zerolog.Logger
}

// Option configures a World during New.
type Option func(*worldOptions)

type worldOptions struct {
	rng           *rand.Rand
	obstacleCount int
	fixed         []Point
	fixedLayout   bool
	logger        zerolog.Logger
}

// WithSeed makes random obstacle placement reproducible.
func WithSeed(seed int64) Option {
	return func(o *worldOptions) {
		o.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- game only
	}
}

// WithRand uses rng for obstacle placement.
func WithRand(rng *rand.Rand) Option {
	return func(o *worldOptions) { o.rng = rng }
}

// WithObstacleCount overrides the number of random obstacle draws (default: width).
func WithObstacleCount(n int) Option {
	return func(o *worldOptions) { o.obstacleCount = n }
}

// WithObstacles replaces random generation with an explicit wall layout.
// Pass no points for an open grid.
func WithObstacles(points ...Point) Option {
	return func(o *worldOptions) {
		o.fixed = append(o.fixed, points...)
		o.fixedLayout = true
	}
}

// WithLogger attaches a logger for placement events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *worldOptions) { o.logger = l }
}

// New builds a width×height grid with obstacles and computes adjacency.
func New(width, height int, opts ...Option) *World {
	o := worldOptions{obstacleCount: -1, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- game only
	}

	w := &World{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
		rosters: [2]*combat.Roster{
			combat.NewRoster(combat.Player),
			combat.NewRoster(combat.Opponent),
		},
		rng:    o.rng,
		logger: o.logger,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := &w.cells[y*width+x]
			c.X, c.Y = x, y
		}
	}
	first := FirstDeployColumn(width)
	w.nextColumn = [2]int{first, first}

	if o.fixedLayout {
		for _, p := range o.fixed {
			if w.inBounds(p.X, p.Y) {
				w.cells[p.Y*width+p.X].obstacle = true
			}
		}
	} else {
		n := o.obstacleCount
		if n < 0 {
			n = width
		}
		w.addObstacles(n)
	}
	w.RecomputeAdjacency()
	return w
}

// FirstDeployColumn is the column of a faction's first unit: rosters are
// centred on their starting row.
func FirstDeployColumn(width int) int {
	return max(width/2-combat.RosterCapacity/2, 0)
}

// addObstacles walls n random interior cells. The outer ring stays open so
// starting rows are never blocked. Repeated draws of the same cell collapse.
func (w *World) addObstacles(n int) {
	if w.width < 3 || w.height < 3 {
		return
	}
	for i := 0; i < n; i++ {
		x := 1 + w.rng.Intn(w.width-2)
		y := 1 + w.rng.Intn(w.height-2)
		w.cells[y*w.width+x].obstacle = true
	}
}

func (w *World) Width() int  { return w.width }
func (w *World) Height() int { return w.height }

func (w *World) inBounds(x, y int) bool {
	return x >= 0 && x < w.width && y >= 0 && y < w.height
}

// Cell returns the cell at (x, y) or ErrOutOfBounds.
func (w *World) Cell(x, y int) (*Cell, error) {
	if !w.inBounds(x, y) {
		return nil, fmt.Errorf("cell (%d,%d) in %dx%d grid: %w", x, y, w.width, w.height, ErrOutOfBounds)
	}
	return &w.cells[y*w.width+x], nil
}

// MustCell is Cell for coordinates the caller has already validated.
func (w *World) MustCell(x, y int) *Cell {
	c, err := w.Cell(x, y)
	if err != nil {
		panic(err)
	}
	return c
}

// CellOf returns the cell a deployed unit stands on.
func (w *World) CellOf(u *combat.Unit) *Cell {
	x, y := u.Position()
	return w.MustCell(x, y)
}

// Cells calls fn for every cell in row-major order.
func (w *World) Cells(fn func(c *Cell)) {
	for i := range w.cells {
		fn(&w.cells[i])
	}
}

// Obstacles returns the wall coordinates in row-major order.
func (w *World) Obstacles() []Point {
	var out []Point
	for i := range w.cells {
		if w.cells[i].obstacle {
			out = append(out, w.cells[i].Point())
		}
	}
	return out
}

// IsFree reports whether (x, y) is in bounds, unoccupied, and not a wall.
func (w *World) IsFree(x, y int) bool {
	return w.inBounds(x, y) && w.cells[y*w.width+x].IsFree()
}

// Roster returns faction f's roster.
func (w *World) Roster(f combat.Faction) *combat.Roster { return w.rosters[f] }

// Units returns faction f's living units in roster order.
func (w *World) Units(f combat.Faction) []*combat.Unit { return w.rosters[f].Units() }

// Enemies returns the units opposing faction f.
func (w *World) Enemies(f combat.Faction) []*combat.Unit { return w.rosters[f.Other()].Units() }

// PlaceUnit puts u on (x, y) and recomputes adjacency.
func (w *World) PlaceUnit(u *combat.Unit, x, y int) error {
	if err := w.place(u, x, y); err != nil {
		return err
	}
	w.RecomputeAdjacency()
	return nil
}

func (w *World) place(u *combat.Unit, x, y int) error {
	c, err := w.Cell(x, y)
	if err != nil {
		return err
	}
	if !c.IsFree() {
		return fmt.Errorf("place %s at (%d,%d): %w", u.Label(), x, y, ErrCellBlocked)
	}
	if u.Deployed() {
		w.vacate(u)
	}
	c.occupant = u
	u.SetPosition(x, y, true)
	return nil
}

func (w *World) vacate(u *combat.Unit) {
	x, y := u.Position()
	if c, err := w.Cell(x, y); err == nil && c.occupant == u {
		c.occupant = nil
	}
	u.SetPosition(0, 0, false)
}

// MoveUnit relocates a deployed unit to (x, y). Distance rules are the caller's.
func (w *World) MoveUnit(u *combat.Unit, x, y int) error {
	if !u.Deployed() {
		return fmt.Errorf("move %s: %w", u.Label(), ErrNotDeployed)
	}
	fx, fy := u.Position()
	if err := w.PlaceUnit(u, x, y); err != nil {
		return err
	}
	w.logger.Debug().Str("unit", u.Label()).
		Int("from_x", fx).Int("from_y", fy).Int("to_x", x).Int("to_y", y).
		Msg("unit moved")
	return nil
}

// RemoveUnit vacates u's cell, drops it from its roster, and recomputes adjacency.
func (w *World) RemoveUnit(u *combat.Unit) error {
	if !u.Deployed() && !w.rosters[u.Faction()].Contains(u) {
		return fmt.Errorf("remove %s: %w", u.Label(), ErrNotDeployed)
	}
	if u.Deployed() {
		w.vacate(u)
	}
	w.rosters[u.Faction()].Remove(u)
	w.RecomputeAdjacency()
	w.logger.Debug().Str("unit", u.Label()).Stringer("faction", u.Faction()).Msg("unit removed")
	return nil
}

// StartRow is the row a faction deploys onto.
func (w *World) StartRow(f combat.Faction) int {
	if f == combat.Opponent {
		return 0
	}
	return w.height - 1
}

// Deploy adds u to its faction's roster and places it on the faction's
// starting row at the next column. Walled or taken columns are skipped.
func (w *World) Deploy(u *combat.Unit) error {
	f := u.Faction()
	if w.rosters[f].Full() {
		return fmt.Errorf("deploy %s: %w", u.Archetype(), combat.ErrRosterFull)
	}
	row := w.StartRow(f)
	col := w.nextColumn[f]
	for col < w.width && !w.IsFree(col, row) {
		col++
	}
	if col >= w.width {
		return fmt.Errorf("deploy %s on row %d: %w", u.Archetype(), row, ErrNoDeploySlot)
	}
	if err := w.rosters[f].Add(u); err != nil {
		return err
	}
	if err := w.place(u, col, row); err != nil {
		w.rosters[f].Remove(u)
		return err
	}
	w.nextColumn[f] = col + 1
	w.RecomputeAdjacency()
	w.logger.Debug().Str("unit", u.Label()).Stringer("archetype", u.Archetype()).
		Int("x", col).Int("y", row).Msg("unit deployed")
	return nil
}

// DeployAt adds u to its faction's roster at an explicit cell instead of the
// starting row. The deployment cursor is unaffected.
func (w *World) DeployAt(u *combat.Unit, x, y int) error {
	f := u.Faction()
	c, err := w.Cell(x, y)
	if err != nil {
		return fmt.Errorf("deploy %s: %w", u.Archetype(), err)
	}
	if !c.IsFree() {
		return fmt.Errorf("deploy %s at (%d,%d): %w", u.Archetype(), x, y, ErrCellBlocked)
	}
	if err := w.rosters[f].Add(u); err != nil {
		return fmt.Errorf("deploy %s: %w", u.Archetype(), err)
	}
	if err := w.PlaceUnit(u, x, y); err != nil {
		w.rosters[f].Remove(u)
		return err
	}
	w.logger.Debug().Str("unit", u.Label()).Stringer("archetype", u.Archetype()).
		Int("x", x).Int("y", y).Msg("unit deployed")
	return nil
}

// RecomputeAdjacency rebuilds every cell's neighbour list from current
// occupancy. Calling it twice without a placement change yields the same lists.
func (w *World) RecomputeAdjacency() {
	for i := range w.cells {
		c := &w.cells[i]
		nb := make([]*Cell, 0, len(neighbourOffsets))
		for _, d := range neighbourOffsets {
			nx, ny := c.X+d.X, c.Y+d.Y
			if !w.inBounds(nx, ny) {
				continue
			}
			n := &w.cells[ny*w.width+nx]
			if !n.IsFree() {
				continue
			}
			nb = append(nb, n)
		}
		c.neighbours = nb
	}
}
