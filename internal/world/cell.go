package world

import "github.com/Garsondee/Skirmish/internal/combat"

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// Manhattan returns |dx| + |dy|.
func Manhattan(a, b Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Chebyshev returns max(|dx|, |dy|).
func Chebyshev(a, b Point) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Cell is one grid square. The obstacle flag is fixed after setup; the
// occupant and neighbour list change with placement.
type Cell struct {
	X, Y       int
	obstacle   bool
	occupant   *combat.Unit
	neighbours []*Cell
}

// Point returns the cell's coordinate.
func (c *Cell) Point() Point { return Point{c.X, c.Y} }

// IsObstacle reports whether the cell is a wall. Walls block sight and movement.
func (c *Cell) IsObstacle() bool { return c.obstacle }

// Occupant returns the unit standing on the cell, or nil.
func (c *Cell) Occupant() *combat.Unit { return c.occupant }

// IsFree reports whether a unit may enter the cell.
func (c *Cell) IsFree() bool { return c.occupant == nil && !c.obstacle }

// Neighbours returns the cached free 4-directional neighbours. The slice is
// only valid until the next placement or removal.
func (c *Cell) Neighbours() []*Cell { return c.neighbours }

// neighbourOffsets is the fixed expansion order: up, right, down, left.
var neighbourOffsets = [4]Point{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
