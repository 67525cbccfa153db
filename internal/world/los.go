package world

import "github.com/Garsondee/Skirmish/internal/combat"

// LineOfSight reports whether a straight line from a to b is unobstructed.
// Only walls block sight; units never do. The line is rasterised with
// integer Bresenham stepping on normalised endpoints (major axis along x,
// increasing), so LineOfSight(a, b) == LineOfSight(b, a). A diagonal step
// between two walls that touch at the corner is blocked.
func (w *World) LineOfSight(a, b Point) bool {
	x1, y1, x2, y2 := a.X, a.Y, b.X, b.Y
	steep := abs(y2-y1) > abs(x2-x1)
	if steep {
		x1, y1 = y1, x1
		x2, y2 = y2, x2
	}
	if x1 > x2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
	}

	dx := x2 - x1
	dy := abs(y2 - y1)
	ystep := 1
	if y1 > y2 {
		ystep = -1
	}

	wall := func(u, v int) bool {
		if steep {
			u, v = v, u
		}
		return w.inBounds(u, v) && w.cells[v*w.width+u].obstacle
	}

	e := dx / 2
	y := y1
	for x := x1; x <= x2; x++ {
		if wall(x, y) {
			return false
		}
		e -= dy
		if e < 0 {
			// Diagonal step: the two cells sharing the corner must not both be walls.
			if x < x2 && wall(x+1, y) && wall(x, y+ystep) {
				return false
			}
			y += ystep
			e += dx
		}
	}
	return true
}

// InRange reports whether p is within u's Chebyshev attack range.
func InRange(u *combat.Unit, p Point) bool {
	x, y := u.Position()
	return Chebyshev(Point{x, y}, p) <= u.Range()
}

// CanAttack reports whether u has both range and line of sight to target.
func (w *World) CanAttack(u, target *combat.Unit) bool {
	if !u.Deployed() || !target.Deployed() {
		return false
	}
	x, y := u.Position()
	return w.canAttackFrom(u, Point{x, y}, target)
}

// CanAttackFrom reports whether u, standing on from, could legally attack
// any living enemy.
func (w *World) CanAttackFrom(u *combat.Unit, from Point) bool {
	for _, e := range w.Enemies(u.Faction()) {
		if w.canAttackFrom(u, from, e) {
			return true
		}
	}
	return false
}

// CanAttackAny reports whether u can attack some enemy from where it stands.
func (w *World) CanAttackAny(u *combat.Unit) bool {
	for _, e := range w.Enemies(u.Faction()) {
		if w.CanAttack(u, e) {
			return true
		}
	}
	return false
}

func (w *World) canAttackFrom(u *combat.Unit, from Point, target *combat.Unit) bool {
	if !target.Deployed() {
		return false
	}
	tx, ty := target.Position()
	to := Point{tx, ty}
	if Chebyshev(from, to) > u.Range() {
		return false
	}
	return w.LineOfSight(from, to)
}
