package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Skirmish/internal/nav"
	"github.com/Garsondee/Skirmish/internal/world"
)

const (
	dashLen = 8
	gapLen  = 6
)

var (
	pathCol      = color.RGBA{R: 255, G: 240, B: 60, A: 150}
	sightOKCol   = color.RGBA{R: 90, G: 230, B: 90, A: 170}
	sightDeadCol = color.RGBA{R: 230, G: 70, B: 50, A: 170}
	intentCol    = color.RGBA{R: 60, G: 100, B: 220, A: 110}
)

// segment is one dash of a dashed line, in screen pixels.
type segment struct {
	x1, y1, x2, y2 float32
}

// dashes splits the line from (x1,y1) to (x2,y2) into dash segments.
func dashes(x1, y1, x2, y2 float32) []segment {
	dx, dy := x2-x1, y2-y1
	total := float32(math.Hypot(float64(dx), float64(dy)))
	if total == 0 {
		return nil
	}
	ndx, ndy := dx/total, dy/total
	var out []segment
	for drawn := float32(0); drawn < total; drawn += dashLen + gapLen {
		end := min(drawn+dashLen, total)
		out = append(out, segment{x1 + ndx*drawn, y1 + ndy*drawn, x1 + ndx*end, y1 + ndy*end})
	}
	return out
}

func drawDashed(screen *ebiten.Image, x1, y1, x2, y2, thickness float32, c color.Color) {
	for _, s := range dashes(x1, y1, x2, y2) {
		vector.StrokeLine(screen, s.x1, s.y1, s.x2, s.y2, thickness, c, false)
	}
}

// drawRing draws the small octagonal destination marker.
func drawRing(screen *ebiten.Image, cx, cy, r float32, c color.Color) {
	for a := 0; a < 8; a++ {
		ang0 := float64(a) / 8.0 * 2 * math.Pi
		ang1 := float64(a+1) / 8.0 * 2 * math.Pi
		vector.StrokeLine(screen,
			cx+r*float32(math.Cos(ang0)), cy+r*float32(math.Sin(ang0)),
			cx+r*float32(math.Cos(ang1)), cy+r*float32(math.Sin(ang1)),
			1.0, c, false)
	}
}

// centre returns the screen-space centre of board cell p.
func (g *Game) centre(p world.Point) (float32, float32) {
	cs := float32(g.cellSize)
	return float32(g.offX) + (float32(p.X)+0.5)*cs, float32(g.offY) + (float32(p.Y)+0.5)*cs
}

// previewPath returns the cells the selected unit would walk through to reach
// the hovered cell, start first. It is empty unless the hovered cell is a
// legal destination.
func (g *Game) previewPath() []world.Point {
	if g.selected == nil || !g.hasHover || !g.reach[g.hover] {
		return nil
	}
	w := g.m.World()
	path, ok := nav.Path(w, w.CellOf(g.selected), w.MustCell(g.hover.X, g.hover.Y))
	if !ok {
		return nil
	}
	out := make([]world.Point, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		out = append(out, path[i].Point())
	}
	return out
}

// drawOverlays draws the move preview, the sight line to the marked target
// and the opponent's last move.
func (g *Game) drawOverlays(screen *ebiten.Image) {
	if t := g.lastTurn; t != nil && t.Moved && t.Move.Unit.Alive() {
		fx, fy := g.centre(t.Move.From)
		tx, ty := g.centre(t.Move.To)
		drawDashed(screen, fx, fy, tx, ty, 1.0, intentCol)
		drawRing(screen, fx, fy, 4, intentCol)
	}

	if path := g.previewPath(); len(path) > 1 {
		for i := 1; i < len(path); i++ {
			x1, y1 := g.centre(path[i-1])
			x2, y2 := g.centre(path[i])
			drawDashed(screen, x1, y1, x2, y2, 2.0, pathCol)
		}
		ex, ey := g.centre(path[len(path)-1])
		drawRing(screen, ex, ey, float32(g.cellSize)/5, pathCol)
	}

	if g.selected != nil && g.target != nil && g.target.Alive() {
		sx, sy := g.selected.Position()
		tx, ty := g.target.Position()
		col := sightDeadCol
		if g.m.World().CanAttack(g.selected, g.target) {
			col = sightOKCol
		}
		x1, y1 := g.centre(world.Point{X: sx, Y: sy})
		x2, y2 := g.centre(world.Point{X: tx, Y: ty})
		drawDashed(screen, x1, y1, x2, y2, 1.5, col)
	}
}
