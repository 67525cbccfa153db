package game

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Skirmish/internal/combat"
)

// Inspector panel, rendered into an offscreen buffer at 1× then blitted at inspScale.
const (
	inspScale = 2
	inspBufW  = logPanelWidth / inspScale
	inspBufH  = 104
	inspPad   = 4
	inspLineH = 13

	// inspPanelH is the on-screen height the inspector takes above the log.
	inspPanelH = inspBufH * inspScale
)

// Inspector holds the inspected unit and view toggle state.
type Inspector struct {
	unit    *combat.Unit
	rawView bool // false = curated, true = raw dump
}

// inspect shows u in the panel. Any unit can be inspected, including enemies.
func (in *Inspector) inspect(u *combat.Unit) {
	if u != nil {
		in.unit = u
	}
}

// current returns the inspected unit, or nil once it has been destroyed.
func (in *Inspector) current() *combat.Unit {
	if in.unit == nil || !in.unit.Alive() {
		return nil
	}
	return in.unit
}

// drawInspector renders the inspector into inspBuf at 1×, then blits it onto
// the top of the right-hand panel at inspScale.
func (g *Game) drawInspector(screen *ebiten.Image, panelX int) {
	if g.inspBuf == nil {
		g.inspBuf = ebiten.NewImage(inspBufW, inspBufH)
	}
	buf := g.inspBuf
	buf.Clear()

	bw, bh := float32(inspBufW), float32(inspBufH)
	panelBorder := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, color.RGBA{R: 14, G: 16, B: 14, A: 240}, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, panelBorder, false)

	lx, ly := inspPad, inspPad
	u := g.inspector.current()
	if u == nil {
		ebitenutil.DebugPrintAt(buf, "[ INSPECTOR ]", lx, ly)
		ebitenutil.DebugPrintAt(buf, "click any unit", lx, ly+inspLineH+2)
	} else {
		ebitenutil.DebugPrintAt(buf, fmt.Sprintf("[ %s %s %s ]", strings.ToUpper(u.Faction().String()), u.Label(), u.Archetype()), lx, ly)
		ly += inspLineH
		viewName := "CURATED"
		if g.inspector.rawView {
			viewName = "RAW"
		}
		ebitenutil.DebugPrintAt(buf, fmt.Sprintf("view: %s  [I] toggle", viewName), lx, ly)
		ly += inspLineH + 2
		vector.StrokeLine(buf, float32(lx), float32(ly), bw-inspPad, float32(ly), 1.0, panelBorder, false)
		ly += 3

		lines := g.curatedLines(u)
		if g.inspector.rawView {
			lines = rawLines(u)
		}
		for _, l := range lines {
			ebitenutil.DebugPrintAt(buf, l, lx, ly)
			ly += inspLineH
		}
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(inspScale, inspScale)
	opts.GeoM.Translate(float64(panelX), 0)
	screen.DrawImage(buf, opts)
}

// curatedLines is the human-readable view: health, stats, attack readiness
// and what the unit can shoot at right now.
func (g *Game) curatedLines(u *combat.Unit) []string {
	lines := []string{
		fmt.Sprintf("hp    %s %d/%d", bar(u.HP(), u.MaxHP(), 10), u.HP(), u.MaxHP()),
		fmt.Sprintf("armor %d  speed %d  range %d", u.Armor(), u.Speed(), u.Range()),
		fmt.Sprintf("bleed %s", bar(u.Bleed(), combat.MaxBleed, combat.MaxBleed)),
	}
	var ready []string
	for _, id := range u.Archetype().AttackIDs() {
		state := "ok"
		if !u.CanUse(id) {
			state = "--"
		}
		ready = append(ready, fmt.Sprintf("%d:%s %s", id, u.Archetype().AttackName(id), state))
	}
	lines = append(lines, strings.Join(ready, " "))

	var targets []string
	w := g.m.World()
	for _, en := range w.Enemies(u.Faction()) {
		if w.CanAttack(u, en) {
			targets = append(targets, en.Label())
		}
	}
	if len(targets) == 0 {
		lines = append(lines, "targets: none in sight")
	} else {
		lines = append(lines, "targets: "+strings.Join(targets, " "))
	}
	return lines
}

// rawLines dumps every unit field verbatim.
func rawLines(u *combat.Unit) []string {
	x, y := u.Position()
	return []string{
		fmt.Sprintf("pos=(%d,%d) dep=%v alive=%v", x, y, u.Deployed(), u.Alive()),
		fmt.Sprintf("hp=%d/%d arm=%d spd=%d rng=%d", u.HP(), u.MaxHP(), u.Armor(), u.Speed(), u.Range()),
		fmt.Sprintf("cd=%d roar=%v bleed=%d", u.Cooldown(), u.RoarUsed(), u.Bleed()),
		fmt.Sprintf("class=%s wounded=%v", u.Class(), u.Wounded()),
	}
}

// bar renders v out of total as a fixed-width ASCII gauge.
func bar(v, total, width int) string {
	if total <= 0 {
		return strings.Repeat(".", width)
	}
	filled := min(max(v*width/total, 0), width)
	if v > 0 && filled == 0 {
		filled = 1
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
