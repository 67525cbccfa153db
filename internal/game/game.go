package game

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Skirmish/internal/ai"
	"github.com/Garsondee/Skirmish/internal/combat"
	"github.com/Garsondee/Skirmish/internal/match"
	"github.com/Garsondee/Skirmish/internal/nav"
	"github.com/Garsondee/Skirmish/internal/world"
)

// borderWidth is the pixel gap between the window edge and the board.
const borderWidth = 24

// hudHeight is the strip under the board for status and key help.
const hudHeight = 8 * hudLineHeight

const hudLineHeight = 16

var (
	playerCol   = color.RGBA{R: 210, G: 70, B: 70, A: 255}
	opponentCol = color.RGBA{R: 70, G: 110, B: 210, A: 255}
	selectCol   = color.RGBA{R: 240, G: 220, B: 60, A: 255}
	targetCol   = color.RGBA{R: 255, G: 60, B: 40, A: 255}
	reachCol    = color.RGBA{R: 80, G: 160, B: 80, A: 90}
)

// Game is the ebiten front-end for one match at a time.
type Game struct {
	m        *match.Match
	newMatch func() *match.Match
	logger   zerolog.Logger

	cellSize int
	offX     int
	offY     int
	boardW   int
	boardH   int
	width    int
	height   int

	selected *combat.Unit
	target   *combat.Unit
	reach    map[world.Point]bool // cells the selected unit may move to
	hover    world.Point
	hasHover bool
	lastTurn *ai.Turn // the opponent's most recent turn
	status   string

	panel         battlePanel
	inspector     Inspector
	inspBuf       *ebiten.Image
	prevKeys      map[ebiten.Key]bool
	prevMouseLeft bool

	// copyText puts the battle log on the system clipboard.
	copyText func(string) error
}

// New builds the front-end. newMatch is called now and again whenever the
// player asks for a fresh game.
func New(newMatch func() *match.Match, cellSize int, logger zerolog.Logger) *Game {
	g := &Game{
		newMatch: newMatch,
		logger:   logger,
		cellSize: cellSize,
		offX:     borderWidth,
		offY:     borderWidth,
		prevKeys: make(map[ebiten.Key]bool),
		copyText: clipboard.WriteAll,
	}
	g.reset()
	return g
}

func (g *Game) reset() {
	g.m = g.newMatch()
	w := g.m.World()
	g.boardW = w.Width() * g.cellSize
	g.boardH = w.Height() * g.cellSize
	g.width = borderWidth + g.boardW + borderWidth + logPanelWidth
	g.height = borderWidth + g.boardH + borderWidth + hudHeight
	g.selected, g.target, g.reach = nil, nil, nil
	g.lastTurn = nil
	g.panel = battlePanel{}
	g.inspector = Inspector{rawView: g.inspector.rawView}
	if g.m.Phase() == match.PhaseSetup {
		g.status = "Add units with S/C/T/R, then press Enter"
	}
}

// Match returns the match being shown.
func (g *Game) Match() *match.Match { return g.m }

// Size returns the window size in pixels.
func (g *Game) Size() (int, int) { return g.width, g.height }

func (g *Game) Update() error {
	g.handleInput()
	return nil
}

// handleInput processes edge-triggered keys and clicks.
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	addKeys := map[ebiten.Key]combat.Archetype{
		ebiten.KeyS: combat.Sniper,
		ebiten.KeyC: combat.Commando,
		ebiten.KeyT: combat.Tank,
		ebiten.KeyR: combat.Ravager,
	}
	for k, a := range addKeys {
		if pressed(k) {
			g.addUnit(a)
		}
	}
	if pressed(ebiten.KeyEnter) {
		g.start()
	}

	attackKeys := [3]ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3}
	for i, k := range attackKeys {
		if pressed(k) {
			g.attack(i + 1)
		}
	}
	if pressed(ebiten.KeySpace) {
		g.endTurn()
	}
	if pressed(ebiten.KeyEscape) {
		g.deselect()
	}
	if pressed(ebiten.KeyL) {
		g.copyLog()
	}
	if pressed(ebiten.KeyI) {
		g.inspector.rawView = !g.inspector.rawView
	}
	if pressed(ebiten.KeyN) && g.m.Phase() == match.PhaseOver {
		g.reset()
	}
	if pressed(ebiten.KeyPageUp) {
		g.panel.scrollBy(5)
	}
	if pressed(ebiten.KeyPageDown) {
		g.panel.scrollBy(-5)
	}

	mx, my := ebiten.CursorPosition()
	hx, hy, ok := g.cellAt(mx, my)
	g.hover, g.hasHover = world.Point{X: hx, Y: hy}, ok
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !g.prevMouseLeft && ok {
		g.click(hx, hy)
	}
	g.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	g.prevKeys = currentKeys
}

// cellAt maps a cursor position to a board cell.
func (g *Game) cellAt(mx, my int) (int, int, bool) {
	bx, by := mx-g.offX, my-g.offY
	if bx < 0 || by < 0 || bx >= g.boardW || by >= g.boardH {
		return 0, 0, false
	}
	return bx / g.cellSize, by / g.cellSize, true
}

func (g *Game) addUnit(a combat.Archetype) {
	if g.m.Phase() != match.PhaseSetup {
		return
	}
	u, err := g.m.AddPlayerUnit(a)
	if err != nil {
		if errors.Is(err, combat.ErrRosterFull) {
			g.status = "You cannot add more units"
		} else {
			g.status = err.Error()
		}
		return
	}
	g.status = fmt.Sprintf("%s joined as %s", a, u.Label())
}

func (g *Game) start() {
	if g.m.Phase() != match.PhaseSetup {
		return
	}
	if g.m.World().Roster(combat.Player).Len() == 0 {
		g.status = "Add at least one unit first"
		return
	}
	if err := g.m.Start(); err != nil {
		g.status = err.Error()
		return
	}
	g.status = "Your turn: click a unit to select it"
}

// click handles a left click on board cell (x, y): select an own unit, move
// the selected unit onto a free cell, or mark an enemy as the target.
func (g *Game) click(x, y int) {
	occ := g.m.World().MustCell(x, y).Occupant()
	g.inspector.inspect(occ)
	if g.m.Phase() != match.PhaseBattle || g.m.Turn() != combat.Player {
		return
	}
	switch {
	case occ != nil && occ.Faction() == combat.Player:
		g.selected, g.target = occ, nil
		g.refreshReach()
		g.status = occ.Describe()
	case occ != nil:
		if g.selected == nil {
			g.status = occ.Describe()
			return
		}
		g.target = occ
		g.status = fmt.Sprintf("Target %s. %s", occ.Label(), g.selected.Archetype().AttackOptions())
	case g.selected != nil:
		if err := g.m.Move(g.selected, x, y); err != nil {
			g.status = moveMessage(err)
			return
		}
		g.refreshReach()
		g.status = fmt.Sprintf("%s moved to (%d,%d)", g.selected.Label(), x, y)
	}
}

func moveMessage(err error) string {
	switch {
	case errors.Is(err, match.ErrAlreadyMoved):
		return "A unit has already moved this turn"
	case errors.Is(err, match.ErrTooFar):
		return "This unit can't move that far"
	case errors.Is(err, match.ErrCellOccupied):
		return "This tile is occupied"
	default:
		return err.Error()
	}
}

func (g *Game) attack(id int) {
	if g.m.Phase() != match.PhaseBattle || g.selected == nil {
		return
	}
	target := g.target
	if g.selected.Archetype().SelfOnly(id) {
		target = g.selected
	}
	if target == nil {
		g.status = "Click an enemy to target it first"
		return
	}
	rep, err := g.m.Attack(g.selected, target, id)
	if err != nil {
		var ae *combat.AttackError
		if errors.As(err, &ae) {
			g.status = ae.Reason
		} else {
			g.status = err.Error()
		}
		return
	}
	g.status = rep.Summary
	if rep.Killed {
		g.target = nil
	}
	g.refreshReach()
	g.announceOutcome()
}

func (g *Game) endTurn() {
	if g.m.Phase() != match.PhaseBattle || g.m.Turn() != combat.Player {
		return
	}
	t, err := g.m.EndTurn()
	if err != nil {
		g.status = err.Error()
		return
	}
	if g.selected != nil && !g.selected.Alive() {
		g.selected = nil
	}
	if g.target != nil && !g.target.Alive() {
		g.target = nil
	}
	g.lastTurn = t
	g.refreshReach()
	g.status = describeTurn(t)
	g.announceOutcome()
}

func (g *Game) announceOutcome() {
	if g.m.Phase() != match.PhaseOver {
		return
	}
	switch g.m.Outcome() {
	case match.PlayerWon:
		g.status = "You win! Press N for a new game"
	case match.OpponentWon:
		g.status = "You lose! Press N for a new game"
	default:
		g.status = "Draw. Press N for a new game"
	}
}

// describeTurn summarises what the opponent did.
func describeTurn(t *ai.Turn) string {
	if t == nil {
		return "Turn ended"
	}
	msg := "Opponent holds position."
	if t.Moved {
		msg = fmt.Sprintf("%s moved to (%d,%d).", t.Move.Unit.Label(), t.Move.To.X, t.Move.To.Y)
	}
	if t.Attacked {
		msg += " " + t.Report.Summary
	}
	return msg
}

func (g *Game) deselect() {
	g.selected, g.target, g.reach = nil, nil, nil
}

// refreshReach caches the cells the selected unit may still move to.
func (g *Game) refreshReach() {
	g.reach = nil
	u := g.selected
	if u == nil || !u.Alive() || g.m.HasMoved() {
		return
	}
	w := g.m.World()
	from := w.CellOf(u)
	g.reach = make(map[world.Point]bool)
	w.Cells(func(c *world.Cell) {
		if !c.IsFree() || world.Manhattan(from.Point(), c.Point()) > u.Speed() {
			return
		}
		if nav.Distance(w, from, c) <= u.Speed() {
			g.reach[c.Point()] = true
		}
	})
}

func (g *Game) copyLog() {
	if err := g.copyText(g.m.Log().Format()); err != nil {
		g.logger.Warn().Err(err).Msg("copy battle log")
		g.status = "Could not copy the log"
		return
	}
	g.status = fmt.Sprintf("Copied %d log lines", len(g.m.Log().Entries()))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})
	g.drawBoard(screen)
	g.drawOverlays(screen)

	ox, oy := float32(g.offX), float32(g.offY)
	bw, bh := float32(g.boardW), float32(g.boardH)
	vector.StrokeRect(screen, ox-1, oy-1, bw+2, bh+2, 2.0, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	panelX := g.offX + g.boardW + g.offX
	g.panel.Draw(screen, g.m.Log(), panelX, inspPanelH, g.height)
	g.drawInspector(screen, panelX)
	g.drawHUD(screen)
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	w := g.m.World()
	cs := float32(g.cellSize)
	ox, oy := float32(g.offX), float32(g.offY)

	w.Cells(func(c *world.Cell) {
		x0, y0 := ox+float32(c.X)*cs, oy+float32(c.Y)*cs
		if c.IsObstacle() {
			vector.FillRect(screen, x0, y0, cs, cs, color.RGBA{R: 60, G: 56, B: 50, A: 255}, false)
			vector.StrokeLine(screen, x0, y0, x0+cs, y0, 1.0, color.RGBA{R: 100, G: 95, B: 85, A: 220}, false)
			vector.StrokeLine(screen, x0, y0, x0, y0+cs, 1.0, color.RGBA{R: 100, G: 95, B: 85, A: 220}, false)
			vector.StrokeLine(screen, x0, y0+cs, x0+cs, y0+cs, 1.0, color.RGBA{R: 30, G: 28, B: 24, A: 220}, false)
			vector.StrokeLine(screen, x0+cs, y0, x0+cs, y0+cs, 1.0, color.RGBA{R: 30, G: 28, B: 24, A: 220}, false)
			return
		}
		shade := uint8(36)
		if (c.X+c.Y)%2 == 0 {
			shade = 42
		}
		vector.FillRect(screen, x0, y0, cs, cs, color.RGBA{R: shade - 8, G: shade, B: shade - 8, A: 255}, false)
		if g.reach[c.Point()] {
			vector.FillRect(screen, x0, y0, cs, cs, reachCol, false)
		}
	})
	drawGrid(screen, g.offX, g.offY, g.boardW, g.boardH, g.cellSize, color.RGBA{R: 255, G: 255, B: 255, A: 18})

	for _, f := range [2]combat.Faction{combat.Player, combat.Opponent} {
		for _, u := range w.Units(f) {
			g.drawUnit(screen, u)
		}
	}
}

func (g *Game) drawUnit(screen *ebiten.Image, u *combat.Unit) {
	cs := float32(g.cellSize)
	x, y := u.Position()
	x0, y0 := float32(g.offX)+float32(x)*cs, float32(g.offY)+float32(y)*cs
	cx, cy := x0+cs/2, y0+cs/2

	col := playerCol
	if u.Faction() == combat.Opponent {
		col = opponentCol
	}
	vector.FillCircle(screen, cx, cy, cs*0.34, col, true)
	if u.Class() == combat.Armored {
		vector.StrokeRect(screen, cx-cs*0.24, cy-cs*0.24, cs*0.48, cs*0.48, 2.0, color.RGBA{R: 20, G: 20, B: 20, A: 200}, false)
	}
	text.Draw(screen, u.Archetype().String()[:1], basicfont.Face7x13, int(cx)-3, int(cy)+4, color.White)
	text.Draw(screen, u.Label(), basicfont.Face7x13, int(x0)+3, int(y0)+12, color.RGBA{R: 230, G: 230, B: 230, A: 220})

	// HP bar along the bottom edge.
	frac := float32(u.HP()) / float32(u.MaxHP())
	barW := cs - 8
	vector.FillRect(screen, x0+4, y0+cs-7, barW, 4, color.RGBA{R: 40, G: 10, B: 10, A: 220}, false)
	vector.FillRect(screen, x0+4, y0+cs-7, barW*frac, 4, color.RGBA{R: 80, G: 200, B: 80, A: 255}, false)

	for i := 0; i < u.Bleed(); i++ {
		vector.FillCircle(screen, x0+cs-6-float32(i)*6, y0+6, 2, targetCol, false)
	}

	switch u {
	case g.selected:
		vector.StrokeRect(screen, x0+1, y0+1, cs-2, cs-2, 2.0, selectCol, false)
	case g.target:
		vector.StrokeRect(screen, x0+1, y0+1, cs-2, cs-2, 2.0, targetCol, false)
	default:
		if g.selected != nil && u.Faction() != g.selected.Faction() && g.m.World().CanAttack(g.selected, u) {
			vector.StrokeRect(screen, x0+2, y0+2, cs-4, cs-4, 1.0, color.RGBA{R: 255, G: 120, B: 80, A: 160}, false)
		}
	}
}

func (g *Game) hudLines() []string {
	var lines []string
	switch g.m.Phase() {
	case match.PhaseSetup:
		lines = append(lines, fmt.Sprintf("SETUP  units: %d/%d  [S]niper [C]ommando [T]ank [R]avager  Enter=start",
			g.m.World().Roster(combat.Player).Len(), combat.RosterCapacity))
	case match.PhaseBattle:
		moved, attacked := "-", "-"
		if g.m.HasMoved() {
			moved = "x"
		}
		if g.m.HasAttacked() {
			attacked = "x"
		}
		lines = append(lines, fmt.Sprintf("ROUND %d  %s to act  moved[%s] attacked[%s]  Space=end turn",
			g.m.Round(), g.m.Turn(), moved, attacked))
	case match.PhaseOver:
		lines = append(lines, fmt.Sprintf("GAME OVER: %s after %d rounds  N=new game", g.m.Outcome(), g.m.Round()))
	}
	if g.selected != nil {
		lines = append(lines, g.selected.Describe(), g.selected.Archetype().AttackOptions())
	}
	if g.target != nil {
		lines = append(lines, "Target: "+g.target.Describe())
	}
	lines = append(lines, g.status)
	lines = append(lines, "click=select/move/target  1-3=attack  Esc=deselect  I=inspector  L=copy log  PgUp/PgDn=scroll")
	return lines
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	bx := float32(g.offX)
	by := float32(g.offY + g.boardH + borderWidth/2)
	bw := float32(g.width - 2*borderWidth - logPanelWidth)
	vector.FillRect(screen, bx, by, bw, float32(hudHeight),
		color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, bw, float32(hudHeight),
		1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, line := range g.hudLines() {
		ebitenutil.DebugPrintAt(screen, line, int(bx)+5, int(by)+2+i*hudLineHeight)
	}
}

func drawGrid(screen *ebiten.Image, offX, offY, w, h, spacing int, c color.Color) {
	ox, oy := float32(offX), float32(offY)
	for x := 0; x <= w; x += spacing {
		xf := ox + float32(x)
		vector.StrokeLine(screen, xf, oy, xf, oy+float32(h), 1.0, c, false)
	}
	for y := 0; y <= h; y += spacing {
		yf := oy + float32(y)
		vector.StrokeLine(screen, ox, yf, ox+float32(w), yf, 1.0, c, false)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
