package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Skirmish/internal/match"
)

const (
	logPanelWidth = 420
	logLineHeight = 14
	logTitleH     = 16
)

// battlePanel renders the tail of the battle log on the right of the board.
type battlePanel struct {
	scroll int // entries hidden below the bottom edge
}

func (bp *battlePanel) scrollBy(n int) {
	bp.scroll = max(bp.scroll+n, 0)
}

// visibleEntries returns the window of entries that fits in maxVisible rows
// when scrolled up by scroll entries from the newest.
func visibleEntries(entries []match.LogEntry, maxVisible, scroll int) []match.LogEntry {
	if maxVisible <= 0 {
		return nil
	}
	end := len(entries) - min(scroll, len(entries))
	start := max(end-maxVisible, 0)
	return entries[start:end]
}

// Draw renders the panel at panelX, from top down to panelH.
func (bp *battlePanel) Draw(screen *ebiten.Image, log *match.BattleLog, panelX, top, panelH int) {
	px, py := float32(panelX), float32(top)
	vector.FillRect(screen, px, py, float32(logPanelWidth), float32(panelH-top), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, px, py, px, float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, px, py, float32(logPanelWidth), logTitleH, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "BATTLE LOG", panelX+8, top)
	vector.StrokeLine(screen, px, py+logTitleH, px+logPanelWidth, py+logTitleH, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := log.Entries()
	bp.scroll = min(bp.scroll, len(entries))
	visible := visibleEntries(entries, (panelH-top-logTitleH-8)/logLineHeight, bp.scroll)
	recent := 3

	y := top + logTitleH + 4
	for i, e := range visible {
		if bp.scroll == 0 && i >= len(visible)-recent {
			vector.FillRect(screen, px+2, float32(y), float32(logPanelWidth-4), logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}

		dotCol := color.RGBA{R: 120, G: 120, B: 120, A: 255}
		switch e.Faction {
		case "player":
			dotCol = playerCol
		case "opponent":
			dotCol = opponentCol
		}
		vector.FillRect(screen, px+5, float32(y+4), 3, 6, dotCol, false)

		ebitenutil.DebugPrintAt(screen, e.String(), panelX+12, y-1)
		y += logLineHeight
	}
}
