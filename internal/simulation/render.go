package simulation

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/states"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorBlue   = "\033[34m"
	ColorGray   = "\033[90m"
	BgYellow    = "\033[43m"
	ColorYellow = "\033[33m"
)

var playerColors = map[core.Player]string{
	core.PlayerOne: ColorRed,
	core.PlayerTwo: ColorBlue,
}

// RenderBoard draws a board with bins aligned by index, player two on top.
// When last is non-nil its selected bin is highlighted in color mode.
func RenderBoard(b core.Board, last *core.Turn, color bool) string {
	bins := b.BinsPerRow()

	var sb strings.Builder
	sb.Grow((bins*3 + 16) * 3 * 2)

	sb.WriteString(paint(color, ColorGray, "bin "))
	for i := 0; i < bins; i++ {
		sb.WriteString(paint(color, ColorGray, core.IntToStringFixedWidth(i, 3)))
	}
	sb.WriteString("\n")

	for _, p := range []core.Player{core.PlayerTwo, core.PlayerOne} {
		sb.WriteString(paint(color, playerColors[p], fmt.Sprintf("%-4s", p.String())))
		for i := 0; i < bins; i++ {
			cell := core.IntToStringFixedWidth(b.Bin(p, i), 3)
			if color && last != nil && last.Player == p && last.SelectedBin == i {
				sb.WriteString(BgYellow)
				sb.WriteString(cell)
				sb.WriteString(ColorReset)
				continue
			}
			sb.WriteString(cell)
		}
		sb.WriteString("  goal ")
		sb.WriteString(paint(color, playerColors[p], core.IntToStringFixedWidth(b.Goal(p), 2)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Render draws the latest board followed by a status line.
func (l *Loop) Render(color bool) string {
	var last *core.Turn
	if n := len(l.history.turns); n > 0 {
		t := l.history.turns[n-1]
		last = &t
	}

	var sb strings.Builder
	sb.WriteString(RenderBoard(l.history.last(), last, color))

	switch l.Phase() {
	case states.PhaseFinished:
		if w := l.Winner(); w != nil {
			sb.WriteString(paint(color, ColorYellow, fmt.Sprintf("winner: %s after %d turns", w, l.TurnCount())))
		} else {
			sb.WriteString(paint(color, ColorYellow, fmt.Sprintf("tie after %d turns", l.TurnCount())))
		}
	case states.PhaseAborted:
		sb.WriteString(fmt.Sprintf("aborted after %d turns: %v", l.TurnCount(), l.Err()))
	default:
		sb.WriteString(fmt.Sprintf("turn %d, %s to move", l.TurnCount(), l.current))
	}
	sb.WriteString("\n")

	return sb.String()
}

func paint(color bool, code, s string) string {
	if !color {
		return s
	}
	return code + s + ColorReset
}
