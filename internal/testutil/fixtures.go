package testutil

import (
	"fmt"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
)

// MustRow builds a row for the default rules and panics on invalid input.
func MustRow(bins []int, goal int) core.PlayerRow {
	row, err := core.DefaultRules().NewPlayerRow(bins, goal)
	if err != nil {
		panic(fmt.Sprintf("testutil.MustRow: %v", err))
	}
	return row
}

// MustBoard builds a board where mover owns the first row and the opponent
// the second.
func MustBoard(mover core.Player, own, opponent core.PlayerRow) core.Board {
	b, err := core.DefaultRules().BoardFromRows(map[core.Player]core.PlayerRow{
		mover:            own,
		mover.Opponent(): opponent,
	})
	if err != nil {
		panic(fmt.Sprintf("testutil.MustBoard: %v", err))
	}
	return b
}

// MustTurn builds a validated turn for the default rules.
func MustTurn(p core.Player, bin int) core.Turn {
	turn, err := core.DefaultRules().NewTurn(p, bin)
	if err != nil {
		panic(fmt.Sprintf("testutil.MustTurn: %v", err))
	}
	return turn
}

// FreshRow is the opening row of the default rules.
func FreshRow() core.PlayerRow {
	return core.DefaultRules().NewRow()
}

// CaptureRules returns the default rules with the capture rule turned on.
func CaptureRules() core.Rules {
	r := core.DefaultRules()
	r.Capture = true
	return r
}
