package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
)

// LandingKind says which kind of pocket a sown piece ended up in.
type LandingKind int

const (
	LandingNone LandingKind = iota
	LandingOwnBin
	LandingGoal
	LandingOpponentBin
)

func (k LandingKind) String() string {
	switch k {
	case LandingNone:
		return "none"
	case LandingOwnBin:
		return "own bin"
	case LandingGoal:
		return "goal"
	case LandingOpponentBin:
		return "opponent bin"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Landing is the pocket a piece was placed in. Bin is -1 for the goal and
// for LandingNone.
type Landing struct {
	Kind LandingKind
	Bin  int
}

func (l Landing) String() string {
	if l.Kind == LandingOwnBin || l.Kind == LandingOpponentBin {
		return fmt.Sprintf("%s %d", l.Kind, l.Bin)
	}
	return l.Kind.String()
}

// LandingFor returns where the k-th piece (1-based) sown from the selected
// bin lands on a board with the given number of bins per row.
//
// Sowing walks a cycle of 2*bins+1 pockets: own bins counting down to 0,
// the own goal, the opponent's bins counting down from bins-1, then the own
// row again from bins-1. The opponent's goal is never part of the cycle.
func LandingFor(bins, selected, k int) Landing {
	if k < 1 {
		return Landing{Kind: LandingNone, Bin: -1}
	}
	idx := (bins - 1 - selected + k) % (2*bins + 1)
	switch {
	case idx < bins:
		return Landing{Kind: LandingOwnBin, Bin: bins - 1 - idx}
	case idx == bins:
		return Landing{Kind: LandingGoal, Bin: -1}
	default:
		return Landing{Kind: LandingOpponentBin, Bin: 2*bins - idx}
	}
}

// GoalDeposits counts how many of count pieces sown from selected reach the
// own goal. At most one piece is deposited per lap.
func GoalDeposits(bins, selected, count int) int {
	first := selected + 1
	if count < first {
		return 0
	}
	return 1 + (count-first)/(2*bins+1)
}

// Move is the outcome of resolving one turn.
type Move struct {
	Turn     core.Turn
	Board    core.Board
	Sown     int
	Last     Landing
	Captured int
}

// BonusTurn reports whether the last piece landed in the mover's own goal.
func (m Move) BonusTurn() bool { return m.Last.Kind == LandingGoal }

// ResolveMove sows the pieces of the turn's selected bin and returns the
// resulting board. The input board is never modified.
//
// Selecting an empty bin is rejected with core.ErrEmptyBin. When capture is
// enabled and the last piece lands in an own bin that was empty just before
// it was placed, that piece and the opponent's bin with the same index go to
// the mover's goal, provided the opponent's bin is not empty.
func ResolveMove(r core.Rules, board core.Board, turn core.Turn) (Move, error) {
	if board.BinsPerRow() != r.Bins {
		return Move{}, core.WrapTurnError(turn, fmt.Errorf("%w: board has %d bins per row, rules want %d",
			core.ErrInvalidRowLength, board.BinsPerRow(), r.Bins))
	}
	if !turn.Player.Valid() {
		return Move{}, core.WrapTurnError(turn, core.ErrInvalidPlayer)
	}
	if !r.InRange(turn.SelectedBin) {
		return Move{}, core.WrapTurnError(turn, core.ErrInvalidBin)
	}

	mover, opponent := turn.Player, turn.Player.Opponent()
	own, sown, err := board.Row(mover).Emptied(turn.SelectedBin)
	if err != nil {
		return Move{}, core.WrapTurnError(turn, err)
	}
	if sown == 0 {
		return Move{}, core.WrapTurnError(turn, core.ErrEmptyBin)
	}
	opp := board.Row(opponent)

	var last Landing
	lastWasEmpty := false
	for k := 1; k <= sown; k++ {
		last = LandingFor(r.Bins, turn.SelectedBin, k)
		switch last.Kind {
		case LandingOwnBin:
			lastWasEmpty = own.Bin(last.Bin) == 0
			err = own.AddPieceInBin(last.Bin)
		case LandingGoal:
			err = own.AddPiecesToGoal(1)
		case LandingOpponentBin:
			err = opp.AddPieceInBin(last.Bin)
		}
		if err != nil {
			return Move{}, core.WrapTurnError(turn, err)
		}
	}

	captured := 0
	if r.Capture && last.Kind == LandingOwnBin && lastWasEmpty && opp.Bin(last.Bin) > 0 {
		var mine, theirs int
		own, mine, _ = own.Emptied(last.Bin)
		opp, theirs, _ = opp.Emptied(last.Bin)
		captured = mine + theirs
		if err := own.AddPiecesToGoal(captured); err != nil {
			return Move{}, core.WrapTurnError(turn, err)
		}
	}

	next, err := r.BoardFromRows(map[core.Player]core.PlayerRow{mover: own, opponent: opp})
	if err != nil {
		return Move{}, core.WrapTurnError(turn, err)
	}
	if before, after := board.TotalPieces(), next.TotalPieces(); before != after {
		return Move{}, core.WrapTurnError(turn, fmt.Errorf("%w: %d before, %d after",
			core.ErrPieceConservation, before, after))
	}

	return Move{Turn: turn, Board: next, Sown: sown, Last: last, Captured: captured}, nil
}
