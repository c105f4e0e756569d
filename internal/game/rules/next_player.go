package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
)

// NextPlayer decides who moves after turn took the game from prior to next.
// The mover keeps the turn only when the last sown piece landed in their own
// goal. That is derived from the number of pieces in the selected bin and
// then checked against how the mover's goal changed between the snapshots.
// A move that sowed nothing passes the turn.
func NextPlayer(r core.Rules, prior core.Board, turn core.Turn, next core.Board) (core.Player, error) {
	if !turn.Player.Valid() {
		return 0, core.WrapTurnError(turn, core.ErrInvalidPlayer)
	}
	if prior.BinsPerRow() != r.Bins || next.BinsPerRow() != r.Bins {
		return 0, core.WrapTurnError(turn, core.ErrInvalidRowLength)
	}
	if !r.InRange(turn.SelectedBin) {
		return 0, core.WrapTurnError(turn, core.ErrInvalidBin)
	}

	mover, opponent := turn.Player, turn.Player.Opponent()
	sown := prior.Bin(mover, turn.SelectedBin)
	if sown == 0 {
		return opponent, nil
	}

	last := LandingFor(r.Bins, turn.SelectedBin, sown)
	deposits := GoalDeposits(r.Bins, turn.SelectedBin, sown)
	delta := next.Goal(mover) - prior.Goal(mover)

	// Only a capture can move more pieces into the goal than the laps did.
	capturePossible := r.Capture && last.Kind == LandingOwnBin
	if delta < deposits || (delta != deposits && !capturePossible) {
		return 0, core.WrapTurnError(turn, fmt.Errorf("%w: %d pieces sown ending at %s, goal moved by %d",
			core.ErrInconsistentBoards, sown, last, delta))
	}
	if next.Goal(opponent) != prior.Goal(opponent) {
		return 0, core.WrapTurnError(turn, fmt.Errorf("%w: opponent goal changed from %d to %d",
			core.ErrInconsistentBoards, prior.Goal(opponent), next.Goal(opponent)))
	}

	if last.Kind == LandingGoal {
		return mover, nil
	}
	return opponent, nil
}
