package strategy

import (
	"fmt"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/rules"
)

// EvenGoalOrPiecesOnOtherSide prefers, in order: the lowest bin whose last
// piece lands in the goal, the bin that sows the most pieces into the
// opponent's row, the first bin whose move sets up a goal landing, and
// finally the first non-empty bin.
type EvenGoalOrPiecesOnOtherSide struct{}

func (EvenGoalOrPiecesOnOtherSide) Name() string { return EvenGoalOrPiecesOnOtherSideName }

func (s EvenGoalOrPiecesOnOtherSide) ChooseBin(own core.PlayerRow, _ *core.PlayerRow) (int, error) {
	bins := own.Bins()
	legal := nonEmpty(own)
	if len(legal) == 0 {
		return 0, noLegalMove(s.Name())
	}
	if bin, ok := firstGoalMove(bins); ok {
		return bin, nil
	}
	if bin, ok := mostPiecesOnOtherSide(bins, legal); ok {
		return bin, nil
	}
	return setupOrFirst(bins, legal), nil
}

// EvenGoalStealAndPiecesOnOtherSide adds a capture-seeking tier after the
// goal tier: the bin whose last piece lands in an own empty bin facing the
// most opponent pieces.
type EvenGoalStealAndPiecesOnOtherSide struct{}

func (EvenGoalStealAndPiecesOnOtherSide) Name() string {
	return EvenGoalStealAndPiecesOnOtherSideName
}

func (s EvenGoalStealAndPiecesOnOtherSide) ChooseBin(own core.PlayerRow, opponent *core.PlayerRow) (int, error) {
	if opponent == nil {
		return 0, ErrMissingOpponentRow
	}
	if opponent.Len() != own.Len() {
		return 0, fmt.Errorf("%w: own row has %d bins, opponent row %d", core.ErrInvalidRowLength, own.Len(), opponent.Len())
	}
	bins := own.Bins()
	legal := nonEmpty(own)
	if len(legal) == 0 {
		return 0, noLegalMove(s.Name())
	}
	if bin, ok := firstGoalMove(bins); ok {
		return bin, nil
	}

	opp := opponent.Bins()
	best, bestValue := -1, 0
	for _, i := range legal {
		if v := stealValue(bins, opp, i); v > bestValue {
			best, bestValue = i, v
		}
	}
	if best >= 0 {
		return best, nil
	}

	if bin, ok := mostPiecesOnOtherSide(bins, legal); ok {
		return bin, nil
	}
	return setupOrFirst(bins, legal), nil
}

func endsInGoal(bins []int, i int) bool {
	return bins[i] > 0 && rules.LandingFor(len(bins), i, bins[i]).Kind == rules.LandingGoal
}

func firstGoalMove(bins []int) (int, bool) {
	for i := range bins {
		if endsInGoal(bins, i) {
			return i, true
		}
	}
	return 0, false
}

// piecesOnOtherSide counts the pieces a move from bin i sows into the
// opponent's row.
func piecesOnOtherSide(bins []int, i int) int {
	n := 0
	for k := 1; k <= bins[i]; k++ {
		if rules.LandingFor(len(bins), i, k).Kind == rules.LandingOpponentBin {
			n++
		}
	}
	return n
}

func mostPiecesOnOtherSide(bins []int, legal []int) (int, bool) {
	best, most := -1, 0
	for _, i := range legal {
		if n := piecesOnOtherSide(bins, i); n > most {
			best, most = i, n
		}
	}
	return best, best >= 0
}

// sownOwnRow is the mover's bins after sowing from i, ignoring the goal and
// the opponent's row.
func sownOwnRow(bins []int, i int) []int {
	out := make([]int, len(bins))
	copy(out, bins)
	count := out[i]
	out[i] = 0
	for k := 1; k <= count; k++ {
		if l := rules.LandingFor(len(bins), i, k); l.Kind == rules.LandingOwnBin {
			out[l.Bin]++
		}
	}
	return out
}

func setupOrFirst(bins []int, legal []int) int {
	for _, i := range legal {
		if _, ok := firstGoalMove(sownOwnRow(bins, i)); ok {
			return i
		}
	}
	return legal[0]
}

// stealValue is the number of pieces a capture from bin i would win: the
// landing piece plus the facing opponent bin. Zero when the move does not
// end in an own bin that was empty before the last piece, or when the
// facing bin is empty after sowing.
func stealValue(bins, opp []int, i int) int {
	own := make([]int, len(bins))
	copy(own, bins)
	theirs := make([]int, len(opp))
	copy(theirs, opp)

	count := own[i]
	own[i] = 0
	var last rules.Landing
	wasEmpty := false
	for k := 1; k <= count; k++ {
		last = rules.LandingFor(len(bins), i, k)
		switch last.Kind {
		case rules.LandingOwnBin:
			wasEmpty = own[last.Bin] == 0
			own[last.Bin]++
		case rules.LandingOpponentBin:
			theirs[last.Bin]++
		}
	}
	if last.Kind != rules.LandingOwnBin || !wasEmpty || theirs[last.Bin] == 0 {
		return 0
	}
	return theirs[last.Bin] + 1
}
