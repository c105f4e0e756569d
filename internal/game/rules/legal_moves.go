package rules

import "github.com/mitchelldurbincs/mancala/internal/game/core"

// LegalMoveCalculator computes legal moves for players
type LegalMoveCalculator struct{}

// NewLegalMoveCalculator creates a new legal move calculator
func NewLegalMoveCalculator() *LegalMoveCalculator {
	return &LegalMoveCalculator{}
}

// LegalBinMask returns one entry per bin of the row; true means the bin
// holds at least one piece and may be selected.
func (lmc *LegalMoveCalculator) LegalBinMask(row core.PlayerRow) []bool {
	mask := make([]bool, row.Len())
	for i := range mask {
		mask[i] = row.Bin(i) > 0
	}
	return mask
}

// LegalBins lists the selectable bin indices in ascending order.
func (lmc *LegalMoveCalculator) LegalBins(row core.PlayerRow) []int {
	var bins []int
	for i := 0; i < row.Len(); i++ {
		if row.Bin(i) > 0 {
			bins = append(bins, i)
		}
	}
	return bins
}

// HasLegalMove reports whether the player to move can select any bin.
func (lmc *LegalMoveCalculator) HasLegalMove(board core.Board, p core.Player) bool {
	for i := 0; i < board.BinsPerRow(); i++ {
		if board.Bin(p, i) > 0 {
			return true
		}
	}
	return false
}
