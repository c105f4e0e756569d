package core

import (
	"fmt"
	"strings"
)

// PlayerRow is one side of the board: an ordered set of bins and a goal.
// Rows are built through Rules so the bin count always matches the game.
type PlayerRow struct {
	bins []int
	goal int
}

func (r PlayerRow) Len() int { return len(r.bins) }
func (r PlayerRow) Goal() int { return r.goal }

// Bin returns the piece count of bin i. It panics if i is out of range.
func (r PlayerRow) Bin(i int) int { return r.bins[i] }

// Bins returns a copy of the bin counts.
func (r PlayerRow) Bins() []int {
	cp := make([]int, len(r.bins))
	copy(cp, r.bins)
	return cp
}

// Pieces is the number of pieces still in play on this row, goal excluded.
func (r PlayerRow) Pieces() int {
	total := 0
	for _, b := range r.bins {
		total += b
	}
	return total
}

// HasMoves reports whether any bin holds a piece.
func (r PlayerRow) HasMoves() bool { return r.Pieces() > 0 }

// Clone returns an independent copy of the row.
func (r PlayerRow) Clone() PlayerRow {
	return PlayerRow{bins: r.Bins(), goal: r.goal}
}

// Equal compares bin counts and goal.
func (r PlayerRow) Equal(o PlayerRow) bool {
	if len(r.bins) != len(o.bins) || r.goal != o.goal {
		return false
	}
	for i := range r.bins {
		if r.bins[i] != o.bins[i] {
			return false
		}
	}
	return true
}

// AddPieceInBin drops one piece into bin.
func (r *PlayerRow) AddPieceInBin(bin int) error {
	if bin < 0 || bin >= len(r.bins) {
		return newConstructionError("player row", ErrInvalidBin, "bin must be between 0 and %d, got %d", len(r.bins)-1, bin)
	}
	r.bins[bin]++
	return nil
}

// AddPiecesToGoal adds a positive number of pieces to the goal.
func (r *PlayerRow) AddPiecesToGoal(pieces int) error {
	if pieces <= 0 {
		return newConstructionError("player row", ErrNonPositiveGoalIncrement, "got %d", pieces)
	}
	r.goal += pieces
	return nil
}

// Emptied returns a copy of the row with bin cleared, and the pieces removed.
func (r PlayerRow) Emptied(bin int) (PlayerRow, int, error) {
	if bin < 0 || bin >= len(r.bins) {
		return PlayerRow{}, 0, newConstructionError("player row", ErrInvalidBin, "bin must be between 0 and %d, got %d", len(r.bins)-1, bin)
	}
	out := r.Clone()
	taken := out.bins[bin]
	out.bins[bin] = 0
	return out, taken, nil
}

// Swept returns a copy with every bin moved into the goal.
func (r PlayerRow) Swept() PlayerRow {
	return PlayerRow{bins: make([]int, len(r.bins)), goal: r.goal + r.Pieces()}
}

func (r PlayerRow) String() string {
	parts := make([]string, len(r.bins))
	for i, b := range r.bins {
		parts[i] = IntToStringFixedWidth(b, 2)
	}
	return fmt.Sprintf("[ %s | %s ]", IntToStringFixedWidth(r.goal, 2), strings.Join(parts, ", "))
}

// IntToStringFixedWidth left-pads num with spaces to width. Longer numbers
// are not truncated.
func IntToStringFixedWidth(num int, width int) string {
	return fmt.Sprintf("%*d", width, num)
}
