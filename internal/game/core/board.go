package core

import "strings"

// Board holds both rows in one flat slice: for each player the N bins
// followed by the goal. A Board is never mutated after construction, which
// lets many snapshots share backing storage.
type Board struct {
	bins  int
	cells []int // length 2*(bins+1)
}

func (b Board) stride() int { return b.bins + 1 }
func (b Board) base(p Player) int { return int(p) * b.stride() }
func (b Board) IsZero() bool { return b.cells == nil }
func (b Board) BinsPerRow() int { return b.bins }
func (b Board) Goal(p Player) int { return b.cells[b.base(p)+b.bins] }
func (b Board) Bin(p Player, i int) int { return b.cells[b.base(p)+i] }

// Row returns an independent copy of the player's row.
func (b Board) Row(p Player) PlayerRow {
	start := b.base(p)
	bins := make([]int, b.bins)
	copy(bins, b.cells[start:start+b.bins])
	return PlayerRow{bins: bins, goal: b.cells[start+b.bins]}
}

// Rows returns a copy of both rows keyed by player.
func (b Board) Rows() map[Player]PlayerRow {
	return map[Player]PlayerRow{PlayerOne: b.Row(PlayerOne), PlayerTwo: b.Row(PlayerTwo)}
}

func (b *Board) setRow(p Player, row PlayerRow) {
	start := b.base(p)
	copy(b.cells[start:start+b.bins], row.bins)
	b.cells[start+b.bins] = row.goal
}

// TotalPieces counts every piece on the board, goals included.
func (b Board) TotalPieces() int {
	total := 0
	for _, c := range b.cells {
		total += c
	}
	return total
}

// Equal reports whether both boards hold the same pieces in the same places.
func (b Board) Equal(o Board) bool {
	if b.bins != o.bins || len(b.cells) != len(o.cells) {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Clone returns a board with its own storage.
func (b Board) Clone() Board {
	cells := make([]int, len(b.cells))
	copy(cells, b.cells)
	return Board{bins: b.bins, cells: cells}
}

// AppendCells appends the flat board encoding to dst.
func (b Board) AppendCells(dst []int) []int { return append(dst, b.cells...) }

// BoardView wraps a flat encoding without copying it. The caller must not
// modify cells afterwards.
func BoardView(bins int, cells []int) (Board, error) {
	if bins < 1 || len(cells) != 2*(bins+1) {
		return Board{}, newConstructionError("board", ErrInvalidRowLength, "want %d cells for %d bins, got %d", 2*(bins+1), bins, len(cells))
	}
	for i, c := range cells {
		if c < 0 {
			return Board{}, newConstructionError("board", ErrNegativePieces, "cell %d holds %d", i, c)
		}
	}
	return Board{bins: bins, cells: cells[:len(cells):len(cells)]}, nil
}

func (b Board) String() string {
	var sb strings.Builder
	for _, p := range Players {
		sb.WriteString(p.String())
		sb.WriteString(": ")
		sb.WriteString(b.Row(p).String())
		if p == PlayerOne {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
