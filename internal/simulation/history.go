package simulation

import (
	"github.com/mitchelldurbincs/mancala/internal/game/core"
)

// history is the replay log of a simulation. Board snapshots live in one
// flat arena and are referenced by offset, so a past board is never copied
// again once recorded and never overwritten.
type history struct {
	bins    int
	arena   []int
	offsets []int
	turns   []core.Turn
}

func newHistory(r core.Rules, initial core.Board) *history {
	h := &history{bins: r.Bins}
	h.reset(initial)
	return h
}

func (h *history) stride() int { return 2 * (h.bins + 1) }

func (h *history) reset(initial core.Board) {
	// A fresh arena keeps boards from the previous run intact for callers
	// still holding them.
	h.arena = nil
	h.offsets = h.offsets[:0]
	h.turns = h.turns[:0]
	h.push(initial)
}

func (h *history) push(b core.Board) {
	h.offsets = append(h.offsets, len(h.arena))
	h.arena = b.AppendCells(h.arena)
}

// record appends the board produced by turn.
func (h *history) record(turn core.Turn, b core.Board) {
	h.turns = append(h.turns, turn)
	h.push(b)
}

// replaceLast points the last history entry at a new snapshot. The old
// snapshot stays in the arena so views handed out earlier remain valid.
func (h *history) replaceLast(b core.Board) {
	h.offsets = h.offsets[:len(h.offsets)-1]
	h.push(b)
}

func (h *history) board(i int) core.Board {
	off := h.offsets[i]
	b, err := core.BoardView(h.bins, h.arena[off:off+h.stride()])
	if err != nil {
		// The arena only ever receives cells of validated boards.
		panic(err)
	}
	return b
}

func (h *history) last() core.Board { return h.board(len(h.offsets) - 1) }

func (h *history) boardCount() int { return len(h.offsets) }

func (h *history) turnCount() int { return len(h.turns) }

func (h *history) boards() []core.Board {
	out := make([]core.Board, len(h.offsets))
	for i := range h.offsets {
		out[i] = h.board(i)
	}
	return out
}

func (h *history) turnLog() []core.Turn {
	out := make([]core.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}
