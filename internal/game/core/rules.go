package core

import "fmt"

// Canonical board geometry and scoring.
const (
	DefaultBins             = 6
	DefaultStartingPieces   = 4
	DefaultVictoryThreshold = 24
)

// Rules holds the configuration constants of a game. It is the factory for
// rows, boards and turns so every invariant is checked against the same N.
type Rules struct {
	Bins             int
	StartingPieces   int
	VictoryThreshold int
	// Capture enables the steal rule: a last piece landing in an own empty
	// bin takes the mirrored opponent bin into the goal.
	Capture bool
}

// DefaultRules returns the canonical 6-bin, 4-piece game without capture.
func DefaultRules() Rules {
	return Rules{
		Bins:             DefaultBins,
		StartingPieces:   DefaultStartingPieces,
		VictoryThreshold: DefaultVictoryThreshold,
	}
}

// Validate checks that the rules describe a playable board.
func (r Rules) Validate() error {
	if r.Bins < 1 {
		return fmt.Errorf("%w: bins must be at least 1, got %d", ErrInvalidRules, r.Bins)
	}
	if r.StartingPieces < 1 {
		return fmt.Errorf("%w: starting pieces must be at least 1, got %d", ErrInvalidRules, r.StartingPieces)
	}
	if r.VictoryThreshold < 1 {
		return fmt.Errorf("%w: victory threshold must be at least 1, got %d", ErrInvalidRules, r.VictoryThreshold)
	}
	return nil
}

// TotalPieces is the number of pieces in play for the whole game.
func (r Rules) TotalPieces() int { return 2 * r.Bins * r.StartingPieces }

// InRange reports whether bin is a valid index for a row.
func (r Rules) InRange(bin int) bool { return bin >= 0 && bin < r.Bins }

// NewPlayerRow validates and builds a row. The bins slice is copied.
func (r Rules) NewPlayerRow(bins []int, goal int) (PlayerRow, error) {
	if len(bins) != r.Bins {
		return PlayerRow{}, newConstructionError("player row", ErrInvalidRowLength, "want %d bins, got %d", r.Bins, len(bins))
	}
	for i, b := range bins {
		if b < 0 {
			return PlayerRow{}, newConstructionError("player row", ErrNegativePieces, "bin %d holds %d", i, b)
		}
	}
	if goal < 0 {
		return PlayerRow{}, newConstructionError("player row", ErrNegativePieces, "goal holds %d", goal)
	}
	cp := make([]int, len(bins))
	copy(cp, bins)
	return PlayerRow{bins: cp, goal: goal}, nil
}

// NewRow returns a fresh row with StartingPieces in every bin and an empty goal.
func (r Rules) NewRow() PlayerRow {
	bins := make([]int, r.Bins)
	for i := range bins {
		bins[i] = r.StartingPieces
	}
	return PlayerRow{bins: bins}
}

// NewBoard returns the opening position.
func (r Rules) NewBoard() Board {
	b, _ := r.BoardFromRows(map[Player]PlayerRow{
		PlayerOne: r.NewRow(),
		PlayerTwo: r.NewRow(),
	})
	return b
}

// BoardFromRows builds a board from one row per player.
func (r Rules) BoardFromRows(rows map[Player]PlayerRow) (Board, error) {
	b := Board{bins: r.Bins, cells: make([]int, 2*(r.Bins+1))}
	for _, p := range Players {
		row, ok := rows[p]
		if !ok {
			return Board{}, newConstructionError("board", ErrMissingPlayer, "no row for player %s", p)
		}
		if row.Len() != r.Bins {
			return Board{}, newConstructionError("board", ErrInvalidRowLength, "player %s row has %d bins, want %d", p, row.Len(), r.Bins)
		}
		b.setRow(p, row)
	}
	for p := range rows {
		if !p.Valid() {
			return Board{}, newConstructionError("board", ErrInvalidPlayer, "unexpected player %d", int(p))
		}
	}
	return b, nil
}

// NewTurn validates the selected bin against the row width.
func (r Rules) NewTurn(player Player, selectedBin int) (Turn, error) {
	if !player.Valid() {
		return Turn{}, newConstructionError("turn", ErrInvalidPlayer, "player %d", int(player))
	}
	if !r.InRange(selectedBin) {
		return Turn{}, newConstructionError("turn", ErrInvalidBin, "bin must be between 0 and %d, got %d", r.Bins-1, selectedBin)
	}
	return Turn{Player: player, SelectedBin: selectedBin}, nil
}
