// Package strategy holds the decision strategies that pick a bin for the
// player to move.
package strategy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"golang.org/x/exp/rand"
)

var (
	// ErrNoLegalMove is returned when every bin of the row is empty.
	ErrNoLegalMove = errors.New("no legal move")
	// ErrMissingOpponentRow is returned by strategies that need to see the
	// opponent's row when none was given.
	ErrMissingOpponentRow = errors.New("strategy requires the opponent row")
	// ErrUnknownStrategy is returned by New for an unregistered name.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Strategy picks a non-empty bin from the mover's row. The opponent row may
// be nil for strategies that do not look at it.
type Strategy interface {
	Name() string
	ChooseBin(own core.PlayerRow, opponent *core.PlayerRow) (int, error)
}

// Rand is the randomness a strategy may draw on.
type Rand interface {
	Intn(n int) int
}

// Registered strategy names.
const (
	RandomSelectionName                   = "random-selection"
	AlwaysMinimumName                     = "always-minimum"
	AlwaysMaximumName                     = "always-maximum"
	EvenGoalOrPiecesOnOtherSideName       = "even-goal-or-pieces-on-other-side"
	EvenGoalStealAndPiecesOnOtherSideName = "even-goal-steal-and-pieces-on-other-side"
)

var registry = map[string]func(Rand) Strategy{
	RandomSelectionName:                   func(r Rand) Strategy { return NewRandomSelection(r) },
	AlwaysMinimumName:                     func(Rand) Strategy { return AlwaysMinimum{} },
	AlwaysMaximumName:                     func(Rand) Strategy { return AlwaysMaximum{} },
	EvenGoalOrPiecesOnOtherSideName:       func(Rand) Strategy { return EvenGoalOrPiecesOnOtherSide{} },
	EvenGoalStealAndPiecesOnOtherSideName: func(Rand) Strategy { return EvenGoalStealAndPiecesOnOtherSide{} },
}

// New builds the strategy registered under name. rng is only used by
// randomized strategies; nil means a time-seeded source.
func New(name string, rng Rand) (Strategy, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return ctor(rng), nil
}

// Names lists every registered strategy in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func noLegalMove(name string) error {
	return fmt.Errorf("%s: %w", name, ErrNoLegalMove)
}

// nonEmpty returns the indices of bins holding pieces, in ascending order.
func nonEmpty(own core.PlayerRow) []int {
	var bins []int
	for i := 0; i < own.Len(); i++ {
		if own.Bin(i) > 0 {
			bins = append(bins, i)
		}
	}
	return bins
}
