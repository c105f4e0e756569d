package strategy

import "github.com/mitchelldurbincs/mancala/internal/game/core"

// RandomSelection picks uniformly among the non-empty bins.
type RandomSelection struct {
	rng Rand
}

func NewRandomSelection(rng Rand) *RandomSelection {
	return &RandomSelection{rng: rng}
}

func (s *RandomSelection) Name() string { return RandomSelectionName }

func (s *RandomSelection) ChooseBin(own core.PlayerRow, _ *core.PlayerRow) (int, error) {
	bins := nonEmpty(own)
	if len(bins) == 0 {
		return 0, noLegalMove(s.Name())
	}
	return bins[s.rng.Intn(len(bins))], nil
}

// AlwaysMinimum picks the first bin holding the fewest pieces.
type AlwaysMinimum struct{}

func (AlwaysMinimum) Name() string { return AlwaysMinimumName }

func (s AlwaysMinimum) ChooseBin(own core.PlayerRow, _ *core.PlayerRow) (int, error) {
	best := -1
	for _, i := range nonEmpty(own) {
		if best < 0 || own.Bin(i) < own.Bin(best) {
			best = i
		}
	}
	if best < 0 {
		return 0, noLegalMove(s.Name())
	}
	return best, nil
}

// AlwaysMaximum picks the first bin holding the most pieces.
type AlwaysMaximum struct{}

func (AlwaysMaximum) Name() string { return AlwaysMaximumName }

func (s AlwaysMaximum) ChooseBin(own core.PlayerRow, _ *core.PlayerRow) (int, error) {
	best := -1
	for _, i := range nonEmpty(own) {
		if best < 0 || own.Bin(i) > own.Bin(best) {
			best = i
		}
	}
	if best < 0 {
		return 0, noLegalMove(s.Name())
	}
	return best, nil
}
