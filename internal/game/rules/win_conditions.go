package rules

import (
	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/rs/zerolog"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
	rules  core.Rules
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger, r core.Rules) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
		rules:  r,
	}
}

// CheckVictory reports whether either goal holds strictly more than the
// victory threshold. The mover is checked first.
func (wc *WinConditionChecker) CheckVictory(board core.Board, mover core.Player) (bool, core.Player) {
	for _, p := range []core.Player{mover, mover.Opponent()} {
		if board.Goal(p) > wc.rules.VictoryThreshold {
			wc.logger.Info().
				Str("winner", p.String()).
				Int("goal", board.Goal(p)).
				Int("threshold", wc.rules.VictoryThreshold).
				Msg("Victory threshold exceeded")
			return true, p
		}
	}
	return false, mover
}

// ResolveStalemate sweeps every player's remaining bin pieces into their own
// goal and compares the totals. The returned winner is nil for a tie.
func (wc *WinConditionChecker) ResolveStalemate(board core.Board) (core.Board, *core.Player, error) {
	swept, err := wc.rules.BoardFromRows(map[core.Player]core.PlayerRow{
		core.PlayerOne: board.Row(core.PlayerOne).Swept(),
		core.PlayerTwo: board.Row(core.PlayerTwo).Swept(),
	})
	if err != nil {
		return core.Board{}, nil, err
	}

	one, two := swept.Goal(core.PlayerOne), swept.Goal(core.PlayerTwo)
	var winner *core.Player
	switch {
	case one > two:
		w := core.PlayerOne
		winner = &w
	case two > one:
		w := core.PlayerTwo
		winner = &w
	}

	evt := wc.logger.Info().Int("goal_one", one).Int("goal_two", two)
	if winner != nil {
		evt.Str("winner", winner.String()).Msg("Stalemate resolved")
	} else {
		evt.Msg("Stalemate resolved as a tie")
	}
	return swept, winner, nil
}
