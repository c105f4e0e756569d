package states

import (
	"time"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/rs/zerolog"
)

// GameContext provides simulation information to states for making decisions
type GameContext struct {
	// GameID uniquely identifies this simulation run
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// StartTime is when PhaseRunning was entered
	StartTime time.Time

	// EndTime is when a terminal phase was entered
	EndTime time.Time

	// Winner is the winning player; nil for a tie or while undecided
	Winner *core.Player

	// Error holds the error that caused the transition to PhaseAborted
	Error error

	base zerolog.Logger
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, logger zerolog.Logger) *GameContext {
	gc := &GameContext{base: logger}
	gc.setGameID(gameID)
	return gc
}

func (gc *GameContext) setGameID(gameID string) {
	gc.GameID = gameID
	gc.Logger = gc.base.With().Str("game_id", gameID).Logger()
}

// GetElapsedTime returns the time spent running, up to the end of the game if it ended
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	if !gc.EndTime.IsZero() {
		return gc.EndTime.Sub(gc.StartTime)
	}
	return time.Since(gc.StartTime)
}

func (gc *GameContext) clear() {
	gc.StartTime = time.Time{}
	gc.EndTime = time.Time{}
	gc.Winner = nil
	gc.Error = nil
}
