package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBin               = errors.New("bin index out of range")
	ErrInvalidRowLength         = errors.New("row has the wrong number of bins")
	ErrNegativePieces           = errors.New("piece count must be non-negative")
	ErrNonPositiveGoalIncrement = errors.New("pieces added to a goal must be positive")
	ErrMissingPlayer            = errors.New("board is missing a player row")
	ErrInvalidPlayer            = errors.New("invalid player")
	ErrEmptyBin                 = errors.New("selected bin holds no pieces")
	ErrPieceConservation        = errors.New("piece count changed during a move")
	ErrInconsistentBoards       = errors.New("boards are inconsistent with the turn")
	ErrInvalidRules             = errors.New("invalid rules")
)

// ConstructionError reports an entity that failed validation while being built.
type ConstructionError struct {
	Entity string
	Detail string
	Err    error
}

func (e *ConstructionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("construct %s: %v", e.Entity, e.Err)
	}
	return fmt.Sprintf("construct %s: %s: %v", e.Entity, e.Detail, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func newConstructionError(entity string, err error, format string, args ...interface{}) error {
	return &ConstructionError{Entity: entity, Detail: fmt.Sprintf(format, args...), Err: err}
}

// WrapTurnError adds the player and selected bin to an error raised while resolving a turn.
func WrapTurnError(turn Turn, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("player %s: sow from bin %d: %w", turn.Player, turn.SelectedBin, err)
}

// WrapGameStateError adds the move number and simulation phase to an error.
func WrapGameStateError(move int, phase string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("game move %d [%s]: %w", move, phase, err)
}

// GameError reports a turn that could not be played. Move counts from 1.
type GameError struct {
	Move      int
	Player    Player
	Operation string
	Err       error
}

// NewGameError creates a GameError.
func NewGameError(move int, player Player, operation string, err error) *GameError {
	return &GameError{Move: move, Player: player, Operation: operation, Err: err}
}

func (e *GameError) Error() string {
	return fmt.Sprintf("move %d: player %s %s: %v", e.Move, e.Player, e.Operation, e.Err)
}

func (e *GameError) Unwrap() error { return e.Err }
