package states

import (
	"errors"
	"time"
)

// NotStartedState holds a fresh simulation waiting for its first move
type NotStartedState struct{}

func NewNotStartedState() State {
	return &NotStartedState{}
}

func (s *NotStartedState) Phase() GamePhase {
	return PhaseNotStarted
}

func (s *NotStartedState) Enter(ctx *GameContext) error {
	ctx.clear()
	ctx.Logger.Debug().Msg("Simulation ready")
	return nil
}

func (s *NotStartedState) Exit(ctx *GameContext) error {
	return nil
}

func (s *NotStartedState) Validate(ctx *GameContext) error {
	return nil
}

// RunningState represents active play
type RunningState struct{}

func NewRunningState() State {
	return &RunningState{}
}

func (s *RunningState) Phase() GamePhase {
	return PhaseRunning
}

func (s *RunningState) Enter(ctx *GameContext) error {
	ctx.StartTime = time.Now()
	ctx.Logger.Debug().
		Time("start_time", ctx.StartTime).
		Msg("Simulation started")
	return nil
}

func (s *RunningState) Exit(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Debug().
		Dur("elapsed", ctx.GetElapsedTime()).
		Msg("Exiting running state")
	return nil
}

func (s *RunningState) Validate(ctx *GameContext) error {
	if ctx.GameID == "" {
		return errors.New("simulation has no id")
	}
	return nil
}

// FinishedState is reached when a winner or a tie was declared
type FinishedState struct{}

func NewFinishedState() State {
	return &FinishedState{}
}

func (s *FinishedState) Phase() GamePhase {
	return PhaseFinished
}

func (s *FinishedState) Enter(ctx *GameContext) error {
	evt := ctx.Logger.Info().Dur("elapsed", ctx.GetElapsedTime())
	if ctx.Winner != nil {
		evt.Str("winner", ctx.Winner.String()).Msg("Simulation finished")
	} else {
		evt.Msg("Simulation finished in a tie")
	}
	return nil
}

func (s *FinishedState) Exit(ctx *GameContext) error {
	return nil
}

func (s *FinishedState) Validate(ctx *GameContext) error {
	if ctx.Error != nil {
		return errors.New("cannot finish a simulation that recorded an error")
	}
	if ctx.Winner != nil && !ctx.Winner.Valid() {
		return errors.New("winner is not a valid player")
	}
	return nil
}

// AbortedState is reached when a fatal error stops the simulation
type AbortedState struct{}

func NewAbortedState() State {
	return &AbortedState{}
}

func (s *AbortedState) Phase() GamePhase {
	return PhaseAborted
}

func (s *AbortedState) Enter(ctx *GameContext) error {
	if ctx.EndTime.IsZero() {
		ctx.EndTime = time.Now()
	}
	ctx.Winner = nil
	ctx.Logger.Error().
		Err(ctx.Error).
		Msg("Simulation aborted")
	return nil
}

func (s *AbortedState) Exit(ctx *GameContext) error {
	ctx.Logger.Info().Msg("Leaving aborted state")
	return nil
}

func (s *AbortedState) Validate(ctx *GameContext) error {
	if ctx.Error == nil {
		return errors.New("aborting requires an error")
	}
	return nil
}
