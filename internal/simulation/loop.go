// Package simulation plays two strategies against each other until one of
// them wins or the board runs dry.
package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/events"
	"github.com/mitchelldurbincs/mancala/internal/game/rules"
	"github.com/mitchelldurbincs/mancala/internal/game/states"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

// DefaultMaxTurns caps a simulation that never reaches a terminal board.
const DefaultMaxTurns = 1000

var (
	// ErrTurnLimit aborts a simulation that ran past its turn cap.
	ErrTurnLimit = errors.New("turn limit reached")
	// ErrAlreadyFinished is returned when stepping a simulation in a terminal phase.
	ErrAlreadyFinished = errors.New("simulation already finished")
)

// Config describes one simulation.
type Config struct {
	Rules core.Rules
	// Strategies must hold one entry per player.
	Strategies map[core.Player]strategy.Strategy
	// StartingPlayer pins the first mover. When nil it is drawn from Rng on
	// every reset.
	StartingPlayer *core.Player
	Rng            strategy.Rand
	// MaxTurns <= 0 means DefaultMaxTurns.
	MaxTurns int
	GameID   string
	// EventBus is optional; a private bus is created when nil.
	EventBus events.Bus
	Logger   zerolog.Logger
}

// Loop drives one simulation. It is not safe for concurrent use.
type Loop struct {
	rules      core.Rules
	strategies map[core.Player]strategy.Strategy
	pinned     *core.Player
	rng        strategy.Rand
	maxTurns   int
	logger     zerolog.Logger

	history  *history
	starting core.Player
	current  core.Player

	winCondition  *rules.WinConditionChecker
	legalMoves    *rules.LegalMoveCalculator
	eventBus      events.Bus
	stateMachine  *states.StateMachine
	turnProcessor *turnProcessor
}

// NewLoop validates cfg and builds a loop ready for its first step.
func NewLoop(ctx context.Context, cfg Config) (*Loop, error) {
	return NewLoopInitializer(cfg).Initialize(ctx)
}

// GameID identifies the current run. It changes on every Reset.
func (l *Loop) GameID() string { return l.stateMachine.GetContext().GameID }

// Phase returns the current lifecycle phase.
func (l *Loop) Phase() states.GamePhase { return l.stateMachine.CurrentPhase() }

func (l *Loop) Rules() core.Rules { return l.rules }
func (l *Loop) StartingPlayer() core.Player { return l.starting }
func (l *Loop) CurrentPlayer() core.Player { return l.current }
func (l *Loop) EventBus() events.Bus { return l.eventBus }
func (l *Loop) StateMachine() *states.StateMachine { return l.stateMachine }

// Strategy returns the strategy playing for p.
func (l *Loop) Strategy(p core.Player) strategy.Strategy { return l.strategies[p] }

// Winner returns the winner of a finished simulation. It is nil for a tie
// and for a simulation that has not finished.
func (l *Loop) Winner() *core.Player {
	if l.Phase() != states.PhaseFinished {
		return nil
	}
	w := l.stateMachine.GetContext().Winner
	if w == nil {
		return nil
	}
	winner := *w
	return &winner
}

// IsTie reports whether the simulation finished without a winner.
func (l *Loop) IsTie() bool {
	return l.Phase() == states.PhaseFinished && l.stateMachine.GetContext().Winner == nil
}

// Err returns the error that aborted the simulation, if any.
func (l *Loop) Err() error { return l.stateMachine.GetContext().Error }

// Boards returns every board of the run, starting with the opening board.
func (l *Loop) Boards() []core.Board { return l.history.boards() }

// Turns returns every turn taken, in order.
func (l *Loop) Turns() []core.Turn { return l.history.turnLog() }

// LastBoard returns the most recent board.
func (l *Loop) LastBoard() core.Board { return l.history.last() }

// TurnCount is the number of turns taken so far.
func (l *Loop) TurnCount() int { return l.history.turnCount() }

// Step plays a single turn. The first step moves the simulation to
// PhaseRunning; a step that ends the game moves it to PhaseFinished or
// PhaseAborted.
func (l *Loop) Step(ctx context.Context) error {
	phase := l.Phase()
	if phase.IsTerminal() {
		return core.WrapGameStateError(l.history.turnCount(), phase.String(), ErrAlreadyFinished)
	}
	if phase == states.PhaseNotStarted {
		if err := l.start(); err != nil {
			return err
		}
	}
	return l.turnProcessor.processTurn(ctx)
}

// Run steps until the simulation reaches a terminal phase. The returned
// error is nil when it finished with a winner or a tie.
func (l *Loop) Run(ctx context.Context) error {
	if phase := l.Phase(); phase.IsTerminal() {
		return core.WrapGameStateError(l.history.turnCount(), phase.String(), ErrAlreadyFinished)
	}
	for !l.Phase().IsTerminal() {
		if err := l.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the history under a new game id and picks the starting
// player again unless it is pinned. A running simulation cannot be reset.
func (l *Loop) Reset() error {
	if err := l.stateMachine.Reset(uuid.NewString()); err != nil {
		return err
	}
	l.starting = l.pickStartingPlayer()
	l.current = l.starting
	l.history.reset(l.rules.NewBoard())

	l.logger.Debug().
		Str("game_id", l.GameID()).
		Str("starting_player", l.starting.String()).
		Msg("Simulation reset")
	return nil
}

func (l *Loop) pickStartingPlayer() core.Player {
	if l.pinned != nil {
		return *l.pinned
	}
	return core.Players[l.rng.Intn(len(core.Players))]
}

func (l *Loop) strategyNames() map[core.Player]string {
	names := make(map[core.Player]string, len(l.strategies))
	for p, s := range l.strategies {
		names[p] = s.Name()
	}
	return names
}

func (l *Loop) start() error {
	if err := l.stateMachine.TransitionTo(states.PhaseRunning, "first move"); err != nil {
		return err
	}
	l.eventBus.Publish(events.NewGameStartedEvent(l.GameID(), l.starting, l.strategyNames(), l.rules))
	l.logger.Info().
		Str("game_id", l.GameID()).
		Str("starting_player", l.starting.String()).
		Str("strategy_one", l.strategies[core.PlayerOne].Name()).
		Str("strategy_two", l.strategies[core.PlayerTwo].Name()).
		Msg("Simulation started")
	return nil
}

// finish declares the outcome. winner is nil for a tie.
func (l *Loop) finish(winner *core.Player, reason string) error {
	gc := l.stateMachine.GetContext()
	gc.Winner = winner
	if err := l.stateMachine.TransitionTo(states.PhaseFinished, reason); err != nil {
		return l.abort(fmt.Errorf("finish simulation: %w", err))
	}

	l.eventBus.Publish(events.NewGameEndedEvent(
		l.GameID(), winner, reason, l.history.turnCount(), gc.GetElapsedTime(), l.history.last()))
	return nil
}

// abort records err, moves to PhaseAborted and returns err.
func (l *Loop) abort(err error) error {
	gc := l.stateMachine.GetContext()
	gc.Error = err
	if terr := l.stateMachine.TransitionTo(states.PhaseAborted, err.Error()); terr != nil {
		l.logger.Error().Err(terr).Msg("Failed to transition to Aborted state")
	}

	l.eventBus.Publish(events.NewGameEndedEvent(
		l.GameID(), nil, "aborted", l.history.turnCount(), gc.GetElapsedTime(), l.history.last()))
	return err
}
