package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/events"
	"github.com/mitchelldurbincs/mancala/internal/game/rules"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

// turnProcessor handles the orchestration of a single turn
type turnProcessor struct {
	loop   *Loop
	logger zerolog.Logger
}

func newTurnProcessor(loop *Loop) *turnProcessor {
	return &turnProcessor{
		loop:   loop,
		logger: loop.logger,
	}
}

// processTurn asks the mover's strategy for a bin and applies it. Fatal
// errors abort the simulation and are returned; failures while playing the
// turn itself come back as a *core.GameError.
func (tp *turnProcessor) processTurn(ctx context.Context) error {
	l := tp.loop

	if err := tp.checkContext(ctx); err != nil {
		return l.abort(core.WrapGameStateError(l.history.turnCount(), "step", err))
	}

	if phase := l.Phase(); !phase.CanReceiveMoves() {
		return core.WrapGameStateError(l.history.turnCount(), phase.String(),
			fmt.Errorf("simulation is in %s phase and cannot receive moves", phase))
	}

	if l.history.turnCount() >= l.maxTurns {
		return l.abort(fmt.Errorf("%w: %d turns", ErrTurnLimit, l.maxTurns))
	}

	mover := l.current
	prior := l.history.last()
	number := l.history.turnCount() + 1
	turnLogger := tp.logger.With().
		Int("turn", number).
		Str("player", mover.String()).
		Logger()

	bin, err := tp.chooseBin(mover, prior)
	if errors.Is(err, strategy.ErrNoLegalMove) {
		return tp.resolveStalemate(number, mover, prior, turnLogger)
	}
	if err != nil {
		return l.abort(core.NewGameError(number, mover, "choose bin", err))
	}

	turn, err := l.rules.NewTurn(mover, bin)
	if err != nil {
		return l.abort(core.NewGameError(number, mover, "build turn", err))
	}

	move, err := rules.ResolveMove(l.rules, prior, turn)
	if err != nil {
		return l.abort(core.NewGameError(number, mover, "resolve move", err))
	}

	l.history.record(turn, move.Board)
	l.eventBus.Publish(events.NewTurnTakenEvent(
		l.GameID(), number, turn, move.Sown, move.Last.String(), move.Captured, move.Board))

	turnLogger.Debug().
		Int("selected_bin", bin).
		Int("sown", move.Sown).
		Str("landing", move.Last.String()).
		Int("captured", move.Captured).
		Int("goal_one", move.Board.Goal(core.PlayerOne)).
		Int("goal_two", move.Board.Goal(core.PlayerTwo)).
		Msg("Turn resolved")

	if won, winner := l.winCondition.CheckVictory(move.Board, mover); won {
		return l.finish(&winner, "victory")
	}

	next, err := rules.NextPlayer(l.rules, prior, turn, move.Board)
	if err != nil {
		return l.abort(core.NewGameError(number, mover, "next player", err))
	}
	if next == mover {
		l.eventBus.Publish(events.NewBonusTurnEvent(l.GameID(), number, mover))
	}
	l.current = next
	return nil
}

// checkContext checks if the context is cancelled
func (tp *turnProcessor) checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		tp.logger.Warn().
			Err(ctx.Err()).
			Int("turn", tp.loop.history.turnCount()).
			Msg("Simulation step cancelled or timed out")
		return ctx.Err()
	default:
		return nil
	}
}

func (tp *turnProcessor) chooseBin(mover core.Player, board core.Board) (int, error) {
	own := board.Row(mover)
	opponent := board.Row(mover.Opponent())
	return tp.loop.strategies[mover].ChooseBin(own, &opponent)
}

// resolveStalemate ends the game when the mover has nothing to sow. The
// swept board replaces the last history entry.
func (tp *turnProcessor) resolveStalemate(number int, mover core.Player, board core.Board, turnLogger zerolog.Logger) error {
	l := tp.loop

	if l.legalMoves.HasLegalMove(board, mover) {
		return l.abort(core.NewGameError(number, mover, "choose bin",
			fmt.Errorf("%s reported no legal move on a row with pieces: %w",
				l.strategies[mover].Name(), strategy.ErrNoLegalMove)))
	}

	swept, winner, err := l.winCondition.ResolveStalemate(board)
	if err != nil {
		return l.abort(core.NewGameError(number, mover, "stalemate", err))
	}
	l.history.replaceLast(swept)

	turnLogger.Debug().
		Int("goal_one", swept.Goal(core.PlayerOne)).
		Int("goal_two", swept.Goal(core.PlayerTwo)).
		Msg("No legal move, remaining pieces swept")

	l.eventBus.Publish(events.NewStalemateEvent(l.GameID(), mover, swept))
	return l.finish(winner, "stalemate")
}
