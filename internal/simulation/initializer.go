package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/game/events"
	"github.com/mitchelldurbincs/mancala/internal/game/rules"
	"github.com/mitchelldurbincs/mancala/internal/game/states"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

// LoopInitializer handles the construction of a simulation loop
type LoopInitializer struct {
	config Config
	logger zerolog.Logger
}

// NewLoopInitializer creates a new loop initializer
func NewLoopInitializer(cfg Config) *LoopInitializer {
	logger := cfg.Logger.With().Str("component", "SimulationLoop").Logger()
	return &LoopInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize validates the configuration and creates the loop
func (li *LoopInitializer) Initialize(ctx context.Context) (*Loop, error) {
	select {
	case <-ctx.Done():
		li.logger.Error().Err(ctx.Err()).Msg("Loop creation cancelled or timed out")
		return nil, ctx.Err()
	default:
	}

	if err := li.validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	li.setupDefaults()

	loop := li.createLoop()

	if err := li.initializeHistory(loop); err != nil {
		return nil, fmt.Errorf("history initialization failed: %w", err)
	}

	li.logger.Debug().
		Str("game_id", loop.GameID()).
		Int("bins", li.config.Rules.Bins).
		Int("starting_pieces", li.config.Rules.StartingPieces).
		Bool("capture", li.config.Rules.Capture).
		Str("starting_player", loop.starting.String()).
		Msg("Simulation loop created")

	return loop, nil
}

func (li *LoopInitializer) validate() error {
	if err := li.config.Rules.Validate(); err != nil {
		return err
	}
	for _, p := range core.Players {
		if li.config.Strategies[p] == nil {
			return fmt.Errorf("%w: no strategy for player %s", core.ErrMissingPlayer, p)
		}
	}
	for p := range li.config.Strategies {
		if !p.Valid() {
			return fmt.Errorf("%w: strategy for player %d", core.ErrInvalidPlayer, int(p))
		}
	}
	if sp := li.config.StartingPlayer; sp != nil && !sp.Valid() {
		return fmt.Errorf("%w: starting player %d", core.ErrInvalidPlayer, int(*sp))
	}
	return nil
}

// setupDefaults fills in missing configuration values
func (li *LoopInitializer) setupDefaults() {
	if li.config.Rng == nil {
		li.logger.Debug().Msg("No RNG provided, creating new seeded RNG")
		li.config.Rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}

	if li.config.GameID == "" {
		li.config.GameID = uuid.NewString()
	}

	if li.config.MaxTurns <= 0 {
		li.config.MaxTurns = DefaultMaxTurns
	}

	if li.config.EventBus == nil {
		li.config.EventBus = events.NewEventBus(li.config.Logger)
	}
}

// createLoop wires the loop and its components
func (li *LoopInitializer) createLoop() *Loop {
	gameContext := states.NewGameContext(li.config.GameID, li.logger)
	stateMachine := states.NewStateMachine(gameContext, li.config.EventBus)

	strategies := make(map[core.Player]strategy.Strategy, len(core.Players))
	for _, p := range core.Players {
		strategies[p] = li.config.Strategies[p]
	}

	var pinned *core.Player
	if li.config.StartingPlayer != nil {
		p := *li.config.StartingPlayer
		pinned = &p
	}

	loop := &Loop{
		rules:        li.config.Rules,
		strategies:   strategies,
		pinned:       pinned,
		rng:          li.config.Rng,
		maxTurns:     li.config.MaxTurns,
		logger:       li.logger,
		winCondition: rules.NewWinConditionChecker(li.config.Logger, li.config.Rules),
		legalMoves:   rules.NewLegalMoveCalculator(),
		eventBus:     li.config.EventBus,
		stateMachine: stateMachine,
	}
	loop.turnProcessor = newTurnProcessor(loop)

	return loop
}

// initializeHistory records the opening board and picks the starting player
func (li *LoopInitializer) initializeHistory(loop *Loop) error {
	opening := li.config.Rules.NewBoard()
	if opening.TotalPieces() != li.config.Rules.TotalPieces() {
		return fmt.Errorf("%w: opening board holds %d pieces, want %d",
			core.ErrPieceConservation, opening.TotalPieces(), li.config.Rules.TotalPieces())
	}

	loop.history = newHistory(li.config.Rules, opening)
	loop.starting = loop.pickStartingPlayer()
	loop.current = loop.starting
	return nil
}
