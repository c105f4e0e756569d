package events

import (
	"time"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted     = "game.started"
	TypeGameEnded       = "game.ended"
	TypeTurnTaken       = "turn.taken"
	TypeBonusTurn       = "turn.bonus"
	TypeStalemate       = "game.stalemate"
	TypeStateTransition = "state.transition"
)

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{EventType: eventType, Time: time.Now(), Game: gameID}
}

// GameStartedEvent is published when a simulation makes its first move
type GameStartedEvent struct {
	BaseEvent
	StartingPlayer core.Player
	Strategies     map[core.Player]string
	Rules          core.Rules
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, starting core.Player, strategies map[core.Player]string, r core.Rules) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:      newBase(TypeGameStarted, gameID),
		StartingPlayer: starting,
		Strategies:     strategies,
		Rules:          r,
	}
}

// GameEndedEvent is published when a simulation reaches a terminal phase.
// Winner is nil for a tie or an aborted game.
type GameEndedEvent struct {
	BaseEvent
	Winner    *core.Player
	Reason    string
	FinalTurn int
	Duration  time.Duration
	GoalOne   int
	GoalTwo   int
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner *core.Player, reason string, finalTurn int, duration time.Duration, board core.Board) *GameEndedEvent {
	e := &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Winner:    winner,
		Reason:    reason,
		FinalTurn: finalTurn,
		Duration:  duration,
	}
	if !board.IsZero() {
		e.GoalOne = board.Goal(core.PlayerOne)
		e.GoalTwo = board.Goal(core.PlayerTwo)
	}
	return e
}

// TurnTakenEvent is published after every resolved move
type TurnTakenEvent struct {
	BaseEvent
	Metadata    EventMetadata
	Player      core.Player
	SelectedBin int
	Sown        int
	Landing     string
	Captured    int
	GoalOne     int
	GoalTwo     int
}

// NewTurnTakenEvent creates a new TurnTakenEvent
func NewTurnTakenEvent(gameID string, turnNumber int, turn core.Turn, sown int, landing string, captured int, board core.Board) *TurnTakenEvent {
	return &TurnTakenEvent{
		BaseEvent:   newBase(TypeTurnTaken, gameID),
		Metadata:    EventMetadata{Player: turn.Player.String(), Turn: turnNumber},
		Player:      turn.Player,
		SelectedBin: turn.SelectedBin,
		Sown:        sown,
		Landing:     landing,
		Captured:    captured,
		GoalOne:     board.Goal(core.PlayerOne),
		GoalTwo:     board.Goal(core.PlayerTwo),
	}
}

// BonusTurnEvent is published when a player's last piece lands in their goal
type BonusTurnEvent struct {
	BaseEvent
	Metadata EventMetadata
	Player   core.Player
}

// NewBonusTurnEvent creates a new BonusTurnEvent
func NewBonusTurnEvent(gameID string, turnNumber int, player core.Player) *BonusTurnEvent {
	return &BonusTurnEvent{
		BaseEvent: newBase(TypeBonusTurn, gameID),
		Metadata:  EventMetadata{Player: player.String(), Turn: turnNumber},
		Player:    player,
	}
}

// StalemateEvent is published when the player to move has no legal bin and
// the remaining pieces are swept into the goals
type StalemateEvent struct {
	BaseEvent
	Player  core.Player
	GoalOne int
	GoalTwo int
}

// NewStalemateEvent creates a new StalemateEvent
func NewStalemateEvent(gameID string, player core.Player, swept core.Board) *StalemateEvent {
	return &StalemateEvent{
		BaseEvent: newBase(TypeStalemate, gameID),
		Player:    player,
		GoalOne:   swept.Goal(core.PlayerOne),
		GoalTwo:   swept.Goal(core.PlayerTwo),
	}
}

// StateTransitionEvent is published when the simulation state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
