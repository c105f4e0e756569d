package subscribers

import (
	"encoding/json"

	"github.com/mitchelldurbincs/mancala/internal/game/events"
	"github.com/rs/zerolog"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	logEvent := eventLogger.WithLevel(ls.logLevel)
	if ls.logLevel == zerolog.NoLevel || ls.logLevel == zerolog.Disabled {
		logEvent = eventLogger.Info()
	}

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Str("starting_player", e.StartingPlayer.String()).
			Int("bins", e.Rules.Bins).
			Int("starting_pieces", e.Rules.StartingPieces).
			Bool("capture", e.Rules.Capture)
		for p, name := range e.Strategies {
			logEvent.Str("strategy_"+p.String(), name)
		}

	case *events.GameEndedEvent:
		if e.Winner != nil {
			logEvent.Str("winner", e.Winner.String())
		} else {
			logEvent.Str("winner", "none")
		}
		logEvent.
			Str("reason", e.Reason).
			Int("final_turn", e.FinalTurn).
			Dur("duration", e.Duration).
			Int("goal_one", e.GoalOne).
			Int("goal_two", e.GoalTwo)

	case *events.TurnTakenEvent:
		logEvent.
			Int("turn", e.Metadata.Turn).
			Str("player", e.Player.String()).
			Int("selected_bin", e.SelectedBin).
			Int("sown", e.Sown).
			Str("landing", e.Landing).
			Int("captured", e.Captured).
			Int("goal_one", e.GoalOne).
			Int("goal_two", e.GoalTwo)

	case *events.BonusTurnEvent:
		logEvent.
			Int("turn", e.Metadata.Turn).
			Str("player", e.Player.String())

	case *events.StalemateEvent:
		logEvent.
			Str("player", e.Player.String()).
			Int("goal_one", e.GoalOne).
			Int("goal_two", e.GoalTwo)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	logEvent.Msg("Game event")
}
