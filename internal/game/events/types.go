package events

import "time"

// Event is anything published on the bus while a simulation runs.
type Event interface {
	Type() string
	Timestamp() time.Time
	// GameID is the id of the simulation that produced the event
	GameID() string
}

// BaseEvent carries the fields shared by every event and is embedded in
// each concrete event type.
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) GameID() string       { return e.Game }

// EventHandler is a callback registered for one event type.
type EventHandler func(Event)

// Subscriber receives every event it reports interest in.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// EventMetadata locates a turn-scoped event within the game.
type EventMetadata struct {
	Player string `json:"player,omitempty"`
	// Turn counts from 1
	Turn int `json:"turn,omitempty"`
}

// Publisher is the write side of a bus; the state machine only needs this.
type Publisher interface {
	Publish(Event)
}

// Bus is what a simulation loop publishes to and what callers attach
// subscribers through.
type Bus interface {
	Publisher
	Subscribe(Subscriber)
	Unsubscribe(subscriberID string)
	SubscribeFunc(eventType string, handler EventHandler) string
}

var _ Bus = (*EventBus)(nil)
