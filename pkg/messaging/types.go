package messaging

import (
	"time"

	"github.com/boristopalov/wumpus/pkg/core"
)

type EventKind string

const (
	EpisodeStarted  EventKind = "episode-started"
	TurnPlayed      EventKind = "turn"
	EpisodeFinished EventKind = "episode-finished"
)

// Event is one notification about a running episode
type Event struct {
	Kind      EventKind
	EpisodeID string
	Phase     core.Phase
	Score     int
	Timestamp time.Time
	Frame     *core.Frame // snapshot after the turn, nil when not captured
	Turn      *core.Turn  // the executed turn, nil for terminal and lifecycle events
	Outcome   string      // set on EpisodeFinished
	From      string      // ID of the publisher
	To        []string    // subscriber IDs (empty means broadcast)
}

// Broker routes run events from episodes to observers
type Broker interface {
	// Publish sends an event to specified recipients
	Publish(evt Event) error
	// Subscribe registers an observer to receive events
	Subscribe(subscriberID string, ch chan<- Event) error
	// Unsubscribe removes an observer's subscription
	Unsubscribe(subscriberID string) error
}
