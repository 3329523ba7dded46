package messaging

import (
	"errors"
	"fmt"
	"sync"
)

var ErrSubscriberFull = errors.New("subscriber channel is full")

// SimpleBroker implements the Broker interface
// subscribers is a map where keys are subscriber IDs and values are channels for receiving events
type SimpleBroker struct {
	subscribers map[string]chan<- Event
	mu          sync.RWMutex
}

// NewBroker creates a new event broker
func NewBroker() *SimpleBroker {
	return &SimpleBroker{
		subscribers: make(map[string]chan<- Event),
	}
}

// Publish delivers evt without blocking. Every full subscriber is reported in the returned
// error; the others still receive the event.
func (b *SimpleBroker) Publish(evt Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	// If no recipients specified, broadcast to all subscribers
	recipients := evt.To
	if len(recipients) == 0 {
		for id := range b.subscribers {
			if id != evt.From {
				recipients = append(recipients, id)
			}
		}
	}

	var errs []error
	for _, recipientID := range recipients {
		ch, ok := b.subscribers[recipientID]
		if !ok {
			continue
		}

		select {
		case ch <- evt:
		default:
			errs = append(errs, fmt.Errorf("%w: %s dropped %s event", ErrSubscriberFull, recipientID, evt.Kind))
		}
	}

	return errors.Join(errs...)
}

// Subscribe registers an observer to receive events
func (b *SimpleBroker) Subscribe(subscriberID string, ch chan<- Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[subscriberID]; exists {
		return fmt.Errorf("subscriber %s is already subscribed", subscriberID)
	}

	b.subscribers[subscriberID] = ch
	return nil
}

// Unsubscribe removes an observer's subscription
func (b *SimpleBroker) Unsubscribe(subscriberID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[subscriberID]; !exists {
		return fmt.Errorf("subscriber %s is not subscribed", subscriberID)
	}

	delete(b.subscribers, subscriberID)
	return nil
}

func (b *SimpleBroker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[string]chan<- Event)
}
