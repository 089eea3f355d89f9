package analytics

import (
	"sync"
	"time"

	"github.com/karanvs/fintrail/internal/model"
)

// EventKind identifies what a live update event carries.
type EventKind string

// Event kinds.
const (
	EventAnomalyDetected   EventKind = "anomaly_detected"
	EventBudgetAlert       EventKind = "budget_alert"
	EventPatternRecognized EventKind = "pattern_recognized"
)

// Event is one live update pushed as transactions are assembled. Exactly
// one of Anomaly/Recommendation may be set depending on the kind.
type Event struct {
	At             time.Time
	Transaction    *model.Transaction
	Anomaly        *model.SpendingAnomaly
	Recommendation *model.FinancialRecommendation
	Kind           EventKind
	Detail         string
}

// subscriberBuffer bounds how many undelivered events a subscriber may
// hold before new events are dropped for it.
const subscriberBuffer = 16

// Broker is a fan-out broadcast channel for live update events. Publish
// never blocks: a subscriber that stops draining loses events rather than
// stalling the producer.
type Broker struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
	closed      bool
}

// NewBroker creates an event broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int]chan Event)}
}

// Subscribe registers a new independent subscriber. The returned cancel
// function removes the subscription and closes its channel; it is safe to
// call more than once.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Broker) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber buffer full; drop rather than stall assembly.
		}
	}
}

// Close removes all subscribers and closes their channels. Further
// publishes are no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subscribers {
		delete(b.subscribers, id)
		close(sub)
	}
}
