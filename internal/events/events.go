// Package events implements the change event broker backing the SSE
// endpoint. Controllers publish an event after a successful commit,
// connected dashboard clients refresh the affected views.
package events

import (
	"sync"

	"github.com/google/uuid"
)

type Type string

const (
	AllocationUpdated    Type = "allocation-updated"
	ExpenseCreated       Type = "expense-created"
	ExpenseUpdated       Type = "expense-updated"
	ExpenseConfirmed     Type = "expense-confirmed"
	ExpenseRemoved       Type = "expense-removed"
	RubricaUpdated       Type = "rubrica-updated"
	RubricasRecalculated Type = "rubricas-recalculated"
)

// Event describes a committed change.
type Event struct {
	Type        Type        `json:"type"`
	FiscalYear  int         `json:"fiscalYear"`
	AffectedIDs []uuid.UUID `json:"affectedIds,omitempty"`
}

// Broker fans events out to all subscribers. A slow subscriber with a
// full channel misses events instead of blocking publishers, clients
// are expected to refetch on reconnect anyway.
type Broker struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber. The returned function removes
// the subscription and closes the channel.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Publish delivers the event to all current subscribers.
func (b *Broker) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
