// Package events provides an in-process bus for goal and job lifecycle events
package events

import (
	"context"
	"sync"
	"time"

	"github.com/keycasey/Neon-Goals-Service-sub000/internal/db/models"
	"github.com/keycasey/Neon-Goals-Service-sub000/internal/logger"
)

// EventType represents the type of pipeline event
type EventType string

const (
	// EventBadgeChanged is emitted when a goal's status badge changes
	EventBadgeChanged EventType = "goal.badge_changed"
	// EventJobCompleted is emitted when a scrape job completes
	EventJobCompleted EventType = "job.completed"
	// EventJobFailed is emitted when a scrape job attempt fails
	EventJobFailed EventType = "job.failed"
	// EventChannelSize is the buffer size for the event channel
	EventChannelSize = 100
)

// Event represents a pipeline event
type Event struct {
	Type       EventType          `json:"type"`
	GoalID     uint               `json:"goalId"`
	JobID      uint               `json:"jobId,omitempty"`
	Badge      models.StatusBadge `json:"statusBadge,omitempty"`
	Candidates int                `json:"candidates,omitempty"`
	Attempts   int                `json:"attempts,omitempty"`
	Error      string             `json:"error,omitempty"`
	Time       time.Time          `json:"time"`
}

// Handler is a function that handles an event
type Handler func(context.Context, Event) error

// Publisher accepts events for asynchronous delivery
type Publisher interface {
	Publish(event Event)
}

// Bus fans events out to subscribed handlers
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	events   chan Event
	wg       sync.WaitGroup
}

var _ Publisher = (*Bus)(nil)

// NewBus creates a Bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		events:   make(chan Event, EventChannelSize),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	logger.Debugf("Registered handler for event type: %s", eventType)
}

// Publish queues an event. When the buffer is full the event is dropped.
func (b *Bus) Publish(event Event) {
	select {
	case b.events <- event:
		logger.Debugf("Published event: %s (goal: %d)", event.Type, event.GoalID)
	default:
		logger.Warnf("Event buffer full, dropping %s for goal %d", event.Type, event.GoalID)
	}
}

// Start starts the event processing loop
func (b *Bus) Start(ctx context.Context) {
	go b.processEvents(ctx)
	logger.Info("Started event processing loop")
}

// Wait blocks until every dispatched handler has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Stopping event processing loop")
			return
		case event := <-b.events:
			b.mu.RLock()
			eventHandlers := b.handlers[event.Type]
			b.mu.RUnlock()

			for _, handler := range eventHandlers {
				b.wg.Add(1)
				go func(h Handler, e Event) {
					defer b.wg.Done()
					if err := h(ctx, e); err != nil {
						logger.Errorf("Failed to handle event %s for goal %d: %v", e.Type, e.GoalID, err)
					}
				}(handler, event)
			}
		}
	}
}

// Discard is a Publisher that drops every event
type Discard struct{}

// Publish implements Publisher
func (Discard) Publish(Event) {}
