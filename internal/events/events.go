package events

import (
	"sync"
	"sync/atomic"

	"github.com/OldStager01/monitor-platform/internal/logger"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

// EventBus fans events out to buffered subscriber channels. Publish never
// blocks: a full subscriber drops the event.
type EventBus struct {
	mu         sync.RWMutex
	byType     map[models.EventType][]chan *models.Event
	all        []chan *models.Event
	bufferSize int
	dropped    atomic.Uint64
	closed     bool
}

func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return &EventBus{
		byType:     make(map[models.EventType][]chan *models.Event),
		bufferSize: bufferSize,
	}
}

// Subscribe returns a channel receiving events of the given types.
func (b *EventBus) Subscribe(types ...models.EventType) <-chan *models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *models.Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	for _, t := range types {
		b.byType[t] = append(b.byType[t], ch)
	}
	return ch
}

func (b *EventBus) SubscribeAll() <-chan *models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *models.Event, b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.all = append(b.all, ch)
	return ch
}

func (b *EventBus) Publish(event *models.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed || event == nil {
		return
	}

	for _, ch := range b.byType[event.Type] {
		b.offer(ch, event)
	}
	for _, ch := range b.all {
		b.offer(ch, event)
	}
}

func (b *EventBus) offer(ch chan *models.Event, event *models.Event) {
	select {
	case ch <- event:
	default:
		b.dropped.Add(1)
		logger.Warnf("Event channel full, dropping event: %s", event.Type)
	}
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *EventBus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel exactly once. Later publishes are no-ops.
func (b *EventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	seen := make(map[chan *models.Event]bool)
	closeOnce := func(ch chan *models.Event) {
		if !seen[ch] {
			close(ch)
			seen[ch] = true
		}
	}

	for _, ch := range b.all {
		closeOnce(ch)
	}
	for _, subs := range b.byType {
		for _, ch := range subs {
			closeOnce(ch)
		}
	}

	b.byType = make(map[models.EventType][]chan *models.Event)
	b.all = nil
}
