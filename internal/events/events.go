// package events is a small in-process publish/subscribe bus for named application events.
//
// Emit never blocks: a subscriber whose buffer is full misses the event and the drop is logged.
package events

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Event is a named payload delivered to subscribers.
type Event struct {
	Name    string
	Payload any
}

// Bus fans out emitted events to every open subscription for that name.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	logger *log.Logger
}

// NewBus creates a bus. A nil logger discards drop messages.
func NewBus(logger *log.Logger) *Bus {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Bus{subs: make(map[string]map[*Subscription]struct{}), logger: logger}
}

// Subscription receives events for a single name until closed.
type Subscription struct {
	bus  *Bus
	name string
	ch   chan Event
	once sync.Once
}

// Subscribe registers interest in name. buffer below 1 is raised to 1.
func (b *Bus) Subscribe(name string, buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	s := &Subscription{bus: b, name: name, ch: make(chan Event, buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[name] == nil {
		b.subs[name] = make(map[*Subscription]struct{})
	}
	b.subs[name][s] = struct{}{}
	return s
}

// C returns the delivery channel. It is closed by [Subscription.Close].
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close unregisters the subscription and closes its channel. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		defer s.bus.mu.Unlock()

		delete(s.bus.subs[s.name], s)
		if len(s.bus.subs[s.name]) == 0 {
			delete(s.bus.subs, s.name)
		}
		close(s.ch)
	})
}

// Emit delivers payload to every subscriber of name and returns how many received it.
func (b *Bus) Emit(name string, payload any) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	ev := Event{Name: name, Payload: payload}
	delivered := 0
	for s := range b.subs[name] {
		select {
		case s.ch <- ev:
			delivered++
		default:
			b.logger.Warn("event dropped, subscriber buffer full", "event", name)
		}
	}
	return delivered
}

// Listen calls fn for every event emitted under name until the returned function is called.
// fn runs on its own goroutine, one event at a time.
func (b *Bus) Listen(name string, fn func(Event)) (unlisten func()) {
	s := b.Subscribe(name, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range s.C() {
			fn(ev)
		}
	}()
	return func() {
		s.Close()
		<-done
	}
}

// Subscribers returns the number of open subscriptions for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[name])
}
