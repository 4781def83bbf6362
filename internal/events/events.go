// internal/events/events.go
package events

import (
	"sync"
	"time"
)

// Name identifies an asynchronous outcome reported by the node client.
type Name string

const (
	Error             Name = "error"
	PongReceived      Name = "pong_received"
	ListNetworksResp  Name = "list_networks_resp"
	SelectNetworkResp Name = "select_network_resp"
	GetNodeIPResp     Name = "get_node_ip_resp"
	GotProcessID      Name = "got_process_id"
	GotParamList      Name = "got_param_list"
	GotServiceData    Name = "got_service_data"
	SentParamList     Name = "sent_param_list"
)

// Event is one emitted outcome with its optional payload.
type Event struct {
	Name  Name
	Value any
	At    time.Time
}

// Sink receives events. Implementations must not block the caller for long.
type Sink interface {
	Emit(name Name, value any)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(name Name, value any)

func (f SinkFunc) Emit(name Name, value any) { f(name, value) }

// Nop discards every event.
var Nop Sink = SinkFunc(func(Name, any) {})

// ---- bus ----

type subscriber struct {
	ch chan Event
}

// Bus fans events out to subscribers.
// Delivery is at-most-once: a full subscriber buffer drops the event.
// Events from one goroutine arrive in emission order.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	buffer int
	now    func() time.Time

	// OnDrop, when set, is called for every event a subscriber missed.
	OnDrop func(Event)
}

// NewBus builds a bus whose subscribers buffer up to buffer events.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
		now:    time.Now,
	}
}

// Subscribe registers a consumer. The returned func unsubscribes and
// closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, b.buffer)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, s)
			b.mu.Unlock()
			close(s.ch)
		})
	}
	return s.ch, unsub
}

// Emit implements Sink.
func (b *Bus) Emit(name Name, value any) {
	e := Event{Name: name, Value: value, At: b.now()}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		select {
		case s.ch <- e:
		default:
			if b.OnDrop != nil {
				b.OnDrop(e)
			}
		}
	}
}

// Len returns the current subscriber count.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
