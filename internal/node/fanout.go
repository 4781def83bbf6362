// internal/node/fanout.go
package node

import (
	"sync"
	"time"

	"github.com/tamzrod/nodelink/internal/domain"
)

// Callback observes one validated telemetry record and its capture time.
type Callback func(rec domain.Record, at time.Time)

// fanout is append-only; delivery is synchronous and in registration order.
type fanout struct {
	mu  sync.RWMutex
	cbs []Callback
}

func (f *fanout) register(cb Callback) {
	f.mu.Lock()
	f.cbs = append(f.cbs, cb)
	f.mu.Unlock()
}

func (f *fanout) deliver(rec domain.Record, at time.Time) {
	f.mu.RLock()
	cbs := f.cbs
	f.mu.RUnlock()

	for _, cb := range cbs {
		cb(rec, at)
	}
}

// RegisterCallback adds a telemetry observer. Callbacks run on the
// polling goroutine and must return quickly. They must not call Stop,
// Close, TryConnect or TryConnectStart, which wait for that goroutine.
func (c *Client) RegisterCallback(cb Callback) {
	c.fanout.register(cb)
}
