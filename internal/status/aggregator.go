// internal/status/aggregator.go
package status

import (
	"sync"
	"time"

	"github.com/tamzrod/nodelink/internal/domain"
)

// Status is the link quality tier.
type Status int

const (
	Good Status = iota
	Faulty
	NotConnected
)

func (s Status) String() string {
	switch s {
	case Good:
		return "GOOD"
	case Faulty:
		return "FAULTY"
	case NotConnected:
		return "NOT_CONNECTED"
	default:
		return "UNKNOWN"
	}
}

const (
	WindowSize      = 10
	GoodThreshold   = 5
	FaultyThreshold = 3

	// Arrivals older than StaleFactor poll periods no longer count.
	StaleFactor = 10
)

// Aggregator classifies link quality from telemetry arrival density.
// Pure: no IO. Safe for concurrent use.
type Aggregator struct {
	mu     sync.Mutex
	window []time.Time

	pollPeriod func() time.Duration
	now        func() time.Time
}

// NewAggregator builds an aggregator that re-reads the poll period on every Status call.
func NewAggregator(pollPeriod func() time.Duration) *Aggregator {
	return &Aggregator{
		window:     make([]time.Time, 0, WindowSize),
		pollPeriod: pollPeriod,
		now:        time.Now,
	}
}

// Collect records one telemetry arrival. Its signature matches the
// node callback so it can be registered directly.
func (a *Aggregator) Collect(_ domain.Record, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.window) == WindowSize {
		a.window = append(a.window[:0], a.window[1:]...)
	}
	a.window = append(a.window, at)
}

// Status evicts stale arrivals from the front, then classifies what remains.
func (a *Aggregator) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.now().Add(-StaleFactor * a.pollPeriod())

	n := 0
	for n < len(a.window) && a.window[n].Before(cutoff) {
		n++
	}
	if n > 0 {
		a.window = append(a.window[:0], a.window[n:]...)
	}

	switch size := len(a.window); {
	case size >= GoodThreshold:
		return Good
	case size >= FaultyThreshold:
		return Faulty
	default:
		return NotConnected
	}
}

// Len returns the number of arrivals currently in the window.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.window)
}
