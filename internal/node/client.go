// internal/node/client.go
package node

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/events"
)

// Client is the protocol client for one selected node.
// All session work is serialized through a single goroutine.
type Client struct {
	settings Settings
	log      *zap.Logger
	obs      Observer
	sink     events.Sink
	now      func() time.Time

	mgr     *manager
	jobs    chan *job
	quit    chan struct{}
	stopped chan struct{}
	closing sync.Once

	fanout fanout

	paused  atomic.Bool
	version atomic.Int64
	state   atomic.Int32

	runMu     sync.Mutex
	runCancel context.CancelFunc
	runDone   chan struct{}
}

// Option overrides a Client dependency.
type Option func(*Client)

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.obs = o
		}
	}
}

func WithSink(s events.Sink) Option {
	return func(c *Client) {
		if s != nil {
			c.sink = s
		}
	}
}

// New starts the session goroutine. Close releases it.
func New(settings Settings, dial DialFunc, opts ...Option) *Client {
	c := &Client{
		settings: settings,
		log:      zap.NewNop(),
		obs:      nopObserver{},
		sink:     events.Nop,
		now:      time.Now,
		jobs:     make(chan *job),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mgr = &manager{
		settings: settings,
		dial:     dial,
		log:      c.log,
		obs:      c.obs,
	}

	go c.loop()
	return c
}

// Close stops the polling loop, closes the session and stops the session goroutine.
func (c *Client) Close() error {
	c.Stop()
	c.closing.Do(func() { close(c.quit) })
	<-c.stopped
	return nil
}

// IsConnected reports whether a live session is bound.
func (c *Client) IsConnected() bool {
	return c.mgr.connected()
}

// Version returns the last handshake version; 0 before the first handshake.
func (c *Client) Version() int64 {
	return c.version.Load()
}

// State returns the polling loop state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// PauseReadData suspends or resumes telemetry reads without closing the session.
func (c *Client) PauseReadData(paused bool) {
	c.paused.Store(paused)
}

func (c *Client) setState(s State) {
	if State(c.state.Swap(int32(s))) != s {
		c.log.Debug("node: state", zap.String("state", s.String()))
		c.obs.ObserveState(s)
	}
}
