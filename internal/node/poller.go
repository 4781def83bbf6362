// internal/node/poller.go
package node

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/schema"
)

// HoseLengthParamID receives the configured hose length on every handshake.
const HoseLengthParamID = 11776

// TryConnect drives the connection state machine until ctx is cancelled,
// Stop is called or another run replaces it. A run already in progress is
// cancelled, awaited and its session closed first. There is no give-up
// state: an unreachable node is retried every retry period. It returns
// ErrClosed once the client has been closed.
func (c *Client) TryConnect(ctx context.Context, retry time.Duration) error {
	ctx, release := c.claimRun(ctx)
	defer release()
	return c.run(ctx, retry)
}

// TryConnectStart is TryConnect in the background.
func (c *Client) TryConnectStart(retry time.Duration) {
	ctx, release := c.claimRun(context.Background())
	go func() {
		defer release()
		_ = c.run(ctx, retry)
	}()
}

// Stop cancels the active run, if any, and closes the session.
// It must not be called from a telemetry callback: callbacks run on the
// polling goroutine, which Stop waits for.
func (c *Client) Stop() {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	c.stopLocked()
}

// claimRun makes the caller the only polling loop. release must be called
// once the loop has returned.
func (c *Client) claimRun(parent context.Context) (context.Context, func()) {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	c.stopLocked()

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	c.runCancel, c.runDone = cancel, done

	return ctx, func() {
		cancel()
		close(done)
	}
}

func (c *Client) stopLocked() {
	if c.runCancel == nil {
		return
	}
	c.runCancel()
	<-c.runDone
	c.runCancel, c.runDone = nil, nil

	_ = c.do(context.Background(), func(context.Context) { c.mgr.close() })
}

func (c *Client) run(ctx context.Context, retry time.Duration) error {
	state := StateDisconnected

	for {
		if c.closed() {
			c.setState(StateDisconnected)
			return ErrClosed
		}
		c.setState(state)

		var err error
		switch state {
		case StateDisconnected:
			if c.connect(ctx) {
				state = StateHandshaking
				continue
			}
			err = sleep(ctx, retry)

		case StateHandshaking:
			if c.handshake(ctx) {
				state = StateStreaming
				continue
			}
			state = StateDisconnected
			err = sleep(ctx, retry)

		case StateStreaming:
			if err = sleep(ctx, c.settings.PollPeriod()); err != nil {
				break
			}
			if !c.readOnce(ctx) {
				state = StateDisconnected
			}
		}

		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			c.setState(StateDisconnected)
			return err
		}
	}
}

func (c *Client) closed() bool {
	select {
	case <-c.stopped:
		return true
	default:
		return false
	}
}

func (c *Client) connect(ctx context.Context) bool {
	var ok bool
	_ = c.do(ctx, func(jctx context.Context) {
		_, ok = c.mgr.ensure(jctx)
	})
	return ok
}

// handshake pings, pushes the hose length and fetches the version.
// Any failure, protocol replies included, drops the session.
func (c *Client) handshake(ctx context.Context) bool {
	var ok bool
	_ = c.do(ctx, func(jctx context.Context) {
		s, usable := c.mgr.ensure(jctx)
		if !usable {
			return
		}

		fail := func(step string, err error) {
			c.log.Info("node: handshake failed", zap.String("step", step), zap.Error(err))
			c.mgr.close()
		}

		if err := c.invoke("ping", func() error { return s.Ping(jctx) }); err != nil {
			fail("ping", err)
			return
		}

		hose := []domain.ParamValue{domain.PV(HoseLengthParamID, c.settings.HoseLength())}
		if err := c.invoke("set_params", func() error { return s.SetParams(jctx, hose) }); err != nil {
			fail("hose_length", err)
			return
		}

		var raw json.RawMessage
		if err := c.invoke("get_version", func() (err error) {
			raw, err = s.GetVersion(jctx)
			return err
		}); err != nil {
			fail("get_version", err)
			return
		}

		if v, isInt := parseVersion(raw); isInt {
			c.version.Store(v)
		} else {
			c.log.Warn("node: received invalid version type", zap.ByteString("version", raw))
		}

		ok = true
	})
	return ok
}

// readOnce performs one telemetry cycle. It returns false when the
// session is gone and the state machine must reconnect.
func (c *Client) readOnce(ctx context.Context) bool {
	var (
		raw     json.RawMessage
		at      time.Time
		alive   = true
		fetched bool
	)

	err := c.do(ctx, func(jctx context.Context) {
		s, ok := c.mgr.ensure(jctx)
		if !ok {
			alive = false
			return
		}
		if c.paused.Load() {
			return
		}

		if err := c.invoke("read_data", func() (err error) {
			raw, err = s.ReadData(jctx)
			return err
		}); err != nil {
			c.log.Warn("node: read data failed", zap.Error(err))
			c.mgr.close()
			alive = false
			return
		}

		at = c.now()
		fetched = true
	})
	if err != nil {
		return false
	}
	if !fetched {
		return alive
	}

	rec, err := schema.ParseTelemetry(raw)
	if err != nil {
		c.log.Warn("node: telemetry dropped", zap.Error(err))
		c.obs.ObserveTelemetry(false)
		return true
	}

	c.obs.ObserveTelemetry(true)
	c.fanout.deliver(rec, at)
	return true
}

func parseVersion(raw json.RawMessage) (int64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
