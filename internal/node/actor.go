// internal/node/actor.go
package node

import (
	"context"
	"time"

	"github.com/tamzrod/nodelink/internal/rpc"
)

// job is one unit of session work. Jobs run strictly one at a time.
type job struct {
	ctx     context.Context
	fn      func(ctx context.Context)
	done    chan struct{}
	skipped bool
}

// loop is the only goroutine that touches the manager.
func (c *Client) loop() {
	defer close(c.stopped)

	for {
		select {
		case <-c.quit:
			c.mgr.close()
			return

		case j := <-c.jobs:
			if j.ctx.Err() != nil {
				j.skipped = true
			} else {
				// In-flight calls are bounded by the response timeout, not the caller.
				j.fn(context.WithoutCancel(j.ctx))
			}
			close(j.done)
		}
	}
}

// do queues fn and waits until it has run.
// Once queued, fn always runs to completion.
func (c *Client) do(ctx context.Context, fn func(ctx context.Context)) error {
	j := &job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case c.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.stopped:
		return ErrClosed
	}

	<-j.done
	if j.skipped {
		return ctx.Err()
	}
	return nil
}

// withSession runs fn against a usable session.
func (c *Client) withSession(ctx context.Context, fn func(ctx context.Context, s Session) error) error {
	var err error
	derr := c.do(ctx, func(jctx context.Context) {
		s, ok := c.mgr.ensure(jctx)
		if !ok {
			err = ErrUnusable
			return
		}
		err = fn(jctx, s)
	})
	if err != nil {
		return err
	}
	return derr
}

// invoke times one RPC and drops the session on transport failure.
// Protocol failures leave the session intact. Session goroutine only.
func (c *Client) invoke(method string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.obs.ObserveRPC(method, time.Since(start), err)

	if err != nil && !rpc.IsProtocol(err) {
		c.mgr.close()
	}
	return err
}
