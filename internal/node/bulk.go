// internal/node/bulk.go
package node

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/events"
)

// ChunkSize is the transport payload limit in parameters per call.
const ChunkSize = 30

// Lock bracket. The node ignores parameter writes between unlock and
// lock until the lock is re-asserted.
var LockParamIDs = [...]int{0x10, 0x110, 0x210}

const (
	UnlockValue int64 = 1
	LockValue   int64 = 0
)

// ProcessIDParamID is the CCM process id parameter.
const ProcessIDParamID = 0x000B

func chunks[T any](items []T, size int) [][]T {
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}

func bracket(v int64) []domain.ParamValue {
	out := make([]domain.ParamValue, 0, len(LockParamIDs))
	for _, id := range LockParamIDs {
		out = append(out, domain.PV(id, v))
	}
	return out
}

// writeChunks sends values chunk by chunk, re-validating the session
// before every chunk. The first failure aborts the rest. Session goroutine only.
func (c *Client) writeChunks(ctx context.Context, values []domain.ParamValue) error {
	for _, chunk := range chunks(values, ChunkSize) {
		s, ok := c.mgr.ensure(ctx)
		if !ok {
			return ErrUnusable
		}
		if err := c.invoke("set_params", func() error { return s.SetParams(ctx, chunk) }); err != nil {
			return err
		}
	}
	return nil
}

// readChunks mirrors writeChunks for get_params. Partial results are discarded on failure.
func (c *Client) readChunks(ctx context.Context, ids []int) ([]domain.ParamValue, error) {
	out := make([]domain.ParamValue, 0, len(ids))
	for _, chunk := range chunks(ids, ChunkSize) {
		s, ok := c.mgr.ensure(ctx)
		if !ok {
			return nil, ErrUnusable
		}

		var res []domain.ParamValue
		if err := c.invoke("get_params", func() (err error) {
			res, err = s.GetParams(ctx, chunk)
			return err
		}); err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// SetParams writes values in chunks. When locked, the write is wrapped
// in the unlock/lock bracket and the lock is re-asserted even if the
// payload failed. The whole operation is one session job.
func (c *Client) SetParams(ctx context.Context, values []domain.ParamValue, locked bool) error {
	var err error

	derr := c.do(ctx, func(jctx context.Context) {
		if locked {
			if uerr := c.writeChunks(jctx, bracket(UnlockValue)); uerr != nil {
				err = fmt.Errorf("node: unlock: %w", uerr)
			}
		}

		if err == nil {
			if perr := c.writeChunks(jctx, values); perr != nil {
				err = fmt.Errorf("node: set params: %w", perr)
			}
		}

		if locked {
			if lerr := c.writeChunks(jctx, bracket(LockValue)); lerr != nil {
				c.log.Warn("node: lock re-assert failed", zap.Error(lerr))
				if err == nil {
					err = fmt.Errorf("node: lock: %w", lerr)
				}
			}
		}
	})
	if derr != nil {
		return derr
	}
	return err
}

// GetParams reads ids in chunks and returns values in request order.
func (c *Client) GetParams(ctx context.Context, ids []int) ([]domain.ParamValue, error) {
	var (
		out []domain.ParamValue
		err error
	)
	derr := c.do(ctx, func(jctx context.Context) {
		out, err = c.readChunks(jctx, ids)
	})
	if derr != nil {
		return nil, derr
	}
	if err != nil {
		return nil, fmt.Errorf("node: get params: %w", err)
	}
	return out, nil
}

// GetProcessID returns the current process id.
func (c *Client) GetProcessID(ctx context.Context) (any, error) {
	res, err := c.GetParams(ctx, []int{ProcessIDParamID})
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, errors.New("node: empty process id reply")
	}
	return res[0].Value, nil
}

// ---- event variants ----

// SetParamsStart runs SetParams in the background. "sent_param_list"
// is emitted after the lock step whatever the outcome.
func (c *Client) SetParamsStart(values []domain.ParamValue, locked bool) {
	go func() {
		if err := c.SetParams(context.Background(), values, locked); err != nil {
			c.emitError("set_params", err)
		}
		c.sink.Emit(events.SentParamList, nil)
	}()
}

// GetParamsStart emits "got_service_data" with the ordered values.
func (c *Client) GetParamsStart(ids []int) {
	go func() {
		res, err := c.GetParams(context.Background(), ids)
		if err != nil {
			c.emitError("get_params", err)
			return
		}
		c.sink.Emit(events.GotServiceData, res)
	}()
}

// GetParamListStart emits "got_param_list" with the ordered values.
func (c *Client) GetParamListStart(ids []int) {
	go func() {
		res, err := c.GetParams(context.Background(), ids)
		if err != nil {
			c.emitError("get_param_list", err)
			return
		}
		c.sink.Emit(events.GotParamList, res)
	}()
}

// GetProcessIDStart emits "got_process_id" with the process id value.
func (c *Client) GetProcessIDStart() {
	go func() {
		v, err := c.GetProcessID(context.Background())
		if err != nil {
			c.emitError("get_process_id", err)
			return
		}
		c.sink.Emit(events.GotProcessID, v)
	}()
}

// emitError reports a failed operation. Semantic failures carry their reason.
func (c *Client) emitError(op string, err error) {
	c.log.Warn("node: operation failed", zap.String("op", op), zap.Error(err))

	var ve *ValidationError
	if errors.As(err, &ve) {
		c.sink.Emit(events.Error, ve.Reason)
		return
	}
	c.sink.Emit(events.Error, nil)
}
