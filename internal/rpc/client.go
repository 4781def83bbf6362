// internal/rpc/client.go
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	jsonrpcws "github.com/sourcegraph/jsonrpc2/websocket"
	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/domain"
)

// Fixed by the node's responsiveness, not negotiated.
const (
	DefaultConnectTimeout  = 10 * time.Second
	DefaultResponseTimeout = 3 * time.Second
)

// Options is minimal transport config.
type Options struct {
	ConnectTimeout  time.Duration
	ResponseTimeout time.Duration
	Logger          *zap.Logger
}

// Client is one WebSocket connection to a node plus JSON-RPC correlation.
// It never reconnects; the connection manager replaces dead clients.
type Client struct {
	target      domain.Target
	conn        *jsonrpc2.Conn
	respTimeout time.Duration
	log         *zap.Logger
	closed      atomic.Bool
}

// Dial opens a session against target. ONE attempt per call.
func Dial(ctx context.Context, target domain.Target, opts Options) (*Client, error) {
	if target.Host == "" {
		return nil, errors.New("rpc: target host required")
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ResponseTimeout <= 0 {
		opts.ResponseTimeout = DefaultResponseTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	dctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	dialer := &websocket.Dialer{HandshakeTimeout: opts.ConnectTimeout}
	ws, resp, err := dialer.DialContext(dctx, target.URL(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("rpc: dial %s: %w", target, err)
	}

	c := &Client{
		target:      target,
		respTimeout: opts.ResponseTimeout,
		log:         opts.Logger.With(zap.String("target", target.String())),
	}
	c.conn = jsonrpc2.NewConn(context.Background(), jsonrpcws.NewObjectStream(ws), c)

	return c, nil
}

// Handle rejects server-initiated requests; the node only answers.
func (c *Client) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	c.log.Debug("rpc: unsolicited message", zap.String("method", req.Method), zap.Bool("notif", req.Notif))
	if req.Notif {
		return
	}
	_ = conn.ReplyWithError(ctx, req.ID, &jsonrpc2.Error{
		Code:    jsonrpc2.CodeMethodNotFound,
		Message: "client does not serve " + req.Method,
	})
}

// Target returns the address this session is bound to.
func (c *Client) Target() domain.Target {
	return c.target
}

// Connected reports whether the underlying connection is still alive.
func (c *Client) Connected() bool {
	if c == nil || c.conn == nil || c.closed.Load() {
		return false
	}
	select {
	case <-c.conn.DisconnectNotify():
		return false
	default:
		return true
	}
}

// Close closes the WebSocket. Safe to call more than once.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	if c.closed.Swap(true) {
		return nil
	}
	if err := c.conn.Close(); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
		return fmt.Errorf("rpc: close %s: %w", c.target, err)
	}
	return nil
}

// IsProtocol reports whether err is a JSON-RPC error reply from the node
// rather than a transport failure.
func IsProtocol(err error) bool {
	var je *jsonrpc2.Error
	return errors.As(err, &je)
}

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if c.closed.Load() {
		return fmt.Errorf("rpc: %s: %w", method, jsonrpc2.ErrClosed)
	}

	cctx, cancel := context.WithTimeout(ctx, c.respTimeout)
	defer cancel()

	if err := c.conn.Call(cctx, method, params, result); err != nil {
		return fmt.Errorf("rpc: %s: %w", method, err)
	}
	return nil
}

// ---- node methods ----

func (c *Client) Ping(ctx context.Context) error {
	var ignored json.RawMessage
	return c.call(ctx, "ping", nil, &ignored)
}

// GetVersion returns the raw reply; callers decide what a valid version is.
func (c *Client) GetVersion(ctx context.Context) (json.RawMessage, error) {
	var v json.RawMessage
	err := c.call(ctx, "get_version", nil, &v)
	return v, err
}

func (c *Client) ReadData(ctx context.Context) (json.RawMessage, error) {
	var v json.RawMessage
	err := c.call(ctx, "read_data", nil, &v)
	return v, err
}

func (c *Client) ListNetworks(ctx context.Context) (json.RawMessage, error) {
	var v json.RawMessage
	err := c.call(ctx, "list_networks", nil, &v)
	return v, err
}

func (c *Client) GetNodeIP(ctx context.Context) (json.RawMessage, error) {
	var v json.RawMessage
	err := c.call(ctx, "get_node_ip", nil, &v)
	return v, err
}

func (c *Client) SelectNetwork(ctx context.Context, args domain.SelectNetworkArgs) error {
	var ignored json.RawMessage
	return c.call(ctx, "select_network", args.Params(), &ignored)
}

func (c *Client) SetParams(ctx context.Context, values []domain.ParamValue) error {
	var ignored json.RawMessage
	return c.call(ctx, "set_params", map[string]any{"pv_list": values}, &ignored)
}

func (c *Client) GetParams(ctx context.Context, ids []int) ([]domain.ParamValue, error) {
	var out []domain.ParamValue
	if err := c.call(ctx, "get_params", map[string]any{"pid": ids}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
