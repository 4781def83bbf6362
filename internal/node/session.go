// internal/node/session.go
package node

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/rpc"
)

// Session abstracts the node RPC surface the client needs.
// rpc.Client is the production implementation.
type Session interface {
	Connected() bool
	Close() error

	Ping(ctx context.Context) error
	GetVersion(ctx context.Context) (json.RawMessage, error)
	ReadData(ctx context.Context) (json.RawMessage, error)
	ListNetworks(ctx context.Context) (json.RawMessage, error)
	GetNodeIP(ctx context.Context) (json.RawMessage, error)
	SelectNetwork(ctx context.Context, args domain.SelectNetworkArgs) error
	SetParams(ctx context.Context, values []domain.ParamValue) error
	GetParams(ctx context.Context, ids []int) ([]domain.ParamValue, error)
}

// DialFunc opens a session against target. ONE attempt per call.
type DialFunc func(ctx context.Context, target domain.Target) (Session, error)

// RPCDialer returns a DialFunc backed by rpc.Dial.
func RPCDialer(opts rpc.Options) DialFunc {
	return func(ctx context.Context, target domain.Target) (Session, error) {
		c, err := rpc.Dial(ctx, target, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Settings is the live configuration the client re-reads on every use.
type Settings interface {
	// Target returns ok=false when no machine is selected.
	Target() (domain.Target, bool)
	PollPeriod() time.Duration
	HoseLength() int64
}

// Observer receives runtime measurements. See metrics.Metrics.
type Observer interface {
	ObserveRPC(method string, d time.Duration, err error)
	ObserveState(s State)
	ObserveTelemetry(accepted bool)
	ObserveReconnect()
}

type nopObserver struct{}

func (nopObserver) ObserveRPC(string, time.Duration, error) {}
func (nopObserver) ObserveState(State)                      {}
func (nopObserver) ObserveTelemetry(bool)                   {}
func (nopObserver) ObserveReconnect()                       {}

var (
	// ErrUnusable means no session could be bound to the current target.
	ErrUnusable = errors.New("node: no usable session")

	// ErrClosed means the client has been shut down.
	ErrClosed = errors.New("node: client closed")
)

// ValidationError is a semantic failure whose message is meant for the operator.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }
