// internal/node/state.go
package node

// State is the connection lifecycle position of the polling loop.
type State int32

const (
	StateDisconnected State = iota
	StateHandshaking
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateHandshaking:
		return "HANDSHAKING"
	case StateStreaming:
		return "STREAMING"
	default:
		return "UNKNOWN"
	}
}
