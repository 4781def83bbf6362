// internal/domain/target.go
package domain

import (
	"net"
	"strconv"
)

// Target is the address of the currently selected node.
// "No machine selected" is expressed by the caller returning ok=false,
// never by a zero Target.
type Target struct {
	Host string
	Port uint16
}

// Addr returns host:port, bracketing IPv6 literals.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

// URL returns the WebSocket endpoint of the node.
func (t Target) URL() string {
	return "ws://" + t.Addr()
}

func (t Target) String() string {
	return t.Addr()
}
