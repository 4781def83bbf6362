// internal/node/ops.go
package node

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/events"
	"github.com/tamzrod/nodelink/internal/schema"
)

// CheckConnection pings the node.
func (c *Client) CheckConnection(ctx context.Context) error {
	return c.withSession(ctx, func(ctx context.Context, s Session) error {
		return c.invoke("ping", func() error { return s.Ping(ctx) })
	})
}

// ListNetworks returns the access points the node can see.
func (c *Client) ListNetworks(ctx context.Context) ([]domain.Network, error) {
	var raw json.RawMessage
	err := c.withSession(ctx, func(ctx context.Context, s Session) error {
		return c.invoke("list_networks", func() (err error) {
			raw, err = s.ListNetworks(ctx)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	nets, err := schema.ParseNetworks(raw)
	if err != nil {
		c.log.Warn("node: networks dropped", zap.Error(err))
		return nil, err
	}
	return nets, nil
}

// ValidateSelectNetworkArgs checks the static addressing, if any.
func ValidateSelectNetworkArgs(args domain.SelectNetworkArgs) error {
	if args.Static == nil {
		return nil
	}
	for _, f := range []struct{ v, name string }{
		{args.Static.IP, "IP"},
		{args.Static.Subnet, "Subnet"},
		{args.Static.Gateway, "Gateway"},
	} {
		if err := schema.ValidateIP(f.v, f.name); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
	}
	return nil
}

// SelectNetwork joins the node to an access point.
func (c *Client) SelectNetwork(ctx context.Context, args domain.SelectNetworkArgs) error {
	if err := ValidateSelectNetworkArgs(args); err != nil {
		return err
	}
	return c.withSession(ctx, func(ctx context.Context, s Session) error {
		return c.invoke("select_network", func() error { return s.SelectNetwork(ctx, args) })
	})
}

// GetNodeIP returns the station address of the node. name labels the
// address in the failure reason.
func (c *Client) GetNodeIP(ctx context.Context, name string) (string, error) {
	var raw json.RawMessage
	err := c.withSession(ctx, func(ctx context.Context, s Session) error {
		return c.invoke("get_node_ip", func() (err error) {
			raw, err = s.GetNodeIP(ctx)
			return err
		})
	})
	if err != nil {
		return "", err
	}

	ip, err := schema.ParseNodeIP(raw)
	if err != nil {
		c.log.Warn("node: node ip dropped", zap.Error(err))
		return "", fmt.Errorf("node: get node ip: %w", err)
	}
	if err := schema.ValidateIP(ip, name); err != nil {
		return "", &ValidationError{Reason: err.Error()}
	}
	return ip, nil
}

// ---- event variants ----

func (c *Client) CheckConnectionStart() {
	go func() {
		if err := c.CheckConnection(context.Background()); err != nil {
			c.emitError("ping", err)
			return
		}
		c.sink.Emit(events.PongReceived, nil)
	}()
}

func (c *Client) ListNetworksStart() {
	go func() {
		nets, err := c.ListNetworks(context.Background())
		if err != nil {
			c.emitError("list_networks", err)
			return
		}
		c.sink.Emit(events.ListNetworksResp, nets)
	}()
}

func (c *Client) SelectNetworkStart(args domain.SelectNetworkArgs) {
	go func() {
		if err := c.SelectNetwork(context.Background(), args); err != nil {
			c.emitError("select_network", err)
			return
		}
		c.sink.Emit(events.SelectNetworkResp, nil)
	}()
}

func (c *Client) GetNodeIPStart(name string) {
	go func() {
		ip, err := c.GetNodeIP(context.Background(), name)
		if err != nil {
			c.emitError("get_node_ip", err)
			return
		}
		c.sink.Emit(events.GetNodeIPResp, ip)
	}()
}
