// Package mountclient adapts internal/rpcclient.Client to tracker.MountDriver,
// so the tracker process can drive the rotator over RPC rather than holding
// a mount.Service instance directly — mount runs as its own process.
package mountclient

import (
	"context"

	"github.com/je9pel/observatory/internal/mount"
	"github.com/je9pel/observatory/internal/rpcclient"
)

// Verbs this package calls on the mount service; callers must pass these to
// rpcclient.Client.BindVerbs before starting their node.
const (
	VerbSet    = "set"
	VerbStatus = "status"
	VerbStop   = "stop"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbSet, VerbStatus, VerbStop}
}

// Client is a tracker.MountDriver implementation backed by RPC calls to the
// mount service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "mount" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// Set satisfies tracker.MountDriver.
func (c *Client) Set(ctx context.Context, az, el float64) error {
	_, err := c.rpc.Call(ctx, VerbSet, map[string]any{"az": az, "el": el})
	return err
}

// Status satisfies tracker.MountDriver.
func (c *Client) Status(ctx context.Context) (mount.Position, error) {
	resp, err := c.rpc.Call(ctx, VerbStatus, nil)
	if err != nil {
		return mount.Position{}, err
	}
	return mount.Position{
		Azimuth:   resp.Fields["az"].GetNumberValue(),
		Elevation: resp.Fields["el"].GetNumberValue(),
	}, nil
}

// StopRotor satisfies tracker.MountDriver.
func (c *Client) StopRotor(ctx context.Context) (mount.Position, error) {
	resp, err := c.rpc.Call(ctx, VerbStop, nil)
	if err != nil {
		return mount.Position{}, err
	}
	return mount.Position{
		Azimuth:   resp.Fields["az"].GetNumberValue(),
		Elevation: resp.Fields["el"].GetNumberValue(),
	}, nil
}
