// Package radiometricsclient adapts internal/rpcclient.Client to
// task.RadiometricsLookup, so the scheduler-side processes can reach
// radiometrics over RPC rather than holding a radiometrics.Service
// instance directly — radiometrics runs as its own process.
package radiometricsclient

import (
	"context"

	"github.com/je9pel/observatory/internal/rpcclient"
)

// Verbs this package calls on the radiometrics service; callers must pass
// these to rpcclient.Client.BindVerbs before starting their node.
const (
	VerbGetDownlinkFreqs = "get_downlink_freqs"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbGetDownlinkFreqs}
}

// Client is a task.RadiometricsLookup implementation backed by RPC calls
// to the radiometrics service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "radiometrics" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// GetDownlinkFreqs satisfies task.RadiometricsLookup.
func (c *Client) GetDownlinkFreqs(ctx context.Context, satID string) ([]float64, error) {
	resp, err := c.rpc.Call(ctx, VerbGetDownlinkFreqs, map[string]any{"sat_id": satID})
	if err != nil {
		return nil, err
	}
	list := resp.Fields["downlink_freqs"].GetListValue().GetValues()
	out := make([]float64, len(list))
	for i, v := range list {
		out[i] = v.GetNumberValue()
	}
	return out, nil
}
