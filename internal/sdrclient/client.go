// Package sdrclient adapts internal/rpcclient.Client to
// orchestrator.SDRRecorder, so the orchestrator process can drive the
// recorder over RPC rather than holding an sdr.Service instance directly —
// sdr runs as its own process.
package sdrclient

import (
	"context"

	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/sdr"
)

// Verbs this package calls on the sdr service; callers must pass these to
// rpcclient.Client.BindVerbs before starting their node.
const (
	VerbStartRecord = "start_record"
	VerbStopRecord  = "stop_record"
	VerbStatus      = "status"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbStartRecord, VerbStopRecord, VerbStatus}
}

// Client is an orchestrator.SDRRecorder implementation backed by RPC calls
// to the sdr service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "sdr" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// StartRecording satisfies orchestrator.SDRRecorder.
func (c *Client) StartRecording(ctx context.Context, params sdr.Parameters) (string, error) {
	resp, err := c.rpc.Call(ctx, VerbStartRecord, map[string]any{
		"sat_id":      params.SatID,
		"freq_hz":     params.FreqHz,
		"sample_rate": params.SampleRate,
		"rx_gain_db":  params.RxGainDb,
	})
	if err != nil {
		return "", err
	}
	return resp.Fields["file_path"].GetStringValue(), nil
}

// StopRecording satisfies orchestrator.SDRRecorder.
func (c *Client) StopRecording(ctx context.Context) error {
	_, err := c.rpc.Call(ctx, VerbStopRecord, nil)
	return err
}

// Status reports whether the sdr service is currently recording.
func (c *Client) Status(ctx context.Context) (bool, error) {
	resp, err := c.rpc.Call(ctx, VerbStatus, nil)
	if err != nil {
		return false, err
	}
	return resp.Fields["recording"].GetBoolValue(), nil
}
