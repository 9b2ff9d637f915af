// Package signalprocessorclient adapts internal/rpcclient.Client to
// orchestrator.SignalProcessor, so the orchestrator process can request
// post-pass artefacts over RPC rather than holding a signalprocessor.Processor
// instance directly — signal_processor runs as its own process.
package signalprocessorclient

import (
	"context"

	"github.com/je9pel/observatory/internal/rpcclient"
	"github.com/je9pel/observatory/internal/signalprocessor"
)

// Verbs this package calls on the signal_processor service; callers must
// pass these to rpcclient.Client.BindVerbs before starting their node.
const (
	VerbGeneratePSDs         = "generate_psds"
	VerbGenerateSpectrograms = "generate_spectrograms"
)

// Verbs returns every verb this client calls, for BindVerbs.
func Verbs() []string {
	return []string{VerbGeneratePSDs, VerbGenerateSpectrograms}
}

// Client is an orchestrator.SignalProcessor implementation backed by RPC
// calls to the signal_processor service.
type Client struct {
	rpc *rpcclient.Client
}

// New wraps rpc, which must already target the "signal_processor" service.
func New(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// Process satisfies orchestrator.SignalProcessor, issuing both generation
// commands so the returned Artefacts carries every path the pass sequence
// logs.
func (c *Client) Process(ctx context.Context, sigmfBaseName string) (signalprocessor.Artefacts, error) {
	params := map[string]any{"sigmf_base_name": sigmfBaseName}

	psdResp, err := c.rpc.Call(ctx, VerbGeneratePSDs, params)
	if err != nil {
		return signalprocessor.Artefacts{}, err
	}
	specResp, err := c.rpc.Call(ctx, VerbGenerateSpectrograms, params)
	if err != nil {
		return signalprocessor.Artefacts{}, err
	}

	return signalprocessor.Artefacts{
		PSDPath:         psdResp.Fields["psd_path"].GetStringValue(),
		SpectrogramPath: specResp.Fields["spectrogram_path"].GetStringValue(),
		PanelPath:       specResp.Fields["panel_path"].GetStringValue(),
	}, nil
}
