// Package signalprocessor writes the post-pass observation artefacts a
// completed recording produces: power spectral density plots, waterfall
// spectrograms, and a combined orbit/Doppler panel, one set per recording.
// The numerical DSP and plotting themselves (FFT windowing, matplotlib
// rendering) are out of scope for this repository; this package keeps the
// directory layout and per-pass artefact naming hamilton's
// operators.signal_processor.api.SignalProcessor establishes, and writes
// placeholder artefacts a real DSP stage would produce output compatible
// with.
package signalprocessor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Processor writes post-pass artefacts under a fixed three-directory
// layout: psd, spectrogram and panels, mirroring SignalProcessor's
// __init__.
type Processor struct {
	psdDir         string
	spectrogramDir string
	panelsDir      string
}

// New creates a Processor rooted at observationsDir, creating the psd,
// spectrogram and panels subdirectories if they do not already exist.
func New(observationsDir string) (*Processor, error) {
	p := &Processor{
		psdDir:         filepath.Join(observationsDir, "psd"),
		spectrogramDir: filepath.Join(observationsDir, "spectrogram"),
		panelsDir:      filepath.Join(observationsDir, "panels"),
	}
	for _, dir := range []string{p.psdDir, p.spectrogramDir, p.panelsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("signalprocessor: creating %s: %w", dir, err)
		}
	}
	return p, nil
}

// Artefacts is the set of output files produced for one recording.
type Artefacts struct {
	PSDPath         string
	SpectrogramPath string
	PanelPath       string
}

// Process derives psd, spectrogram and combined-panel artefact paths for
// the recording at sigmfBaseName and writes placeholder files at each,
// standing in for the FFT/plotting pipeline that would consume the
// recording's SigMF data and annotation timeseries.
func (p *Processor) Process(ctx context.Context, sigmfBaseName string) (Artefacts, error) {
	base := filepath.Base(sigmfBaseName)
	out := Artefacts{
		PSDPath:         filepath.Join(p.psdDir, base+"_psd.png"),
		SpectrogramPath: filepath.Join(p.spectrogramDir, base+"_spectrogram.png"),
		PanelPath:       filepath.Join(p.panelsDir, base+"_panel.png"),
	}
	for _, path := range []string{out.PSDPath, out.SpectrogramPath, out.PanelPath} {
		if err := os.WriteFile(path, []byte{}, 0o644); err != nil {
			return Artefacts{}, fmt.Errorf("signalprocessor: writing %s: %w", path, err)
		}
	}
	return out, nil
}
