// Package sdr implements the SDR recorder contract a tracked pass drives:
// parameterize the receiver for a satellite's downlink frequency, switch
// the low-noise amplifier relay for the active band, and start or stop a
// recording. The GNU-Radio flowgraph and relay hardware this wraps in
// production are out of scope for this repository; Recorder is the seam a
// real flowgraph driver would be wired in behind, matching hamilton's
// devices.sdr.api.SDRSigMFRecord.
package sdr

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Band is the RF band a recording's LNA relay is switched for.
type Band string

const (
	BandVHF Band = "VHF"
	BandUHF Band = "UHF"
)

// Parameters configures one recording.
type Parameters struct {
	SatID      string
	FreqHz     float64
	SampleRate float64
	RxGainDb   float64
}

// Recorder is the SDR hardware contract: apply recording parameters, then
// start or stop capture.
type Recorder interface {
	StartRecord(ctx context.Context, params Parameters) (filePath string, err error)
	StopRecord(ctx context.Context) error
}

// vhfHighHz is the VHF/UHF band boundary; recordings at or below this
// frequency switch the VHF bias relay, those above switch UHF.
const vhfHighHz = 146_000_000

// SimulatedRecorder models the SigMF recording flowgraph and LNA relay
// without touching real hardware: it derives a deterministic filename and
// band from the requested parameters and tracks whether a recording is
// currently active.
type SimulatedRecorder struct {
	obsDir  string
	active  bool
	current Parameters
}

// NewSimulatedRecorder creates a SimulatedRecorder writing filenames under
// obsDir.
func NewSimulatedRecorder(obsDir string) *SimulatedRecorder {
	return &SimulatedRecorder{obsDir: obsDir}
}

func bandFor(freqHz float64) Band {
	if freqHz <= vhfHighHz {
		return BandVHF
	}
	return BandUHF
}

func (r *SimulatedRecorder) filename(now time.Time) string {
	return filepath.Join(r.obsDir, fmt.Sprintf("%s_%s_%s", r.current.SatID, bandFor(r.current.FreqHz), now.UTC().Format("20060102_150405")))
}

// StartRecord switches the LNA relay for params' band and begins a
// simulated capture, returning the SigMF base filename it would write to.
func (r *SimulatedRecorder) StartRecord(ctx context.Context, params Parameters) (string, error) {
	if r.active {
		return "", fmt.Errorf("sdr: recording already in progress for %s", r.current.SatID)
	}
	r.current = params
	r.active = true
	return r.filename(time.Now()), nil
}

// StopRecord ends the active capture and switches the LNA relay off.
func (r *SimulatedRecorder) StopRecord(ctx context.Context) error {
	if !r.active {
		return fmt.Errorf("sdr: no recording in progress")
	}
	r.active = false
	return nil
}
