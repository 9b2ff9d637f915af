// Package orchestrator sequences one task end-to-end: slew home, slew to
// AOS, wait for AOS, start tracking and recording, wait for LOS, stop both,
// slew home again, then post-process the recording. It publishes a status
// telemetry event at every active/idle transition and guarantees only one
// orchestration runs at a time. It is the Go analogue of hamilton's
// operators.orchestrator.api.Orchestrator.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/je9pel/observatory/internal/sdr"
	"github.com/je9pel/observatory/internal/signalprocessor"
	"github.com/je9pel/observatory/internal/task"
)

// StatusPublisher emits the orchestrator's active/idle status telemetry.
type StatusPublisher interface {
	PublishStatusEvent(ctx context.Context, status string) error
}

// TrackerDriver is the tracking/slewing command surface a pass sequence
// drives, satisfied by a tracker.Service or an RPC client wrapping one.
type TrackerDriver interface {
	SlewToHome(ctx context.Context) error
	SlewToAos(ctx context.Context) error
	SetupTask(t *task.Task) error
	Track(ctx context.Context) error
}

// SDRRecorder is the recording command surface a pass sequence drives,
// satisfied by an sdr.Service or an RPC client wrapping one.
type SDRRecorder interface {
	StartRecording(ctx context.Context, params sdr.Parameters) (string, error)
	StopRecording(ctx context.Context) error
}

// SignalProcessor produces the post-pass artefacts for a completed
// recording, satisfied by a signalprocessor.Processor or an RPC client
// wrapping one.
type SignalProcessor interface {
	Process(ctx context.Context, sigmfBaseName string) (signalprocessor.Artefacts, error)
}

// Service runs one task's full tracking/recording sequence, refusing to
// start a second run concurrently.
type Service struct {
	tracker TrackerDriver
	sdr     SDRRecorder
	signal  SignalProcessor
	status  StatusPublisher
	logger  *slog.Logger

	isRunning atomic.Bool
	cancel    atomic.Pointer[context.CancelFunc]
}

// New creates an orchestrator Service.
func New(trackerSvc TrackerDriver, sdrSvc SDRRecorder, signalProc SignalProcessor, status StatusPublisher, logger *slog.Logger) *Service {
	return &Service{tracker: trackerSvc, sdr: sdrSvc, signal: signalProc, status: status, logger: logger}
}

// IsRunning reports whether an orchestration is currently in progress.
func (s *Service) IsRunning() bool { return s.isRunning.Load() }

// Status returns "active" or "idle" per IsRunning.
func (s *Service) Status() string {
	if s.isRunning.Load() {
		return "active"
	}
	return "idle"
}

// Orchestrate runs t's full pass sequence. It refuses to start if another
// orchestration is already running, mirroring the controller's
// `if not self.orchestrator.is_running` guard.
func (s *Service) Orchestrate(ctx context.Context, t *task.Task) error {
	if !s.isRunning.CompareAndSwap(false, true) {
		return fmt.Errorf("orchestrator: an orchestration is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel.Store(&cancel)
	defer func() {
		s.cancel.Store(nil)
		cancel()
	}()

	s.publishStatus(runCtx, "active")

	if err := s.run(runCtx, t); err != nil {
		s.logger.ErrorContext(ctx, "orchestration failed", "task_id", t.TaskID, "error", err)
		_ = s.sdr.StopRecording(ctx)
		s.stopOrchestratingLocked(ctx)
		return err
	}

	s.stopOrchestratingLocked(ctx)
	s.logger.InfoContext(ctx, "orchestration completed successfully", "task_id", t.TaskID)
	return nil
}

func (s *Service) run(ctx context.Context, t *task.Task) error {
	if err := s.tracker.SlewToHome(ctx); err != nil {
		return fmt.Errorf("slewing home: %w", err)
	}
	if err := s.tracker.SetupTask(t); err != nil {
		return fmt.Errorf("setting up task: %w", err)
	}
	if err := s.tracker.SlewToAos(ctx); err != nil {
		return fmt.Errorf("slewing to aos: %w", err)
	}

	aosTime := t.Parameters.Aos.Time
	losTime := t.Parameters.Los.Time
	preSleep := time.Until(aosTime)

	s.logger.InfoContext(ctx, "waiting for aos", "seconds", preSleep.Seconds())
	if aborted, err := s.sleepOrCancel(ctx, preSleep); err != nil || aborted {
		return err
	}

	s.logger.InfoContext(ctx, "starting tracking and recording")
	trackCtx, cancelTrack := context.WithCancel(ctx)
	defer cancelTrack()
	trackErrCh := make(chan error, 1)
	go func() { trackErrCh <- s.tracker.Track(trackCtx) }()

	if _, err := s.sdr.StartRecording(ctx, sdr.Parameters{SatID: t.Parameters.SDR.SatID, FreqHz: t.Parameters.SDR.Freq}); err != nil {
		cancelTrack()
		return fmt.Errorf("starting recording: %w", err)
	}

	sleepDuration := losTime.Sub(aosTime)
	s.logger.InfoContext(ctx, "tracking and recording until los", "seconds", sleepDuration.Seconds())
	aborted, err := s.sleepOrCancel(ctx, sleepDuration)

	cancelTrack()
	<-trackErrCh

	if stopErr := s.sdr.StopRecording(ctx); stopErr != nil {
		s.logger.ErrorContext(ctx, "failed to stop recording", "error", stopErr)
	}
	if err != nil || aborted {
		return err
	}

	if err := s.tracker.SlewToHome(ctx); err != nil {
		return fmt.Errorf("slewing home after pass: %w", err)
	}

	artefacts, err := s.signal.Process(ctx, fmt.Sprintf("%s_%s", t.Parameters.SatID, t.TaskID))
	if err != nil {
		return fmt.Errorf("processing signal artefacts: %w", err)
	}
	s.logger.InfoContext(ctx, "signal processing complete", "psd", artefacts.PSDPath, "spectrogram", artefacts.SpectrogramPath)

	return nil
}

// sleepOrCancel waits for d or the context's cancellation, whichever comes
// first. aborted is true when the context was cancelled before d elapsed.
func (s *Service) sleepOrCancel(ctx context.Context, d time.Duration) (aborted bool, err error) {
	if d <= 0 {
		return false, nil
	}
	select {
	case <-time.After(d):
		return false, nil
	case <-ctx.Done():
		return true, ctx.Err()
	}
}

// StopOrchestrating cancels any in-progress orchestration and publishes
// the idle status event.
func (s *Service) StopOrchestrating(ctx context.Context) {
	if c := s.cancel.Load(); c != nil {
		(*c)()
	}
	s.stopOrchestratingLocked(ctx)
}

func (s *Service) stopOrchestratingLocked(ctx context.Context) {
	s.isRunning.Store(false)
	s.publishStatus(ctx, "idle")
}

func (s *Service) publishStatus(ctx context.Context, status string) {
	statusCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.status.PublishStatusEvent(statusCtx, status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish status event", "status", status, "error", err)
	}
}
