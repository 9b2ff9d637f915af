// Package tracker drives the rotator through one pass: pre-position for
// AOS using the geometry package's clockwise/counter-clockwise choice, then
// continuously re-point to the satellite's live kinematic state until LOS
// or cancellation. It is the Go analogue of hamilton's
// operators.tracker.api.Tracker.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/je9pel/observatory/internal/astro"
	"github.com/je9pel/observatory/internal/geometry"
	"github.com/je9pel/observatory/internal/mount"
	"github.com/je9pel/observatory/internal/task"
)

// KinematicSource answers the live kinematic-state question the tracking
// loop polls, satisfied by an astro.Tracker or an RPC client wrapping one.
type KinematicSource interface {
	GetKinematicState(ctx context.Context, satID string, at time.Time) (astro.KinematicState, error)
}

// MountDriver is the rotator command surface the slew/tracking loop drives,
// satisfied by a mount.Service or an RPC client wrapping one.
type MountDriver interface {
	Set(ctx context.Context, az, el float64) error
	Status(ctx context.Context) (mount.Position, error)
	StopRotor(ctx context.Context) (mount.Position, error)
}

// Config parameterizes a Service's slew behaviour.
type Config struct {
	AzHome           float64
	ElHome           float64
	MinElevationDeg  float64
	SlewPollInterval time.Duration
	AngularTolerance float64
}

// Service drives one mount.Driver through the AOS-pre-position and
// continuous-tracking sequence for a task, mirroring hamilton's Tracker
// class.
type Service struct {
	cfg    Config
	mount  MountDriver
	astro  KinematicSource
	logger *slog.Logger

	isTracking atomic.Bool

	task        *task.Task
	rotorAngles geometry.AosRotorAngles
}

// New creates a tracker Service.
func New(cfg Config, mountDriver MountDriver, astroSrc KinematicSource, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, mount: mountDriver, astro: astroSrc, logger: logger}
}

// Status reports whether the service is currently tracking.
func (s *Service) Status() string {
	if s.isTracking.Load() {
		return "active"
	}
	return "idle"
}

// SetupTask idempotently installs t as the active task and precomputes its
// AOS rotor angles.
func (s *Service) SetupTask(t *task.Task) error {
	if t == nil {
		return fmt.Errorf("tracker: setup task: task is nil")
	}
	s.task = t
	azRateAos := t.Parameters.Aos.State.AzRate
	orbit := geometry.Track{Az: t.Parameters.InterpolatedOrbit.Az, El: t.Parameters.InterpolatedOrbit.El}
	angles, err := geometry.GetAosRotorAngles(azRateAos, orbit)
	if err != nil {
		return fmt.Errorf("tracker: computing aos rotor angles: %w", err)
	}
	s.rotorAngles = angles
	return nil
}

// SlewToHome rotates the mount to its home position and waits for arrival.
func (s *Service) SlewToHome(ctx context.Context) error {
	return s.slewAndWait(ctx, s.cfg.AzHome, s.cfg.ElHome)
}

// SlewToAos rotates the mount to the task's AOS-ready position in two
// steps: first to the halfway azimuth, then to the final AOS position,
// mirroring the two-step slew the rotator controller's shortest-path
// behaviour requires.
func (s *Service) SlewToAos(ctx context.Context) error {
	if err := s.slewAndWait(ctx, s.rotorAngles.AzAosHalf, s.rotorAngles.ElAos); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return s.slewAndWait(ctx, s.rotorAngles.AzAos, s.rotorAngles.ElAos)
}

func (s *Service) slewAndWait(ctx context.Context, az, el float64) error {
	az, el = s.safeAzEl(az, el)
	if err := s.mount.Set(ctx, az, el); err != nil {
		return fmt.Errorf("tracker: slewing to (az=%.2f, el=%.2f): %w", az, el, err)
	}
	s.isTracking.Store(true)
	defer s.finishTracking(ctx)

	s.logger.InfoContext(ctx, "slewing", "az", az, "el", el)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.SlewPollInterval):
		}
		pos, err := s.mount.Status(ctx)
		if err != nil {
			return fmt.Errorf("tracker: reading mount status: %w", err)
		}
		azErr := wrapAzError(az - pos.Azimuth)
		elErr := el - pos.Elevation
		if math.Abs(azErr) <= s.cfg.AngularTolerance && math.Abs(elErr) <= s.cfg.AngularTolerance {
			s.logger.InfoContext(ctx, "slew complete", "az_err", azErr, "el_err", elErr)
			return nil
		}
	}
}

func wrapAzError(azErr float64) float64 {
	if azErr >= 360 {
		return math.Mod(azErr, 360)
	}
	if azErr <= -360 {
		return math.Mod(azErr, -360)
	}
	return azErr
}

// Track continuously re-points the mount to the tracked satellite's live
// kinematic state until the context is cancelled (LOS or orchestrator
// cancellation).
func (s *Service) Track(ctx context.Context) error {
	if s.task == nil {
		return fmt.Errorf("tracker: track called with no task set up")
	}
	s.isTracking.Store(true)
	defer s.finishTracking(ctx)

	satID := s.task.Parameters.SatID
	s.logger.InfoContext(ctx, "starting tracking routine", "sat_id", satID)
	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "tracking routine completed")
			return nil
		case <-time.After(s.cfg.SlewPollInterval):
		}

		state, err := s.astro.GetKinematicState(ctx, satID, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("tracker: getting kinematic state for %s: %w", satID, err)
		}
		if state.El < s.cfg.MinElevationDeg {
			s.logger.InfoContext(ctx, "waiting for elevation to rise", "el", state.El, "min_el", s.cfg.MinElevationDeg)
			continue
		}
		az, el := s.safeAzEl(state.Az, state.El)
		if err := s.mount.Set(ctx, az, el); err != nil {
			return fmt.Errorf("tracker: slewing to (az=%.2f, el=%.2f): %w", az, el, err)
		}
	}
}

func (s *Service) finishTracking(ctx context.Context) {
	if _, err := s.mount.StopRotor(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to stop rotor", "error", err)
	}
	s.isTracking.Store(false)
}

// safeAzEl clamps a requested position to the rotator's mechanical range
// and the configured minimum elevation.
func (s *Service) safeAzEl(az, el float64) (float64, float64) {
	safeAz := az
	if az < 0 {
		safeAz = 0
	} else if az > 540 {
		safeAz = 540
	}

	safeEl := el
	if el < s.cfg.MinElevationDeg {
		safeEl = s.cfg.MinElevationDeg
	} else if el > 180-s.cfg.MinElevationDeg {
		safeEl = 180 - s.cfg.MinElevationDeg
	}

	return round2(safeAz), round2(safeEl)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
