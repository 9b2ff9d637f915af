// Package task defines the immutable Task record a scheduled pass is
// described by, and the generator that assembles one from an
// astrodynamics lookup and a radiometrics lookup. It is the Go analogue of
// hamilton's base.task module.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/je9pel/observatory/internal/astro"
)

// Type enumerates the kinds of task the scheduler can produce. The
// original system names exactly one; the type exists so a future task kind
// does not require reshaping every call site.
type Type string

// TypeLEOTrack is the only task type this system currently produces: track
// a low-earth-orbit satellite through one pass.
const TypeLEOTrack Type = "leo_track"

// SDRParameters is the SDR-facing slice of a task's parameters.
type SDRParameters struct {
	SatID string
	Freq  float64
}

// Parameters is the payload every Task carries.
type Parameters struct {
	SatID             string
	Aos               *astro.Event
	Tca               *astro.Event
	Los               *astro.Event
	SDR               SDRParameters
	InterpolatedOrbit astro.InterpolatedOrbit
}

// Task is an immutable record describing one upcoming pass and the
// parameters needed to execute it. Once generated, a Task's fields are
// never mutated; a revised pass is a new Task.
type Task struct {
	TaskID     string
	Source     string
	Timestamp  time.Time
	TaskType   Type
	Parameters Parameters
}

// DefaultMaxPassDuration is the fallback bound on how long between AOS and
// LOS a task may validly span when no configured override is supplied.
const DefaultMaxPassDuration = 15 * time.Minute

// Validate reports whether t satisfies the task-validity invariants:
// aos.time < los.time, los.time > now, and los.time − aos.time ≤
// maxPassDuration. A task failing any of these is never dispatched. A
// zero maxPassDuration falls back to DefaultMaxPassDuration.
func Validate(t *Task, now time.Time, maxPassDuration time.Duration) error {
	if maxPassDuration <= 0 {
		maxPassDuration = DefaultMaxPassDuration
	}
	if t.Parameters.Aos == nil || t.Parameters.Los == nil {
		return fmt.Errorf("task %s: missing aos or los", t.TaskID)
	}
	aos := t.Parameters.Aos.Time
	los := t.Parameters.Los.Time
	if !aos.Before(los) {
		return fmt.Errorf("task %s: aos %s is not before los %s", t.TaskID, aos, los)
	}
	if !los.After(now) {
		return fmt.Errorf("task %s: los %s is not in the future (now %s)", t.TaskID, los, now)
	}
	if los.Sub(aos) > maxPassDuration {
		return fmt.Errorf("task %s: pass duration %s exceeds %s", t.TaskID, los.Sub(aos), maxPassDuration)
	}
	return nil
}

// AstrodynamicsLookup answers the astrodynamics questions a Generator
// needs, satisfied by an astro.Tracker or an RPC client wrapping one.
type AstrodynamicsLookup interface {
	GetAosLos(ctx context.Context, satID string) (astro.AosLos, error)
	GetInterpolatedOrbit(ctx context.Context, satID string, aos, los time.Time) (astro.InterpolatedOrbit, error)
}

// RadiometricsLookup answers the downlink-frequency question a Generator
// needs.
type RadiometricsLookup interface {
	GetDownlinkFreqs(ctx context.Context, satID string) ([]float64, error)
}

// Generator assembles a Task for a catalog satellite from its current
// orbit geometry and downlink frequency, mirroring hamilton's
// TaskGenerator.
type Generator struct {
	astro           AstrodynamicsLookup
	radio           RadiometricsLookup
	source          string
	maxPassDuration time.Duration
}

// NewGenerator creates a Generator that stamps source on every task it
// produces and validates each against maxPassDuration (DefaultMaxPassDuration
// if zero).
func NewGenerator(source string, astro AstrodynamicsLookup, radio RadiometricsLookup, maxPassDuration time.Duration) *Generator {
	return &Generator{astro: astro, radio: radio, source: source, maxPassDuration: maxPassDuration}
}

// Generate builds and validates a Task for satID, returning nil with no
// error when no downlink frequency is known for the satellite, and an
// error when the resulting task fails validation.
func (g *Generator) Generate(ctx context.Context, satID string, now time.Time) (*Task, error) {
	aosLos, err := g.astro.GetAosLos(ctx, satID)
	if err != nil {
		return nil, fmt.Errorf("task generator: aos/los lookup for %s: %w", satID, err)
	}
	if !aosLos.Valid() {
		return nil, nil
	}

	orbit, err := g.astro.GetInterpolatedOrbit(ctx, satID, aosLos.Aos.Time, aosLos.Los.Time)
	if err != nil {
		return nil, fmt.Errorf("task generator: interpolated orbit for %s: %w", satID, err)
	}

	freqs, err := g.radio.GetDownlinkFreqs(ctx, satID)
	if err != nil {
		return nil, fmt.Errorf("task generator: downlink freqs for %s: %w", satID, err)
	}
	if len(freqs) == 0 {
		return nil, nil
	}

	t := &Task{
		TaskID:    uuid.NewString(),
		Source:    g.source,
		Timestamp: now,
		TaskType:  TypeLEOTrack,
		Parameters: Parameters{
			SatID:             satID,
			Aos:               aosLos.Aos,
			Tca:               aosLos.Tca,
			Los:               aosLos.Los,
			SDR:               SDRParameters{SatID: satID, Freq: freqs[0]},
			InterpolatedOrbit: orbit,
		},
	}

	if err := Validate(t, now, g.maxPassDuration); err != nil {
		return nil, err
	}
	return t, nil
}
