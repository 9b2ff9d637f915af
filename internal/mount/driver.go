// Package mount implements the rotator interface every tracker slew
// command drives: a Driver contract matching the Alfa ROT2Prog-style
// status/set/stop triad, and a deterministic simulated implementation
// standing in for the serial ABI that is out of scope for this repository.
package mount

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// Position is a rotator's current azimuth/elevation reading.
type Position struct {
	Azimuth   float64
	Elevation float64
}

// Limits bounds the rotator's travel, mirroring ROT2Prog's set_limits.
type Limits struct {
	MinAz, MaxAz float64
	MinEl, MaxEl float64
}

// DefaultLimits matches the rotator's mechanical range described in this
// system's geometry: azimuth [0°, 540°], elevation [0°, 180°].
var DefaultLimits = Limits{MinAz: 0, MaxAz: 540, MinEl: 0, MaxEl: 180}

// Driver is the rotator hardware contract: read current position, command
// a new one, or stop in place. It is the Go analogue of ROT2Prog's
// status/set/stop methods.
type Driver interface {
	Status(ctx context.Context) (Position, error)
	Set(ctx context.Context, az, el float64) error
	Stop(ctx context.Context) (Position, error)
}

// ErrOutOfRange is returned by Set when the requested position falls
// outside the driver's configured limits.
type ErrOutOfRange struct {
	Az, El float64
	Limits Limits
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("mount: position (az=%.1f, el=%.1f) out of range %+v", e.Az, e.El, e.Limits)
}

// SimulatedDriver models a rotator that ramps towards a commanded position
// at a fixed slew rate rather than jumping instantaneously, so a service
// polling Status sees realistic in-flight motion the way the real serial
// driver would report it.
type SimulatedDriver struct {
	mu       sync.Mutex
	limits   Limits
	slewRate float64 // degrees/second
	current  Position
	target   Position
	lastTick time.Time
}

// NewSimulatedDriver creates a SimulatedDriver starting at home position
// with the given slew rate.
func NewSimulatedDriver(slewRateDegPerSec float64) *SimulatedDriver {
	return &SimulatedDriver{
		limits:   DefaultLimits,
		slewRate: slewRateDegPerSec,
		current:  Position{Azimuth: 270, Elevation: 0},
		target:   Position{Azimuth: 270, Elevation: 0},
		lastTick: time.Now(),
	}
}

// Status advances the simulated position towards its target by elapsed
// time at slewRate, and returns the result.
func (d *SimulatedDriver) Status(ctx context.Context) (Position, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.advanceLocked()
	return d.current, nil
}

func (d *SimulatedDriver) advanceLocked() {
	now := time.Now()
	elapsed := now.Sub(d.lastTick).Seconds()
	d.lastTick = now

	maxStep := d.slewRate * elapsed
	d.current.Azimuth = stepTowards(d.current.Azimuth, d.target.Azimuth, maxStep)
	d.current.Elevation = stepTowards(d.current.Elevation, d.target.Elevation, maxStep)
}

func stepTowards(current, target, maxStep float64) float64 {
	diff := target - current
	if math.Abs(diff) <= maxStep {
		return target
	}
	if diff > 0 {
		return current + maxStep
	}
	return current - maxStep
}

// Set commands the rotator to a new azimuth/elevation, validating against
// the configured limits first.
func (d *SimulatedDriver) Set(ctx context.Context, az, el float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if az < d.limits.MinAz || az > d.limits.MaxAz || el < d.limits.MinEl || el > d.limits.MaxEl {
		return &ErrOutOfRange{Az: az, El: el, Limits: d.limits}
	}
	d.advanceLocked()
	d.target = Position{Azimuth: az, Elevation: el}
	return nil
}

// Stop halts the rotator at its current simulated position.
func (d *SimulatedDriver) Stop(ctx context.Context) (Position, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.advanceLocked()
	d.target = d.current
	return d.current, nil
}
