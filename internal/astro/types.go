// Package astro answers orbit-mechanics questions about satellites: the
// instantaneous kinematic state of a target, the next acquisition/
// time-of-closest-approach/loss-of-signal triple within a search window,
// and an interpolated sky track between two times. It is the Go analogue
// of hamilton's operators.astrodynamics.api.SpaceObjectTracker.
package astro

import "time"

// KinematicState is the instantaneous angular/linear pointing of a target
// relative to the sensor location, at a single instant.
type KinematicState struct {
	Az        float64
	El        float64
	AzRate    float64
	ElRate    float64
	Range     float64
	RangeRate float64
	Time      time.Time
}

// Event pairs a point in time with the kinematic state at that time.
type Event struct {
	Time  time.Time
	State KinematicState
}

// AosLos is the acquisition/closest-approach/loss-of-signal triple for one
// search window. Aos, Tca and Los are all nil or all non-nil: a window with
// no valid rise/set leaves every field null rather than partially filled.
type AosLos struct {
	Aos *Event
	Tca *Event
	Los *Event
}

// Valid reports whether the triple is fully populated and properly
// ordered: Aos.Time < Tca.Time < Los.Time.
func (a AosLos) Valid() bool {
	return a.Aos != nil && a.Tca != nil && a.Los != nil &&
		a.Aos.Time.Before(a.Tca.Time) && a.Tca.Time.Before(a.Los.Time)
}

// InterpolatedOrbit is N equally spaced samples of the sky track between
// AOS and LOS.
type InterpolatedOrbit struct {
	Az   []float64
	El   []float64
	Time []time.Time
}

// Empty reports whether the orbit carries no samples.
func (o InterpolatedOrbit) Empty() bool { return len(o.Time) == 0 }
