// Package geometry computes the rotator pre-positioning angles for a pass:
// given the azimuth rate at AOS and the interpolated sky track, it decides
// whether the mount should slew clockwise or counter-clockwise relative to
// its home position so that the full pass stays within the rotator's
// mechanical travel, and returns the angle to pre-position at. It is the Go
// analogue of hamilton's operators.tracker.api.AOSPath.
package geometry

import (
	"errors"
	"time"
)

// AzHome is the rotator's home azimuth. The mechanical range is
// [0°, 540°], i.e. the rotator can over-rotate 180° past north.
const AzHome = 270.0

// MaxTravelFromHome is the furthest angular extent, in either direction,
// the rotator may travel from home without exceeding its mechanical range.
const MaxTravelFromHome = 270.0

// ErrInvalidOrbit is returned when neither a clockwise nor a
// counter-clockwise traversal keeps the pass within the rotator's travel.
var ErrInvalidOrbit = errors.New("geometry: angular travel exceeds rotator range for both cw and ccw traversal")

// ClockwiseAngle maps phi onto the clockwise branch: angles in (270, 360)
// are left alone, everything else is wrapped up by 360°.
func ClockwiseAngle(phi float64) float64 {
	if phi > 270 && phi < 360 {
		return phi
	}
	return phi + 360
}

// CounterclockwiseAngle maps phi onto the counter-clockwise branch: angles
// in (270, 360) are wrapped down by 360°, everything else is left alone.
func CounterclockwiseAngle(phi float64) float64 {
	if phi > 270 && phi < 360 {
		return phi - 360
	}
	return phi
}

// MaxOrbitDistance sums the shortest-path angular distance between each
// consecutive pair of angles, i.e. the total angular travel required to
// sweep through the whole ordered list.
func MaxOrbitDistance(angles []float64) float64 {
	if len(angles) < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < len(angles)-1; i++ {
		diff := angles[i+1] - angles[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > 180 {
			diff = 360 - diff
		}
		total += diff
	}
	return total
}

// Track is the minimal slice of an interpolated orbit MaxRotorTravel needs.
type Track struct {
	Az []float64
	El []float64
}

// MaxRotorTravel computes the furthest absolute angular extent the azimuth
// rotor must travel from home, for both a clockwise and a
// counter-clockwise initial traversal, given the azimuth rate at AOS and
// the pass's interpolated sky track.
func MaxRotorTravel(azRateAos float64, orbit Track) (phiMaxCw, phiMaxCcw, azAos, elAos float64) {
	clockwiseOrbit := azRateAos > 0
	azAos = orbit.Az[0]
	elAos = orbit.El[0]

	phiAosHomeCw := ClockwiseAngle(azAos) - AzHome
	phiAosHomeCcw := CounterclockwiseAngle(azAos) - AzHome

	phiOrbit := MaxOrbitDistance(orbit.Az)
	if !clockwiseOrbit {
		phiOrbit = -phiOrbit
	}

	phiMaxCw = max(phiAosHomeCw, abs(phiAosHomeCw+phiOrbit))
	phiMaxCcw = max(abs(phiAosHomeCcw), abs(phiAosHomeCcw+phiOrbit))
	return phiMaxCw, phiMaxCcw, azAos, elAos
}

// AosRotorAngles is the pre-positioning result for one pass: the final AOS
// azimuth, the halfway azimuth the mount passes through en route (needed
// because the rotator controller always takes the shorter of its two
// mechanical paths), and the AOS elevation.
type AosRotorAngles struct {
	AzAos     float64
	AzAosHalf float64
	ElAos     float64
}

// GetAosRotorAngles computes the initial AOS rotor angles for
// pre-positioning, choosing whether to traverse clockwise or
// counter-clockwise relative to home so the whole pass stays within the
// rotator's mechanical range. It returns ErrInvalidOrbit when neither
// direction fits.
func GetAosRotorAngles(azRateAos float64, orbit Track) (AosRotorAngles, error) {
	phiMaxCw, phiMaxCcw, azAos, elAos := MaxRotorTravel(azRateAos, orbit)

	if phiMaxCw > MaxTravelFromHome && phiMaxCcw > MaxTravelFromHome {
		return AosRotorAngles{}, ErrInvalidOrbit
	}

	var clockwise bool
	if phiMaxCw < phiMaxCcw {
		clockwise = phiMaxCw <= MaxTravelFromHome
	} else {
		clockwise = !(phiMaxCcw <= MaxTravelFromHome)
	}

	var azAosHalf float64
	if clockwise {
		azAos = ClockwiseAngle(azAos)
		azAosHalf = AzHome + (azAos-AzHome)/2
	} else {
		azAos = CounterclockwiseAngle(azAos)
		azAosHalf = AzHome - (AzHome-azAos)/2
	}

	return AosRotorAngles{AzAos: azAos, AzAosHalf: azAosHalf, ElAos: elAos}, nil
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// InterpolatedOrbitTrack is the subset of astro.InterpolatedOrbit
// GetAosRotorAngles needs, kept independent of the astro package so this
// package has no dependency on orbit propagation.
type InterpolatedOrbitTrack struct {
	Az   []float64
	El   []float64
	Time []time.Time
}

// ToTrack discards the time axis, which this package's geometry never
// consults.
func (t InterpolatedOrbitTrack) ToTrack() Track {
	return Track{Az: t.Az, El: t.El}
}
