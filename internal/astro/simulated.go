package astro

import (
	"math"
	"time"
)

// SimulatedPropagator is a deterministic, closed-form stand-in for a real
// TLE/SGP4 propagator: it sweeps azimuth at a constant rate and elevation
// along a sine arc, derived entirely from the two TLE lines' checksums so
// that distinct satellites trace distinct, repeatable passes. It exists so
// the AOS/LOS search, orbit interpolation and recompute logic above can be
// exercised and tested without a production-grade numerical propagator,
// which is out of scope for this repository.
type SimulatedPropagator struct {
	epoch      time.Time
	azStart    float64
	azRate     float64 // deg/s
	elAmpDeg   float64
	periodSecs float64
	rangeKm    float64
}

// NewSimulatedPropagator builds a SimulatedPropagator whose ground track is
// derived from the TLE lines' contents, so the same TLE always yields the
// same pass geometry.
func NewSimulatedPropagator(tle1, tle2 string) Propagator {
	seed := checksum(tle1) + checksum(tle2)
	return &SimulatedPropagator{
		epoch:      time.Now().UTC(),
		azStart:    float64(seed % 360),
		azRate:     0.05 + float64(seed%7)/10.0,
		elAmpDeg:   20 + float64(seed%50),
		periodSecs: 600 + float64(seed%300),
		rangeKm:    500 + float64(seed%1500),
	}
}

func checksum(s string) int {
	total := 0
	for _, r := range s {
		total += int(r)
	}
	return total
}

// KinematicStateAt returns the pointing/range state along the simulated
// ground track at t.
func (p *SimulatedPropagator) KinematicStateAt(t time.Time) KinematicState {
	dt := t.Sub(p.epoch).Seconds()
	phase := 2 * math.Pi * dt / p.periodSecs

	az := math.Mod(p.azStart+p.azRate*dt, 360)
	if az < 0 {
		az += 360
	}
	el := p.elAmpDeg * math.Sin(phase)

	return KinematicState{
		Az:        az,
		El:        el,
		AzRate:    p.azRate,
		ElRate:    p.elAmpDeg * math.Cos(phase) * (2 * math.Pi / p.periodSecs),
		Range:     p.rangeKm,
		RangeRate: 0,
		Time:      t,
	}
}

// FindEvents scans the simulated elevation curve at five-second resolution
// for rise-above/culminate/set-below crossings of minElevationDeg within
// [start, end], returning each kind's crossing times in chronological
// order.
func (p *SimulatedPropagator) FindEvents(start, end time.Time, minElevationDeg float64) (aos, tca, los []time.Time) {
	const step = 5 * time.Second
	prevEl := p.KinematicStateAt(start).El
	prevRising := true

	for t := start.Add(step); !t.After(end); t = t.Add(step) {
		state := p.KinematicStateAt(t)
		el := state.El
		rising := el > prevEl

		if prevEl < minElevationDeg && el >= minElevationDeg {
			aos = append(aos, t)
		}
		if prevEl >= minElevationDeg && el < minElevationDeg {
			los = append(los, t)
		}
		if prevRising && !rising && el >= minElevationDeg {
			tca = append(tca, t)
		}

		prevEl = el
		prevRising = rising
	}
	return aos, tca, los
}
