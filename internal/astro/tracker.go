package astro

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Propagator answers orbit-mechanics questions for a single satellite at
// an arbitrary point in time, standing in for the TLE-driven SGP4
// propagation the production system performs. Concrete hardware- and
// catalog-format-specific propagation math is out of scope for this
// repository; Propagator is the seam a real numerical propagator would be
// wired in behind.
type Propagator interface {
	// KinematicStateAt returns the target's pointing/rate/range state at t.
	KinematicStateAt(t time.Time) KinematicState
	// FindEvents returns every AOS, TCA and LOS crossing of minElevationDeg
	// within [start, end], in chronological order within each kind.
	FindEvents(start, end time.Time, minElevationDeg float64) (aos, tca, los []time.Time)
}

// PropagatorFactory builds a Propagator for a satellite from its TLE.
type PropagatorFactory func(tle1, tle2 string) Propagator

// SatelliteStore answers the two catalog questions a Tracker needs: a
// single satellite's TLE, and the full list of catalog ids to recompute.
type SatelliteStore interface {
	GetTLE(ctx context.Context, satID string) (tle1, tle2 string, err error)
	ListSatelliteIDs(ctx context.Context) ([]string, error)
}

const (
	interpolatedOrbitSamples = 20
	recomputeBatchSize       = 50
)

// Tracker answers kinematic-state, AOS/LOS and interpolated-orbit
// questions for catalog satellites, caching each behind catalog id. It is
// the Go analogue of hamilton's SpaceObjectTracker.
type Tracker struct {
	store      SatelliteStore
	newProp    PropagatorFactory
	minElDeg   float64
	searchSpan time.Duration

	mu          sync.Mutex
	propagators map[string]Propagator
	aosLos      map[string]AosLos
	orbits      map[string]InterpolatedOrbit
}

// NewTracker creates a Tracker backed by store, building propagators with
// newProp, searching for passes within searchSpan of the query time, and
// requiring at least minElDeg of elevation for a valid AOS/LOS.
func NewTracker(store SatelliteStore, newProp PropagatorFactory, minElDeg float64, searchSpan time.Duration) *Tracker {
	return &Tracker{
		store:       store,
		newProp:     newProp,
		minElDeg:    minElDeg,
		searchSpan:  searchSpan,
		propagators: make(map[string]Propagator),
		aosLos:      make(map[string]AosLos),
		orbits:      make(map[string]InterpolatedOrbit),
	}
}

func (t *Tracker) propagatorLocked(ctx context.Context, satID string) (Propagator, error) {
	if p, ok := t.propagators[satID]; ok {
		return p, nil
	}
	tle1, tle2, err := t.store.GetTLE(ctx, satID)
	if err != nil {
		return nil, fmt.Errorf("astro: fetching tle for %s: %w", satID, err)
	}
	p := t.newProp(tle1, tle2)
	t.propagators[satID] = p
	return p, nil
}

// GetKinematicState returns satID's pointing state at t.
func (t *Tracker) GetKinematicState(ctx context.Context, satID string, at time.Time) (KinematicState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, err := t.propagatorLocked(ctx, satID)
	if err != nil {
		return KinematicState{}, err
	}
	return p.KinematicStateAt(at), nil
}

// GetAosLos returns the cached AOS/TCA/LOS triple for satID, computing and
// caching it on first query.
func (t *Tracker) GetAosLos(ctx context.Context, satID string) (AosLos, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.getAosLosLocked(ctx, satID, time.Now().UTC())
}

// GetAosLosAt forces a fresh search anchored at 'at' without consulting the
// cache; a triple it finds replaces satID's cached entry.
func (t *Tracker) GetAosLosAt(ctx context.Context, satID string, at time.Time) (AosLos, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.searchAosLosLocked(ctx, satID, at)
}

func (t *Tracker) getAosLosLocked(ctx context.Context, satID string, at time.Time) (AosLos, error) {
	if cached, ok := t.aosLos[satID]; ok {
		return cached, nil
	}
	return t.searchAosLosLocked(ctx, satID, at)
}

// searchAosLosLocked performs the triple-nested search for the earliest
// aos_i < tca_j < los_k combination, tie-broken by earliest aos then
// earliest tca then earliest los (guaranteed by iterating the
// chronologically sorted event lists in index order).
func (t *Tracker) searchAosLosLocked(ctx context.Context, satID string, at time.Time) (AosLos, error) {
	p, err := t.propagatorLocked(ctx, satID)
	if err != nil {
		return AosLos{}, err
	}

	start := at.Add(-5 * time.Minute)
	end := at.Add(t.searchSpan)
	aosTimes, tcaTimes, losTimes := p.FindEvents(start, end, t.minElDeg)

	for _, aosT := range aosTimes {
		for _, tcaT := range tcaTimes {
			if !aosT.Before(tcaT) {
				continue
			}
			for _, losT := range losTimes {
				if !tcaT.Before(losT) {
					continue
				}
				result := AosLos{
					Aos: &Event{Time: aosT, State: p.KinematicStateAt(aosT)},
					Tca: &Event{Time: tcaT, State: p.KinematicStateAt(tcaT)},
					Los: &Event{Time: losT, State: p.KinematicStateAt(losT)},
				}
				t.aosLos[satID] = result
				return result, nil
			}
		}
	}

	return AosLos{}, nil
}

// GetInterpolatedOrbit returns the cached interpolated orbit for satID,
// computing and caching it on first query. If aos/los are both zero, the
// cached AOS/LOS triple is used instead.
func (t *Tracker) GetInterpolatedOrbit(ctx context.Context, satID string, aos, los time.Time) (InterpolatedOrbit, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if aos.IsZero() && los.IsZero() {
		if cached, ok := t.orbits[satID]; ok {
			return cached, nil
		}
		eventMap, err := t.getAosLosLocked(ctx, satID, time.Now().UTC())
		if err != nil {
			return InterpolatedOrbit{}, err
		}
		if eventMap.Aos == nil || eventMap.Los == nil {
			return InterpolatedOrbit{}, nil
		}
		aos, los = eventMap.Aos.Time, eventMap.Los.Time
	}

	p, err := t.propagatorLocked(ctx, satID)
	if err != nil {
		return InterpolatedOrbit{}, err
	}

	orbit := interpolateOrbit(p, aos, los)
	t.orbits[satID] = orbit
	return orbit, nil
}

// interpolateOrbit samples 20 equally spaced points between aos and los. If
// either end is missing or aos is not strictly before los, it returns an
// empty orbit.
func interpolateOrbit(p Propagator, aos, los time.Time) InterpolatedOrbit {
	if aos.IsZero() || los.IsZero() || !aos.Before(los) {
		return InterpolatedOrbit{}
	}
	orbit := InterpolatedOrbit{
		Az:   make([]float64, 0, interpolatedOrbitSamples),
		El:   make([]float64, 0, interpolatedOrbitSamples),
		Time: make([]time.Time, 0, interpolatedOrbitSamples),
	}
	delta := los.Sub(aos)
	for i := 0; i < interpolatedOrbitSamples; i++ {
		at := aos.Add(delta * time.Duration(i) / time.Duration(interpolatedOrbitSamples-1))
		state := p.KinematicStateAt(at)
		orbit.Az = append(orbit.Az, state.Az)
		orbit.El = append(orbit.El, state.El)
		orbit.Time = append(orbit.Time, at)
	}
	return orbit
}

// RecomputeAllOrbits clears every cache and recomputes AOS/LOS and
// interpolated orbit for every catalog satellite, in batches of 50
// computed concurrently, mirroring recompute_all_states's
// batches-of-asyncio.gather. A single satellite's failure is logged by the
// caller (via the returned ids of the satellites that failed) and does not
// abort the rest of the batch.
func (t *Tracker) RecomputeAllOrbits(ctx context.Context) (failed []string, err error) {
	t.mu.Lock()
	t.aosLos = make(map[string]AosLos)
	t.orbits = make(map[string]InterpolatedOrbit)
	t.propagators = make(map[string]Propagator)
	t.mu.Unlock()

	satIDs, err := t.store.ListSatelliteIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("astro: listing satellite ids: %w", err)
	}

	var failedMu sync.Mutex
	for start := 0; start < len(satIDs); start += recomputeBatchSize {
		end := min(start+recomputeBatchSize, len(satIDs))
		batch := satIDs[start:end]

		g, gctx := errgroup.WithContext(ctx)
		for _, satID := range batch {
			satID := satID
			g.Go(func() error {
				if _, err := t.GetAosLos(gctx, satID); err != nil {
					failedMu.Lock()
					failed = append(failed, satID)
					failedMu.Unlock()
					return nil
				}
				if _, err := t.GetInterpolatedOrbit(gctx, satID, time.Time{}, time.Time{}); err != nil {
					failedMu.Lock()
					failed = append(failed, satID)
					failedMu.Unlock()
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return failed, err
		}
	}

	return failed, nil
}

// GetAllAosLos returns every cached (satID, aos, los) pair whose AOS falls
// within [start, end], sorted ascending by AOS. The cache is populated via
// a full recompute first if empty.
func (t *Tracker) GetAllAosLos(ctx context.Context, start, end time.Time) ([]CatalogPass, error) {
	t.mu.Lock()
	empty := len(t.aosLos) == 0
	t.mu.Unlock()

	if empty {
		if _, err := t.RecomputeAllOrbits(ctx); err != nil {
			return nil, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var passes []CatalogPass
	for satID, el := range t.aosLos {
		if el.Aos == nil || el.Los == nil {
			continue
		}
		if (el.Aos.Time.After(start) || el.Aos.Time.Equal(start)) && (el.Aos.Time.Before(end) || el.Aos.Time.Equal(end)) {
			passes = append(passes, CatalogPass{SatID: satID, Aos: el.Aos.Time, Los: el.Los.Time})
		}
	}
	sort.Slice(passes, func(i, j int) bool { return passes[i].Aos.Before(passes[j].Aos) })
	return passes, nil
}

// CatalogPass is one entry of GetAllAosLos's result.
type CatalogPass struct {
	SatID string
	Aos   time.Time
	Los   time.Time
}
