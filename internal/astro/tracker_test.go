package astro

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeStore is an in-memory SatelliteStore for tests.
type fakeStore struct {
	tles map[string][2]string
	ids  []string
}

func (s *fakeStore) GetTLE(ctx context.Context, satID string) (string, string, error) {
	tle, ok := s.tles[satID]
	if !ok {
		return "", "", errors.New("astro_test: unknown satellite " + satID)
	}
	return tle[0], tle[1], nil
}

func (s *fakeStore) ListSatelliteIDs(ctx context.Context) ([]string, error) {
	return s.ids, nil
}

// fakePropagator rises linearly from a fixed point, crosses minElevation
// exactly once, and descends again, so AOS/TCA/LOS search has a single
// deterministic answer to check against.
type fakePropagator struct {
	epoch time.Time
}

func (p *fakePropagator) KinematicStateAt(t time.Time) KinematicState {
	dt := t.Sub(p.epoch).Seconds()
	el := 30 - 0.1*(dt-300)*(dt-300)/300 // peaks near dt=300s
	return KinematicState{Az: 180, El: el, Time: t}
}

func (p *fakePropagator) FindEvents(start, end time.Time, minElevationDeg float64) (aos, tca, los []time.Time) {
	const step = 5 * time.Second
	prevEl := p.KinematicStateAt(start).El
	prevRising := true
	for t := start.Add(step); !t.After(end); t = t.Add(step) {
		el := p.KinematicStateAt(t).El
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

func newFakeFactory(epoch time.Time) PropagatorFactory {
	return func(tle1, tle2 string) Propagator {
		return &fakePropagator{epoch: epoch}
	}
}

func TestTracker_GetKinematicState(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{tles: map[string][2]string{"SAT-1": {"line1", "line2"}}}
	tr := NewTracker(store, newFakeFactory(epoch), 5, 30*time.Minute)

	state, err := tr.GetKinematicState(context.Background(), "SAT-1", epoch.Add(300*time.Second))
	if err != nil {
		t.Fatalf("GetKinematicState returned error: %v", err)
	}
	if state.Az != 180 {
		t.Errorf("Az = %v, want 180", state.Az)
	}
}

func TestTracker_GetKinematicState_UnknownSatellite(t *testing.T) {
	store := &fakeStore{tles: map[string][2]string{}}
	tr := NewTracker(store, newFakeFactory(time.Now()), 5, 30*time.Minute)

	_, err := tr.GetKinematicState(context.Background(), "GHOST", time.Now())
	if err == nil {
		t.Fatal("expected an error for an unknown satellite")
	}
}

func TestTracker_GetAosLosAt_FindsOrderedTriple(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{tles: map[string][2]string{"SAT-1": {"line1", "line2"}}}
	tr := NewTracker(store, newFakeFactory(epoch), 5, 30*time.Minute)

	result, err := tr.GetAosLosAt(context.Background(), "SAT-1", epoch.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("GetAosLosAt returned error: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("expected a valid AOS/TCA/LOS triple, got %+v", result)
	}
	if !result.Aos.Time.Before(result.Tca.Time) || !result.Tca.Time.Before(result.Los.Time) {
		t.Errorf("triple not chronologically ordered: %+v", result)
	}
}

func TestTracker_GetAosLos_Caches(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{tles: map[string][2]string{"SAT-1": {"line1", "line2"}}}
	tr := NewTracker(store, newFakeFactory(epoch), 5, 30*time.Minute)

	first, err := tr.GetAosLosAt(context.Background(), "SAT-1", epoch.Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("first GetAosLosAt returned error: %v", err)
	}
	second, err := tr.GetAosLos(context.Background(), "SAT-1")
	if err != nil {
		t.Fatalf("GetAosLos returned error: %v", err)
	}
	if !first.Aos.Time.Equal(second.Aos.Time) {
		t.Errorf("expected cached AOS to match: first=%v second=%v", first.Aos.Time, second.Aos.Time)
	}
}

func TestTracker_GetInterpolatedOrbit_ExplicitWindow(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{tles: map[string][2]string{"SAT-1": {"line1", "line2"}}}
	tr := NewTracker(store, newFakeFactory(epoch), 5, 30*time.Minute)

	aos := epoch.Add(100 * time.Second)
	los := epoch.Add(500 * time.Second)
	orbit, err := tr.GetInterpolatedOrbit(context.Background(), "SAT-1", aos, los)
	if err != nil {
		t.Fatalf("GetInterpolatedOrbit returned error: %v", err)
	}
	if orbit.Empty() {
		t.Fatal("expected a non-empty interpolated orbit")
	}
	if !orbit.Time[0].Equal(aos) {
		t.Errorf("first sample time = %v, want %v", orbit.Time[0], aos)
	}
	if got := orbit.Time[len(orbit.Time)-1]; !got.Equal(los) {
		t.Errorf("last sample time = %v, want %v", got, los)
	}
}

func TestTracker_GetInterpolatedOrbit_InvertedWindowIsEmpty(t *testing.T) {
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{tles: map[string][2]string{"SAT-1": {"line1", "line2"}}}
	tr := NewTracker(store, newFakeFactory(epoch), 5, 30*time.Minute)

	orbit, err := tr.GetInterpolatedOrbit(context.Background(), "SAT-1", epoch.Add(500*time.Second), epoch.Add(100*time.Second))
	if err != nil {
		t.Fatalf("GetInterpolatedOrbit returned error: %v", err)
	}
	if !orbit.Empty() {
		t.Errorf("expected an empty orbit for an inverted window, got %d samples", len(orbit.Time))
	}
}

func TestTracker_RecomputeAllOrbits(t *testing.T) {
	// RecomputeAllOrbits searches from the current time, so the fake passes
	// must be anchored there too.
	epoch := time.Now().UTC()
	store := &fakeStore{
		tles: map[string][2]string{
			"SAT-1": {"l1", "l2"},
			"SAT-2": {"l1", "l2"},
		},
		ids: []string{"SAT-1", "SAT-2"},
	}
	tr := NewTracker(store, newFakeFactory(epoch), 5, 30*time.Minute)

	failed, err := tr.RecomputeAllOrbits(context.Background())
	if err != nil {
		t.Fatalf("RecomputeAllOrbits returned error: %v", err)
	}
	if len(failed) != 0 {
		t.Errorf("expected no failures, got %v", failed)
	}

	passes, err := tr.GetAllAosLos(context.Background(), epoch, epoch.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetAllAosLos returned error: %v", err)
	}
	if len(passes) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(passes))
	}
	if passes[0].Aos.After(passes[1].Aos) {
		t.Errorf("passes are not sorted ascending by AOS: %+v", passes)
	}
}

func TestAosLos_Valid(t *testing.T) {
	now := time.Now()
	testCases := []struct {
		name string
		aos  AosLos
		want bool
	}{
		{"all nil", AosLos{}, false},
		{"missing tca", AosLos{Aos: &Event{Time: now}, Los: &Event{Time: now.Add(time.Minute)}}, false},
		{
			"properly ordered",
			AosLos{
				Aos: &Event{Time: now},
				Tca: &Event{Time: now.Add(30 * time.Second)},
				Los: &Event{Time: now.Add(time.Minute)},
			},
			true,
		},
		{
			"out of order",
			AosLos{
				Aos: &Event{Time: now.Add(time.Minute)},
				Tca: &Event{Time: now.Add(30 * time.Second)},
				Los: &Event{Time: now},
			},
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.aos.Valid(); got != tc.want {
				t.Errorf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}
