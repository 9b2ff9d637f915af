package taskwire

import (
	"testing"
	"time"

	"github.com/je9pel/observatory/internal/astro"
	"github.com/je9pel/observatory/internal/task"
)

func sampleTask() *task.Task {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	return &task.Task{
		TaskID:    "task-1",
		Source:    "scheduler",
		Timestamp: now,
		TaskType:  task.TypeLEOTrack,
		Parameters: task.Parameters{
			SatID: "SAT-1",
			Aos: &astro.Event{
				Time: now.Add(time.Minute),
				State: astro.KinematicState{
					Az: 100, El: 5, AzRate: 0.5, ElRate: 0.1, Range: 800, RangeRate: -1,
				},
			},
			Tca: &astro.Event{Time: now.Add(5 * time.Minute), State: astro.KinematicState{Az: 180, El: 45}},
			Los: &astro.Event{Time: now.Add(10 * time.Minute), State: astro.KinematicState{Az: 260, El: 5}},
			SDR: task.SDRParameters{SatID: "SAT-1", Freq: 437.5e6},
			InterpolatedOrbit: astro.InterpolatedOrbit{
				Az:   []float64{100, 180, 260},
				El:   []float64{5, 45, 5},
				Time: []time.Time{now.Add(time.Minute), now.Add(5 * time.Minute), now.Add(10 * time.Minute)},
			},
		},
	}
}

func TestToStructFromStruct_RoundTrip(t *testing.T) {
	original := sampleTask()
	payload := ToStruct(original)
	decoded := FromStruct(payload)

	if decoded.TaskID != original.TaskID {
		t.Errorf("TaskID = %q, want %q", decoded.TaskID, original.TaskID)
	}
	if decoded.Source != original.Source {
		t.Errorf("Source = %q, want %q", decoded.Source, original.Source)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.TaskType != original.TaskType {
		t.Errorf("TaskType = %q, want %q", decoded.TaskType, original.TaskType)
	}
	if decoded.Parameters.SatID != original.Parameters.SatID {
		t.Errorf("SatID = %q, want %q", decoded.Parameters.SatID, original.Parameters.SatID)
	}
	if decoded.Parameters.SDR != original.Parameters.SDR {
		t.Errorf("SDR = %+v, want %+v", decoded.Parameters.SDR, original.Parameters.SDR)
	}

	for _, pair := range []struct {
		name      string
		got, want *astro.Event
	}{
		{"aos", decoded.Parameters.Aos, original.Parameters.Aos},
		{"tca", decoded.Parameters.Tca, original.Parameters.Tca},
		{"los", decoded.Parameters.Los, original.Parameters.Los},
	} {
		if !pair.got.Time.Equal(pair.want.Time) {
			t.Errorf("%s.Time = %v, want %v", pair.name, pair.got.Time, pair.want.Time)
		}
		if pair.got.State != pair.want.State {
			t.Errorf("%s.State = %+v, want %+v", pair.name, pair.got.State, pair.want.State)
		}
	}

	orbit := decoded.Parameters.InterpolatedOrbit
	want := original.Parameters.InterpolatedOrbit
	if len(orbit.Az) != len(want.Az) || len(orbit.El) != len(want.El) || len(orbit.Time) != len(want.Time) {
		t.Fatalf("orbit length mismatch: got %+v, want %+v", orbit, want)
	}
	for i := range want.Time {
		if orbit.Az[i] != want.Az[i] || orbit.El[i] != want.El[i] || !orbit.Time[i].Equal(want.Time[i]) {
			t.Errorf("orbit sample %d = (%v,%v,%v), want (%v,%v,%v)",
				i, orbit.Az[i], orbit.El[i], orbit.Time[i], want.Az[i], want.El[i], want.Time[i])
		}
	}
}

func TestFromStruct_NilEvents(t *testing.T) {
	original := sampleTask()
	original.Parameters.Aos = nil
	original.Parameters.Tca = nil
	original.Parameters.Los = nil
	original.Parameters.InterpolatedOrbit = astro.InterpolatedOrbit{}

	decoded := FromStruct(ToStruct(original))
	if decoded.Parameters.Aos != nil || decoded.Parameters.Tca != nil || decoded.Parameters.Los != nil {
		t.Errorf("expected nil events to round-trip as nil, got aos=%v tca=%v los=%v",
			decoded.Parameters.Aos, decoded.Parameters.Tca, decoded.Parameters.Los)
	}
	if !decoded.Parameters.InterpolatedOrbit.Empty() {
		t.Errorf("expected an empty orbit to round-trip as empty, got %+v", decoded.Parameters.InterpolatedOrbit)
	}
}
