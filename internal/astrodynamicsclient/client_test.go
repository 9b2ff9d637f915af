package astrodynamicsclient

import (
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestVerbs_ListsEveryCalledVerb(t *testing.T) {
	verbs := Verbs()
	want := []string{VerbGetKinematicState, VerbGetAosLos, VerbGetInterpolatedOrbit}
	if len(verbs) != len(want) {
		t.Fatalf("Verbs() = %v, want %v", verbs, want)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Errorf("Verbs()[%d] = %q, want %q", i, verbs[i], want[i])
		}
	}
}

func TestParseTime_ValidAndInvalid(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	valid := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	if got := parseTime(valid.Format(time.RFC3339Nano), fallback); !got.Equal(valid) {
		t.Errorf("parseTime(valid) = %v, want %v", got, valid)
	}
	if got := parseTime("", fallback); !got.Equal(fallback) {
		t.Errorf("parseTime(empty) = %v, want fallback %v", got, fallback)
	}
	if got := parseTime("not-a-time", fallback); !got.Equal(fallback) {
		t.Errorf("parseTime(garbage) = %v, want fallback %v", got, fallback)
	}
}

func TestEventFromValue_NilStruct(t *testing.T) {
	v := structpb.NewNullValue()
	if got := eventFromValue(v); got != nil {
		t.Errorf("eventFromValue(null) = %v, want nil", got)
	}
}

func TestEventFromValue_PopulatedStruct(t *testing.T) {
	at := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	state, _ := structpb.NewStruct(map[string]any{"az": 280.0, "el": 12.0})
	s, _ := structpb.NewStruct(map[string]any{"time": at.Format(time.RFC3339Nano)})
	s.Fields["state"] = structpb.NewStructValue(state)

	got := eventFromValue(structpb.NewStructValue(s))
	if got == nil {
		t.Fatal("expected a non-nil event")
	}
	if !got.Time.Equal(at) {
		t.Errorf("Time = %v, want %v", got.Time, at)
	}
	if got.State.Az != 280.0 || got.State.El != 12.0 {
		t.Errorf("State = %+v, want az=280 el=12", got.State)
	}
}
