package databaseclient

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestVerbs_ListsEveryCalledVerb(t *testing.T) {
	verbs := Verbs()
	want := []string{VerbGetSatellite, VerbGetSatelliteIDs, VerbGetActiveDownlinkSatellites, VerbUpsertSatellite}
	if len(verbs) != len(want) {
		t.Fatalf("Verbs() = %v, want %v", verbs, want)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Errorf("Verbs()[%d] = %q, want %q", i, verbs[i], want[i])
		}
	}
}

func TestFloatList_NilAndPopulated(t *testing.T) {
	if got := floatList(structpb.NewNullValue()); got != nil {
		t.Errorf("floatList(null) = %v, want nil", got)
	}

	list, _ := structpb.NewList([]any{437.5e6, 145.9e6})
	got := floatList(structpb.NewListValue(list))
	want := []float64{437.5e6, 145.9e6}
	if len(got) != len(want) {
		t.Fatalf("floatList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("floatList[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStringList_NilAndPopulated(t *testing.T) {
	if got := stringList(structpb.NewNullValue()); got != nil {
		t.Errorf("stringList(null) = %v, want nil", got)
	}

	list, _ := structpb.NewList([]any{"SAT-1", "SAT-2"})
	got := stringList(structpb.NewListValue(list))
	want := []string{"SAT-1", "SAT-2"}
	if len(got) != len(want) {
		t.Fatalf("stringList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stringList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestToAnySlice(t *testing.T) {
	got := toAnySlice([]float64{1, 2, 3})
	if len(got) != 3 {
		t.Fatalf("toAnySlice = %v, want 3 elements", got)
	}
	for i, v := range []float64{1, 2, 3} {
		if got[i] != v {
			t.Errorf("toAnySlice[%d] = %v, want %v", i, got[i], v)
		}
	}
}
