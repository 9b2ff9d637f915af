package radiometricsclient

import "testing"

func TestVerbs_ListsEveryCalledVerb(t *testing.T) {
	verbs := Verbs()
	want := []string{VerbGetDownlinkFreqs}
	if len(verbs) != len(want) || verbs[0] != want[0] {
		t.Errorf("Verbs() = %v, want %v", verbs, want)
	}
}
