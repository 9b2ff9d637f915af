package schedulerclient

import "testing"

func TestVerbs_ListsEveryCalledVerb(t *testing.T) {
	verbs := Verbs()
	want := []string{VerbEnqueueCollectRequest}
	if len(verbs) != len(want) || verbs[0] != want[0] {
		t.Errorf("Verbs() = %v, want %v", verbs, want)
	}
}
