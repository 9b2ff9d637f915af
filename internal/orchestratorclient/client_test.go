package orchestratorclient

import "testing"

func TestVerbs_ListsEveryCalledVerb(t *testing.T) {
	verbs := Verbs()
	want := []string{VerbOrchestrate, VerbStatus}
	if len(verbs) != len(want) {
		t.Fatalf("Verbs() = %v, want %v", verbs, want)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Errorf("Verbs()[%d] = %q, want %q", i, verbs[i], want[i])
		}
	}
}
