package frame

import "testing"

func TestLosersExcludesWinner(t *testing.T) {
	candidates := []string{"a.png", "b.png", "c.png"}

	got := losers(candidates, "b.png")
	if len(got) != 2 || got[0] != "a.png" || got[1] != "c.png" {
		t.Errorf("losers = %v, want [a.png c.png]", got)
	}

	// No winner selected yet: everything is cleaned up.
	if got := losers(candidates, ""); len(got) != 3 {
		t.Errorf("losers with no winner = %v, want all candidates", got)
	}
}
