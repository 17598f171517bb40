package brackets

import (
	"fmt"
	"testing"
)

func TestRoundRobinEvenField(t *testing.T) {
	matches, err := NewRoundRobinGenerator().GenerateBracket(makeTeams(4))
	if err != nil {
		t.Fatal(err)
	}

	if len(matches) != 6 {
		t.Fatalf("expected 6 matches, got %d", len(matches))
	}

	rounds := make(map[int]int)
	pairings := make(map[string]int)
	appearances := make(map[int]int)
	for _, m := range matches {
		rounds[m.Round]++
		h, a := *m.HomeTeamID, *m.AwayTeamID
		lo, hi := h, a
		if lo > hi {
			lo, hi = hi, lo
		}
		pairings[fmt.Sprintf("%d-%d", lo, hi)]++
		appearances[h]++
		appearances[a]++
	}

	if len(rounds) != 3 {
		t.Errorf("expected 3 rounds, got %d", len(rounds))
	}
	for r, count := range rounds {
		if count != 2 {
			t.Errorf("round %d has %d matches, want 2", r, count)
		}
	}
	for pair, count := range pairings {
		if count != 1 {
			t.Errorf("pairing %s occurs %d times", pair, count)
		}
	}
	if len(pairings) != 6 {
		t.Errorf("expected 6 distinct pairings, got %d", len(pairings))
	}
	for id, count := range appearances {
		if count != 3 {
			t.Errorf("team %d plays %d matches, want 3", id, count)
		}
	}
}

func TestRoundRobinOddField(t *testing.T) {
	matches, err := NewRoundRobinGenerator().GenerateBracket(makeTeams(5))
	if err != nil {
		t.Fatal(err)
	}

	// Five teams: 10 matches over 5 rounds, two per round, everyone sits out
	// exactly once.
	if len(matches) != 10 {
		t.Fatalf("expected 10 matches, got %d", len(matches))
	}

	rounds := make(map[int][]int)
	appearances := make(map[int]int)
	for _, m := range matches {
		rounds[m.Round] = append(rounds[m.Round], *m.HomeTeamID, *m.AwayTeamID)
		appearances[*m.HomeTeamID]++
		appearances[*m.AwayTeamID]++
	}

	if len(rounds) != 5 {
		t.Errorf("expected 5 rounds, got %d", len(rounds))
	}
	for r, ids := range rounds {
		if len(ids) != 4 {
			t.Errorf("round %d involves %d slots, want 4", r, len(ids))
		}
		seen := make(map[int]bool)
		for _, id := range ids {
			if seen[id] {
				t.Errorf("round %d schedules team %d twice", r, id)
			}
			seen[id] = true
		}
	}
	for id, count := range appearances {
		if count != 4 {
			t.Errorf("team %d plays %d matches, want 4", id, count)
		}
	}
}

func TestRoundRobinHomeAlternation(t *testing.T) {
	matches, err := NewRoundRobinGenerator().GenerateBracket(makeTeams(4))
	if err != nil {
		t.Fatal(err)
	}

	// Odd rounds host the lower seed, even rounds flip.
	for _, m := range matches {
		h, a := *m.HomeTeamID, *m.AwayTeamID
		lowerHome := h < a
		if m.Round%2 == 1 && !lowerHome {
			t.Errorf("round %d match %d: lower seed should host", m.Round, m.MatchNumber)
		}
		if m.Round%2 == 0 && lowerHome {
			t.Errorf("round %d match %d: higher seed should host", m.Round, m.MatchNumber)
		}
	}
}
