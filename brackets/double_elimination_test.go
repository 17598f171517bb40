package brackets

import (
	"testing"

	"github.com/openbracket/tournament-engine/models"
)

func countByType(matches []*BracketMatch, bt models.BracketType) int {
	n := 0
	for _, m := range matches {
		if m.BracketType == bt {
			n++
		}
	}
	return n
}

func TestDoubleEliminationFourTeams(t *testing.T) {
	matches, err := NewDoubleEliminationGenerator().GenerateBracket(makeTeams(4))
	if err != nil {
		t.Fatal(err)
	}

	// Winners side 3, losers side 2, two grand finals.
	if len(matches) != 7 {
		t.Fatalf("expected 7 matches, got %d", len(matches))
	}
	if got := countByType(matches, models.BracketTypeWinners); got != 3 {
		t.Errorf("winners side: got %d matches, want 3", got)
	}
	if got := countByType(matches, models.BracketTypeLosers); got != 2 {
		t.Errorf("losers side: got %d matches, want 2", got)
	}
	if got := countByType(matches, models.BracketTypeGrandFinal); got != 2 {
		t.Errorf("grand finals: got %d matches, want 2", got)
	}

	// Both winners round-1 losers drop into the single L1 match.
	l1 := 3
	if matches[0].LoserNextIndex != l1 || matches[0].LoserNextSlot != models.SlotHome {
		t.Errorf("WB match 1 loser should go to L1 home")
	}
	if matches[1].LoserNextIndex != l1 || matches[1].LoserNextSlot != models.SlotAway {
		t.Errorf("WB match 2 loser should go to L1 away")
	}

	// L1 winner meets the winners final loser in the losers final.
	lbFinal := 4
	if matches[l1].NextIndex != lbFinal || matches[l1].NextSlot != models.SlotHome {
		t.Errorf("L1 winner should take the losers final home slot")
	}
	wbFinal := matches[2]
	if wbFinal.LoserNextIndex != lbFinal || wbFinal.LoserNextSlot != models.SlotAway {
		t.Errorf("winners final loser should take the losers final away slot")
	}

	// Winners champion home, losers champion away in the first grand final.
	gf1 := 5
	if wbFinal.NextIndex != gf1 || wbFinal.NextSlot != models.SlotHome {
		t.Errorf("winners final winner should take grand final home slot")
	}
	if matches[lbFinal].NextIndex != gf1 || matches[lbFinal].NextSlot != models.SlotAway {
		t.Errorf("losers final winner should take grand final away slot")
	}

	if matches[gf1].Position != "Grand Final" || matches[gf1+1].Position != "Grand Final Reset" {
		t.Errorf("unexpected grand final labels %q, %q", matches[gf1].Position, matches[gf1+1].Position)
	}
	if matches[gf1+1].Round != 2 {
		t.Errorf("reset match should be round 2, got %d", matches[gf1+1].Round)
	}
}

func TestDoubleEliminationEightTeams(t *testing.T) {
	matches, err := NewDoubleEliminationGenerator().GenerateBracket(makeTeams(8))
	if err != nil {
		t.Fatal(err)
	}

	if len(matches) != 15 {
		t.Fatalf("expected 15 matches, got %d", len(matches))
	}
	if got := countByType(matches, models.BracketTypeLosers); got != 6 {
		t.Errorf("losers side: got %d matches, want 6", got)
	}

	// The winners round-2 losers cross over in reverse order, so the pair that
	// met in round 1 cannot immediately rematch.
	wbR2First, wbR2Second := matches[4], matches[5]
	if wbR2First.LoserNextIndex != 10 || wbR2First.LoserNextSlot != models.SlotAway {
		t.Errorf("WB R2 M1 loser: got index %d slot %d", wbR2First.LoserNextIndex, wbR2First.LoserNextSlot)
	}
	if wbR2Second.LoserNextIndex != 9 || wbR2Second.LoserNextSlot != models.SlotAway {
		t.Errorf("WB R2 M2 loser: got index %d slot %d", wbR2Second.LoserNextIndex, wbR2Second.LoserNextSlot)
	}

	// Every non-terminal match links forward to a real slice entry.
	for i, m := range matches {
		if m.NextIndex >= len(matches) || m.LoserNextIndex >= len(matches) {
			t.Errorf("match %d links out of range", i)
		}
	}
}

// assertEverySlotFillable fails when a playable match has a slot that holds no
// team and that no winner or loser link ever feeds: such a match could never
// be scored. Byes are complete at generation and the grand final reset is
// populated by result processing, so both are exempt.
func assertEverySlotFillable(t *testing.T, matches []*BracketMatch) {
	t.Helper()
	type slotRef struct{ index, slot int }
	feeders := make(map[slotRef]int)
	for _, m := range matches {
		if m.NextIndex >= 0 {
			feeders[slotRef{m.NextIndex, m.NextSlot}]++
		}
		if m.LoserNextIndex >= 0 {
			feeders[slotRef{m.LoserNextIndex, m.LoserNextSlot}]++
		}
	}
	for i, m := range matches {
		if m.IsBye || (m.BracketType == models.BracketTypeGrandFinal && m.Round == 2) {
			continue
		}
		if m.HomeTeamID == nil && feeders[slotRef{i, models.SlotHome}] == 0 {
			t.Errorf("match %d (%s): home slot has no team and nothing feeding it", i, m.Position)
		}
		if m.AwayTeamID == nil && feeders[slotRef{i, models.SlotAway}] == 0 {
			t.Errorf("match %d (%s): away slot has no team and nothing feeding it", i, m.Position)
		}
	}
}

func TestDoubleEliminationWithByes(t *testing.T) {
	matches, err := NewDoubleEliminationGenerator().GenerateBracket(makeTeams(5))
	if err != nil {
		t.Fatal(err)
	}

	for _, m := range matches {
		if m.BracketType != models.BracketTypeWinners || m.Round != 1 {
			continue
		}
		if m.IsBye && m.LoserNextIndex != -1 {
			t.Errorf("bye %q must not route a loser", m.Position)
		}
		if !m.IsBye && m.LoserNextIndex == -1 {
			t.Errorf("played round-1 match %q must drop its loser", m.Position)
		}
	}

	// Three of the four round-1 losers slots never get a team (byes drop no
	// loser), so the losers bracket collapses to three playable stages.
	if len(matches) != 12 {
		t.Fatalf("expected 12 matches, got %d", len(matches))
	}
	if got := countByType(matches, models.BracketTypeLosers); got != 3 {
		t.Errorf("losers side: got %d matches, want 3", got)
	}
	assertEverySlotFillable(t, matches)

	// The sole real round-1 match sends its loser to the first losers match;
	// the winners round-2 losers fill the remaining slots, one dropping in a
	// stage later because its original pairing had no opponent to offer.
	lbFirst, lbSecond, lbFinal := 7, 8, 9
	if matches[lbFirst].Position != "LB-R1-M1" || matches[lbSecond].Position != "LB-R2-M1" {
		t.Errorf("losers rounds not renumbered densely: %q, %q",
			matches[lbFirst].Position, matches[lbSecond].Position)
	}
	if matches[lbFinal].Position != "LB-Final" {
		t.Errorf("expected losers final at index %d, got %q", lbFinal, matches[lbFinal].Position)
	}
	r1Real := matches[1]
	if r1Real.IsBye {
		t.Fatalf("expected winners round-1 match 2 to be played, got a bye")
	}
	if r1Real.LoserNextIndex != lbFirst || r1Real.LoserNextSlot != models.SlotHome {
		t.Errorf("round-1 loser: got index %d slot %d, want %d home",
			r1Real.LoserNextIndex, r1Real.LoserNextSlot, lbFirst)
	}
	if got := matches[5]; got.LoserNextIndex != lbFirst || got.LoserNextSlot != models.SlotAway {
		t.Errorf("WB R2 M2 loser: got index %d slot %d, want %d away",
			got.LoserNextIndex, got.LoserNextSlot, lbFirst)
	}
	if got := matches[4]; got.LoserNextIndex != lbSecond || got.LoserNextSlot != models.SlotAway {
		t.Errorf("WB R2 M1 loser: got index %d slot %d, want %d away",
			got.LoserNextIndex, got.LoserNextSlot, lbSecond)
	}
	if matches[lbFirst].NextIndex != lbSecond || matches[lbSecond].NextIndex != lbFinal {
		t.Errorf("losers stages do not chain: %d -> %d -> %d expected",
			lbFirst, lbSecond, lbFinal)
	}
	wbFinal := matches[6]
	if wbFinal.LoserNextIndex != lbFinal || wbFinal.LoserNextSlot != models.SlotAway {
		t.Errorf("winners final loser should take the losers final away slot")
	}
}

func TestDoubleEliminationThreeTeams(t *testing.T) {
	matches, err := NewDoubleEliminationGenerator().GenerateBracket(makeTeams(3))
	if err != nil {
		t.Fatal(err)
	}

	// One bye, one real round-1 match: the single L1 pairing would have had
	// only one arrival, so that loser goes straight to the losers final.
	if got := countByType(matches, models.BracketTypeLosers); got != 1 {
		t.Errorf("losers side: got %d matches, want 1", got)
	}
	assertEverySlotFillable(t, matches)

	lbFinal := -1
	for i, m := range matches {
		if m.Position == "LB-Final" {
			lbFinal = i
		}
	}
	if lbFinal < 0 {
		t.Fatal("no losers final generated")
	}
	r1Real := matches[1]
	if r1Real.LoserNextIndex != lbFinal || r1Real.LoserNextSlot != models.SlotHome {
		t.Errorf("round-1 loser: got index %d slot %d, want %d home",
			r1Real.LoserNextIndex, r1Real.LoserNextSlot, lbFinal)
	}
}

func TestDoubleEliminationTwoTeams(t *testing.T) {
	matches, err := NewDoubleEliminationGenerator().GenerateBracket(makeTeams(2))
	if err != nil {
		t.Fatal(err)
	}

	// No losers side: one winners match plus the two grand finals.
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	wb := matches[0]
	if wb.NextIndex != 1 || wb.NextSlot != models.SlotHome {
		t.Errorf("winners final winner should take grand final home slot")
	}
	if wb.LoserNextIndex != 1 || wb.LoserNextSlot != models.SlotAway {
		t.Errorf("winners final loser should go straight to the grand final away slot")
	}
}
