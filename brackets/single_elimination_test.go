package brackets

import (
	"testing"

	"github.com/openbracket/tournament-engine/models"
)

func teamID(m *BracketMatch, home bool) int {
	ptr := m.HomeTeamID
	if !home {
		ptr = m.AwayTeamID
	}
	if ptr == nil {
		return 0
	}
	return *ptr
}

func TestSingleEliminationTwoTeams(t *testing.T) {
	matches, err := NewSingleEliminationGenerator().GenerateBracket(makeTeams(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	final := matches[0]
	if final.Position != "Final" {
		t.Errorf("expected label Final, got %q", final.Position)
	}
	if teamID(final, true) != 101 || teamID(final, false) != 102 {
		t.Errorf("unexpected pairing: %d vs %d", teamID(final, true), teamID(final, false))
	}
}

func TestSingleEliminationFiveTeams(t *testing.T) {
	matches, err := NewSingleEliminationGenerator().GenerateBracket(makeTeams(5))
	if err != nil {
		t.Fatal(err)
	}

	// Five teams pad to a size-8 bracket: 7 matches, 3 byes for the top seeds.
	if len(matches) != 7 {
		t.Fatalf("expected 7 matches, got %d", len(matches))
	}

	byes := 0
	for _, m := range matches {
		if m.IsBye {
			byes++
			if m.Status != models.MatchStatusCompleted || m.WinnerTeamID == nil {
				t.Errorf("bye %q must be completed with a winner", m.Position)
			}
			if m.AwayTeamID != nil {
				t.Errorf("bye %q must keep its phantom slot empty", m.Position)
			}
		}
	}
	if byes != 3 {
		t.Fatalf("expected 3 byes, got %d", byes)
	}

	// Slot order 1-8, 4-5, 3-6, 2-7 with seeds 6..8 phantom.
	if !matches[0].IsBye || *matches[0].WinnerTeamID != 101 {
		t.Error("seed 1 should receive a bye in match 1")
	}
	if teamID(matches[1], true) != 104 || teamID(matches[1], false) != 105 {
		t.Errorf("match 2 should be seeds 4 vs 5, got %d vs %d",
			teamID(matches[1], true), teamID(matches[1], false))
	}
	if !matches[2].IsBye || *matches[2].WinnerTeamID != 103 {
		t.Error("seed 3 should receive a bye in match 3")
	}
	if !matches[3].IsBye || *matches[3].WinnerTeamID != 102 {
		t.Error("seed 2 should receive a bye in match 4")
	}

	// Bye winners are propagated into round 2; the slot fed by the real match
	// stays open.
	sf1, sf2 := matches[4], matches[5]
	if teamID(sf1, true) != 101 || sf1.AwayTeamID != nil {
		t.Errorf("SF1 should hold seed 1 at home with an open away slot")
	}
	if teamID(sf2, true) != 103 || teamID(sf2, false) != 102 {
		t.Errorf("SF2 should be seed 3 home vs seed 2 away, got %d vs %d",
			teamID(sf2, true), teamID(sf2, false))
	}

	if sf1.Position != "SF1" || sf2.Position != "SF2" || matches[6].Position != "Final" {
		t.Errorf("unexpected labels: %q %q %q", sf1.Position, sf2.Position, matches[6].Position)
	}
}

func TestSingleEliminationEightTeams(t *testing.T) {
	matches, err := NewSingleEliminationGenerator().GenerateBracket(makeTeams(8))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 7 {
		t.Fatalf("expected 7 matches, got %d", len(matches))
	}

	wantPairs := [][2]int{{101, 108}, {104, 105}, {103, 106}, {102, 107}}
	for i, want := range wantPairs {
		m := matches[i]
		if m.IsBye {
			t.Errorf("full bracket should have no byes, match %d is one", i+1)
		}
		if teamID(m, true) != want[0] || teamID(m, false) != want[1] {
			t.Errorf("round 1 match %d: got %d vs %d, want %d vs %d",
				i+1, teamID(m, true), teamID(m, false), want[0], want[1])
		}
		if m.Position != [4]string{"QF1", "QF2", "QF3", "QF4"}[i] {
			t.Errorf("round 1 match %d label %q", i+1, m.Position)
		}
	}
}

func TestSingleEliminationLinkParity(t *testing.T) {
	matches, err := NewSingleEliminationGenerator().GenerateBracket(makeTeams(16))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 15 {
		t.Fatalf("expected 15 matches, got %d", len(matches))
	}

	// Odd match numbers land in the home slot of the next match, even in away.
	for i, m := range matches {
		if m.NextIndex < 0 {
			continue
		}
		wantSlot := models.SlotAway
		if m.MatchNumber%2 == 1 {
			wantSlot = models.SlotHome
		}
		if m.NextSlot != wantSlot {
			t.Errorf("match %d (number %d): slot %d, want %d", i, m.MatchNumber, m.NextSlot, wantSlot)
		}
		if matches[m.NextIndex].Round != m.Round+1 {
			t.Errorf("match %d links across rounds %d -> %d", i, m.Round, matches[m.NextIndex].Round)
		}
	}
}
