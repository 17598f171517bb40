package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(teams []models.Team) ([]*BracketMatch, error) {
	return buildEliminationSide(teams, models.BracketTypeNone, "")
}

// buildEliminationSide generates a full knockout tree: bracketSize-1 matches,
// byes for the top seeds when the team count is not a power of two, next-match
// links bottom-up and bye winners propagated into the following round. The
// same tree serves as the winners side of a double elimination bracket.
func buildEliminationSide(teams []models.Team, bt models.BracketType, labelPrefix string) ([]*BracketMatch, error) {
	if err := ValidateSeeding(teams); err != nil {
		return nil, err
	}

	n := len(teams)
	totalRounds := 1
	for 1<<totalRounds < n {
		totalRounds++
	}
	size := 1 << totalRounds

	positions, err := Positions(size)
	if err != nil {
		return nil, err
	}
	seedToID := teamsBySeed(teams)

	// Empty skeletons for every round, plus offsets to address a round's
	// first match by slice index.
	matches := make([]*BracketMatch, 0, size-1)
	offsets := make([]int, totalRounds+1)
	for r := 1; r <= totalRounds; r++ {
		offsets[r] = len(matches)
		count := size >> r
		for j := 0; j < count; j++ {
			m := newBracketMatch(r, j+1, bt)
			m.Position = positionLabel(labelPrefix, totalRounds, r, j+1, n)
			matches = append(matches, m)
		}
	}

	// Winner links: match j of round r feeds match j/2 of round r+1, home
	// slot when the 1-based match number is odd.
	for r := 1; r < totalRounds; r++ {
		count := size >> r
		for j := 0; j < count; j++ {
			m := matches[offsets[r]+j]
			m.NextIndex = offsets[r+1] + j/2
			if j%2 == 0 {
				m.NextSlot = models.SlotHome
			} else {
				m.NextSlot = models.SlotAway
			}
		}
	}

	// Round-1 assignment by slot order. A slot whose seed exceeds the team
	// count is a phantom: the present team gets a bye and advances at once.
	for j := 0; j < size/2; j++ {
		m := matches[j]
		homeSeed, awaySeed := positions[2*j], positions[2*j+1]

		var homeID, awayID *int
		if homeSeed <= n {
			id := seedToID[homeSeed]
			homeID = &id
		}
		if awaySeed <= n {
			id := seedToID[awaySeed]
			awayID = &id
		}

		switch {
		case homeID != nil && awayID != nil:
			m.HomeTeamID = homeID
			m.AwayTeamID = awayID
		case homeID != nil:
			m.HomeTeamID = homeID
			m.IsBye = true
			m.Status = models.MatchStatusCompleted
			m.WinnerTeamID = homeID
		case awayID != nil:
			m.HomeTeamID = awayID
			m.IsBye = true
			m.Status = models.MatchStatusCompleted
			m.WinnerTeamID = awayID
		default:
			return nil, fmt.Errorf("round 1 match %d resolved to two phantom slots (size=%d, teams=%d)", j+1, size, n)
		}
	}

	// Bye winners move up only after the whole round is assigned, so the
	// destination slots are final.
	for j := 0; j < size/2; j++ {
		m := matches[j]
		if !m.IsBye || m.NextIndex < 0 {
			continue
		}
		dest := matches[m.NextIndex]
		if m.NextSlot == models.SlotHome {
			dest.HomeTeamID = m.WinnerTeamID
		} else {
			dest.AwayTeamID = m.WinnerTeamID
		}
	}

	return matches, nil
}

// positionLabel names a slot by its distance from the final. SF/QF names are
// used only when the field is big enough for them to mean anything.
func positionLabel(prefix string, totalRounds, round, number, teamCount int) string {
	switch totalRounds - round {
	case 0:
		return prefix + "Final"
	case 1:
		if teamCount >= 4 {
			return fmt.Sprintf("%sSF%d", prefix, number)
		}
	case 2:
		if teamCount >= 8 {
			return fmt.Sprintf("%sQF%d", prefix, number)
		}
	}
	return fmt.Sprintf("%sR%d-M%d", prefix, round, number)
}
