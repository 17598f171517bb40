package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// GenerateBracket produces a circle-method schedule: every team meets every
// other exactly once, N*(N-1)/2 matches over N-1 rounds (N rounds when N is
// odd, each team sitting out once against the phantom entry).
func (g *RoundRobinGenerator) GenerateBracket(teams []models.Team) ([]*BracketMatch, error) {
	if err := ValidateSeeding(teams); err != nil {
		return nil, err
	}

	// ring holds seed numbers; 0 marks the phantom slot added for odd counts.
	n := len(teams)
	ring := make([]int, 0, n+1)
	for s := 1; s <= n; s++ {
		ring = append(ring, s)
	}
	if n%2 == 1 {
		ring = append(ring, 0)
	}
	entries := len(ring)
	rounds := entries - 1

	seedToID := teamsBySeed(teams)
	matches := make([]*BracketMatch, 0, n*(n-1)/2)

	for r := 0; r < rounds; r++ {
		number := 0
		for i := 0; i < entries/2; i++ {
			a, b := ring[i], ring[entries-1-i]
			if a == 0 || b == 0 {
				continue
			}

			// Alternate who hosts by round parity so neither side of a
			// pairing is perpetually home or away.
			homeSeed, awaySeed := a, b
			if a > b {
				homeSeed, awaySeed = b, a
			}
			if r%2 == 1 {
				homeSeed, awaySeed = awaySeed, homeSeed
			}

			number++
			m := newBracketMatch(r+1, number, models.BracketTypeNone)
			m.Position = fmt.Sprintf("R%d-M%d", r+1, number)
			homeID := seedToID[homeSeed]
			awayID := seedToID[awaySeed]
			m.HomeTeamID = &homeID
			m.AwayTeamID = &awayID
			matches = append(matches, m)
		}

		// Classic rotation: hold position 0, move the last entry to
		// position 1 and shift the rest right.
		last := ring[entries-1]
		copy(ring[2:], ring[1:entries-1])
		ring[1] = last
	}

	return matches, nil
}
