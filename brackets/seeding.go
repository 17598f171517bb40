package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrNotEnoughTeams     = errors.New("at least 2 teams are required to generate a bracket")
	ErrTeamMissingSeed    = errors.New("team has no seed assigned")
	ErrDuplicateSeed      = errors.New("duplicate seed number")
	ErrSeedsNotContiguous = errors.New("seeds must be exactly 1..N with no gaps")
)

// ValidateSeeding checks that every team carries a seed and that the seeds
// form exactly the contiguous sequence 1..N. Every slot/seed computation the
// generators perform depends on this holding.
func ValidateSeeding(teams []models.Team) error {
	if len(teams) < 2 {
		return ErrNotEnoughTeams
	}

	seeds := make([]int, 0, len(teams))
	seen := make(map[int]bool, len(teams))
	for _, t := range teams {
		if t.Seed == nil {
			return fmt.Errorf("%w: team %d (%s)", ErrTeamMissingSeed, t.ID, t.Name)
		}
		if seen[*t.Seed] {
			return fmt.Errorf("%w: seed %d", ErrDuplicateSeed, *t.Seed)
		}
		seen[*t.Seed] = true
		seeds = append(seeds, *t.Seed)
	}

	sort.Ints(seeds)
	for i, s := range seeds {
		if s != i+1 {
			return fmt.Errorf("%w: got %v", ErrSeedsNotContiguous, seeds)
		}
	}
	return nil
}

// teamsBySeed returns a seed -> team id lookup. Call only after ValidateSeeding.
func teamsBySeed(teams []models.Team) map[int]int {
	m := make(map[int]int, len(teams))
	for _, t := range teams {
		m[*t.Seed] = t.ID
	}
	return m
}
