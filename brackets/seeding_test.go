package brackets

import (
	"errors"
	"testing"

	"github.com/openbracket/tournament-engine/models"
)

// makeTeams builds n teams with ids 100+i and seeds 1..n.
func makeTeams(n int) []models.Team {
	teams := make([]models.Team, n)
	for i := 0; i < n; i++ {
		seed := i + 1
		teams[i] = models.Team{ID: 100 + seed, Seed: &seed, Status: models.TeamStatusRegistered}
	}
	return teams
}

func TestValidateSeeding(t *testing.T) {
	if err := ValidateSeeding(makeTeams(5)); err != nil {
		t.Errorf("valid seeding rejected: %v", err)
	}
}

func TestValidateSeedingErrors(t *testing.T) {
	t.Run("too few teams", func(t *testing.T) {
		if err := ValidateSeeding(makeTeams(1)); !errors.Is(err, ErrNotEnoughTeams) {
			t.Errorf("expected ErrNotEnoughTeams, got %v", err)
		}
	})

	t.Run("missing seed", func(t *testing.T) {
		teams := makeTeams(3)
		teams[1].Seed = nil
		if err := ValidateSeeding(teams); !errors.Is(err, ErrTeamMissingSeed) {
			t.Errorf("expected ErrTeamMissingSeed, got %v", err)
		}
	})

	t.Run("duplicate seed", func(t *testing.T) {
		teams := makeTeams(3)
		dup := 1
		teams[2].Seed = &dup
		if err := ValidateSeeding(teams); !errors.Is(err, ErrDuplicateSeed) {
			t.Errorf("expected ErrDuplicateSeed, got %v", err)
		}
	})

	t.Run("gap in seeds", func(t *testing.T) {
		teams := makeTeams(3)
		gap := 5
		teams[2].Seed = &gap
		if err := ValidateSeeding(teams); !errors.Is(err, ErrSeedsNotContiguous) {
			t.Errorf("expected ErrSeedsNotContiguous, got %v", err)
		}
	})
}
