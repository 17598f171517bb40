package services

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

type TournamentService interface {
	GetTournament(ctx context.Context, tournamentID int) (*models.Tournament, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
	}
}

// GetTournament returns the tournament with its teams and matches loaded
// concurrently.
func (s *tournamentService) GetTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, loadErr := s.teamRepo.ListByTournament(gCtx, nil, tournamentID)
		if loadErr != nil {
			return loadErr
		}
		tournament.Teams = make([]models.Team, len(teams))
		for i, t := range teams {
			tournament.Teams[i] = *t
		}
		return nil
	})
	g.Go(func() error {
		matches, loadErr := s.matchRepo.ListByTournament(gCtx, nil, tournamentID, nil, nil)
		if loadErr != nil {
			return loadErr
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			tournament.Matches[i] = *m
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return tournament, nil
}
