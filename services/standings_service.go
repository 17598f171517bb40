package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/standings"
)

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID int) (*standings.Result, error)
}

// StandingsCache is the read-through cache the service consults before
// recomputing. A nil cache disables caching entirely.
type StandingsCache interface {
	Get(ctx context.Context, tournamentID int, dest interface{}) (bool, error)
	Set(ctx context.Context, tournamentID int, value interface{}) error
	Invalidate(ctx context.Context, tournamentID int) error
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	cache          StandingsCache
	logger         *slog.Logger
}

func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	cache StandingsCache,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		cache:          cache,
		logger:         logger,
	}
}

// GetStandings serves cached standings when available and otherwise loads
// teams and matches concurrently, runs the calculator and refills the cache.
func (s *standingsService) GetStandings(ctx context.Context, tournamentID int) (*standings.Result, error) {
	if s.cache != nil {
		var cached standings.Result
		hit, err := s.cache.Get(ctx, tournamentID, &cached)
		if err != nil {
			s.logger.Warn("standings cache read failed",
				slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		} else if hit {
			return &cached, nil
		}
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var (
		teamRows  []*models.Team
		matchRows []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		teamRows, loadErr = s.teamRepo.ListByTournament(gCtx, nil, tournamentID)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		matchRows, loadErr = s.matchRepo.ListByTournament(gCtx, nil, tournamentID, nil, nil)
		return loadErr
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	teams := make([]models.Team, len(teamRows))
	for i, t := range teamRows {
		teams[i] = *t
	}
	matches := make([]models.Match, len(matchRows))
	for i, m := range matchRows {
		matches[i] = *m
	}

	result := standings.Calculate(teams, matches, standings.Config{
		TiebreakOrder:     criteriaFrom(tournament.TiebreakOrder),
		PlayoffTeamsCount: tournament.PlayoffTeamsCount,
	})

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, tournamentID, &result); cacheErr != nil {
			s.logger.Warn("standings cache write failed",
				slog.Int("tournament_id", tournamentID), slog.Any("error", cacheErr))
		}
	}
	return &result, nil
}

// criteriaFrom converts the stored tiebreak order, dropping anything the
// calculator does not recognize.
func criteriaFrom(order []string) []standings.Criterion {
	if len(order) == 0 {
		return nil
	}
	out := make([]standings.Criterion, 0, len(order))
	for _, name := range order {
		switch c := standings.Criterion(name); c {
		case standings.HeadToHead, standings.GoalDifference, standings.GoalsScored:
			out = append(out, c)
		}
	}
	return out
}
