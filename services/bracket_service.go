package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

type BracketService interface {
	GenerateBracket(ctx context.Context, requesterID, tournamentID int) ([]*models.Match, error)
	ClearBracket(ctx context.Context, requesterID, tournamentID int) error
	GetBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type bracketService struct {
	db             *sql.DB
	authz          Authorizer
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	authz Authorizer,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		authz:          authz,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		hub:            hub,
		logger:         logger,
	}
}

// GenerateBracket validates seeding, runs the format's generator and persists
// the skeleton in two passes inside one transaction: first every match row is
// created, then the advancement links are patched in once database ids exist.
func (s *bracketService) GenerateBracket(ctx context.Context, requesterID, tournamentID int) ([]*models.Match, error) {
	allowed, err := s.authz.CanManageTournament(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotReady
	}

	existing, err := s.matchRepo.CountByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrMatchesAlreadyExist
	}

	teamRows, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	teams := make([]models.Team, len(teamRows))
	for i, t := range teamRows {
		teams[i] = *t
	}

	generator, err := brackets.ForFormat(tournament.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	skeleton, err := generator.GenerateBracket(teams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		ids := make([]int, len(skeleton))
		for i, bm := range skeleton {
			match := &models.Match{
				TournamentID:    tournamentID,
				Round:           bm.Round,
				MatchNumber:     bm.MatchNumber,
				BracketType:     bm.BracketType,
				BracketPosition: bm.Position,
				HomeTeamID:      bm.HomeTeamID,
				AwayTeamID:      bm.AwayTeamID,
				Status:          bm.Status,
				WinnerTeamID:    bm.WinnerTeamID,
				IsBye:           bm.IsBye,
			}
			if createErr := s.matchRepo.Create(ctx, tx, match); createErr != nil {
				return fmt.Errorf("failed to create match %q: %w", bm.Position, createErr)
			}
			ids[i] = match.ID
		}

		for i, bm := range skeleton {
			if bm.NextIndex < 0 && bm.LoserNextIndex < 0 {
				continue
			}
			var nextID, nextSlot, loserNextID, loserNextSlot *int
			if bm.NextIndex >= 0 {
				nextID = &ids[bm.NextIndex]
				slot := bm.NextSlot
				nextSlot = &slot
			}
			if bm.LoserNextIndex >= 0 {
				loserNextID = &ids[bm.LoserNextIndex]
				slot := bm.LoserNextSlot
				loserNextSlot = &slot
			}
			if linkErr := s.matchRepo.UpdateLinks(ctx, tx, ids[i], nextID, nextSlot, loserNextID, loserNextSlot); linkErr != nil {
				return fmt.Errorf("failed to link match %q: %w", bm.Position, linkErr)
			}
		}

		for _, bm := range skeleton {
			if bm.IsBye && bm.WinnerTeamID != nil {
				if byeErr := s.teamRepo.SetHasBye(ctx, tx, *bm.WinnerTeamID, true); byeErr != nil {
					return fmt.Errorf("failed to flag bye for team %d: %w", *bm.WinnerTeamID, byeErr)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, nil, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", string(tournament.Format)),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)))

	s.hub.BroadcastToRoom(TournamentRoom(tournamentID), brackets.Event{
		Type:    brackets.EventBracketGenerated,
		Payload: matches,
	})
	return matches, nil
}

// ClearBracket removes every match of the tournament and returns all teams to
// their pre-bracket state, so a fresh generation can run from scratch.
func (s *bracketService) ClearBracket(ctx context.Context, requesterID, tournamentID int) error {
	allowed, err := s.authz.CanManageTournament(ctx, requesterID, tournamentID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbiddenOperation
	}

	if _, err = s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrNotFound
		}
		return err
	}

	err = runInTx(ctx, s.db, func(tx *sql.Tx) error {
		if delErr := s.matchRepo.DeleteByTournament(ctx, tx, tournamentID); delErr != nil {
			return fmt.Errorf("failed to delete matches: %w", delErr)
		}
		if resetErr := s.teamRepo.ResetBracketState(ctx, tx, tournamentID); resetErr != nil {
			return fmt.Errorf("failed to reset team state: %w", resetErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("bracket cleared", slog.Int("tournament_id", tournamentID))
	s.hub.BroadcastToRoom(TournamentRoom(tournamentID), brackets.Event{
		Type:    brackets.EventBracketCleared,
		Payload: map[string]int{"tournament_id": tournamentID},
	})
	return nil
}

func (s *bracketService) GetBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, nil, tournamentID, nil, nil)
}
