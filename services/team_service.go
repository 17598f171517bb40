package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/storage"
)

var allowedLogoTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type TeamService interface {
	GetTeam(ctx context.Context, teamID int) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error)
	UploadLogo(ctx context.Context, requesterID, tournamentID, teamID int, body io.Reader, contentType string) (string, error)
}

type teamService struct {
	authz    Authorizer
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTeamService(authz Authorizer, teamRepo repositories.TeamRepository, uploader storage.FileUploader, logger *slog.Logger) TeamService {
	return &teamService{
		authz:    authz,
		teamRepo: teamRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *teamService) GetTeam(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.attachLogoURL(team)
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, tournamentID int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		s.attachLogoURL(t)
	}
	return teams, nil
}

// UploadLogo stores a new logo under a fresh object key, points the team at
// it and then deletes the previous object best effort.
func (s *teamService) UploadLogo(ctx context.Context, requesterID, tournamentID, teamID int, body io.Reader, contentType string) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	allowed, err := s.authz.CanManageTournament(ctx, requesterID, tournamentID)
	if err != nil {
		return "", err
	}
	if !allowed {
		return "", ErrForbiddenOperation
	}

	ext, ok := allowedLogoTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported logo content type %q", ErrValidationFailed, contentType)
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	if team.TournamentID != tournamentID {
		return "", fmt.Errorf("%w: team %d does not belong to tournament %d", ErrValidationFailed, teamID, tournamentID)
	}

	key := fmt.Sprintf("teams/%d/logo-%s.%s", teamID, uuid.NewString(), ext)
	url, err := s.uploader.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", err
	}

	oldKey := team.LogoKey
	if err = s.teamRepo.UpdateLogoKey(ctx, teamID, &key); err != nil {
		return "", err
	}
	if oldKey != nil {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.Warn("failed to delete previous logo",
				slog.Int("team_id", teamID), slog.Any("error", delErr))
		}
	}

	s.logger.Info("team logo updated", slog.Int("team_id", teamID))
	return url, nil
}

func (s *teamService) attachLogoURL(team *models.Team) {
	if s.uploader == nil || team.LogoKey == nil {
		return
	}
	url := s.uploader.PublicURL(*team.LogoKey)
	team.LogoURL = &url
}
