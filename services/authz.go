package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

// Authorizer is the capability-check surface consumed by the engine. Callers
// receive plain booleans; how roles and ownership are stored is not this
// package's concern.
type Authorizer interface {
	CanManageTournament(ctx context.Context, userID, tournamentID int) (bool, error)
	IsAdmin(ctx context.Context, userID int) (bool, error)
}

type repoAuthorizer struct {
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
}

func NewAuthorizer(userRepo repositories.UserRepository, tournamentRepo repositories.TournamentRepository) Authorizer {
	return &repoAuthorizer{userRepo: userRepo, tournamentRepo: tournamentRepo}
}

func (a *repoAuthorizer) CanManageTournament(ctx context.Context, userID, tournamentID int) (bool, error) {
	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	if user.Role == models.RoleAdmin {
		return true, nil
	}

	tournament, err := a.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return user.Role == models.RoleOrganizer && tournament.OrganizerID == userID, nil
}

func (a *repoAuthorizer) IsAdmin(ctx context.Context, userID int) (bool, error) {
	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return user.Role == models.RoleAdmin, nil
}
