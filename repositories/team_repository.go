package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrTeamNotFound          = errors.New("team not found")
	ErrTeamTournamentInvalid = errors.New("team tournament conflict or invalid")
	ErrTeamSeedConflict      = errors.New("seed is already taken in this tournament")
)

type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Team, error)
	UpdateStats(ctx context.Context, exec SQLExecutor, team *models.Team) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, teamID int, status models.TeamStatus) error
	SetHasBye(ctx context.Context, exec SQLExecutor, teamID int, hasBye bool) error
	ResetBracketState(ctx context.Context, exec SQLExecutor, tournamentID int) error
	UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const teamColumns = `id, tournament_id, name, seed, status, wins, losses, ties, points,
	goals_for, goals_against, has_bye, logo_key, created_at`

func scanTeam(row interface{ Scan(...interface{}) error }) (*models.Team, error) {
	var t models.Team
	err := row.Scan(
		&t.ID, &t.TournamentID, &t.Name, &t.Seed, &t.Status,
		&t.Wins, &t.Losses, &t.Ties, &t.Points,
		&t.GoalsFor, &t.GoalsAgainst, &t.HasBye, &t.LogoKey, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Team, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + teamColumns + ` FROM teams WHERE tournament_id = $1 ORDER BY seed ASC NULLS LAST, id ASC`

	rows, err := executor.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		t, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) UpdateStats(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET wins = $1, losses = $2, ties = $3, points = $4, goals_for = $5, goals_against = $6
		WHERE id = $7`
	result, err := executor.ExecContext(ctx, query,
		team.Wins, team.Losses, team.Ties, team.Points, team.GoalsFor, team.GoalsAgainst, team.ID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, teamID int, status models.TeamStatus) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE teams SET status = $1 WHERE id = $2`, status, teamID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) SetHasBye(ctx context.Context, exec SQLExecutor, teamID int, hasBye bool) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `UPDATE teams SET has_bye = $1 WHERE id = $2`, hasBye, teamID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// ResetBracketState returns every team of a tournament to a clean pre-bracket
// state: zeroed counters, no bye flag, registered status.
func (r *postgresTeamRepository) ResetBracketState(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE teams
		SET wins = 0, losses = 0, ties = 0, points = 0, goals_for = 0, goals_against = 0,
		    has_bye = FALSE, status = $1
		WHERE tournament_id = $2`
	_, err := executor.ExecContext(ctx, query, models.TeamStatusRegistered, tournamentID)
	return err
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, teamID int, logoKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE teams SET logo_key = $1 WHERE id = $2`, logoKey, teamID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "teams_tournament_id_fkey":
			return ErrTeamTournamentInvalid
		case "teams_tournament_id_seed_key":
			return ErrTeamSeedConflict
		}
	}
	return err
}
