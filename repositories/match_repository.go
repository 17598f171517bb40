package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, bracketType *models.BracketType, status *models.MatchStatus) ([]*models.Match, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateParticipants(ctx context.Context, exec SQLExecutor, matchID int, homeTeamID, awayTeamID *int) error
	UpdateLinks(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, nextSlot, loserNextMatchID, loserNextSlot *int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, round, match_number, bracket_type, bracket_position,
	home_team_id, away_team_id, status, home_score, away_score, winner_team_id,
	forfeit_reason, is_bye, next_match_id, next_slot, loser_next_match_id, loser_next_slot, created_at`

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber, &m.BracketType, &m.BracketPosition,
		&m.HomeTeamID, &m.AwayTeamID, &m.Status, &m.HomeScore, &m.AwayScore, &m.WinnerTeamID,
		&m.ForfeitReason, &m.IsBye, &m.NextMatchID, &m.NextSlot, &m.LoserNextMatchID, &m.LoserNextSlot,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, round, match_number, bracket_type, bracket_position,
			 home_team_id, away_team_id, status, home_score, away_score, winner_team_id,
			 forfeit_reason, is_bye, next_match_id, next_slot, loser_next_match_id, loser_next_slot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		match.TournamentID, match.Round, match.MatchNumber, match.BracketType, match.BracketPosition,
		match.HomeTeamID, match.AwayTeamID, match.Status, match.HomeScore, match.AwayScore, match.WinnerTeamID,
		match.ForfeitReason, match.IsBye, match.NextMatchID, match.NextSlot, match.LoserNextMatchID, match.LoserNextSlot,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return scanMatch(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, bracketType *models.BracketType, status *models.MatchStatus) ([]*models.Match, error) {
	executor := r.getExecutor(exec)

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)
	args := []interface{}{tournamentID}
	placeholder := 2

	if bracketType != nil {
		queryBuilder.WriteString(" AND bracket_type = $")
		queryBuilder.WriteString(strconv.Itoa(placeholder))
		args = append(args, *bracketType)
		placeholder++
	}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholder))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY bracket_type ASC, round ASC, match_number ASC")

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	var count int
	err := executor.QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE matches
		SET status = $1, home_score = $2, away_score = $3, winner_team_id = $4, forfeit_reason = $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		match.Status, match.HomeScore, match.AwayScore, match.WinnerTeamID, match.ForfeitReason, match.ID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateParticipants(ctx context.Context, exec SQLExecutor, matchID int, homeTeamID, awayTeamID *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET home_team_id = $1, away_team_id = $2 WHERE id = $3`,
		homeTeamID, awayTeamID, matchID)
	if err != nil {
		return fmt.Errorf("UpdateParticipants: failed for match %d: %w", matchID, r.handleMatchError(err))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateLinks(ctx context.Context, exec SQLExecutor, matchID int, nextMatchID, nextSlot, loserNextMatchID, loserNextSlot *int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE matches SET next_match_id = $1, next_slot = $2, loser_next_match_id = $3, loser_next_slot = $4 WHERE id = $5`,
		nextMatchID, nextSlot, loserNextMatchID, loserNextSlot, matchID)
	if err != nil {
		return fmt.Errorf("UpdateLinks: failed for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_home_team_id_fkey", "matches_away_team_id_fkey", "matches_winner_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
