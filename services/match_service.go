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

// MatchResultInput carries a score entry. OvertimeWinnerID is required only
// when the score is tied in an elimination tournament.
type MatchResultInput struct {
	HomeScore        int  `json:"home_score"`
	AwayScore        int  `json:"away_score"`
	OvertimeWinnerID *int `json:"overtime_winner_id,omitempty"`
}

type MatchService interface {
	EnterScore(ctx context.Context, requesterID, tournamentID, matchID int, input MatchResultInput) (*models.Match, error)
	Forfeit(ctx context.Context, requesterID, tournamentID, matchID, forfeitingTeamID int, reason string) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int, bracketType *models.BracketType, status *models.MatchStatus) ([]*models.Match, error)
}

// StandingsInvalidator drops cached standings after a result changes.
type StandingsInvalidator interface {
	Invalidate(ctx context.Context, tournamentID int) error
}

type matchService struct {
	db             *sql.DB
	authz          Authorizer
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	cache          StandingsInvalidator
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	authz Authorizer,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	cache StandingsInvalidator,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		authz:          authz,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		cache:          cache,
		hub:            hub,
		logger:         logger,
	}
}

// resultSpec is the normalized form of a score entry or forfeit, computed
// before the transactional apply.
type resultSpec struct {
	status           models.MatchStatus
	homeScore        *int
	awayScore        *int
	overtimeWinnerID *int
	forfeitTeamID    int
	forfeitReason    *string
}

func (s *matchService) EnterScore(ctx context.Context, requesterID, tournamentID, matchID int, input MatchResultInput) (*models.Match, error) {
	allowed, err := s.authz.CanManageTournament(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, ErrInvalidScore
	}

	spec := resultSpec{
		status:           models.MatchStatusCompleted,
		homeScore:        &input.HomeScore,
		awayScore:        &input.AwayScore,
		overtimeWinnerID: input.OvertimeWinnerID,
	}
	return s.processResult(ctx, tournamentID, matchID, spec)
}

// Forfeit records a walkover: the opponent wins, win/loss counters move, no
// goals are recorded.
func (s *matchService) Forfeit(ctx context.Context, requesterID, tournamentID, matchID, forfeitingTeamID int, reason string) (*models.Match, error) {
	allowed, err := s.authz.CanManageTournament(ctx, requesterID, tournamentID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}

	spec := resultSpec{
		status:        models.MatchStatusForfeit,
		forfeitTeamID: forfeitingTeamID,
		forfeitReason: &reason,
	}
	return s.processResult(ctx, tournamentID, matchID, spec)
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int, bracketType *models.BracketType, status *models.MatchStatus) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.matchRepo.ListByTournament(ctx, nil, tournamentID, bracketType, status)
}

// processResult runs the whole read-compute-write cycle in one transaction and
// retries it on serialization conflicts. Broadcasts and cache invalidation
// happen only after the commit.
func (s *matchService) processResult(ctx context.Context, tournamentID, matchID int, spec resultSpec) (*models.Match, error) {
	var updated *models.Match
	err := withConflictRetry(ctx, func() error {
		return runInTx(ctx, s.db, func(tx *sql.Tx) error {
			m, applyErr := s.applyResult(ctx, tx, tournamentID, matchID, spec)
			updated = m
			return applyErr
		})
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, tournamentID); cacheErr != nil {
			s.logger.Warn("standings cache invalidation failed",
				slog.Int("tournament_id", tournamentID), slog.Any("error", cacheErr))
		}
	}
	s.hub.BroadcastToRoom(TournamentRoom(tournamentID), brackets.Event{
		Type:    brackets.EventMatchUpdated,
		Payload: updated,
	})
	s.hub.BroadcastToRoom(TournamentRoom(tournamentID), brackets.Event{
		Type:    brackets.EventStandingsChanged,
		Payload: map[string]int{"tournament_id": tournamentID},
	})
	return updated, nil
}

func (s *matchService) applyResult(ctx context.Context, tx *sql.Tx, tournamentID, matchID int, spec resultSpec) (*models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if tournament.Status != models.StatusActive {
		return nil, ErrTournamentNotActive
	}

	match, err := s.matchRepo.GetByID(ctx, tx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if match.TournamentID != tournamentID {
		return nil, ErrMatchNotInTournament
	}
	if match.IsBye {
		return nil, ErrByeMatchImmutable
	}
	if !match.Resolved() {
		return nil, ErrMatchSlotUnresolved
	}
	homeID, awayID := *match.HomeTeamID, *match.AwayTeamID

	winnerID, err := s.decideWinner(tournament, spec, homeID, awayID)
	if err != nil {
		return nil, err
	}

	teamRows, err := s.teamRepo.ListByTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}
	teams := make(map[int]*models.Team, len(teamRows))
	for _, t := range teamRows {
		teams[t.ID] = t
	}
	homeTeam, awayTeam := teams[homeID], teams[awayID]
	if homeTeam == nil || awayTeam == nil {
		return nil, repositories.ErrTeamNotFound
	}

	// A result is being corrected: nothing downstream may already be played,
	// and the previously applied statistics come off first.
	if match.Status != models.MatchStatusScheduled {
		if err = s.guardDownstream(ctx, tx, match); err != nil {
			return nil, err
		}
		prevHome, prevAway := resultDeltas(match, homeID)
		*homeTeam = homeTeam.Apply(prevHome.Negate())
		*awayTeam = awayTeam.Apply(prevAway.Negate())

		if tournament.Format.IsElimination() {
			for _, teamID := range []int{homeID, awayID} {
				if statusErr := s.teamRepo.UpdateStatus(ctx, tx, teamID, models.TeamStatusRegistered); statusErr != nil {
					return nil, statusErr
				}
				teams[teamID].Status = models.TeamStatusRegistered
			}
		}
	}

	match.Status = spec.status
	match.HomeScore = spec.homeScore
	match.AwayScore = spec.awayScore
	match.WinnerTeamID = winnerID
	match.ForfeitReason = spec.forfeitReason
	if err = s.matchRepo.UpdateResult(ctx, tx, match); err != nil {
		return nil, err
	}

	newHome, newAway := resultDeltas(match, homeID)
	*homeTeam = homeTeam.Apply(newHome)
	*awayTeam = awayTeam.Apply(newAway)
	if err = s.teamRepo.UpdateStats(ctx, tx, homeTeam); err != nil {
		return nil, err
	}
	if err = s.teamRepo.UpdateStats(ctx, tx, awayTeam); err != nil {
		return nil, err
	}

	if tournament.Format.IsElimination() {
		if err = s.propagate(ctx, tx, match, *winnerID, homeID, awayID); err != nil {
			return nil, err
		}
	}
	return match, nil
}

// decideWinner validates the result against the format. Round robin allows
// ties (nil winner); elimination play requires an overtime winner on a tied
// score.
func (s *matchService) decideWinner(tournament *models.Tournament, spec resultSpec, homeID, awayID int) (*int, error) {
	if spec.status == models.MatchStatusForfeit {
		switch spec.forfeitTeamID {
		case homeID:
			return &awayID, nil
		case awayID:
			return &homeID, nil
		default:
			return nil, ErrForfeitTeamNotInMatch
		}
	}

	switch {
	case *spec.homeScore > *spec.awayScore:
		return &homeID, nil
	case *spec.awayScore > *spec.homeScore:
		return &awayID, nil
	}

	if !tournament.Format.IsElimination() {
		return nil, nil
	}
	if spec.overtimeWinnerID == nil {
		return nil, ErrTiedScoreNeedsOvertime
	}
	if *spec.overtimeWinnerID != homeID && *spec.overtimeWinnerID != awayID {
		return nil, ErrOvertimeWinnerNotInMatch
	}
	return spec.overtimeWinnerID, nil
}

// guardDownstream rejects a correction once any match fed by this one has
// already been played.
func (s *matchService) guardDownstream(ctx context.Context, tx *sql.Tx, match *models.Match) error {
	downstream := make([]int, 0, 2)
	if match.NextMatchID != nil {
		downstream = append(downstream, *match.NextMatchID)
	}
	if match.LoserNextMatchID != nil {
		downstream = append(downstream, *match.LoserNextMatchID)
	}
	if match.BracketType == models.BracketTypeGrandFinal && match.Round == 1 {
		reset, err := s.grandFinalReset(ctx, tx, match.TournamentID)
		if err != nil {
			return err
		}
		if reset != nil {
			downstream = append(downstream, reset.ID)
		}
	}

	for _, id := range downstream {
		next, err := s.matchRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if next.Status != models.MatchStatusScheduled {
			return ErrDownstreamMatchCompleted
		}
	}
	return nil
}

// propagate routes the winner and loser after a completed elimination match:
// winner into its linked slot, loser into the losers bracket or out of the
// tournament, with the grand-final pair handled explicitly.
func (s *matchService) propagate(ctx context.Context, tx *sql.Tx, match *models.Match, winnerID, homeID, awayID int) error {
	loserID := homeID
	if winnerID == homeID {
		loserID = awayID
	}

	if match.BracketType == models.BracketTypeGrandFinal {
		return s.propagateGrandFinal(ctx, tx, match, winnerID, loserID, homeID, awayID)
	}

	if match.NextMatchID != nil {
		if err := s.placeTeam(ctx, tx, *match.NextMatchID, derefSlot(match.NextSlot), winnerID); err != nil {
			return err
		}
	}

	if match.LoserNextMatchID != nil {
		if err := s.placeTeam(ctx, tx, *match.LoserNextMatchID, derefSlot(match.LoserNextSlot), loserID); err != nil {
			return err
		}
	} else {
		if err := s.teamRepo.UpdateStatus(ctx, tx, loserID, models.TeamStatusEliminated); err != nil {
			return err
		}
	}

	// A terminal non-grand-final match is the single elimination final.
	if match.NextMatchID == nil {
		return s.finishTournament(ctx, tx, match.TournamentID, winnerID)
	}
	return nil
}

// propagateGrandFinal applies the bracket-reset rule: a first grand final won
// by the home side (the winners bracket champion, still unbeaten) ends the
// tournament; won by the away side, it populates the reset match with the same
// pairing and decides nothing yet.
func (s *matchService) propagateGrandFinal(ctx context.Context, tx *sql.Tx, match *models.Match, winnerID, loserID, homeID, awayID int) error {
	if match.Round != 1 {
		if err := s.teamRepo.UpdateStatus(ctx, tx, loserID, models.TeamStatusEliminated); err != nil {
			return err
		}
		return s.finishTournament(ctx, tx, match.TournamentID, winnerID)
	}

	reset, err := s.grandFinalReset(ctx, tx, match.TournamentID)
	if err != nil {
		return err
	}

	if winnerID == homeID {
		if reset != nil {
			if err = s.matchRepo.UpdateParticipants(ctx, tx, reset.ID, nil, nil); err != nil {
				return err
			}
		}
		if err = s.teamRepo.UpdateStatus(ctx, tx, loserID, models.TeamStatusEliminated); err != nil {
			return err
		}
		return s.finishTournament(ctx, tx, match.TournamentID, winnerID)
	}

	if reset == nil {
		return fmt.Errorf("grand final reset match missing for tournament %d", match.TournamentID)
	}
	return s.matchRepo.UpdateParticipants(ctx, tx, reset.ID, &homeID, &awayID)
}

func (s *matchService) grandFinalReset(ctx context.Context, tx *sql.Tx, tournamentID int) (*models.Match, error) {
	bt := models.BracketTypeGrandFinal
	matches, err := s.matchRepo.ListByTournament(ctx, tx, tournamentID, &bt, nil)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if m.Round == 2 {
			return m, nil
		}
	}
	return nil, nil
}

func (s *matchService) placeTeam(ctx context.Context, tx *sql.Tx, matchID, slot, teamID int) error {
	next, err := s.matchRepo.GetByID(ctx, tx, matchID)
	if err != nil {
		return err
	}
	if slot == models.SlotHome {
		next.HomeTeamID = &teamID
	} else {
		next.AwayTeamID = &teamID
	}
	return s.matchRepo.UpdateParticipants(ctx, tx, next.ID, next.HomeTeamID, next.AwayTeamID)
}

func (s *matchService) finishTournament(ctx context.Context, tx *sql.Tx, tournamentID, winnerID int) error {
	if err := s.teamRepo.UpdateStatus(ctx, tx, winnerID, models.TeamStatusWinner); err != nil {
		return err
	}
	if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusCompleted); err != nil {
		return err
	}
	s.logger.Info("tournament completed",
		slog.Int("tournament_id", tournamentID), slog.Int("winner_team_id", winnerID))
	return nil
}

func derefSlot(slot *int) int {
	if slot == nil {
		return models.SlotHome
	}
	return *slot
}

// resultDeltas computes the cumulative-statistics change a stored result
// applies to each side. Reversal negates exactly these values, so corrections
// cannot drift.
func resultDeltas(match *models.Match, homeID int) (home, away models.StatDelta) {
	switch match.Status {
	case models.MatchStatusForfeit:
		if match.WinnerTeamID != nil && *match.WinnerTeamID == homeID {
			return models.StatDelta{Wins: 1, Points: 3}, models.StatDelta{Losses: 1}
		}
		return models.StatDelta{Losses: 1}, models.StatDelta{Wins: 1, Points: 3}

	case models.MatchStatusCompleted:
		hs, as := 0, 0
		if match.HomeScore != nil {
			hs = *match.HomeScore
		}
		if match.AwayScore != nil {
			as = *match.AwayScore
		}
		home = models.StatDelta{GoalsFor: hs, GoalsAgainst: as}
		away = models.StatDelta{GoalsFor: as, GoalsAgainst: hs}

		switch {
		case match.WinnerTeamID == nil:
			home.Ties, home.Points = 1, 1
			away.Ties, away.Points = 1, 1
		case *match.WinnerTeamID == homeID:
			home.Wins, home.Points = 1, 3
			away.Losses = 1
		default:
			away.Wins, away.Points = 1, 3
			home.Losses = 1
		}
		return home, away
	}
	return models.StatDelta{}, models.StatDelta{}
}
