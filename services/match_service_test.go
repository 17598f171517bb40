package services

import (
	"errors"
	"testing"

	"github.com/openbracket/tournament-engine/models"
)

func intPtr(v int) *int { return &v }

func completedMatch(homeID, awayID, homeScore, awayScore int, winnerID *int) *models.Match {
	return &models.Match{
		HomeTeamID:   &homeID,
		AwayTeamID:   &awayID,
		HomeScore:    &homeScore,
		AwayScore:    &awayScore,
		WinnerTeamID: winnerID,
		Status:       models.MatchStatusCompleted,
	}
}

func TestResultDeltasHomeWin(t *testing.T) {
	m := completedMatch(10, 20, 3, 1, intPtr(10))

	home, away := resultDeltas(m, 10)

	if home != (models.StatDelta{Wins: 1, Points: 3, GoalsFor: 3, GoalsAgainst: 1}) {
		t.Errorf("home delta: %+v", home)
	}
	if away != (models.StatDelta{Losses: 1, GoalsFor: 1, GoalsAgainst: 3}) {
		t.Errorf("away delta: %+v", away)
	}
}

func TestResultDeltasTie(t *testing.T) {
	m := completedMatch(10, 20, 2, 2, nil)

	home, away := resultDeltas(m, 10)

	want := models.StatDelta{Ties: 1, Points: 1, GoalsFor: 2, GoalsAgainst: 2}
	if home != want || away != want {
		t.Errorf("tie deltas: home %+v away %+v", home, away)
	}
}

func TestResultDeltasForfeit(t *testing.T) {
	m := &models.Match{
		HomeTeamID:   intPtr(10),
		AwayTeamID:   intPtr(20),
		WinnerTeamID: intPtr(20),
		Status:       models.MatchStatusForfeit,
	}

	home, away := resultDeltas(m, 10)

	// A forfeit moves win/loss counters without goals.
	if home != (models.StatDelta{Losses: 1}) {
		t.Errorf("home delta: %+v", home)
	}
	if away != (models.StatDelta{Wins: 1, Points: 3}) {
		t.Errorf("away delta: %+v", away)
	}
}

func TestResultDeltasReversalRestoresTeam(t *testing.T) {
	original := models.Team{Wins: 4, Losses: 2, Ties: 1, Points: 13, GoalsFor: 15, GoalsAgainst: 9}
	m := completedMatch(10, 20, 5, 2, intPtr(10))

	home, _ := resultDeltas(m, 10)
	after := original.Apply(home).Apply(home.Negate())

	if after != original {
		t.Errorf("apply+negate drifted: %+v != %+v", after, original)
	}
}

func TestDecideWinnerScores(t *testing.T) {
	svc := &matchService{}
	elimination := &models.Tournament{Format: models.FormatSingleElimination}
	roundRobin := &models.Tournament{Format: models.FormatRoundRobin}

	score := func(h, a int, ot *int) resultSpec {
		return resultSpec{status: models.MatchStatusCompleted, homeScore: &h, awayScore: &a, overtimeWinnerID: ot}
	}

	t.Run("home win", func(t *testing.T) {
		winner, err := svc.decideWinner(elimination, score(2, 1, nil), 10, 20)
		if err != nil || winner == nil || *winner != 10 {
			t.Errorf("got %v, %v", winner, err)
		}
	})

	t.Run("round robin tie", func(t *testing.T) {
		winner, err := svc.decideWinner(roundRobin, score(1, 1, nil), 10, 20)
		if err != nil || winner != nil {
			t.Errorf("tie should have no winner: got %v, %v", winner, err)
		}
	})

	t.Run("elimination tie needs overtime winner", func(t *testing.T) {
		_, err := svc.decideWinner(elimination, score(1, 1, nil), 10, 20)
		if !errors.Is(err, ErrTiedScoreNeedsOvertime) {
			t.Errorf("expected ErrTiedScoreNeedsOvertime, got %v", err)
		}
	})

	t.Run("overtime winner must participate", func(t *testing.T) {
		_, err := svc.decideWinner(elimination, score(1, 1, intPtr(99)), 10, 20)
		if !errors.Is(err, ErrOvertimeWinnerNotInMatch) {
			t.Errorf("expected ErrOvertimeWinnerNotInMatch, got %v", err)
		}
	})

	t.Run("overtime winner accepted", func(t *testing.T) {
		winner, err := svc.decideWinner(elimination, score(1, 1, intPtr(20)), 10, 20)
		if err != nil || winner == nil || *winner != 20 {
			t.Errorf("got %v, %v", winner, err)
		}
	})
}

func TestDecideWinnerForfeit(t *testing.T) {
	svc := &matchService{}
	tournament := &models.Tournament{Format: models.FormatSingleElimination}

	winner, err := svc.decideWinner(tournament, resultSpec{
		status:        models.MatchStatusForfeit,
		forfeitTeamID: 10,
	}, 10, 20)
	if err != nil || winner == nil || *winner != 20 {
		t.Errorf("opponent should win the forfeit: got %v, %v", winner, err)
	}

	_, err = svc.decideWinner(tournament, resultSpec{
		status:        models.MatchStatusForfeit,
		forfeitTeamID: 99,
	}, 10, 20)
	if !errors.Is(err, ErrForfeitTeamNotInMatch) {
		t.Errorf("expected ErrForfeitTeamNotInMatch, got %v", err)
	}
}
