package standings

import (
	"reflect"
	"testing"

	"github.com/openbracket/tournament-engine/models"
)

func team(id, points, goalsFor, goalsAgainst int) models.Team {
	return models.Team{ID: id, Points: points, GoalsFor: goalsFor, GoalsAgainst: goalsAgainst}
}

func completed(homeID, awayID, homeScore, awayScore int) models.Match {
	m := models.Match{
		HomeTeamID: &homeID,
		AwayTeamID: &awayID,
		HomeScore:  &homeScore,
		AwayScore:  &awayScore,
		Status:     models.MatchStatusCompleted,
	}
	switch {
	case homeScore > awayScore:
		m.WinnerTeamID = &homeID
	case awayScore > homeScore:
		m.WinnerTeamID = &awayID
	}
	return m
}

func rankOf(result Result, teamID int) int {
	for _, row := range result.Rows {
		if row.Team.ID == teamID {
			return row.Rank
		}
	}
	return 0
}

func TestCalculateOrdersByPoints(t *testing.T) {
	teams := []models.Team{team(1, 3, 2, 4), team(2, 9, 8, 1), team(3, 6, 5, 3)}

	result := Calculate(teams, nil, Config{})

	wantOrder := []int{2, 3, 1}
	for i, id := range wantOrder {
		if result.Rows[i].Team.ID != id {
			t.Errorf("position %d: got team %d, want %d", i+1, result.Rows[i].Team.ID, id)
		}
		if result.Rows[i].Rank != i+1 {
			t.Errorf("team %d: rank %d, want %d", id, result.Rows[i].Rank, i+1)
		}
	}
	if len(result.UnresolvedGroups) != 0 {
		t.Errorf("unexpected unresolved groups: %v", result.UnresolvedGroups)
	}
}

func TestCalculateHeadToHeadPair(t *testing.T) {
	// Team 2 took the direct meeting, so it ranks above team 1 on equal points
	// even with a worse goal difference.
	teams := []models.Team{team(1, 6, 10, 2), team(2, 6, 5, 4)}
	matches := []models.Match{completed(1, 2, 0, 1)}

	result := Calculate(teams, matches, Config{})

	if rankOf(result, 2) != 1 || rankOf(result, 1) != 2 {
		t.Errorf("head-to-head winner should rank first: %+v", result.Rows)
	}
}

func TestCalculateGoalDifferenceFallback(t *testing.T) {
	// No decisive direct result, so the chain falls through to goal difference.
	teams := []models.Team{team(1, 4, 3, 3), team(2, 4, 6, 2)}
	matches := []models.Match{completed(1, 2, 1, 1)}

	result := Calculate(teams, matches, Config{})

	if rankOf(result, 2) != 1 || rankOf(result, 1) != 2 {
		t.Errorf("better goal difference should rank first: %+v", result.Rows)
	}
}

func TestCalculateGoalsScoredFallback(t *testing.T) {
	teams := []models.Team{team(1, 4, 2, 2), team(2, 4, 5, 5)}

	result := Calculate(teams, nil, Config{})

	if rankOf(result, 2) != 1 {
		t.Errorf("more goals scored should rank first: %+v", result.Rows)
	}
}

func TestCalculateThreeWayCycleUnresolved(t *testing.T) {
	// 1 beat 2, 2 beat 3, 3 beat 1, all one-nil: identical points, goal
	// difference, goals scored and mini-table rows. The chain cannot separate
	// them and must say so.
	teams := []models.Team{
		team(1, 3, 1, 1),
		team(2, 3, 1, 1),
		team(3, 3, 1, 1),
		team(4, 0, 0, 3),
	}
	matches := []models.Match{
		completed(1, 2, 1, 0),
		completed(2, 3, 1, 0),
		completed(3, 1, 1, 0),
	}

	result := Calculate(teams, matches, Config{})

	if len(result.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(result.Rows))
	}
	for i, row := range result.Rows {
		if row.Rank != i+1 {
			t.Errorf("ranks must stay sequential, got %d at position %d", row.Rank, i+1)
		}
	}
	if rankOf(result, 4) != 4 {
		t.Errorf("team 4 should rank last: %+v", result.Rows)
	}

	if len(result.UnresolvedGroups) != 1 {
		t.Fatalf("expected 1 unresolved group, got %v", result.UnresolvedGroups)
	}
	got := append([]int(nil), result.UnresolvedGroups[0]...)
	if len(got) != 3 {
		t.Fatalf("unresolved group should hold the three cycle teams, got %v", got)
	}
	want := map[int]bool{1: true, 2: true, 3: true}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected team %d in unresolved group", id)
		}
	}
}

func TestCalculatePlayoffBound(t *testing.T) {
	teams := []models.Team{team(1, 9, 5, 1), team(2, 6, 4, 2), team(3, 3, 2, 4), team(4, 0, 1, 5)}

	result := Calculate(teams, nil, Config{PlayoffTeamsCount: 2})

	for i, row := range result.Rows {
		want := i < 2
		if row.PlayoffBound != want {
			t.Errorf("row %d: playoff bound %v, want %v", i, row.PlayoffBound, want)
		}
	}
}

func TestCalculateCustomChain(t *testing.T) {
	// With only goals scored configured, the direct result is ignored.
	teams := []models.Team{team(1, 6, 8, 4), team(2, 6, 3, 2)}
	matches := []models.Match{completed(1, 2, 0, 1)}

	result := Calculate(teams, matches, Config{TiebreakOrder: []Criterion{GoalsScored}})

	if rankOf(result, 1) != 1 {
		t.Errorf("goals scored chain should rank team 1 first: %+v", result.Rows)
	}
}

func TestCalculateIgnoresScheduledMatches(t *testing.T) {
	teams := []models.Team{team(1, 3, 1, 1), team(2, 3, 1, 1)}
	scheduled := models.Match{
		HomeTeamID: ptr(1), AwayTeamID: ptr(2), WinnerTeamID: ptr(2),
		Status: models.MatchStatusScheduled,
	}

	result := Calculate(teams, []models.Match{scheduled}, Config{})

	// The scheduled match must not count as a head-to-head result; the tie
	// falls through to the id order.
	if !reflect.DeepEqual([]int{result.Rows[0].Team.ID, result.Rows[1].Team.ID}, []int{1, 2}) {
		t.Errorf("scheduled match leaked into head-to-head: %+v", result.Rows)
	}
}

func ptr(v int) *int { return &v }
