// Package standings ranks tournament teams by points with a configurable
// tiebreak chain and reports groups the chain cannot separate.
package standings

import (
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

type Criterion string

const (
	HeadToHead     Criterion = "head_to_head"
	GoalDifference Criterion = "goal_difference"
	GoalsScored    Criterion = "goals_scored"
)

func DefaultTiebreakOrder() []Criterion {
	return []Criterion{HeadToHead, GoalDifference, GoalsScored}
}

type Config struct {
	TiebreakOrder     []Criterion
	PlayoffTeamsCount int
}

type Row struct {
	Team         models.Team `json:"team"`
	Rank         int         `json:"rank"`
	PlayoffBound bool        `json:"playoff_bound"`
}

type Result struct {
	Rows []Row `json:"rows"`
	// UnresolvedGroups lists team ids of 3+ consecutive teams the configured
	// chain cannot tell apart. They still get sequential ranks, but need a
	// manual call from an organizer.
	UnresolvedGroups [][]int `json:"unresolved_groups,omitempty"`
}

// Calculate ranks teams by points descending, separates equal-point groups
// with the configured tiebreak chain and assigns sequential ranks.
func Calculate(teams []models.Team, matches []models.Match, cfg Config) Result {
	order := cfg.TiebreakOrder
	if len(order) == 0 {
		order = DefaultTiebreakOrder()
	}

	played := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == models.MatchStatusCompleted || m.Status == models.MatchStatusForfeit {
			played = append(played, m)
		}
	}

	sorted := make([]models.Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points > sorted[j].Points
		}
		return sorted[i].ID < sorted[j].ID
	})

	ranked := make([]models.Team, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Points == sorted[start].Points {
			end++
		}
		ranked = append(ranked, orderGroup(sorted[start:end], played, order)...)
		start = end
	}

	result := Result{Rows: make([]Row, len(ranked))}
	for i, t := range ranked {
		result.Rows[i] = Row{
			Team:         t,
			Rank:         i + 1,
			PlayoffBound: cfg.PlayoffTeamsCount > 0 && i < cfg.PlayoffTeamsCount,
		}
	}
	result.UnresolvedGroups = findUnresolvedGroups(ranked, played, order)
	return result
}

// orderGroup applies the tiebreak chain to one equal-point group, recursing
// into subgroups a criterion fails to separate.
func orderGroup(group []models.Team, played []models.Match, chain []Criterion) []models.Team {
	if len(group) < 2 || len(chain) == 0 {
		out := make([]models.Team, len(group))
		copy(out, group)
		return out
	}

	var keyed []teamKey
	switch chain[0] {
	case HeadToHead:
		keyed = headToHeadKeys(group, played)
	case GoalDifference:
		keyed = numericKeys(group, func(t models.Team) (int, int) { return t.GoalDifference(), 0 })
	case GoalsScored:
		keyed = numericKeys(group, func(t models.Team) (int, int) { return t.GoalsFor, 0 })
	default:
		keyed = numericKeys(group, func(t models.Team) (int, int) { return 0, 0 })
	}

	sort.SliceStable(keyed, func(i, j int) bool {
		if keyed[i].primary != keyed[j].primary {
			return keyed[i].primary > keyed[j].primary
		}
		return keyed[i].secondary > keyed[j].secondary
	})

	out := make([]models.Team, 0, len(group))
	for start := 0; start < len(keyed); {
		end := start + 1
		for end < len(keyed) && keyed[end].primary == keyed[start].primary && keyed[end].secondary == keyed[start].secondary {
			end++
		}
		sub := make([]models.Team, 0, end-start)
		for _, k := range keyed[start:end] {
			sub = append(sub, k.team)
		}
		out = append(out, orderGroup(sub, played, chain[1:])...)
		start = end
	}
	return out
}

type teamKey struct {
	team      models.Team
	primary   int
	secondary int
}

func numericKeys(group []models.Team, key func(models.Team) (int, int)) []teamKey {
	keyed := make([]teamKey, len(group))
	for i, t := range group {
		p, s := key(t)
		keyed[i] = teamKey{team: t, primary: p, secondary: s}
	}
	return keyed
}

// headToHeadKeys ranks a tied group by direct results. Two teams compare by
// wins in their direct matches; three or more build a mini-table over matches
// inside the group only, win 3 / tie 1 / loss 0, ordered by mini-points then
// mini-wins.
func headToHeadKeys(group []models.Team, played []models.Match) []teamKey {
	if len(group) == 2 {
		a, b := group[0], group[1]
		aWins, bWins := directWins(a.ID, b.ID, played)
		return []teamKey{
			{team: a, primary: boolToInt(aWins > bWins), secondary: 0},
			{team: b, primary: boolToInt(bWins > aWins), secondary: 0},
		}
	}

	points, wins := miniTable(group, played)
	keyed := make([]teamKey, len(group))
	for i, t := range group {
		keyed[i] = teamKey{team: t, primary: points[t.ID], secondary: wins[t.ID]}
	}
	return keyed
}

func directWins(aID, bID int, played []models.Match) (int, int) {
	aWins, bWins := 0, 0
	for _, m := range played {
		if !between(m, aID, bID) || m.WinnerTeamID == nil {
			continue
		}
		switch *m.WinnerTeamID {
		case aID:
			aWins++
		case bID:
			bWins++
		}
	}
	return aWins, bWins
}

func miniTable(group []models.Team, played []models.Match) (points, wins map[int]int) {
	inGroup := make(map[int]bool, len(group))
	for _, t := range group {
		inGroup[t.ID] = true
	}
	points = make(map[int]int, len(group))
	wins = make(map[int]int, len(group))

	for _, m := range played {
		if m.HomeTeamID == nil || m.AwayTeamID == nil {
			continue
		}
		h, a := *m.HomeTeamID, *m.AwayTeamID
		if !inGroup[h] || !inGroup[a] {
			continue
		}
		switch {
		case m.WinnerTeamID == nil:
			points[h]++
			points[a]++
		case *m.WinnerTeamID == h:
			points[h] += 3
			wins[h]++
		case *m.WinnerTeamID == a:
			points[a] += 3
			wins[a]++
		}
	}
	return points, wins
}

// findUnresolvedGroups scans the final ordering for runs of 3+ teams that
// every configured criterion leaves indistinguishable.
func findUnresolvedGroups(ranked []models.Team, played []models.Match, chain []Criterion) [][]int {
	var groups [][]int

	useH2H, useGD, useGF := false, false, false
	for _, c := range chain {
		switch c {
		case HeadToHead:
			useH2H = true
		case GoalDifference:
			useGD = true
		case GoalsScored:
			useGF = true
		}
	}

	sameNumbers := func(a, b models.Team) bool {
		if a.Points != b.Points {
			return false
		}
		if useGD && a.GoalDifference() != b.GoalDifference() {
			return false
		}
		if useGF && a.GoalsFor != b.GoalsFor {
			return false
		}
		return true
	}

	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) && sameNumbers(ranked[start], ranked[end]) {
			end++
		}
		segment := ranked[start:end]
		if len(segment) >= 3 {
			groups = append(groups, unresolvedWithin(segment, played, useH2H)...)
		}
		start = end
	}
	return groups
}

func unresolvedWithin(segment []models.Team, played []models.Match, useH2H bool) [][]int {
	ids := func(teams []models.Team) []int {
		out := make([]int, len(teams))
		for i, t := range teams {
			out[i] = t.ID
		}
		return out
	}

	if !useH2H {
		return [][]int{ids(segment)}
	}

	// The segment shares every numeric criterion; head-to-head leaves teams
	// tied when their mini-table rows are identical (a three-way win cycle
	// collapses to equal rows).
	points, wins := miniTable(segment, played)
	var groups [][]int
	for start := 0; start < len(segment); {
		end := start + 1
		for end < len(segment) &&
			points[segment[end].ID] == points[segment[start].ID] &&
			wins[segment[end].ID] == wins[segment[start].ID] {
			end++
		}
		if end-start >= 3 {
			groups = append(groups, ids(segment[start:end]))
		}
		start = end
	}
	return groups
}

func between(m models.Match, aID, bID int) bool {
	if m.HomeTeamID == nil || m.AwayTeamID == nil {
		return false
	}
	h, a := *m.HomeTeamID, *m.AwayTeamID
	return (h == aID && a == bID) || (h == bID && a == aID)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
