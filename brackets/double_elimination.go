package brackets

import (
	"fmt"

	"github.com/openbracket/tournament-engine/models"
)

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() Generator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) Name() string {
	return "DoubleElimination"
}

// GenerateBracket builds the winners side as a plain knockout tree, then a
// losers bracket that alternates pairing its survivors with receiving the
// losers dropped from each winners round, a losers final fed by the winners
// final loser, and two grand-final matches. The second grand final is the
// reset slot: it is always created, and score entry populates it only when
// the losers-bracket champion takes the first grand final.
func (g *DoubleEliminationGenerator) GenerateBracket(teams []models.Team) ([]*BracketMatch, error) {
	matches, err := buildEliminationSide(teams, models.BracketTypeWinners, "WB-")
	if err != nil {
		return nil, err
	}

	n := len(teams)
	totalRounds := 1
	for 1<<totalRounds < n {
		totalRounds++
	}
	size := 1 << totalRounds

	wbOffsets := make([]int, totalRounds+1)
	for r := 2; r <= totalRounds; r++ {
		wbOffsets[r] = wbOffsets[r-1] + size>>(r-1)
	}
	wbFinal := wbOffsets[totalRounds]

	lbRound := 0
	newStage := func(count int) []int {
		lbRound++
		idxs := make([]int, count)
		for j := 0; j < count; j++ {
			m := newBracketMatch(lbRound, j+1, models.BracketTypeLosers)
			m.Position = fmt.Sprintf("LB-R%d-M%d", lbRound, j+1)
			idxs[j] = len(matches)
			matches = append(matches, m)
		}
		return idxs
	}

	// Survivors of the previous losers stage pair off against each other.
	minorStage := func(prev []int) []int {
		cur := newStage(len(prev) / 2)
		for j, pidx := range prev {
			matches[pidx].NextIndex = cur[j/2]
			if j%2 == 0 {
				matches[pidx].NextSlot = models.SlotHome
			} else {
				matches[pidx].NextSlot = models.SlotAway
			}
		}
		return cur
	}

	var prev []int
	if totalRounds >= 2 {
		// Stage L1 pairs up the winners round-1 losers. Bye matches have no
		// loser and leave their slot unresolved.
		prev = newStage(size / 4)
		for j := 0; j < size/2; j++ {
			wb := matches[wbOffsets[1]+j]
			if wb.IsBye {
				continue
			}
			wb.LoserNextIndex = prev[j/2]
			if j%2 == 0 {
				wb.LoserNextSlot = models.SlotHome
			} else {
				wb.LoserNextSlot = models.SlotAway
			}
		}

		for r := 2; r <= totalRounds-1; r++ {
			drops := size >> r
			for len(prev) > drops {
				prev = minorStage(prev)
			}
			// Major stage: one survivor per match on the home side, one
			// dropped winners-round loser away. Drops are crossed in reverse
			// match order so a round-1 rematch cannot happen immediately.
			cur := newStage(drops)
			for j, pidx := range prev {
				matches[pidx].NextIndex = cur[j]
				matches[pidx].NextSlot = models.SlotHome
			}
			for j := 0; j < drops; j++ {
				wb := matches[wbOffsets[r]+j]
				if wb.IsBye {
					continue
				}
				wb.LoserNextIndex = cur[drops-1-j]
				wb.LoserNextSlot = models.SlotAway
			}
			prev = cur
		}

		for len(prev) > 1 {
			prev = minorStage(prev)
		}

		lbFinal := newStage(1)[0]
		matches[lbFinal].Position = "LB-Final"
		matches[prev[0]].NextIndex = lbFinal
		matches[prev[0]].NextSlot = models.SlotHome
		matches[wbFinal].LoserNextIndex = lbFinal
		matches[wbFinal].LoserNextSlot = models.SlotAway
		prev = []int{lbFinal}
	}

	gf1 := len(matches)
	m1 := newBracketMatch(1, 1, models.BracketTypeGrandFinal)
	m1.Position = "Grand Final"
	matches = append(matches, m1)

	m2 := newBracketMatch(2, 1, models.BracketTypeGrandFinal)
	m2.Position = "Grand Final Reset"
	matches = append(matches, m2)

	matches[wbFinal].NextIndex = gf1
	matches[wbFinal].NextSlot = models.SlotHome
	if len(prev) == 1 {
		matches[prev[0]].NextIndex = gf1
		matches[prev[0]].NextSlot = models.SlotAway
	} else {
		// Two-team bracket: there is no losers side, the winners final loser
		// goes straight to the first grand final.
		matches[wbFinal].LoserNextIndex = gf1
		matches[wbFinal].LoserNextSlot = models.SlotAway
	}

	return pruneLoserByes(matches), nil
}

// pruneLoserByes removes losers matches that winners-side byes left without
// enough arrivals. Byes produce no loser, so a losers slot can end up with no
// team and no link feeding it, and a match with such a slot could never be
// played. A match with one live slot is collapsed: its sole feeder is rerouted
// to the match's own destination so the arriving team skips the empty pairing.
// A match with no live slot at all is dropped, which can starve the next stage
// and cascade. Afterwards every losers slot has at least one feeder.
func pruneLoserByes(matches []*BracketMatch) []*BracketMatch {
	type slotRef struct{ index, slot int }
	feeders := make(map[slotRef]int)
	for _, m := range matches {
		if m.NextIndex >= 0 {
			feeders[slotRef{m.NextIndex, m.NextSlot}]++
		}
		if m.LoserNextIndex >= 0 {
			feeders[slotRef{m.LoserNextIndex, m.LoserNextSlot}]++
		}
	}

	// Stages are appended in play order and only link forward, so a single
	// index-order sweep sees every cascade.
	removed := make([]bool, len(matches))
	pruned := false
	for i, m := range matches {
		if m.BracketType != models.BracketTypeLosers {
			continue
		}
		homeFed := feeders[slotRef{i, models.SlotHome}] > 0
		awayFed := feeders[slotRef{i, models.SlotAway}] > 0
		if homeFed && awayFed {
			continue
		}
		removed[i] = true
		pruned = true
		feeders[slotRef{m.NextIndex, m.NextSlot}]--
		if !homeFed && !awayFed {
			continue
		}
		for j, f := range matches {
			if removed[j] {
				continue
			}
			if f.NextIndex == i {
				f.NextIndex, f.NextSlot = m.NextIndex, m.NextSlot
				feeders[slotRef{f.NextIndex, f.NextSlot}]++
			}
			if f.LoserNextIndex == i {
				f.LoserNextIndex, f.LoserNextSlot = m.NextIndex, m.NextSlot
				feeders[slotRef{f.LoserNextIndex, f.LoserNextSlot}]++
			}
		}
	}
	if !pruned {
		return matches
	}

	newIndex := make([]int, len(matches))
	kept := make([]*BracketMatch, 0, len(matches))
	for i, m := range matches {
		if removed[i] {
			newIndex[i] = -1
			continue
		}
		newIndex[i] = len(kept)
		kept = append(kept, m)
	}
	for _, m := range kept {
		if m.NextIndex >= 0 {
			m.NextIndex = newIndex[m.NextIndex]
		}
		if m.LoserNextIndex >= 0 {
			m.LoserNextIndex = newIndex[m.LoserNextIndex]
		}
	}
	renumberLoserRounds(kept)
	return kept
}

// renumberLoserRounds restores dense losers round and match numbering after a
// prune, relabeling every stage except the losers final.
func renumberLoserRounds(matches []*BracketMatch) {
	rounds := make(map[int]int)
	perRound := make(map[int]int)
	for _, m := range matches {
		if m.BracketType != models.BracketTypeLosers {
			continue
		}
		r, ok := rounds[m.Round]
		if !ok {
			r = len(rounds) + 1
			rounds[m.Round] = r
		}
		perRound[r]++
		m.Round = r
		m.MatchNumber = perRound[r]
		if m.Position != "LB-Final" {
			m.Position = fmt.Sprintf("LB-R%d-M%d", r, m.MatchNumber)
		}
	}
}
