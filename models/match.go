package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusForfeit   MatchStatus = "forfeit"
)

type BracketType string

const (
	BracketTypeNone       BracketType = ""
	BracketTypeWinners    BracketType = "winners"
	BracketTypeLosers     BracketType = "losers"
	BracketTypeGrandFinal BracketType = "grand_final"
)

// Slot values for next_slot / loser_next_slot columns.
const (
	SlotHome = 1
	SlotAway = 2
)

type Match struct {
	ID              int         `json:"id" db:"id"`
	TournamentID    int         `json:"tournament_id" db:"tournament_id"`
	Round           int         `json:"round" db:"round"`
	MatchNumber     int         `json:"match_number" db:"match_number"`
	BracketType     BracketType `json:"bracket_type,omitempty" db:"bracket_type"`
	BracketPosition string      `json:"bracket_position" db:"bracket_position"`
	HomeTeamID      *int        `json:"home_team_id,omitempty" db:"home_team_id"`
	AwayTeamID      *int        `json:"away_team_id,omitempty" db:"away_team_id"`
	Status          MatchStatus `json:"status" db:"status"`
	HomeScore       *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore       *int        `json:"away_score,omitempty" db:"away_score"`
	WinnerTeamID    *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	ForfeitReason   *string     `json:"forfeit_reason,omitempty" db:"forfeit_reason"`
	IsBye           bool        `json:"is_bye" db:"is_bye"`

	NextMatchID      *int `json:"next_match_id,omitempty" db:"next_match_id"`
	NextSlot         *int `json:"next_slot,omitempty" db:"next_slot"`
	LoserNextMatchID *int `json:"loser_next_match_id,omitempty" db:"loser_next_match_id"`
	LoserNextSlot    *int `json:"loser_next_slot,omitempty" db:"loser_next_slot"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Resolved reports whether both participant slots are known.
func (m *Match) Resolved() bool {
	return m.HomeTeamID != nil && m.AwayTeamID != nil
}
