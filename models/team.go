package models

import "time"

type TeamStatus string

const (
	TeamStatusRegistered TeamStatus = "registered"
	TeamStatusEliminated TeamStatus = "eliminated"
	TeamStatusWinner     TeamStatus = "winner"
)

type Team struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	Name         string     `json:"name" db:"name"`
	Seed         *int       `json:"seed,omitempty" db:"seed"`
	Status       TeamStatus `json:"status" db:"status"`
	Wins         int        `json:"wins" db:"wins"`
	Losses       int        `json:"losses" db:"losses"`
	Ties         int        `json:"ties" db:"ties"`
	Points       int        `json:"points" db:"points"`
	GoalsFor     int        `json:"goals_for" db:"goals_for"`
	GoalsAgainst int        `json:"goals_against" db:"goals_against"`
	HasBye       bool       `json:"has_bye" db:"has_bye"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

// StatDelta is the cumulative-statistics change one match result applies to a
// team. Score corrections negate the previously applied delta and apply the
// new one, so apply and reverse can never drift apart.
type StatDelta struct {
	Wins         int
	Losses       int
	Ties         int
	Points       int
	GoalsFor     int
	GoalsAgainst int
}

func (d StatDelta) Negate() StatDelta {
	return StatDelta{
		Wins:         -d.Wins,
		Losses:       -d.Losses,
		Ties:         -d.Ties,
		Points:       -d.Points,
		GoalsFor:     -d.GoalsFor,
		GoalsAgainst: -d.GoalsAgainst,
	}
}

func (t Team) Apply(d StatDelta) Team {
	t.Wins += d.Wins
	t.Losses += d.Losses
	t.Ties += d.Ties
	t.Points += d.Points
	t.GoalsFor += d.GoalsFor
	t.GoalsAgainst += d.GoalsAgainst
	return t
}

func (t Team) GoalDifference() int {
	return t.GoalsFor - t.GoalsAgainst
}
