package models

import "time"

type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

type TournamentFormat string

const (
	FormatSingleElimination TournamentFormat = "single_elimination"
	FormatDoubleElimination TournamentFormat = "double_elimination"
	FormatRoundRobin        TournamentFormat = "round_robin"
)

func (f TournamentFormat) IsElimination() bool {
	return f == FormatSingleElimination || f == FormatDoubleElimination
}

type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Description       *string          `json:"description,omitempty" db:"description"`
	OrganizerID       int              `json:"organizer_id" db:"organizer_id"`
	Format            TournamentFormat `json:"format" db:"format"`
	Status            TournamentStatus `json:"status" db:"status"`
	MaxTeams          int              `json:"max_teams" db:"max_teams"`
	PlayoffTeamsCount int              `json:"playoff_teams_count" db:"playoff_teams_count"`
	TiebreakOrder     []string         `json:"tiebreak_order,omitempty" db:"-"`
	RegDate           time.Time        `json:"reg_date" db:"reg_date"`
	StartDate         time.Time        `json:"start_date" db:"start_date"`
	EndDate           time.Time        `json:"end_date" db:"end_date"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	LogoKey           *string          `json:"-" db:"logo_key"`
	LogoURL           *string          `json:"logo_url,omitempty" db:"-"`

	Teams   []Team  `json:"teams,omitempty" db:"-"`
	Matches []Match `json:"matches,omitempty" db:"-"`
}
