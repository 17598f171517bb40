package brackets

import (
	"errors"

	"github.com/openbracket/tournament-engine/models"
)

var ErrUnsupportedFormat = errors.New("unsupported tournament format")

// BracketMatch is the in-memory skeleton a generator produces before anything
// is persisted. Links are indexes into the generated slice; the service layer
// maps them to database ids in a second pass.
type BracketMatch struct {
	Round       int
	MatchNumber int
	BracketType models.BracketType
	Position    string

	HomeTeamID   *int
	AwayTeamID   *int
	Status       models.MatchStatus
	WinnerTeamID *int
	IsBye        bool

	// NextIndex is the slice index of the match the winner advances to, -1
	// for terminal matches. NextSlot is models.SlotHome or models.SlotAway.
	NextIndex int
	NextSlot  int

	// LoserNextIndex routes the loser in double elimination, -1 otherwise.
	// Bye matches never drop a loser.
	LoserNextIndex int
	LoserNextSlot  int
}

type Generator interface {
	GenerateBracket(teams []models.Team) ([]*BracketMatch, error)
	Name() string
}

// ForFormat returns the generator for a tournament format.
func ForFormat(format models.TournamentFormat) (Generator, error) {
	switch format {
	case models.FormatSingleElimination:
		return NewSingleEliminationGenerator(), nil
	case models.FormatDoubleElimination:
		return NewDoubleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

func newBracketMatch(round, number int, bt models.BracketType) *BracketMatch {
	return &BracketMatch{
		Round:          round,
		MatchNumber:    number,
		BracketType:    bt,
		Status:         models.MatchStatusScheduled,
		NextIndex:      -1,
		LoserNextIndex: -1,
	}
}
