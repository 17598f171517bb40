package services

import "errors"

// Shared sentinels, mapped to HTTP statuses in the handlers layer. Validation
// errors are reported synchronously and never retried; authorization errors
// are kept distinct so callers can map them separately; conflicts surface
// only after the internal retry budget is exhausted.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed           = errors.New("validation failed")
	ErrTournamentNotActive        = errors.New("tournament is not in active play")
	ErrTournamentNotReady         = errors.New("tournament is not in a bracket-generation-eligible state")
	ErrMatchesAlreadyExist        = errors.New("bracket already generated: matches exist for this tournament")
	ErrMatchSlotUnresolved        = errors.New("match participants are not resolved yet")
	ErrMatchNotInTournament       = errors.New("match does not belong to this tournament")
	ErrInvalidScore               = errors.New("scores must be non-negative integers")
	ErrTiedScoreNeedsOvertime     = errors.New("tied score in elimination play requires an overtime winner")
	ErrOvertimeWinnerNotInMatch   = errors.New("overtime winner must be one of the two match participants")
	ErrForfeitTeamNotInMatch      = errors.New("forfeiting team must be one of the two match participants")
	ErrDownstreamMatchCompleted   = errors.New("cannot change result: the next match has already been played")
	ErrByeMatchImmutable          = errors.New("bye matches cannot receive results")
	ErrSpotCountInvalid           = errors.New("spot count must be a positive integer")

	// Authentication and authorization
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")

	// Concurrency
	ErrConflictRetryExhausted = errors.New("concurrent update conflict: retries exhausted")
)
