package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openbracket/tournament-engine/services"
	"github.com/openbracket/tournament-engine/waitlist"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func readJSON(r *http.Request, dest interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}

func urlInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

// writeError converts a service error into an HTTP response. Unknown errors
// are logged and masked as a plain 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", slog.Any("error", err))
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAuthInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbiddenOperation):
		return http.StatusForbidden
	case errors.Is(err, services.ErrAuthEmailTaken),
		errors.Is(err, services.ErrMatchesAlreadyExist),
		errors.Is(err, services.ErrDownstreamMatchCompleted),
		errors.Is(err, services.ErrConflictRetryExhausted):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrTournamentNotActive),
		errors.Is(err, services.ErrTournamentNotReady),
		errors.Is(err, services.ErrMatchNotInTournament),
		errors.Is(err, services.ErrMatchSlotUnresolved),
		errors.Is(err, services.ErrByeMatchImmutable),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrTiedScoreNeedsOvertime),
		errors.Is(err, services.ErrOvertimeWinnerNotInMatch),
		errors.Is(err, services.ErrForfeitTeamNotInMatch),
		errors.Is(err, services.ErrSpotCountInvalid),
		errors.Is(err, waitlist.ErrReorderMissingEntry),
		errors.Is(err, waitlist.ErrReorderUnknownEntry),
		errors.Is(err, waitlist.ErrReorderBadPositions),
		errors.Is(err, waitlist.ErrReorderDuplicateItem):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
