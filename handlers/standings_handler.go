package handlers

import (
	"log/slog"
	"net/http"

	"github.com/openbracket/tournament-engine/services"
)

type StandingsHandler struct {
	standings services.StandingsService
	logger    *slog.Logger
}

func NewStandingsHandler(standings services.StandingsService, logger *slog.Logger) *StandingsHandler {
	return &StandingsHandler{standings: standings, logger: logger}
}

// Get godoc
// @Summary Get the ranked standings table of a tournament
// @Tags standings
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} standings.Result
// @Router /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}

	result, err := h.standings.GetStandings(r.Context(), tournamentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
