package handlers

import (
	"log/slog"
	"net/http"

	"github.com/openbracket/tournament-engine/services"
)

type TournamentHandler struct {
	tournaments services.TournamentService
	logger      *slog.Logger
}

func NewTournamentHandler(tournaments services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{tournaments: tournaments, logger: logger}
}

// Get godoc
// @Summary Get a tournament with its teams and matches
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.Tournament
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}

	tournament, err := h.tournaments.GetTournament(r.Context(), tournamentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tournament)
}
