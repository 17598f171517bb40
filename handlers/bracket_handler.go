package handlers

import (
	"log/slog"
	"net/http"

	"github.com/openbracket/tournament-engine/middleware"
	"github.com/openbracket/tournament-engine/services"
)

type BracketHandler struct {
	brackets services.BracketService
	logger   *slog.Logger
}

func NewBracketHandler(brackets services.BracketService, logger *slog.Logger) *BracketHandler {
	return &BracketHandler{brackets: brackets, logger: logger}
}

// Generate godoc
// @Summary Generate the bracket for a tournament
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {array} models.Match
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	userID, _ := middleware.UserID(r.Context())

	matches, err := h.brackets.GenerateBracket(r.Context(), userID, tournamentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, matches)
}

// Clear godoc
// @Summary Delete the bracket and reset team state
// @Tags brackets
// @Param tournamentID path int true "Tournament ID"
// @Success 204
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/bracket [delete]
func (h *BracketHandler) Clear(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	userID, _ := middleware.UserID(r.Context())

	if err := h.brackets.ClearBracket(r.Context(), userID, tournamentID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Get godoc
// @Summary Get every match of a tournament bracket
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} models.Match
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}

	matches, err := h.brackets.GetBracket(r.Context(), tournamentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
