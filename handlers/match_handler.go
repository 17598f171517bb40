package handlers

import (
	"log/slog"
	"net/http"

	"github.com/openbracket/tournament-engine/middleware"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/services"
)

type MatchHandler struct {
	matches services.MatchService
	logger  *slog.Logger
}

func NewMatchHandler(matches services.MatchService, logger *slog.Logger) *MatchHandler {
	return &MatchHandler{matches: matches, logger: logger}
}

// List godoc
// @Summary List tournament matches with optional bracket/status filters
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param bracket query string false "Bracket type filter"
// @Param status query string false "Status filter"
// @Success 200 {array} models.Match
// @Router /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}

	var bracketType *models.BracketType
	if v := r.URL.Query().Get("bracket"); v != "" {
		bt := models.BracketType(v)
		bracketType = &bt
	}
	var status *models.MatchStatus
	if v := r.URL.Query().Get("status"); v != "" {
		st := models.MatchStatus(v)
		status = &st
	}

	matches, err := h.matches.ListMatches(r.Context(), tournamentID, bracketType, status)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// EnterScore godoc
// @Summary Record or correct a match score
// @Tags matches
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path int true "Match ID"
// @Param input body services.MatchResultInput true "Score"
// @Success 200 {object} models.Match
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID}/score [post]
func (h *MatchHandler) EnterScore(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	matchID, err := urlInt(r, "matchID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid match id"})
		return
	}
	var input services.MatchResultInput
	if err := readJSON(r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	userID, _ := middleware.UserID(r.Context())

	match, err := h.matches.EnterScore(r.Context(), userID, tournamentID, matchID, input)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

type forfeitRequest struct {
	ForfeitingTeamID int    `json:"forfeiting_team_id"`
	Reason           string `json:"reason"`
}

// Forfeit godoc
// @Summary Record a forfeit
// @Tags matches
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param matchID path int true "Match ID"
// @Param input body forfeitRequest true "Forfeit details"
// @Success 200 {object} models.Match
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/matches/{matchID}/forfeit [post]
func (h *MatchHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	matchID, err := urlInt(r, "matchID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid match id"})
		return
	}
	var req forfeitRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	userID, _ := middleware.UserID(r.Context())

	match, err := h.matches.Forfeit(r.Context(), userID, tournamentID, matchID, req.ForfeitingTeamID, req.Reason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}
