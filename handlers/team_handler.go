package handlers

import (
	"log/slog"
	"net/http"

	"github.com/openbracket/tournament-engine/middleware"
	"github.com/openbracket/tournament-engine/services"
)

const maxLogoSize = 5 << 20

type TeamHandler struct {
	teams  services.TeamService
	logger *slog.Logger
}

func NewTeamHandler(teams services.TeamService, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, logger: logger}
}

// List godoc
// @Summary List tournament teams in seed order
// @Tags teams
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} models.Team
// @Router /tournaments/{tournamentID}/teams [get]
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}

	teams, err := h.teams.ListTeams(r.Context(), tournamentID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// Get godoc
// @Summary Get a single team
// @Tags teams
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param teamID path int true "Team ID"
// @Success 200 {object} models.Team
// @Router /tournaments/{tournamentID}/teams/{teamID} [get]
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlInt(r, "teamID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid team id"})
		return
	}

	team, err := h.teams.GetTeam(r.Context(), teamID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// UploadLogo godoc
// @Summary Upload a team logo
// @Tags teams
// @Accept mpfd
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param teamID path int true "Team ID"
// @Param logo formData file true "Logo image"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/teams/{teamID}/logo [post]
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	teamID, err := urlInt(r, "teamID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid team id"})
		return
	}

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "logo file is required"})
		return
	}
	defer file.Close()

	userID, _ := middleware.UserID(r.Context())
	url, err := h.teams.UploadLogo(r.Context(), userID, tournamentID, teamID, file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"logo_url": url})
}
