package handlers

import (
	"log/slog"
	"net/http"

	"github.com/openbracket/tournament-engine/middleware"
	"github.com/openbracket/tournament-engine/services"
	"github.com/openbracket/tournament-engine/waitlist"
)

type WaitlistHandler struct {
	waitlist services.WaitlistService
	logger   *slog.Logger
}

func NewWaitlistHandler(waitlist services.WaitlistService, logger *slog.Logger) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist, logger: logger}
}

// List godoc
// @Summary List the waitlist of an event in position order
// @Tags waitlist
// @Produce json
// @Param eventID path int true "Event ID"
// @Success 200 {array} models.Registration
// @Router /events/{eventID}/waitlist [get]
func (h *WaitlistHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}

	entries, err := h.waitlist.ListWaitlist(r.Context(), eventID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type promoteRequest struct {
	Spots int `json:"spots"`
}

// Promote godoc
// @Summary Fill freed spots from the waitlist
// @Tags waitlist
// @Accept json
// @Produce json
// @Param eventID path int true "Event ID"
// @Param input body promoteRequest true "Number of freed spots"
// @Success 200 {object} services.PromotionResult
// @Security BearerAuth
// @Router /events/{eventID}/waitlist/promote [post]
func (h *WaitlistHandler) Promote(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}
	var req promoteRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	userID, _ := middleware.UserID(r.Context())

	result, err := h.waitlist.PromoteFromWaitlist(r.Context(), userID, eventID, req.Spots)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type reorderRequest struct {
	Items []waitlist.ReorderItem `json:"items"`
}

// Reorder godoc
// @Summary Resequence the waitlist
// @Tags waitlist
// @Accept json
// @Param eventID path int true "Event ID"
// @Param input body reorderRequest true "Complete new ordering"
// @Success 204
// @Security BearerAuth
// @Router /events/{eventID}/waitlist/order [put]
func (h *WaitlistHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlInt(r, "eventID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid event id"})
		return
	}
	var req reorderRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	userID, _ := middleware.UserID(r.Context())

	if err := h.waitlist.ReorderWaitlist(r.Context(), userID, eventID, req.Items); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
