package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/middleware"
	"github.com/openbracket/tournament-engine/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWSHandler(hub *brackets.Hub, logger *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// TournamentRoom subscribes the connection to live bracket, match and
// standings updates of one tournament.
func (h *WSHandler) TournamentRoom(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := urlInt(r, "tournamentID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid tournament id"})
		return
	}
	h.serve(w, r, services.TournamentRoom(tournamentID))
}

// UserRoom subscribes the authenticated user to their personal notifications,
// waitlist promotions and spot-available alerts included.
func (h *WSHandler) UserRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}
	h.serve(w, r, services.UserRoom(userID))
}

func (h *WSHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
