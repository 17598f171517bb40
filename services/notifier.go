package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/openbracket/tournament-engine/brackets"
)

// Notification is a fire-and-forget message to one user. Send failures are
// logged and swallowed; they never roll back or block the mutation that
// produced them.
type Notification struct {
	ID     string            `json:"id"`
	UserID int               `json:"user_id"`
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data,omitempty"`
}

func NewNotification(userID int, eventType, title, body string, data map[string]string) Notification {
	return Notification{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   eventType,
		Title:  title,
		Body:   body,
		Data:   data,
	}
}

type Notifier interface {
	Send(ctx context.Context, n Notification)
}

// HubNotifier delivers notifications to the user's websocket room.
type HubNotifier struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewHubNotifier(hub *brackets.Hub, logger *slog.Logger) *HubNotifier {
	return &HubNotifier{hub: hub, logger: logger}
}

func (n *HubNotifier) Send(ctx context.Context, notification Notification) {
	defer func() {
		if p := recover(); p != nil {
			n.logger.Error("notification send panicked",
				slog.Int("user_id", notification.UserID), slog.Any("panic", p))
		}
	}()
	n.hub.BroadcastToRoom(UserRoom(notification.UserID), brackets.Event{
		Type:    notification.Type,
		Payload: notification,
	})
}

// Room names shared between services and the websocket handler.
func TournamentRoom(tournamentID int) string {
	return fmt.Sprintf("tournament:%d", tournamentID)
}

func UserRoom(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}
