package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/waitlist"
)

// paymentWindow is how long a notified unverified user has to complete payment
// before the spot can be reclaimed.
const paymentWindow = 48 * time.Hour

type PromotionResult struct {
	Promoted []models.Registration `json:"promoted"`
	Notified []models.Registration `json:"notified"`
}

type WaitlistService interface {
	PromoteFromWaitlist(ctx context.Context, requesterID, eventID, spots int) (*PromotionResult, error)
	ReorderWaitlist(ctx context.Context, requesterID, eventID int, items []waitlist.ReorderItem) error
	ListWaitlist(ctx context.Context, eventID int) ([]*models.Registration, error)
	ExpirePaymentDeadlines(ctx context.Context) (int, error)
}

type waitlistService struct {
	db               *sql.DB
	authz            Authorizer
	registrationRepo repositories.RegistrationRepository
	notifier         Notifier
	hub              *brackets.Hub
	logger           *slog.Logger

	// Guards the expiry sweep: a slow run must not overlap the next tick.
	sweepMu sync.Mutex
}

func NewWaitlistService(
	db *sql.DB,
	authz Authorizer,
	registrationRepo repositories.RegistrationRepository,
	notifier Notifier,
	hub *brackets.Hub,
	logger *slog.Logger,
) WaitlistService {
	return &waitlistService{
		db:               db,
		authz:            authz,
		registrationRepo: registrationRepo,
		notifier:         notifier,
		hub:              hub,
		logger:           logger,
	}
}

// PromoteFromWaitlist fills freed spots from the event waitlist: verified
// payers first in registration order, pay-window notifications for the rest of
// the freed spots, then a dense renumbering of whoever stays waitlisted.
// Notifications are collected during the transaction and sent only after it
// commits.
func (s *waitlistService) PromoteFromWaitlist(ctx context.Context, requesterID, eventID, spots int) (*PromotionResult, error) {
	allowed, err := s.authz.CanManageTournament(ctx, requesterID, eventID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrForbiddenOperation
	}
	if spots <= 0 {
		return nil, ErrSpotCountInvalid
	}

	var (
		result   *PromotionResult
		pending  []Notification
	)
	err = withConflictRetry(ctx, func() error {
		return runInTx(ctx, s.db, func(tx *sql.Tx) error {
			var applyErr error
			result, pending, applyErr = s.promoteInTx(ctx, tx, eventID, spots)
			return applyErr
		})
	})
	if err != nil {
		return nil, err
	}

	s.flushNotifications(ctx, pending)
	if len(result.Promoted) > 0 {
		s.hub.BroadcastToRoom(TournamentRoom(eventID), brackets.Event{
			Type:    brackets.EventWaitlistPromoted,
			Payload: result,
		})
	}
	return result, nil
}

func (s *waitlistService) promoteInTx(ctx context.Context, tx *sql.Tx, eventID, spots int) (*PromotionResult, []Notification, error) {
	entryRows, err := s.registrationRepo.ListWaitlistedByEvent(ctx, tx, eventID)
	if err != nil {
		return nil, nil, err
	}
	entries := make([]models.Registration, len(entryRows))
	for i, e := range entryRows {
		entries[i] = *e
	}

	plan := waitlist.BuildPromotionPlan(entries, spots)
	result := &PromotionResult{
		Promoted: make([]models.Registration, 0, len(plan.Promote)),
		Notified: make([]models.Registration, 0, len(plan.Notify)),
	}
	if len(plan.Promote) == 0 && len(plan.Notify) == 0 {
		return result, nil, nil
	}

	counts, err := s.registrationRepo.CountActiveBySide(ctx, tx, eventID)
	if err != nil {
		return nil, nil, err
	}

	var pending []Notification
	promoted := make(map[int]bool, len(plan.Promote))
	for _, entry := range plan.Promote {
		side := pickSide(counts)
		if err = s.registrationRepo.Promote(ctx, tx, entry.ID, side); err != nil {
			return nil, nil, fmt.Errorf("failed to promote registration %d: %w", entry.ID, err)
		}
		promoted[entry.ID] = true
		entry.Status = models.RegistrationActive
		entry.WaitlistPosition = nil
		entry.Side = side
		result.Promoted = append(result.Promoted, entry)
		pending = append(pending, NewNotification(entry.UserID, brackets.EventWaitlistPromoted,
			"You are in", "A spot opened up and your registration is now active.",
			map[string]string{"event_id": fmt.Sprint(eventID)}))
	}

	deadline := time.Now().Add(paymentWindow)
	for _, entry := range plan.Notify {
		if err = s.registrationRepo.SetPaymentDeadline(ctx, tx, entry.ID, deadline); err != nil {
			return nil, nil, fmt.Errorf("failed to set payment deadline for registration %d: %w", entry.ID, err)
		}
		entry.PaymentDeadline = &deadline
		result.Notified = append(result.Notified, entry)
		pending = append(pending, NewNotification(entry.UserID, brackets.EventSpotAvailable,
			"A spot is available", "Complete your payment to claim the open spot.",
			map[string]string{
				"event_id":         fmt.Sprint(eventID),
				"payment_deadline": deadline.Format(time.RFC3339),
			}))
	}

	remaining := make([]models.Registration, 0, len(entries))
	for _, entry := range entries {
		if !promoted[entry.ID] {
			remaining = append(remaining, entry)
		}
	}
	positions := waitlist.Renumber(remaining)
	if err = s.registrationRepo.UpdatePositions(ctx, tx, eventID, positions); err != nil {
		return nil, nil, err
	}

	return result, pending, nil
}

// ReorderWaitlist applies an organizer-supplied resequencing after checking it
// covers exactly the current waitlist with positions 1..N.
func (s *waitlistService) ReorderWaitlist(ctx context.Context, requesterID, eventID int, items []waitlist.ReorderItem) error {
	allowed, err := s.authz.CanManageTournament(ctx, requesterID, eventID)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbiddenOperation
	}

	return withConflictRetry(ctx, func() error {
		return runInTx(ctx, s.db, func(tx *sql.Tx) error {
			entryRows, listErr := s.registrationRepo.ListWaitlistedByEvent(ctx, tx, eventID)
			if listErr != nil {
				return listErr
			}
			entries := make([]models.Registration, len(entryRows))
			for i, e := range entryRows {
				entries[i] = *e
			}

			if vErr := waitlist.ValidateReorder(entries, items); vErr != nil {
				return fmt.Errorf("%w: %v", ErrValidationFailed, vErr)
			}

			positions := make(map[int]int, len(items))
			for _, item := range items {
				positions[item.RegistrationID] = item.Position
			}
			return s.registrationRepo.UpdatePositions(ctx, tx, eventID, positions)
		})
	})
}

func (s *waitlistService) ListWaitlist(ctx context.Context, eventID int) ([]*models.Registration, error) {
	return s.registrationRepo.ListWaitlistedByEvent(ctx, nil, eventID)
}

// ExpirePaymentDeadlines cancels active registrations whose payment window has
// lapsed and backfills the freed spots from the waitlist. It returns the
// number of registrations reclaimed. Runs are serialized so overlapping ticks
// cannot double-process a deadline.
func (s *waitlistService) ExpirePaymentDeadlines(ctx context.Context) (int, error) {
	if !s.sweepMu.TryLock() {
		s.logger.Debug("payment deadline sweep already running, skipping tick")
		return 0, nil
	}
	defer s.sweepMu.Unlock()

	expired, err := s.registrationRepo.ListExpiredPaymentDeadlines(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	byEvent := make(map[int][]*models.Registration)
	for _, reg := range expired {
		byEvent[reg.EventID] = append(byEvent[reg.EventID], reg)
	}

	reclaimed := 0
	for eventID, regs := range byEvent {
		var pending []Notification
		err = withConflictRetry(ctx, func() error {
			return runInTx(ctx, s.db, func(tx *sql.Tx) error {
				for _, reg := range regs {
					if cancelErr := s.registrationRepo.Cancel(ctx, tx, reg.ID); cancelErr != nil {
						if errors.Is(cancelErr, repositories.ErrRegistrationNotFound) {
							continue
						}
						return cancelErr
					}
				}
				_, txPending, promoteErr := s.promoteInTx(ctx, tx, eventID, len(regs))
				pending = txPending
				return promoteErr
			})
		})
		if err != nil {
			s.logger.Error("payment deadline sweep failed for event",
				slog.Int("event_id", eventID), slog.Any("error", err))
			continue
		}
		reclaimed += len(regs)
		s.flushNotifications(ctx, pending)
	}

	if reclaimed > 0 {
		s.logger.Info("payment deadline sweep reclaimed spots", slog.Int("count", reclaimed))
	}
	return reclaimed, nil
}

func (s *waitlistService) flushNotifications(ctx context.Context, pending []Notification) {
	if s.notifier == nil {
		return
	}
	for _, n := range pending {
		s.notifier.Send(ctx, n)
	}
}

// pickSide balances two-sided events by assigning the less populated side.
// Events that do not use sides keep registrations side-less, which is only
// detectable from existing side-less active rows: with no actives at all the
// event bootstraps as two-sided and the first promotion opens side A.
func pickSide(counts map[string]int) *string {
	if counts["A"] == 0 && counts["B"] == 0 && counts[""] > 0 {
		return nil
	}
	side := "A"
	if counts["B"] < counts["A"] {
		side = "B"
	}
	counts[side]++
	return &side
}
