package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openbracket/tournament-engine/models"
	"github.com/openbracket/tournament-engine/repositories"
)

// Scheduler runs the periodic background work: advancing tournament statuses
// past their dates and reclaiming expired payment deadlines. Ticks that catch
// a still-running sweep are skipped rather than queued.
type Scheduler struct {
	tournamentRepo repositories.TournamentRepository
	waitlist       WaitlistService
	interval       time.Duration
	logger         *slog.Logger

	mu sync.Mutex
}

func NewScheduler(
	tournamentRepo repositories.TournamentRepository,
	waitlist WaitlistService,
	interval time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		tournamentRepo: tournamentRepo,
		waitlist:       waitlist,
		interval:       interval,
		logger:         logger,
	}
}

// Run blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.mu.TryLock() {
		s.logger.Debug("previous scheduler tick still running, skipping")
		return
	}
	defer s.mu.Unlock()

	s.advanceTournaments(ctx)
	if _, err := s.waitlist.ExpirePaymentDeadlines(ctx); err != nil {
		s.logger.Error("payment deadline sweep failed", slog.Any("error", err))
	}
}

func (s *Scheduler) advanceTournaments(ctx context.Context) {
	due, err := s.tournamentRepo.ListDueForStatusUpdate(ctx)
	if err != nil {
		s.logger.Error("failed to list tournaments due for status update", slog.Any("error", err))
		return
	}

	for _, t := range due {
		var next models.TournamentStatus
		switch t.Status {
		case models.StatusSoon:
			next = models.StatusRegistration
		case models.StatusRegistration:
			next = models.StatusActive
		default:
			continue
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, next); err != nil {
			s.logger.Error("failed to advance tournament status",
				slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		s.logger.Info("tournament status advanced",
			slog.Int("tournament_id", t.ID),
			slog.String("from", string(t.Status)),
			slog.String("to", string(next)))
	}
}
