package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
)

func TestWithConflictRetryPassesThroughPlainErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	err := withConflictRetry(context.Background(), func() error {
		calls++
		return boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("expected the original error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("non-conflict errors must not retry: %d calls", calls)
	}
}

func TestWithConflictRetryExhausts(t *testing.T) {
	calls := 0

	err := withConflictRetry(context.Background(), func() error {
		calls++
		return &pq.Error{Code: "40001"}
	})

	if !errors.Is(err, ErrConflictRetryExhausted) {
		t.Errorf("expected ErrConflictRetryExhausted, got %v", err)
	}
	if calls != conflictRetryAttempts {
		t.Errorf("expected %d attempts, got %d", conflictRetryAttempts, calls)
	}
}

func TestWithConflictRetryRecovers(t *testing.T) {
	calls := 0

	err := withConflictRetry(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &pq.Error{Code: "40P01"}
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestPickSideBalances(t *testing.T) {
	counts := map[string]int{"A": 3, "B": 1}

	side := pickSide(counts)
	if side == nil || *side != "B" {
		t.Fatalf("expected side B, got %v", side)
	}
	// The chosen side is counted so back-to-back promotions keep balancing.
	if counts["B"] != 2 {
		t.Errorf("count for B should advance, got %d", counts["B"])
	}
}

func TestPickSideSidelessEvent(t *testing.T) {
	counts := map[string]int{"": 7}
	if side := pickSide(counts); side != nil {
		t.Errorf("sideless events must not gain a side, got %q", *side)
	}
}

func TestPickSideEmptyEventBootstrapsTwoSided(t *testing.T) {
	counts := map[string]int{}

	side := pickSide(counts)
	if side == nil || *side != "A" {
		t.Fatalf("first promotion into an empty event should open side A, got %v", side)
	}
	if next := pickSide(counts); next == nil || *next != "B" {
		t.Errorf("second promotion should balance to side B, got %v", next)
	}
}
