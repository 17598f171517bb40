package waitlist

import (
	"errors"
	"testing"
	"time"

	"github.com/openbracket/tournament-engine/models"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func entry(id, position int, payment models.PaymentStatus, createdOffset time.Duration) models.Registration {
	return models.Registration{
		ID:               id,
		Status:           models.RegistrationWaitlisted,
		WaitlistPosition: &position,
		PaymentStatus:    payment,
		CreatedAt:        base.Add(createdOffset),
	}
}

func TestBuildPromotionPlanVerifiedFirst(t *testing.T) {
	entries := []models.Registration{
		entry(1, 1, models.PaymentPending, 0),
		entry(2, 2, models.PaymentVerified, 2*time.Hour),
		entry(3, 3, models.PaymentVerified, 1*time.Hour),
		entry(4, 4, models.PaymentPending, 3*time.Hour),
	}

	plan := BuildPromotionPlan(entries, 2)

	// Verified payers go first, ordered by registration time, even though an
	// unverified entry holds position 1.
	if len(plan.Promote) != 2 || plan.Promote[0].ID != 3 || plan.Promote[1].ID != 2 {
		t.Errorf("promote order: got %+v", ids(plan.Promote))
	}
	if len(plan.Notify) != 0 {
		t.Errorf("no spots left, nothing to notify: got %+v", ids(plan.Notify))
	}
}

func TestBuildPromotionPlanNotifiesUnverified(t *testing.T) {
	entries := []models.Registration{
		entry(1, 1, models.PaymentPending, 0),
		entry(2, 2, models.PaymentVerified, time.Hour),
		entry(3, 3, models.PaymentPending, 2*time.Hour),
	}

	plan := BuildPromotionPlan(entries, 3)

	if len(plan.Promote) != 1 || plan.Promote[0].ID != 2 {
		t.Errorf("promote: got %+v", ids(plan.Promote))
	}
	// Leftover spots notify unverified entries in waitlist-position order.
	if len(plan.Notify) != 2 || plan.Notify[0].ID != 1 || plan.Notify[1].ID != 3 {
		t.Errorf("notify: got %+v", ids(plan.Notify))
	}
}

func TestBuildPromotionPlanCreatedAtTiebreak(t *testing.T) {
	entries := []models.Registration{
		entry(9, 1, models.PaymentVerified, 0),
		entry(4, 2, models.PaymentVerified, 0),
	}

	plan := BuildPromotionPlan(entries, 1)

	if len(plan.Promote) != 1 || plan.Promote[0].ID != 4 {
		t.Errorf("equal timestamps break on id: got %+v", ids(plan.Promote))
	}
}

func TestBuildPromotionPlanNoSpots(t *testing.T) {
	entries := []models.Registration{entry(1, 1, models.PaymentVerified, 0)}
	plan := BuildPromotionPlan(entries, 0)
	if len(plan.Promote) != 0 || len(plan.Notify) != 0 {
		t.Errorf("zero spots must be a no-op: %+v", plan)
	}
}

func TestRenumberDense(t *testing.T) {
	entries := []models.Registration{
		entry(1, 2, models.PaymentPending, 0),
		entry(2, 5, models.PaymentPending, 0),
		entry(3, 9, models.PaymentPending, 0),
	}
	canceled := entry(4, 3, models.PaymentPending, 0)
	canceled.Status = models.RegistrationCanceled
	entries = append(entries, canceled)

	positions := Renumber(entries)

	want := map[int]int{1: 1, 2: 2, 3: 3}
	if len(positions) != len(want) {
		t.Fatalf("got %v, want %v", positions, want)
	}
	for id, pos := range want {
		if positions[id] != pos {
			t.Errorf("registration %d: position %d, want %d", id, positions[id], pos)
		}
	}
}

func TestValidateReorder(t *testing.T) {
	current := []models.Registration{
		entry(1, 1, models.PaymentPending, 0),
		entry(2, 2, models.PaymentPending, 0),
		entry(3, 3, models.PaymentPending, 0),
	}

	t.Run("valid", func(t *testing.T) {
		items := []ReorderItem{{3, 1}, {1, 2}, {2, 3}}
		if err := ValidateReorder(current, items); err != nil {
			t.Errorf("valid reorder rejected: %v", err)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		items := []ReorderItem{{1, 1}, {2, 2}}
		if err := ValidateReorder(current, items); !errors.Is(err, ErrReorderMissingEntry) {
			t.Errorf("expected ErrReorderMissingEntry, got %v", err)
		}
	})

	t.Run("unknown entry", func(t *testing.T) {
		items := []ReorderItem{{1, 1}, {2, 2}, {99, 3}}
		if err := ValidateReorder(current, items); !errors.Is(err, ErrReorderUnknownEntry) {
			t.Errorf("expected ErrReorderUnknownEntry, got %v", err)
		}
	})

	t.Run("duplicate item", func(t *testing.T) {
		items := []ReorderItem{{1, 1}, {1, 2}, {2, 3}}
		if err := ValidateReorder(current, items); !errors.Is(err, ErrReorderDuplicateItem) {
			t.Errorf("expected ErrReorderDuplicateItem, got %v", err)
		}
	})

	t.Run("position out of range", func(t *testing.T) {
		items := []ReorderItem{{1, 1}, {2, 2}, {3, 7}}
		if err := ValidateReorder(current, items); !errors.Is(err, ErrReorderBadPositions) {
			t.Errorf("expected ErrReorderBadPositions, got %v", err)
		}
	})

	t.Run("duplicate position", func(t *testing.T) {
		items := []ReorderItem{{1, 1}, {2, 1}, {3, 2}}
		if err := ValidateReorder(current, items); !errors.Is(err, ErrReorderBadPositions) {
			t.Errorf("expected ErrReorderBadPositions, got %v", err)
		}
	})
}

func ids(entries []models.Registration) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
