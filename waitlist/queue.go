// Package waitlist computes promotion order and position bookkeeping for
// event waitlists. Users with verified payment are promoted first, by
// registration time; unverified users only get a pay-window notification.
package waitlist

import (
	"errors"
	"fmt"
	"sort"

	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrReorderMissingEntry  = errors.New("reorder must include every currently waitlisted registration")
	ErrReorderUnknownEntry  = errors.New("reorder references a registration that is not waitlisted")
	ErrReorderBadPositions  = errors.New("reorder positions must be exactly 1..N")
	ErrReorderDuplicateItem = errors.New("reorder lists a registration more than once")
)

// Plan is the outcome of a promotion sweep: Promote become active
// registrations; Notify get a spot-available notification and a window to
// pay before external expiry logic reclaims the spot.
type Plan struct {
	Promote []models.Registration
	Notify  []models.Registration
}

// BuildPromotionPlan splits the waitlist into verified and unverified payment
// and fills up to spots. Verified entries promote in registration-time order
// (id as tiebreak); if spots remain, the next unverified entries in
// waitlist-position order are flagged for notification, not promoted.
func BuildPromotionPlan(entries []models.Registration, spots int) Plan {
	var plan Plan
	if spots <= 0 {
		return plan
	}

	var verified, unverified []models.Registration
	for _, e := range entries {
		if e.Status != models.RegistrationWaitlisted {
			continue
		}
		if e.PaymentStatus == models.PaymentVerified {
			verified = append(verified, e)
		} else {
			unverified = append(unverified, e)
		}
	}

	sort.SliceStable(verified, func(i, j int) bool {
		if !verified[i].CreatedAt.Equal(verified[j].CreatedAt) {
			return verified[i].CreatedAt.Before(verified[j].CreatedAt)
		}
		return verified[i].ID < verified[j].ID
	})
	sort.SliceStable(unverified, func(i, j int) bool {
		return position(unverified[i]) < position(unverified[j])
	})

	for _, e := range verified {
		if len(plan.Promote) == spots {
			break
		}
		plan.Promote = append(plan.Promote, e)
	}

	remaining := spots - len(plan.Promote)
	for _, e := range unverified {
		if remaining == 0 {
			break
		}
		plan.Notify = append(plan.Notify, e)
		remaining--
	}
	return plan
}

// Renumber returns the dense 1..N position assignment for the entries that
// stay waitlisted, preserving their current relative order.
func Renumber(entries []models.Registration) map[int]int {
	ordered := make([]models.Registration, 0, len(entries))
	for _, e := range entries {
		if e.Status == models.RegistrationWaitlisted {
			ordered = append(ordered, e)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return position(ordered[i]) < position(ordered[j])
	})

	positions := make(map[int]int, len(ordered))
	for i, e := range ordered {
		positions[e.ID] = i + 1
	}
	return positions
}

type ReorderItem struct {
	RegistrationID int `json:"registration_id"`
	Position       int `json:"position"`
}

// ValidateReorder checks an organizer-supplied resequencing: it must cover
// exactly the waitlisted set and use positions exactly 1..N. Violations are
// validation errors, never silently corrected.
func ValidateReorder(current []models.Registration, items []ReorderItem) error {
	waitlisted := make(map[int]bool)
	for _, e := range current {
		if e.Status == models.RegistrationWaitlisted {
			waitlisted[e.ID] = true
		}
	}

	seenIDs := make(map[int]bool, len(items))
	seenPositions := make(map[int]bool, len(items))
	for _, item := range items {
		if seenIDs[item.RegistrationID] {
			return fmt.Errorf("%w: registration %d", ErrReorderDuplicateItem, item.RegistrationID)
		}
		seenIDs[item.RegistrationID] = true
		if !waitlisted[item.RegistrationID] {
			return fmt.Errorf("%w: registration %d", ErrReorderUnknownEntry, item.RegistrationID)
		}
		if item.Position < 1 || item.Position > len(waitlisted) || seenPositions[item.Position] {
			return fmt.Errorf("%w: position %d", ErrReorderBadPositions, item.Position)
		}
		seenPositions[item.Position] = true
	}

	if len(items) != len(waitlisted) {
		return ErrReorderMissingEntry
	}
	return nil
}

func position(e models.Registration) int {
	if e.WaitlistPosition == nil {
		return 1 << 30
	}
	return *e.WaitlistPosition
}
