package models

import "time"

type RegistrationStatus string

const (
	RegistrationActive     RegistrationStatus = "active"
	RegistrationWaitlisted RegistrationStatus = "waitlisted"
	RegistrationCanceled   RegistrationStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
)

// Registration is one user's entry into an event. Waitlisted registrations
// carry a dense 1-based WaitlistPosition unique per event; any insertion or
// removal renumbers the remainder so the set of positions is always {1..count}.
type Registration struct {
	ID               int                `json:"id" db:"id"`
	EventID          int                `json:"event_id" db:"event_id"`
	UserID           int                `json:"user_id" db:"user_id"`
	Status           RegistrationStatus `json:"status" db:"status"`
	WaitlistPosition *int               `json:"waitlist_position,omitempty" db:"waitlist_position"`
	PaymentStatus    PaymentStatus      `json:"payment_status" db:"payment_status"`
	PaymentDeadline  *time.Time         `json:"payment_deadline,omitempty" db:"payment_deadline"`
	Side             *string            `json:"side,omitempty" db:"side"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
}
