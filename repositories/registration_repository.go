package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/openbracket/tournament-engine/models"
)

var (
	ErrRegistrationNotFound         = errors.New("registration not found")
	ErrRegistrationPositionConflict = errors.New("waitlist position is already taken for this event")
)

type RegistrationRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error)
	ListWaitlistedByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Registration, error)
	CountActiveBySide(ctx context.Context, exec SQLExecutor, eventID int) (map[string]int, error)
	Promote(ctx context.Context, exec SQLExecutor, registrationID int, side *string) error
	Cancel(ctx context.Context, exec SQLExecutor, registrationID int) error
	UpdatePositions(ctx context.Context, exec SQLExecutor, eventID int, positions map[int]int) error
	SetPaymentDeadline(ctx context.Context, exec SQLExecutor, registrationID int, deadline time.Time) error
	ListExpiredPaymentDeadlines(ctx context.Context, cutoff time.Time) ([]*models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `id, event_id, user_id, status, waitlist_position,
	payment_status, payment_deadline, side, created_at`

func scanRegistration(row interface{ Scan(...interface{}) error }) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.WaitlistPosition,
		&reg.PaymentStatus, &reg.PaymentDeadline, &reg.Side, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return scanRegistration(executor.QueryRowContext(ctx, query, id))
}

func (r *postgresRegistrationRepository) ListWaitlistedByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Registration, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE event_id = $1 AND status = $2
		ORDER BY waitlist_position ASC`

	rows, err := executor.QueryContext(ctx, query, eventID, models.RegistrationWaitlisted)
	if err != nil {
		return nil, fmt.Errorf("failed to query waitlist for event %d: %w", eventID, err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during registration rows iteration: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) CountActiveBySide(ctx context.Context, exec SQLExecutor, eventID int) (map[string]int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COALESCE(side, ''), COUNT(*)
		FROM registrations
		WHERE event_id = $1 AND status = $2
		GROUP BY side`

	rows, err := executor.QueryContext(ctx, query, eventID, models.RegistrationActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active registrations for event %d: %w", eventID, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var side string
		var count int
		if scanErr := rows.Scan(&side, &count); scanErr != nil {
			return nil, scanErr
		}
		counts[side] = count
	}
	return counts, rows.Err()
}

// Promote flips a waitlisted registration to active. The payment deadline is
// cleared: only verified payers are promoted, so nothing is owed.
func (r *postgresRegistrationRepository) Promote(ctx context.Context, exec SQLExecutor, registrationID int, side *string) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations
		SET status = $1, waitlist_position = NULL, payment_deadline = NULL, side = $2
		WHERE id = $3 AND status = $4`
	result, err := executor.ExecContext(ctx, query,
		models.RegistrationActive, side, registrationID, models.RegistrationWaitlisted)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) Cancel(ctx context.Context, exec SQLExecutor, registrationID int) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE registrations
		SET status = $1, waitlist_position = NULL
		WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, models.RegistrationCanceled, registrationID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

// UpdatePositions rewrites waitlist positions for an event in two passes:
// positions are first shifted out of the way so the unique index never sees
// an intermediate duplicate, then set to their final values.
func (r *postgresRegistrationRepository) UpdatePositions(ctx context.Context, exec SQLExecutor, eventID int, positions map[int]int) error {
	executor := r.getExecutor(exec)

	if len(positions) == 0 {
		return nil
	}

	_, err := executor.ExecContext(ctx,
		`UPDATE registrations SET waitlist_position = -waitlist_position
		 WHERE event_id = $1 AND status = $2 AND waitlist_position IS NOT NULL`,
		eventID, models.RegistrationWaitlisted)
	if err != nil {
		return fmt.Errorf("failed to stage waitlist renumbering for event %d: %w", eventID, err)
	}

	for registrationID, position := range positions {
		result, execErr := executor.ExecContext(ctx,
			`UPDATE registrations SET waitlist_position = $1 WHERE id = $2 AND event_id = $3`,
			position, registrationID, eventID)
		if execErr != nil {
			var pqErr *pq.Error
			if errors.As(execErr, &pqErr) && pqErr.Constraint == "registrations_event_id_waitlist_position_key" {
				return ErrRegistrationPositionConflict
			}
			return fmt.Errorf("failed to set waitlist position for registration %d: %w", registrationID, execErr)
		}
		if err := checkAffectedRows(result, ErrRegistrationNotFound); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRegistrationRepository) SetPaymentDeadline(ctx context.Context, exec SQLExecutor, registrationID int, deadline time.Time) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx,
		`UPDATE registrations SET payment_deadline = $1 WHERE id = $2`,
		deadline, registrationID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) ListExpiredPaymentDeadlines(ctx context.Context, cutoff time.Time) ([]*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE status = $1 AND payment_status = $2 AND payment_deadline IS NOT NULL AND payment_deadline <= $3
		ORDER BY event_id ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, models.RegistrationActive, models.PaymentPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired payment deadlines: %w", err)
	}
	defer rows.Close()

	regs := make([]*models.Registration, 0)
	for rows.Next() {
		reg, scanErr := scanRegistration(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", scanErr)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
