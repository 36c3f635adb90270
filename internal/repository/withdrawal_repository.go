package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/cirvee/earnings-backend/internal/database"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
	ErrPendingExists      = errors.New("a pending withdrawal already exists")
)

type WithdrawalRepository struct {
	db *database.DB
}

func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{db: db}
}

// CreatePending inserts a withdrawal in status pending. The insert is
// conditional on no other pending row for the user, and the partial unique
// index on (user_id) WHERE status='pending' backstops concurrent requests.
func (r *WithdrawalRepository) CreatePending(ctx context.Context, w *models.Withdrawal) error {
	query := `
		INSERT INTO withdrawals (id, user_id, operator, requested_amount, status)
		SELECT $1, $2, $3, $4, 'pending'
		WHERE NOT EXISTS (
			SELECT 1 FROM withdrawals WHERE user_id = $2 AND status = 'pending'
		)
		RETURNING requested_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		w.ID, w.UserID, w.Operator, w.RequestedAmount,
	).Scan(&w.RequestedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return ErrPendingExists
		}
		return err
	}

	w.Status = models.WithdrawalPending
	return nil
}

func (r *WithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	query := `
		SELECT id, user_id, operator, requested_amount, status, requested_at,
		       processed_at, processed_by, admin_notes, rejection_reason
		FROM withdrawals WHERE id = $1
	`

	w := &models.Withdrawal{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.UserID, &w.Operator, &w.RequestedAmount, &w.Status,
		&w.RequestedAt, &w.ProcessedAt, &w.ProcessedBy, &w.AdminNotes, &w.RejectionReason,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}

	return w, nil
}

func (r *WithdrawalRepository) HasPending(ctx context.Context, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM withdrawals WHERE user_id = $1 AND status = 'pending')`
	var exists bool
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&exists)
	return exists, err
}

// SumHeld sums requested amounts in statuses that deduct from the available
// balance. Rejected withdrawals never count, which is what restores balance
// after a rejection.
func (r *WithdrawalRepository) SumHeld(ctx context.Context, userID uuid.UUID) (models.Money, error) {
	query := `
		SELECT COALESCE(SUM(requested_amount), 0)
		FROM withdrawals
		WHERE user_id = $1 AND status IN ('pending', 'approved', 'paid')
	`

	var sum int64
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&sum)
	return models.Money(sum), err
}

// SumHeldAll returns held totals grouped by user, for the admin all-users view.
func (r *WithdrawalRepository) SumHeldAll(ctx context.Context) (map[uuid.UUID]models.Money, error) {
	query := `
		SELECT user_id, COALESCE(SUM(requested_amount), 0)
		FROM withdrawals
		WHERE status IN ('pending', 'approved', 'paid')
		GROUP BY user_id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[uuid.UUID]models.Money)
	for rows.Next() {
		var (
			userID uuid.UUID
			sum    int64
		)
		if err := rows.Scan(&userID, &sum); err != nil {
			return nil, err
		}
		sums[userID] = models.Money(sum)
	}

	return sums, rows.Err()
}

func (r *WithdrawalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Withdrawal, error) {
	query := `
		SELECT id, user_id, operator, requested_amount, status, requested_at,
		       processed_at, processed_by, admin_notes, rejection_reason
		FROM withdrawals WHERE user_id = $1
		ORDER BY requested_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

func (r *WithdrawalRepository) ListAll(ctx context.Context) ([]models.Withdrawal, error) {
	query := `
		SELECT id, user_id, operator, requested_amount, status, requested_at,
		       processed_at, processed_by, admin_notes, rejection_reason
		FROM withdrawals
		ORDER BY requested_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanWithdrawals(rows)
}

// Resolve moves a pending withdrawal to approved or rejected, stamping the
// audit fields. Resolving a non-pending withdrawal affects no rows.
func (r *WithdrawalRepository) Resolve(ctx context.Context, id uuid.UUID, status models.WithdrawalStatus, notes, reason string, adminID uuid.UUID) error {
	query := `
		UPDATE withdrawals
		SET status = $2, processed_at = NOW(), processed_by = $3,
		    admin_notes = $4, rejection_reason = $5
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Pool.Exec(ctx, query, id, status, adminID, notes, reason)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrWithdrawalNotFound
	}

	return nil
}

func scanWithdrawals(rows pgx.Rows) ([]models.Withdrawal, error) {
	var withdrawals []models.Withdrawal
	for rows.Next() {
		var w models.Withdrawal
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Operator, &w.RequestedAmount, &w.Status,
			&w.RequestedAt, &w.ProcessedAt, &w.ProcessedBy, &w.AdminNotes, &w.RejectionReason,
		); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "unique constraint"))
}
