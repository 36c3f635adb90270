package repository

import (
	"context"

	"github.com/cirvee/earnings-backend/internal/database"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/google/uuid"
)

// AdjustmentRepository stores manual earnings corrections. Rows are
// append-only audit entries; there is no update or delete path.
type AdjustmentRepository struct {
	db *database.DB
}

func NewAdjustmentRepository(db *database.DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

func (r *AdjustmentRepository) Create(ctx context.Context, adj *models.EarningsAdjustment) error {
	query := `
		INSERT INTO earnings_adjustments (id, user_id, amount, reason, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return r.db.Pool.QueryRow(ctx, query,
		adj.ID, adj.UserID, adj.Amount, adj.Reason, adj.CreatedBy,
	).Scan(&adj.CreatedAt)
}

func (r *AdjustmentRepository) SumByUser(ctx context.Context, userID uuid.UUID) (models.Money, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM earnings_adjustments WHERE user_id = $1
	`

	var sum int64
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&sum)
	return models.Money(sum), err
}

func (r *AdjustmentRepository) SumAll(ctx context.Context) (map[uuid.UUID]models.Money, error) {
	query := `
		SELECT user_id, COALESCE(SUM(amount), 0)
		FROM earnings_adjustments
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

func (r *AdjustmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.EarningsAdjustment, error) {
	query := `
		SELECT id, user_id, amount, reason, created_by, created_at
		FROM earnings_adjustments WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []models.EarningsAdjustment
	for rows.Next() {
		var adj models.EarningsAdjustment
		if err := rows.Scan(
			&adj.ID, &adj.UserID, &adj.Amount, &adj.Reason, &adj.CreatedBy, &adj.CreatedAt,
		); err != nil {
			return nil, err
		}
		adjustments = append(adjustments, adj)
	}

	return adjustments, rows.Err()
}
