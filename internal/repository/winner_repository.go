package repository

import (
	"context"
	"time"

	"github.com/cirvee/earnings-backend/internal/database"
	"github.com/cirvee/earnings-backend/internal/models"
)

type WinnerRepository struct {
	db *database.DB
}

func NewWinnerRepository(db *database.DB) *WinnerRepository {
	return &WinnerRepository{db: db}
}

// ReplaceWeek swaps out the full winner set for one week window in a single
// transaction. Winner rows snapshot name and earnings at curation time.
func (r *WinnerRepository) ReplaceWeek(ctx context.Context, weekStart time.Time, winners []models.WinnerOfWeek) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM winners_of_week WHERE week_start = $1`, weekStart); err != nil {
		return err
	}

	query := `
		INSERT INTO winners_of_week (id, user_id, name, position, total_earnings, message, week_start, week_end)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, w := range winners {
		if _, err := tx.Exec(ctx, query,
			w.ID, w.UserID, w.Name, w.Position, w.TotalEarnings, w.Message, w.WeekStart, w.WeekEnd,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *WinnerRepository) ListWeek(ctx context.Context, weekStart time.Time) ([]models.WinnerOfWeek, error) {
	query := `
		SELECT id, user_id, name, position, total_earnings, message, week_start, week_end
		FROM winners_of_week WHERE week_start = $1
		ORDER BY position
	`

	rows, err := r.db.Pool.Query(ctx, query, weekStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var winners []models.WinnerOfWeek
	for rows.Next() {
		var w models.WinnerOfWeek
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Name, &w.Position, &w.TotalEarnings,
			&w.Message, &w.WeekStart, &w.WeekEnd,
		); err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}

	return winners, rows.Err()
}
