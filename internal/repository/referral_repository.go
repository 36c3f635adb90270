package repository

import (
	"context"
	"time"

	"github.com/cirvee/earnings-backend/internal/database"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/google/uuid"
)

// ReferralRepository reads referral links and referrals from the referral
// store. Both entities are created externally; earnings math only counts them.
type ReferralRepository struct {
	db *database.DB
}

func NewReferralRepository(db *database.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func (r *ReferralRepository) LinksByUser(ctx context.Context, userID uuid.UUID) ([]models.ReferralLink, error) {
	query := `
		SELECT id, user_id, operator, code, created_at
		FROM referral_links WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.ReferralLink
	for rows.Next() {
		var link models.ReferralLink
		if err := rows.Scan(
			&link.ID, &link.UserID, &link.Operator, &link.Code, &link.CreatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// OperatorBreakdown returns per-operator referral counts for a user. Reward
// amounts are filled in by the earnings service.
func (r *ReferralRepository) OperatorBreakdown(ctx context.Context, userID uuid.UUID) ([]models.OperatorEarnings, error) {
	query := `
		SELECT rl.operator,
		       COUNT(r.id) AS total_referrals,
		       COUNT(r.id) FILTER (WHERE r.status = 'approved') AS approved_referrals
		FROM referral_links rl
		LEFT JOIN referrals r ON r.referral_link_id = rl.id
		WHERE rl.user_id = $1
		GROUP BY rl.operator
		ORDER BY rl.operator
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []models.OperatorEarnings
	for rows.Next() {
		var row models.OperatorEarnings
		if err := rows.Scan(&row.Operator, &row.TotalReferrals, &row.ApprovedReferrals); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, row)
	}

	return breakdown, rows.Err()
}

func (r *ReferralRepository) ApprovedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(r.id)
		FROM referrals r
		JOIN referral_links rl ON r.referral_link_id = rl.id
		WHERE rl.user_id = $1 AND r.status = 'approved'
	`

	var count int
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

// History lists a user's referrals newest first, optionally scoped to one
// operator. Reward amounts are filled in by the earnings service.
func (r *ReferralRepository) History(ctx context.Context, userID uuid.UUID, operator string) ([]models.EarningsEvent, error) {
	query := `
		SELECT r.id, rl.operator, r.referred_name, r.status, r.created_at
		FROM referrals r
		JOIN referral_links rl ON r.referral_link_id = rl.id
		WHERE rl.user_id = $1 AND ($2 = '' OR rl.operator = $2)
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, operator)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.EarningsEvent
	for rows.Next() {
		var ev models.EarningsEvent
		if err := rows.Scan(&ev.ID, &ev.Operator, &ev.ReferredName, &ev.Status, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

// Leaderboard ranks users by approved referrals since the given time.
func (r *ReferralRepository) Leaderboard(ctx context.Context, since time.Time, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT u.id, u.name, COUNT(r.id) AS approved_referrals
		FROM users u
		JOIN referral_links rl ON rl.user_id = u.id
		JOIN referrals r ON r.referral_link_id = rl.id
		WHERE r.status = 'approved' AND r.created_at >= $1
		GROUP BY u.id, u.name
		ORDER BY approved_referrals DESC, u.name
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Name, &entry.ApprovedReferrals); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListUserStats returns every user with their referral counts, for the admin
// all-users listing.
func (r *ReferralRepository) ListUserStats(ctx context.Context) ([]models.UserReferralStats, error) {
	query := `
		SELECT u.id, u.name, u.email,
		       COUNT(r.id) AS total_referrals,
		       COUNT(r.id) FILTER (WHERE r.status = 'approved') AS approved_referrals
		FROM users u
		LEFT JOIN referral_links rl ON rl.user_id = u.id
		LEFT JOIN referrals r ON r.referral_link_id = rl.id
		WHERE u.role = 'user'
		GROUP BY u.id, u.name, u.email
		ORDER BY approved_referrals DESC, u.name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.UserReferralStats
	for rows.Next() {
		var s models.UserReferralStats
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.TotalReferrals, &s.ApprovedReferrals); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// ListAll lists referrals joined with operator and referrer identity, for the
// admin CSV export.
func (r *ReferralRepository) ListAll(ctx context.Context) ([]models.EarningsEvent, error) {
	query := `
		SELECT r.id, rl.operator, r.referred_name, r.status, r.created_at
		FROM referrals r
		JOIN referral_links rl ON r.referral_link_id = rl.id
		ORDER BY r.created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.EarningsEvent
	for rows.Next() {
		var ev models.EarningsEvent
		if err := rows.Scan(&ev.ID, &ev.Operator, &ev.ReferredName, &ev.Status, &ev.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
