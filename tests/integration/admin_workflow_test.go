package integration

import (
	"context"
	"testing"
	"time"

	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWinnersOfWeek_ReplaceAndList(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	first := env.seedUser(t, "Asha", 5)
	second := env.seedUser(t, "Rohit", 3)
	third := env.seedUser(t, "Priya", 8)

	weekStart, weekEnd := utils.WeekWindow(time.Now())

	makeWinner := func(userID uuid.UUID, name string, position int, earnings models.Money) models.WinnerOfWeek {
		return models.WinnerOfWeek{
			ID:            uuid.New(),
			UserID:        userID,
			Name:          name,
			Position:      position,
			TotalEarnings: earnings,
			Message:       "congratulations",
			WeekStart:     weekStart,
			WeekEnd:       weekEnd,
		}
	}

	require.NoError(t, env.winnerRepo.ReplaceWeek(ctx, weekStart, []models.WinnerOfWeek{
		makeWinner(first, "Asha", 1, 50000),
		makeWinner(second, "Rohit", 2, 30000),
	}))

	winners, err := env.winnerRepo.ListWeek(ctx, weekStart)
	require.NoError(t, err)
	require.Len(t, winners, 2)
	assert.Equal(t, "Asha", winners[0].Name)
	assert.Equal(t, 1, winners[0].Position)
	assert.Equal(t, models.Money(50000), winners[0].TotalEarnings)

	// Re-curating the same week replaces the set rather than appending.
	require.NoError(t, env.winnerRepo.ReplaceWeek(ctx, weekStart, []models.WinnerOfWeek{
		makeWinner(third, "Priya", 1, 80000),
		makeWinner(first, "Asha", 2, 50000),
	}))

	winners, err = env.winnerRepo.ListWeek(ctx, weekStart)
	require.NoError(t, err)
	require.Len(t, winners, 2)
	assert.Equal(t, "Priya", winners[0].Name)
	assert.Equal(t, third, winners[0].UserID)

	// Last week's window is untouched.
	lastWeek := weekStart.AddDate(0, 0, -7)
	winners, err = env.winnerRepo.ListWeek(ctx, lastWeek)
	require.NoError(t, err)
	assert.Empty(t, winners)
}

func TestAdminListings(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	top := env.seedUser(t, "Asha", 4)
	env.seedUser(t, "Rohit", 1)

	stats, err := env.refRepo.ListUserStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	// Ordered by approved referrals, best first.
	assert.Equal(t, top, stats[0].ID)
	assert.Equal(t, 4, stats[0].ApprovedReferrals)

	breakdown, err := env.refRepo.OperatorBreakdown(ctx, top)
	require.NoError(t, err)
	require.Len(t, breakdown, 3) // one row per seeded link

	var airtel models.OperatorEarnings
	for _, row := range breakdown {
		if row.Operator == models.OperatorAirtel {
			airtel = row
		}
	}
	assert.Equal(t, 4, airtel.ApprovedReferrals)

	entries, err := env.refRepo.Leaderboard(ctx, time.Now().AddDate(0, 0, -7), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, top, entries[0].UserID)

	referrals, err := env.refRepo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, referrals, 5)
}
