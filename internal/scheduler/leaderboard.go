package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cirvee/earnings-backend/internal/cache"
	"github.com/cirvee/earnings-backend/internal/logging"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
)

const (
	leaderboardKey   = "leaderboard:7d"
	leaderboardTTL   = 10 * time.Minute
	leaderboardSize  = 10
	leaderboardRange = 7 * 24 * time.Hour
)

// LeaderboardCache serves the rolling 7-day ranking from Redis, recomputing
// from the referral store on a miss.
type LeaderboardCache struct {
	referrals   *repository.ReferralRepository
	cache       *cache.Cache
	rewardCents int64
}

func NewLeaderboardCache(referrals *repository.ReferralRepository, c *cache.Cache, rewardCents int64) *LeaderboardCache {
	return &LeaderboardCache{
		referrals:   referrals,
		cache:       c,
		rewardCents: rewardCents,
	}
}

func (l *LeaderboardCache) Current(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if data, err := l.cache.Get(ctx, leaderboardKey); err == nil {
		var entries []models.LeaderboardEntry
		if err := json.Unmarshal(data, &entries); err == nil {
			return entries, nil
		}
		// A corrupt snapshot falls through to a recompute.
	}

	return l.Refresh(ctx)
}

// Refresh recomputes the ranking and stores the snapshot.
func (l *LeaderboardCache) Refresh(ctx context.Context) ([]models.LeaderboardEntry, error) {
	since := time.Now().Add(-leaderboardRange)

	entries, err := l.referrals.Leaderboard(ctx, since, leaderboardSize)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Earnings = models.Money(int64(entries[i].ApprovedReferrals) * l.rewardCents)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Set(ctx, leaderboardKey, data, leaderboardTTL); err != nil {
		// Serving the freshly computed ranking matters more than caching it.
		logging.Sugar.Warnw("failed to cache leaderboard", "error", err)
	}

	return entries, nil
}
