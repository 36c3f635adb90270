package scheduler

import (
	"context"
	"time"

	"github.com/cirvee/earnings-backend/internal/logging"
	"github.com/robfig/cron/v3"
)

// Scheduler owns the background jobs. Currently a single hourly job keeping
// the leaderboard snapshot warm.
type Scheduler struct {
	cron        *cron.Cron
	leaderboard *LeaderboardCache
}

func New(leaderboard *LeaderboardCache) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		leaderboard: leaderboard,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.leaderboard.Refresh(ctx); err != nil {
			logging.Sugar.Errorw("leaderboard refresh failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop; running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}
