package integration

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cirvee/earnings-backend/internal/database"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/cirvee/earnings-backend/internal/services"
	"github.com/google/uuid"
)

// testRewardCents mirrors REWARD_PER_REFERRAL=100 in cents.
const testRewardCents = 10000

type testEnv struct {
	db          *database.DB
	userRepo    *repository.UserRepository
	refRepo     *repository.ReferralRepository
	wdRepo      *repository.WithdrawalRepository
	adjRepo     *repository.AdjustmentRepository
	winnerRepo  *repository.WinnerRepository
	earnings    *services.EarningsService
	withdrawals *services.WithdrawalService
}

// setupTestEnv connects to the database named by DATABASE_TEST_URL, runs
// migrations and truncates all tables. Tests are skipped when the variable is
// unset so the unit suite stays runnable without infrastructure.
func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	dbURL := os.Getenv("DATABASE_TEST_URL")
	if dbURL == "" {
		t.Skip("DATABASE_TEST_URL not set; skipping integration tests")
	}

	if err := database.Migrate("file://../../migrations", dbURL); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db, err := database.New(dbURL, 10)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	_, err = db.Pool.Exec(context.Background(),
		"TRUNCATE users, referral_links, referrals, earnings_adjustments, withdrawals, winners_of_week CASCADE")
	if err != nil {
		t.Fatalf("failed to clear test database: %v", err)
	}

	env := &testEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		refRepo:    repository.NewReferralRepository(db),
		wdRepo:     repository.NewWithdrawalRepository(db),
		adjRepo:    repository.NewAdjustmentRepository(db),
		winnerRepo: repository.NewWinnerRepository(db),
	}
	env.earnings = services.NewEarningsService(env.refRepo, env.wdRepo, env.adjRepo, testRewardCents)
	env.withdrawals = services.NewWithdrawalService(env.wdRepo, env.earnings)

	cleanup := func() {
		db.Close()
	}

	return env, cleanup
}

// seedUser inserts a user with one referral link per operator and the given
// number of approved referrals on the first (Airtel) link.
func (env *testEnv) seedUser(t *testing.T, name string, approved int) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	userID := uuid.New()
	_, err := env.db.Pool.Exec(ctx,
		"INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, 'user')",
		userID, name, fmt.Sprintf("%s@example.com", uuid.NewString()[:8]))
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	var airtelLink uuid.UUID
	for _, op := range []models.Operator{models.OperatorAirtel, models.OperatorVi, models.OperatorJio} {
		linkID := uuid.New()
		_, err := env.db.Pool.Exec(ctx,
			"INSERT INTO referral_links (id, user_id, operator, code) VALUES ($1, $2, $3, $4)",
			linkID, userID, op, uuid.NewString()[:12])
		if err != nil {
			t.Fatalf("failed to seed referral link: %v", err)
		}
		if op == models.OperatorAirtel {
			airtelLink = linkID
		}
	}

	for i := 0; i < approved; i++ {
		_, err := env.db.Pool.Exec(ctx,
			"INSERT INTO referrals (referral_link_id, referred_name, status) VALUES ($1, $2, 'approved')",
			airtelLink, fmt.Sprintf("referred-%d", i))
		if err != nil {
			t.Fatalf("failed to seed referral: %v", err)
		}
	}

	return userID
}
