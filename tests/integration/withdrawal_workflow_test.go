package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/cirvee/earnings-backend/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithdrawalWorkflow(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	// Three approved referrals at 100.00 each.
	userID := env.seedUser(t, "Asha", 3)

	lifetime, withdrawn, available, err := env.earnings.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(30000), lifetime)
	assert.Equal(t, models.Money(0), withdrawn)
	assert.Equal(t, models.Money(30000), available)

	// Requesting the full balance drops it to zero.
	w, remaining, err := env.withdrawals.Request(ctx, userID, "Airtel", models.Money(30000))
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, w.Status)
	assert.Equal(t, models.Money(0), remaining)

	// A second request is refused while the first is pending.
	_, _, err = env.withdrawals.Request(ctx, userID, "Airtel", models.Money(100))
	assert.ErrorIs(t, err, services.ErrPendingExists)

	// Rejection restores the balance on the next read.
	resolved, err := env.withdrawals.Resolve(ctx, w.ID, models.WithdrawalRejected, "", "account mismatch", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalRejected, resolved.Status)
	assert.Equal(t, "account mismatch", resolved.RejectionReason)
	require.NotNil(t, resolved.ProcessedAt)

	_, _, available, err = env.earnings.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(30000), available)

	// Approval keeps the amount deducted.
	w2, _, err := env.withdrawals.Request(ctx, userID, "Vi", models.Money(20000))
	require.NoError(t, err)

	resolved, err = env.withdrawals.Resolve(ctx, w2.ID, models.WithdrawalApproved, "paid via UPI", "", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalApproved, resolved.Status)

	_, withdrawn, available, err = env.earnings.Balance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(20000), withdrawn)
	assert.Equal(t, models.Money(10000), available)

	// Resolution is one-way.
	_, err = env.withdrawals.Resolve(ctx, w2.ID, models.WithdrawalRejected, "", "", uuid.New())
	assert.ErrorIs(t, err, services.ErrNotPending)
}

func TestWithdrawal_InsufficientBalance(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	userID := env.seedUser(t, "Rohit", 1) // lifetime 100.00

	_, _, err := env.withdrawals.Request(ctx, userID, "Jio", models.Money(10001))
	assert.ErrorIs(t, err, services.ErrInsufficientBalance)

	withdrawals, err := env.wdRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, withdrawals)
}

// TestWithdrawal_ConcurrentRequests drives the partial unique index: many
// simultaneous requests for one user must produce exactly one pending row.
func TestWithdrawal_ConcurrentRequests(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	userID := env.seedUser(t, "Priya", 10) // lifetime 1000.00

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = env.withdrawals.Request(ctx, userID, "Airtel", models.Money(10000))
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, services.ErrPendingExists)
		}
	}
	assert.Equal(t, 1, created)

	withdrawals, err := env.wdRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, withdrawals, 1)
}

func TestWithdrawal_StoreRejectsDirectDuplicate(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	userID := env.seedUser(t, "Vikram", 5)

	first := &models.Withdrawal{ID: uuid.New(), UserID: userID, Operator: models.OperatorJio, RequestedAmount: 5000}
	require.NoError(t, env.wdRepo.CreatePending(ctx, first))
	assert.False(t, first.RequestedAt.IsZero())

	dup := &models.Withdrawal{ID: uuid.New(), UserID: userID, Operator: models.OperatorJio, RequestedAmount: 5000}
	err := env.wdRepo.CreatePending(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrPendingExists)
}

func TestAdjustments_ShiftBalance(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()
	ctx := context.Background()

	userID := env.seedUser(t, "Meera", 2) // lifetime 200.00
	adminID := uuid.New()

	require.NoError(t, env.adjRepo.Create(ctx, &models.EarningsAdjustment{
		ID: uuid.New(), UserID: userID, Amount: 5000, Reason: "bonus", CreatedBy: adminID,
	}))
	require.NoError(t, env.adjRepo.Create(ctx, &models.EarningsAdjustment{
		ID: uuid.New(), UserID: userID, Amount: -2000, Reason: "clawback", CreatedBy: adminID,
	}))

	lifetime, err := env.earnings.Lifetime(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(23000), lifetime)

	// A debit larger than everything floors lifetime at zero.
	require.NoError(t, env.adjRepo.Create(ctx, &models.EarningsAdjustment{
		ID: uuid.New(), UserID: userID, Amount: -100000, Reason: "fraud reversal", CreatedBy: adminID,
	}))

	lifetime, err = env.earnings.Lifetime(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.Money(0), lifetime)
}
