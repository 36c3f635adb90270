package services

import (
	"context"
	"testing"

	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReferralSource struct {
	breakdown []models.OperatorEarnings
	approved  int
	history   []models.EarningsEvent
}

func (f *fakeReferralSource) OperatorBreakdown(ctx context.Context, userID uuid.UUID) ([]models.OperatorEarnings, error) {
	return f.breakdown, nil
}

func (f *fakeReferralSource) ApprovedCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return f.approved, nil
}

func (f *fakeReferralSource) History(ctx context.Context, userID uuid.UUID, operator string) ([]models.EarningsEvent, error) {
	if operator == "" {
		return f.history, nil
	}
	var filtered []models.EarningsEvent
	for _, e := range f.history {
		if string(e.Operator) == operator {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

type fakeWithdrawalSource struct {
	held models.Money
}

func (f *fakeWithdrawalSource) SumHeld(ctx context.Context, userID uuid.UUID) (models.Money, error) {
	return f.held, nil
}

type fakeAdjustmentSource struct {
	sum models.Money
}

func (f *fakeAdjustmentSource) SumByUser(ctx context.Context, userID uuid.UUID) (models.Money, error) {
	return f.sum, nil
}

const rewardCents = 10000 // 100.00 per approved referral

func newEarningsService(approved int, held, adjusted models.Money) *EarningsService {
	return NewEarningsService(
		&fakeReferralSource{approved: approved},
		&fakeWithdrawalSource{held: held},
		&fakeAdjustmentSource{sum: adjusted},
		rewardCents,
	)
}

func TestEarningsService_Balance(t *testing.T) {
	tests := []struct {
		name          string
		approved      int
		held          models.Money
		adjusted      models.Money
		wantLifetime  models.Money
		wantWithdrawn models.Money
		wantAvailable models.Money
	}{
		{"no_activity", 0, 0, 0, 0, 0, 0},
		{"three_approved", 3, 0, 0, 30000, 0, 30000},
		{"full_withdrawal_held", 3, 30000, 0, 30000, 30000, 0},
		{"partial_withdrawal", 5, 20000, 0, 50000, 20000, 30000},
		{"credit_adjustment", 2, 0, 5000, 25000, 0, 25000},
		{"debit_adjustment", 2, 0, -5000, 15000, 0, 15000},
		{"debit_floors_lifetime_at_zero", 1, 0, -20000, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newEarningsService(tt.approved, tt.held, tt.adjusted)

			lifetime, withdrawn, available, err := svc.Balance(context.Background(), uuid.New())
			require.NoError(t, err)

			assert.Equal(t, tt.wantLifetime, lifetime)
			assert.Equal(t, tt.wantWithdrawn, withdrawn)
			assert.Equal(t, tt.wantAvailable, available)
		})
	}
}

func TestEarningsService_Dashboard(t *testing.T) {
	referrals := &fakeReferralSource{
		approved: 3,
		breakdown: []models.OperatorEarnings{
			{Operator: models.OperatorAirtel, TotalReferrals: 4, ApprovedReferrals: 3},
			{Operator: models.OperatorJio, TotalReferrals: 2, ApprovedReferrals: 0},
		},
	}
	svc := NewEarningsService(referrals, &fakeWithdrawalSource{held: 10000}, &fakeAdjustmentSource{}, rewardCents)

	dash, err := svc.Dashboard(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, models.Money(30000), dash.TotalEarnings)
	assert.Equal(t, models.Money(10000), dash.TotalWithdrawn)
	assert.Equal(t, models.Money(20000), dash.CurrentBalance)

	require.Len(t, dash.UserEarnings, 2)
	assert.Equal(t, models.Money(30000), dash.UserEarnings[0].TotalAmount)
	assert.Equal(t, models.Money(0), dash.UserEarnings[1].TotalAmount)
}

func TestEarningsService_History(t *testing.T) {
	referrals := &fakeReferralSource{
		history: []models.EarningsEvent{
			{Operator: models.OperatorAirtel, Status: models.ReferralApproved},
			{Operator: models.OperatorAirtel, Status: models.ReferralPending},
			{Operator: models.OperatorVi, Status: models.ReferralApproved},
		},
	}
	svc := NewEarningsService(referrals, &fakeWithdrawalSource{}, &fakeAdjustmentSource{}, rewardCents)

	events, err := svc.History(context.Background(), uuid.New(), "")
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Only approved referrals carry the reward amount.
	assert.Equal(t, models.Money(rewardCents), events[0].Amount)
	assert.Equal(t, models.Money(0), events[1].Amount)
	assert.Equal(t, models.Money(rewardCents), events[2].Amount)

	airtel, err := svc.History(context.Background(), uuid.New(), "Airtel")
	require.NoError(t, err)
	assert.Len(t, airtel, 2)
}
