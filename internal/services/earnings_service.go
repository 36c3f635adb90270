package services

import (
	"context"

	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/google/uuid"
)

// ReferralSource reads referral activity from the referral store.
type ReferralSource interface {
	OperatorBreakdown(ctx context.Context, userID uuid.UUID) ([]models.OperatorEarnings, error)
	ApprovedCount(ctx context.Context, userID uuid.UUID) (int, error)
	History(ctx context.Context, userID uuid.UUID, operator string) ([]models.EarningsEvent, error)
}

// WithdrawalSource reads the withdrawal amounts held against a balance.
type WithdrawalSource interface {
	SumHeld(ctx context.Context, userID uuid.UUID) (models.Money, error)
}

// AdjustmentSource reads manual earnings corrections.
type AdjustmentSource interface {
	SumByUser(ctx context.Context, userID uuid.UUID) (models.Money, error)
}

// EarningsService derives balances from source rows on every call. Nothing is
// cached: lifetime earnings and held withdrawals are aggregates, and the
// available balance is always their difference at read time.
type EarningsService struct {
	referrals   ReferralSource
	withdrawals WithdrawalSource
	adjustments AdjustmentSource
	rewardCents int64
}

func NewEarningsService(referrals ReferralSource, withdrawals WithdrawalSource, adjustments AdjustmentSource, rewardCents int64) *EarningsService {
	return &EarningsService{
		referrals:   referrals,
		withdrawals: withdrawals,
		adjustments: adjustments,
		rewardCents: rewardCents,
	}
}

// Lifetime is reward x approved referrals plus signed manual adjustments,
// floored at zero.
func (s *EarningsService) Lifetime(ctx context.Context, userID uuid.UUID) (models.Money, error) {
	approved, err := s.referrals.ApprovedCount(ctx, userID)
	if err != nil {
		return 0, err
	}

	adjusted, err := s.adjustments.SumByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	lifetime := models.Money(int64(approved)*s.rewardCents) + adjusted
	if lifetime < 0 {
		lifetime = 0
	}
	return lifetime, nil
}

// Balance returns (lifetime, withdrawn, available). Withdrawn counts pending,
// approved and paid withdrawals; rejected ones never deduct, so rejecting a
// withdrawal restores balance on the next read without any compensating write.
func (s *EarningsService) Balance(ctx context.Context, userID uuid.UUID) (lifetime, withdrawn, available models.Money, err error) {
	lifetime, err = s.Lifetime(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}

	withdrawn, err = s.withdrawals.SumHeld(ctx, userID)
	if err != nil {
		return 0, 0, 0, err
	}

	available = lifetime - withdrawn
	return lifetime, withdrawn, available, nil
}

// Available satisfies the withdrawal service's balance check.
func (s *EarningsService) Available(ctx context.Context, userID uuid.UUID) (models.Money, error) {
	_, _, available, err := s.Balance(ctx, userID)
	return available, err
}

func (s *EarningsService) Dashboard(ctx context.Context, userID uuid.UUID) (*models.Dashboard, error) {
	breakdown, err := s.referrals.OperatorBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range breakdown {
		breakdown[i].TotalAmount = models.Money(int64(breakdown[i].ApprovedReferrals) * s.rewardCents)
	}

	lifetime, withdrawn, available, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.Dashboard{
		TotalEarnings:  lifetime,
		TotalWithdrawn: withdrawn,
		CurrentBalance: available,
		UserEarnings:   breakdown,
	}, nil
}

func (s *EarningsService) History(ctx context.Context, userID uuid.UUID, operator string) ([]models.EarningsEvent, error) {
	events, err := s.referrals.History(ctx, userID, operator)
	if err != nil {
		return nil, err
	}
	for i := range events {
		if events[i].Status == models.ReferralApproved {
			events[i].Amount = models.Money(s.rewardCents)
		}
	}
	return events, nil
}

// RewardCents exposes the configured per-referral reward for callers that
// derive amounts from raw counts.
func (s *EarningsService) RewardCents() int64 {
	return s.rewardCents
}
