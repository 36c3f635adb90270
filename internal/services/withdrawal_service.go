package services

import (
	"context"
	"errors"

	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrInvalidOperator     = errors.New("unknown operator")
	ErrInvalidAmount       = errors.New("requested amount must be positive")
	ErrPendingExists       = errors.New("a pending withdrawal already exists")
	ErrInsufficientBalance = errors.New("requested amount exceeds available balance")
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrNotPending          = errors.New("withdrawal has already been processed")
)

// BalanceSource yields the available balance a withdrawal request is checked
// against.
type BalanceSource interface {
	Available(ctx context.Context, userID uuid.UUID) (models.Money, error)
}

// WithdrawalStore persists withdrawals. CreatePending must refuse the insert
// when a pending row already exists for the user.
type WithdrawalStore interface {
	CreatePending(ctx context.Context, w *models.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error)
	HasPending(ctx context.Context, userID uuid.UUID) (bool, error)
	Resolve(ctx context.Context, id uuid.UUID, status models.WithdrawalStatus, notes, reason string, adminID uuid.UUID) error
}

type WithdrawalService struct {
	store   WithdrawalStore
	balance BalanceSource
}

func NewWithdrawalService(store WithdrawalStore, balance BalanceSource) *WithdrawalService {
	return &WithdrawalService{
		store:   store,
		balance: balance,
	}
}

// Request runs the withdrawal state machine:
// validate -> no existing pending -> sufficient balance -> persist pending.
// The store's conditional insert re-checks the pending predicate, so a race
// between two requests surfaces as ErrPendingExists rather than a double
// insert. Returns the created withdrawal and the post-request balance.
func (s *WithdrawalService) Request(ctx context.Context, userID uuid.UUID, operator string, amount models.Money) (*models.Withdrawal, models.Money, error) {
	if !models.ValidOperator(operator) {
		return nil, 0, ErrInvalidOperator
	}
	if amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}

	pending, err := s.store.HasPending(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if pending {
		return nil, 0, ErrPendingExists
	}

	available, err := s.balance.Available(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	if amount > available {
		return nil, 0, ErrInsufficientBalance
	}

	w := &models.Withdrawal{
		ID:              uuid.New(),
		UserID:          userID,
		Operator:        models.Operator(operator),
		RequestedAmount: amount,
	}

	if err := s.store.CreatePending(ctx, w); err != nil {
		if errors.Is(err, repository.ErrPendingExists) {
			return nil, 0, ErrPendingExists
		}
		return nil, 0, err
	}

	return w, available - amount, nil
}

// Resolve transitions a pending withdrawal to approved or rejected. The
// transition is one-way; balance is restored on rejection purely because the
// held-amount aggregate excludes rejected rows.
func (s *WithdrawalService) Resolve(ctx context.Context, id uuid.UUID, status models.WithdrawalStatus, notes, reason string, adminID uuid.UUID) (*models.Withdrawal, error) {
	if status != models.WithdrawalApproved && status != models.WithdrawalRejected {
		return nil, ErrNotPending
	}

	err := s.store.Resolve(ctx, id, status, notes, reason, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrWithdrawalNotFound) {
			// Distinguish a missing withdrawal from an already-processed one.
			existing, getErr := s.store.GetByID(ctx, id)
			if getErr != nil {
				return nil, ErrWithdrawalNotFound
			}
			if existing.Status != models.WithdrawalPending {
				return nil, ErrNotPending
			}
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}

	return s.store.GetByID(ctx, id)
}
