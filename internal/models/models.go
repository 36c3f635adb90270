package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Operator is a mobile carrier partner that earnings and referral links are
// segmented by.
type Operator string

const (
	OperatorAirtel Operator = "Airtel"
	OperatorVi     Operator = "Vi"
	OperatorJio    Operator = "Jio"
)

func ValidOperator(s string) bool {
	switch Operator(s) {
	case OperatorAirtel, OperatorVi, OperatorJio:
		return true
	}
	return false
}

// Money is an amount in cents. It marshals as a 2-fraction-digit string
// ("300.00") so API clients never see float rounding artifacts.
type Money int64

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// MoneyFromFloat converts a decimal amount in whole currency units to cents,
// rounding to the nearest cent.
func MoneyFromFloat(v float64) Money {
	return Money(math.Round(v * 100))
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ReferralLink struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Operator  Operator  `json:"operator"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "pending"
	ReferralApproved ReferralStatus = "approved"
	ReferralRejected ReferralStatus = "rejected"
)

type Referral struct {
	ID             uuid.UUID      `json:"id"`
	ReferralLinkID uuid.UUID      `json:"referral_link_id"`
	ReferredName   string         `json:"referred_name"`
	ReferredPhone  string         `json:"referred_phone"`
	Status         ReferralStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalPaid     WithdrawalStatus = "paid"
)

type Withdrawal struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	Operator        Operator         `json:"operator"`
	RequestedAmount Money            `json:"requested_amount"`
	Status          WithdrawalStatus `json:"status"`
	RequestedAt     time.Time        `json:"requested_at"`
	ProcessedAt     *time.Time       `json:"processed_at,omitempty"`
	ProcessedBy     *uuid.UUID       `json:"processed_by,omitempty"`
	AdminNotes      string           `json:"admin_notes,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
}

// EarningsAdjustment is an append-only manual correction layered on top of
// computed earnings. Amount is signed: credits positive, debits negative.
type EarningsAdjustment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Amount    Money     `json:"amount"`
	Reason    string    `json:"reason"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type WinnerOfWeek struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	Name          string    `json:"name"`
	Position      int       `json:"position"`
	TotalEarnings Money     `json:"total_earnings"`
	Message       string    `json:"message,omitempty"`
	WeekStart     time.Time `json:"week_start"`
	WeekEnd       time.Time `json:"week_end"`
}

// OperatorEarnings is one row of the per-operator dashboard breakdown.
type OperatorEarnings struct {
	Operator          Operator `json:"operator"`
	TotalReferrals    int      `json:"total_referrals"`
	ApprovedReferrals int      `json:"approved_referrals_count"`
	TotalAmount       Money    `json:"total_amount"`
}

// EarningsEvent is one row of a user's earnings history: a referral with the
// reward it earned (zero unless approved).
type EarningsEvent struct {
	ID           uuid.UUID      `json:"id"`
	Operator     Operator       `json:"operator"`
	ReferredName string         `json:"referred_name"`
	Status       ReferralStatus `json:"status"`
	Amount       Money          `json:"amount"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Dashboard struct {
	TotalEarnings  Money              `json:"totalEarnings"`
	TotalWithdrawn Money              `json:"totalWithdrawn"`
	CurrentBalance Money              `json:"currentBalance"`
	UserEarnings   []OperatorEarnings `json:"userEarnings"`
}

type LeaderboardEntry struct {
	UserID            uuid.UUID `json:"user_id"`
	Name              string    `json:"name"`
	ApprovedReferrals int       `json:"approved_referrals"`
	Earnings          Money     `json:"earnings"`
}

// UserReferralStats carries identity plus referral counts for the admin
// all-users listing; withdrawal totals are merged in from the earnings store.
type UserReferralStats struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	TotalReferrals    int       `json:"total_referrals"`
	ApprovedReferrals int       `json:"approved_referrals_count"`
}

type UserOverview struct {
	UserReferralStats
	TotalEarnings  Money `json:"totalEarnings"`
	TotalWithdrawn Money `json:"totalWithdrawn"`
	CurrentBalance Money `json:"currentBalance"`
}

// Request DTOs

type ValidateTokenRequest struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
}

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type WithdrawalRequest struct {
	UID             string  `json:"uid" validate:"required,uuid"`
	Operator        string  `json:"operator" validate:"required,oneof=Airtel Vi Jio"`
	RequestedAmount float64 `json:"requestedAmount" validate:"required,gt=0"`
}

type ResolveWithdrawalRequest struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected"`
	AdminNotes      string `json:"adminNotes"`
	RejectionReason string `json:"rejectionReason"`
}

type AdjustEarningsRequest struct {
	UserID           string  `json:"userId" validate:"required,uuid"`
	Username         string  `json:"username"`
	AdjustmentAmount float64 `json:"adjustmentAmount" validate:"required,gt=0"`
	AdjustmentType   string  `json:"adjustmentType" validate:"required,oneof=credit debit"`
	Reason           string  `json:"reason" validate:"required"`
}

type SetWinnersRequest struct {
	Winner1 string `json:"winner1" validate:"required,uuid"`
	Winner2 string `json:"winner2" validate:"required,uuid"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
