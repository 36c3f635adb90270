package handlers

import (
	"net/http"
	"time"

	"github.com/cirvee/earnings-backend/internal/middleware"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/cirvee/earnings-backend/internal/scheduler"
	"github.com/cirvee/earnings-backend/internal/services"
	"github.com/cirvee/earnings-backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type EarningsHandler struct {
	earnings    *services.EarningsService
	withdrawals *services.WithdrawalService
	wdRepo      *repository.WithdrawalRepository
	refRepo     *repository.ReferralRepository
	winnerRepo  *repository.WinnerRepository
	leaderboard *scheduler.LeaderboardCache
	validate    *validator.Validate
}

func NewEarningsHandler(
	earnings *services.EarningsService,
	withdrawals *services.WithdrawalService,
	wdRepo *repository.WithdrawalRepository,
	refRepo *repository.ReferralRepository,
	winnerRepo *repository.WinnerRepository,
	leaderboard *scheduler.LeaderboardCache,
) *EarningsHandler {
	return &EarningsHandler{
		earnings:    earnings,
		withdrawals: withdrawals,
		wdRepo:      wdRepo,
		refRepo:     refRepo,
		winnerRepo:  winnerRepo,
		leaderboard: leaderboard,
		validate:    validator.New(),
	}
}

// GetDashboard returns lifetime earnings, current balance and the per-operator
// breakdown. Ownership is enforced by the RequireOwner middleware.
func (h *EarningsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	dashboard, err := h.earnings.Dashboard(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get dashboard")
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"totalEarnings":  dashboard.TotalEarnings,
		"totalWithdrawn": dashboard.TotalWithdrawn,
		"currentBalance": dashboard.CurrentBalance,
		"userEarnings":   dashboard.UserEarnings,
	})
}

func (h *EarningsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	operator := r.URL.Query().Get("operator")
	if operator != "" && !models.ValidOperator(operator) {
		respondError(w, http.StatusBadRequest, "unknown operator")
		return
	}

	history, err := h.earnings.History(r.Context(), userID, operator)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get earnings history")
		return
	}
	if history == nil {
		history = []models.EarningsEvent{}
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"earningsHistory": history,
	})
}

func (h *EarningsHandler) GetWithdrawals(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	withdrawals, err := h.wdRepo.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get withdrawals")
		return
	}
	if withdrawals == nil {
		withdrawals = []models.Withdrawal{}
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"withdrawals": withdrawals,
	})
}

func (h *EarningsHandler) GetReferralLinks(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	links, err := h.refRepo.LinksByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get referral links")
		return
	}
	if links == nil {
		links = []models.ReferralLink{}
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"referralLinks": links,
	})
}

// RequestWithdrawal creates a pending withdrawal after the ownership, pending
// and balance checks pass.
func (h *EarningsHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req models.WithdrawalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	// The body uid must match the authenticated user; clients cannot spend
	// someone else's balance.
	if claims.Role != string(models.RoleAdmin) && claims.UserID.String() != req.UID {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	userID, err := uuid.Parse(req.UID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	withdrawal, remaining, err := h.withdrawals.Request(
		r.Context(), userID, req.Operator, models.MoneyFromFloat(req.RequestedAmount),
	)
	if err != nil {
		switch err {
		case services.ErrInvalidOperator, services.ErrInvalidAmount:
			respondError(w, http.StatusBadRequest, err.Error())
		case services.ErrPendingExists:
			respondError(w, http.StatusConflict, err.Error())
		case services.ErrInsufficientBalance:
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to request withdrawal")
		}
		return
	}

	respondOK(w, http.StatusCreated, map[string]interface{}{
		"withdrawal":       withdrawal,
		"remainingBalance": remaining,
	})
}

// GetWinnersOfWeek returns the admin-curated winner set for the current
// Sunday-to-Saturday window.
func (h *EarningsHandler) GetWinnersOfWeek(w http.ResponseWriter, r *http.Request) {
	weekStart, _ := utils.WeekWindow(time.Now())

	winners, err := h.winnerRepo.ListWeek(r.Context(), weekStart)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get winners")
		return
	}
	if winners == nil {
		winners = []models.WinnerOfWeek{}
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"winners": winners,
	})
}

// GetLeaderboard returns the rolling 7-day ranking, served from the Redis
// snapshot when fresh.
func (h *EarningsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboard.Current(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get leaderboard")
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
	})
}
