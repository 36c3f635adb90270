package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cirvee/earnings-backend/internal/middleware"
	"github.com/cirvee/earnings-backend/internal/models"
	"github.com/cirvee/earnings-backend/internal/repository"
	"github.com/cirvee/earnings-backend/internal/services"
	"github.com/cirvee/earnings-backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type AdminHandler struct {
	earnings    *services.EarningsService
	withdrawals *services.WithdrawalService
	userRepo    *repository.UserRepository
	refRepo     *repository.ReferralRepository
	wdRepo      *repository.WithdrawalRepository
	adjRepo     *repository.AdjustmentRepository
	winnerRepo  *repository.WinnerRepository
	validate    *validator.Validate
}

func NewAdminHandler(
	earnings *services.EarningsService,
	withdrawals *services.WithdrawalService,
	userRepo *repository.UserRepository,
	refRepo *repository.ReferralRepository,
	wdRepo *repository.WithdrawalRepository,
	adjRepo *repository.AdjustmentRepository,
	winnerRepo *repository.WinnerRepository,
) *AdminHandler {
	return &AdminHandler{
		earnings:    earnings,
		withdrawals: withdrawals,
		userRepo:    userRepo,
		refRepo:     refRepo,
		wdRepo:      wdRepo,
		adjRepo:     adjRepo,
		winnerRepo:  winnerRepo,
		validate:    validator.New(),
	}
}

// GetAllUsers lists every user with referral counts and balance totals.
func (h *AdminHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	stats, err := h.refRepo.ListUserStats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get users")
		return
	}

	held, err := h.wdRepo.SumHeldAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get withdrawal totals")
		return
	}

	adjusted, err := h.adjRepo.SumAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get adjustments")
		return
	}

	reward := h.earnings.RewardCents()
	users := make([]models.UserOverview, 0, len(stats))
	for _, s := range stats {
		lifetime := models.Money(int64(s.ApprovedReferrals)*reward) + adjusted[s.ID]
		if lifetime < 0 {
			lifetime = 0
		}
		users = append(users, models.UserOverview{
			UserReferralStats: s,
			TotalEarnings:     lifetime,
			TotalWithdrawn:    held[s.ID],
			CurrentBalance:    lifetime - held[s.ID],
		})
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"users": users,
	})
}

// GetUserDetail aggregates one user's earnings, history, withdrawals and links.
func (h *AdminHandler) GetUserDetail(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if _, err := h.userRepo.GetByID(r.Context(), userID); err != nil {
		if err == repository.ErrUserNotFound {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	dashboard, err := h.earnings.Dashboard(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get earnings")
		return
	}

	history, err := h.earnings.History(r.Context(), userID, "")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get earnings history")
		return
	}

	withdrawals, err := h.wdRepo.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get withdrawals")
		return
	}

	links, err := h.refRepo.LinksByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get referral links")
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"earnings":        dashboard,
		"earningsHistory": history,
		"withdrawals":     withdrawals,
		"referralLinks":   links,
	})
}

// ResolveWithdrawal approves or rejects a pending withdrawal. There is no
// balance rollback here: rejected amounts simply stop counting against the
// balance on the next read.
func (h *AdminHandler) ResolveWithdrawal(w http.ResponseWriter, r *http.Request) {
	withdrawalID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid withdrawal ID")
		return
	}

	var req models.ResolveWithdrawalRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	claims, _ := middleware.GetUserFromContext(r.Context())

	withdrawal, err := h.withdrawals.Resolve(
		r.Context(), withdrawalID, models.WithdrawalStatus(req.Status),
		req.AdminNotes, req.RejectionReason, claims.UserID,
	)
	if err != nil {
		switch err {
		case services.ErrWithdrawalNotFound:
			respondError(w, http.StatusNotFound, "withdrawal not found")
		case services.ErrNotPending:
			respondError(w, http.StatusConflict, "withdrawal has already been processed")
		default:
			respondError(w, http.StatusInternalServerError, "failed to update withdrawal")
		}
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"withdrawal": withdrawal,
	})
}

// AdjustEarnings appends a signed manual correction to a user's earnings.
func (h *AdminHandler) AdjustEarnings(w http.ResponseWriter, r *http.Request) {
	var req models.AdjustEarningsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if _, err := h.userRepo.GetByID(r.Context(), userID); err != nil {
		if err == repository.ErrUserNotFound {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get user")
		return
	}

	amount := models.MoneyFromFloat(req.AdjustmentAmount)
	if req.AdjustmentType == "debit" {
		amount = -amount
	}

	claims, _ := middleware.GetUserFromContext(r.Context())

	adjustment := &models.EarningsAdjustment{
		ID:        uuid.New(),
		UserID:    userID,
		Amount:    amount,
		Reason:    req.Reason,
		CreatedBy: claims.UserID,
	}

	if err := h.adjRepo.Create(r.Context(), adjustment); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to adjust earnings")
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("earnings adjusted by %s", amount),
	})
}

// SetWinners replaces the winner set for the current week with exactly two
// users, snapshotting their lifetime earnings.
func (h *AdminHandler) SetWinners(w http.ResponseWriter, r *http.Request) {
	var req models.SetWinnersRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, formatValidationError(err))
		return
	}

	if req.Winner1 == req.Winner2 {
		respondError(w, http.StatusBadRequest, "winners must be distinct users")
		return
	}

	weekStart, weekEnd := utils.WeekWindow(time.Now())

	winners := make([]models.WinnerOfWeek, 0, 2)
	for position, id := range []string{req.Winner1, req.Winner2} {
		userID, err := uuid.Parse(id)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid winner ID")
			return
		}

		user, err := h.userRepo.GetByID(r.Context(), userID)
		if err != nil {
			if err == repository.ErrUserNotFound {
				respondError(w, http.StatusNotFound, "winner user not found")
				return
			}
			respondError(w, http.StatusInternalServerError, "failed to get winner")
			return
		}

		lifetime, err := h.earnings.Lifetime(r.Context(), userID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to snapshot earnings")
			return
		}

		winners = append(winners, models.WinnerOfWeek{
			ID:            uuid.New(),
			UserID:        userID,
			Name:          user.Name,
			Position:      position + 1,
			TotalEarnings: lifetime,
			Message:       req.Message,
			WeekStart:     weekStart,
			WeekEnd:       weekEnd,
		})
	}

	if err := h.winnerRepo.ReplaceWeek(r.Context(), weekStart, winners); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to set winners")
		return
	}

	respondOK(w, http.StatusOK, map[string]interface{}{})
}

// Export streams a CSV attachment. Zero matching rows is an explicit error.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	exportType := r.URL.Query().Get("type")

	var userID uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid user ID")
			return
		}
		userID = parsed
	}

	var (
		header []string
		rows   [][]string
	)

	switch exportType {
	case "users":
		users, err := h.userRepo.List(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to export users")
			return
		}
		header = []string{"id", "name", "email", "role", "created_at"}
		for _, u := range users {
			rows = append(rows, []string{
				u.ID.String(), u.Name, u.Email, string(u.Role), u.CreatedAt.Format(time.RFC3339),
			})
		}

	case "withdrawals":
		var (
			withdrawals []models.Withdrawal
			err         error
		)
		if userID != uuid.Nil {
			withdrawals, err = h.wdRepo.ListByUser(r.Context(), userID)
		} else {
			withdrawals, err = h.wdRepo.ListAll(r.Context())
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to export withdrawals")
			return
		}
		header = []string{"id", "user_id", "operator", "requested_amount", "status", "requested_at"}
		for _, wd := range withdrawals {
			rows = append(rows, []string{
				wd.ID.String(), wd.UserID.String(), string(wd.Operator),
				wd.RequestedAmount.String(), string(wd.Status), wd.RequestedAt.Format(time.RFC3339),
			})
		}

	case "referrals":
		referrals, err := h.refRepo.ListAll(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to export referrals")
			return
		}
		header = []string{"id", "operator", "referred_name", "status", "created_at"}
		for _, ref := range referrals {
			rows = append(rows, []string{
				ref.ID.String(), string(ref.Operator), ref.ReferredName,
				string(ref.Status), ref.CreatedAt.Format(time.RFC3339),
			})
		}

	default:
		respondError(w, http.StatusBadRequest, "type must be one of: users, withdrawals, referrals")
		return
	}

	if len(rows) == 0 {
		respondError(w, http.StatusBadRequest, "no data to export")
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", exportType, time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := utils.WriteCSV(w, header, rows); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to write export")
		return
	}
}
