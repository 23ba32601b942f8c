package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
)

// AdminHandler exposes the administrative ledger and withdrawal operations.
// Authorization is enforced by the use cases against the stored role.
type AdminHandler struct {
	ledger      domain.LedgerUseCase
	withdrawals domain.WithdrawalUseCase
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(ledger domain.LedgerUseCase, withdrawals domain.WithdrawalUseCase) *AdminHandler {
	return &AdminHandler{ledger: ledger, withdrawals: withdrawals}
}

// RestoreRequest represents a balance restoration. Without an amount the last
// earning or bonus of the user is replayed.
type RestoreRequest struct {
	Amount         *string `json:"amount,omitempty" binding:"omitempty,decimal" example:"10"`
	Currency       string  `json:"currency,omitempty" binding:"required_with=Amount,omitempty,oneof=XAF ED" example:"ED"`
	IdempotencyKey string  `json:"idempotency_key,omitempty" binding:"omitempty,max=128" example:"ticket-4512"`
	Reason         string  `json:"reason,omitempty" binding:"omitempty,max=500" example:"lost claim after outage"`
}

// AdjustRequest represents an admin balance adjustment
type AdjustRequest struct {
	Operation      string `json:"operation" binding:"required,oneof=set add subtract" example:"add"`
	Amount         string `json:"amount" binding:"required,decimal" example:"500"`
	Currency       string `json:"currency" binding:"required,oneof=XAF ED" example:"XAF"`
	IdempotencyKey string `json:"idempotency_key,omitempty" binding:"omitempty,max=128" example:"ticket-4513"`
	Reason         string `json:"reason,omitempty" binding:"omitempty,max=500" example:"goodwill credit"`
}

// RejectRequest represents a withdrawal rejection
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"phone number does not match account"`
}

// RestoreBalance credits a user back
// @Summary Restore balance
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body RestoreRequest false "Restoration"
// @Success 200 {object} domain.ApplyResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/restore [post]
func (h *AdminHandler) RestoreBalance(c *gin.Context) {
	actorID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	var req RestoreRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	restore := domain.RestoreRequest{
		UserID:         c.Param("id"),
		Currency:       domain.Currency(req.Currency),
		IdempotencyKey: req.IdempotencyKey,
		Reason:         req.Reason,
	}
	if req.Amount != nil {
		amount, err := parseDecimal(*req.Amount)
		if err != nil {
			middleware.Abort(c, err)
			return
		}
		restore.Amount = &amount
	}

	result, err := h.ledger.RestoreBalance(c.Request.Context(), actorID, restore)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AdjustBalance sets, adds to or subtracts from a balance
// @Summary Adjust balance
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param request body AdjustRequest true "Adjustment"
// @Success 200 {object} domain.ApplyResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{id}/balance [post]
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	actorID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	var req AdjustRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, err := parseDecimal(req.Amount)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	result, err := h.ledger.AdjustBalance(c.Request.Context(), actorID, domain.AdjustRequest{
		UserID:         c.Param("id"),
		Operation:      domain.AdjustOperation(req.Operation),
		Amount:         amount,
		Currency:       domain.Currency(req.Currency),
		IdempotencyKey: req.IdempotencyKey,
		Reason:         req.Reason,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReconcileUser recomputes the balances of a user from the ledger
// @Summary Reconcile user balances
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} domain.ReconcileResult
// @Failure 403 {object} ErrorResponse
// @Router /admin/users/{id}/reconcile [post]
func (h *AdminHandler) ReconcileUser(c *gin.Context) {
	actorID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	result, err := h.ledger.ReconcileUser(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPendingWithdrawals lists withdrawals awaiting review
// @Summary List pending withdrawals
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Withdrawal
// @Router /admin/withdrawals [get]
func (h *AdminHandler) ListPendingWithdrawals(c *gin.Context) {
	actorID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	withdrawals, err := h.withdrawals.ListPending(c.Request.Context(), actorID, limit, offset)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawals)
}

// ApproveWithdrawal marks a withdrawal as paid out
// @Summary Approve withdrawal
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Withdrawal ID"
// @Success 200 {object} domain.Withdrawal
// @Failure 409 {object} ErrorResponse
// @Router /admin/withdrawals/{id}/approve [post]
func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	actorID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	withdrawal, err := h.withdrawals.Approve(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawal)
}

// RejectWithdrawal refunds a withdrawal
// @Summary Reject withdrawal
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Withdrawal ID"
// @Param request body RejectRequest true "Rejection"
// @Success 200 {object} domain.Withdrawal
// @Failure 409 {object} ErrorResponse
// @Router /admin/withdrawals/{id}/reject [post]
func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	actorID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if !bindJSON(c, &req) {
		return
	}

	withdrawal, err := h.withdrawals.Reject(c.Request.Context(), actorID, c.Param("id"), req.Reason)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawal)
}
