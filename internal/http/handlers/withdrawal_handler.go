package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
)

// WithdrawalHandler handles cash-out requests of users
type WithdrawalHandler struct {
	withdrawals domain.WithdrawalUseCase
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(withdrawals domain.WithdrawalUseCase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals}
}

// WithdrawalRequest represents a cash-out request body
type WithdrawalRequest struct {
	Amount int64  `json:"amount" binding:"required,gt=0" example:"2000"`
	Phone  string `json:"phone" binding:"required,max=32" example:"677123456"`
}

// Request debits the wallet and records a pending withdrawal
// @Summary Request withdrawal
// @Tags withdrawals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body WithdrawalRequest true "Withdrawal details"
// @Success 201 {object} domain.Withdrawal
// @Failure 400 {object} ErrorResponse
// @Router /withdrawals [post]
func (h *WithdrawalHandler) Request(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	var req WithdrawalRequest
	if !bindJSON(c, &req) {
		return
	}

	withdrawal, err := h.withdrawals.RequestWithdrawal(c.Request.Context(), userID, req.Amount, req.Phone)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, withdrawal)
}

// List lists the withdrawals of the current user
// @Summary List withdrawals
// @Tags withdrawals
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Withdrawal
// @Router /withdrawals [get]
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	withdrawals, err := h.withdrawals.ListUserWithdrawals(c.Request.Context(), userID, limit, offset)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, withdrawals)
}
