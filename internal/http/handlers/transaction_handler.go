package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
)

// TransactionHandler handles HTTP requests for ledger history
type TransactionHandler struct {
	ledger domain.LedgerUseCase
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(ledger domain.LedgerUseCase) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

// List lists the ledger rows of the current user
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Transaction
// @Failure 401 {object} ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	transactions, err := h.ledger.GetTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// Balance returns the balances of the current user
// @Summary Get balance
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.Balance
// @Router /balance [get]
func (h *TransactionHandler) Balance(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), userID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}
