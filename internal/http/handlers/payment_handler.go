package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaymentHandler handles purchase intents and provider callbacks
type PaymentHandler struct {
	payments domain.PaymentUseCase
	logger   *logger.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments domain.PaymentUseCase, logger *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		logger:   logger.Named("payment-handler"),
	}
}

// CreateIntentRequest represents a machine purchase request
type CreateIntentRequest struct {
	MachineTypeID string `json:"machine_type_id" binding:"required,max=64" example:"starter"`
	Phone         string `json:"phone" binding:"required,max=32" example:"677123456"`
	Amount        int64  `json:"amount" binding:"required,gt=0" example:"95000"`
	Medium        string `json:"medium,omitempty" binding:"omitempty,max=32" example:"mobile money"`
	Name          string `json:"name,omitempty" binding:"omitempty,max=128" example:"Jane Doe"`
	Email         string `json:"email,omitempty" binding:"omitempty,email,max=128" example:"jane@example.com"`
}

// WebhookRequest represents a provider settlement callback
type WebhookRequest struct {
	ExternalID string `json:"externalId" binding:"required,max=191" example:"purchase:starter:usr_1:1700000000000:1a2b3c4d"`
	TransID    string `json:"transId" binding:"max=128" example:"TX123"`
	Status     string `json:"status" binding:"required" example:"SUCCESSFUL"`
}

// CreateIntent starts a machine purchase
// @Summary Create purchase intent
// @Description Validate the price server-side and request a mobile-money payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIntentRequest true "Purchase details"
// @Success 201 {object} domain.IntentResult
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /payments/intents [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	var req CreateIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.payments.CreateIntent(c.Request.Context(), domain.IntentRequest{
		UserID:        userID,
		MachineTypeID: req.MachineTypeID,
		Phone:         req.Phone,
		ClientAmount:  req.Amount,
		Medium:        req.Medium,
		Name:          req.Name,
		Email:         req.Email,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Reconcile asks the provider for the settlement of a pending intent
// @Summary Reconcile purchase
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param external_id path string true "Purchase external ID"
// @Success 200 {object} domain.ConfirmResult
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /payments/{external_id}/reconcile [post]
func (h *PaymentHandler) Reconcile(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	result, err := h.payments.ReconcilePayment(c.Request.Context(), userID, c.Param("external_id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Webhook applies a provider settlement callback
// @Summary Payment webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param X-Webhook-Secret header string true "Shared secret"
// @Param request body WebhookRequest true "Settlement"
// @Success 200 {object} domain.ConfirmResult
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /webhooks/payment [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if !bindJSON(c, &req) {
		return
	}

	status := domain.ProviderStatus(strings.ToUpper(req.Status))
	h.logger.WithContext(c.Request.Context()).Info("Payment webhook received",
		zap.String("externalID", req.ExternalID),
		zap.String("transID", req.TransID),
		zap.String("status", string(status)))

	result, err := h.payments.Confirm(c.Request.Context(), req.ExternalID, req.TransID, status.Outcome())
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
