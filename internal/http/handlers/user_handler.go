package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
	"github.com/saradorri/edrewards/internal/infrastructure/auth"
	"github.com/shopspring/decimal"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	userUseCase domain.UserUseCase
	jwtService  auth.JWTService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUseCase domain.UserUseCase, jwtService auth.JWTService) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		jwtService:  jwtService,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64" example:"user1"`
	Password string `json:"password" binding:"required,max=128" example:"password123"`
}

// LoginResponse represents the login response body
type LoginResponse struct {
	Token string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  UserInfo `json:"user"`
}

// UserInfo represents user information with balances
type UserInfo struct {
	ID            string          `json:"id" example:"usr_1"`
	Username      string          `json:"username" example:"user1"`
	Role          string          `json:"role" example:"user"`
	WalletBalance int64           `json:"wallet_balance" example:"5000"`
	EDBalance     decimal.Decimal `json:"ed_balance" swaggertype:"string" example:"12.5"`
	TotalEarned   decimal.Decimal `json:"total_earned" swaggertype:"string" example:"40"`
	ReferralCode  string          `json:"referral_code" example:"USER1REF"`
}

func userInfoOf(user *domain.User) UserInfo {
	return UserInfo{
		ID:            user.ID,
		Username:      user.Username,
		Role:          string(user.Role),
		WalletBalance: user.WalletBalance,
		EDBalance:     user.EDBalance,
		TotalEarned:   user.TotalEarned,
		ReferralCode:  user.ReferralCode,
	}
}

// Login handles user authentication
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	token, err := h.userUseCase.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		middleware.Abort(c, domain.NewInternalError("Failed to process token", err))
		return
	}

	user, err := h.userUseCase.GetUserInfo(ctx, claims.UserID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{Token: token, User: userInfoOf(user)})
}

// GetUserInfo handles getting user information
// @Summary Get user information
// @Description Get current user information and balances
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserInfo
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	user, err := h.userUseCase.GetUserInfo(c.Request.Context(), userID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, userInfoOf(user))
}

// ListNotifications lists the notifications of the current user
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Notification
// @Failure 401 {object} ErrorResponse
// @Router /notifications [get]
func (h *UserHandler) ListNotifications(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	notifications, err := h.userUseCase.ListNotifications(c.Request.Context(), userID, limit, offset)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead marks a notification as read
// @Summary Mark notification read
// @Tags notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [post]
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	if err := h.userUseCase.MarkNotificationRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		middleware.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
