package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
)

// AdHandler handles ad sessions and their rewards
type AdHandler struct {
	earnings domain.EarningsUseCase
}

// NewAdHandler creates a new ad handler
func NewAdHandler(earnings domain.EarningsUseCase) *AdHandler {
	return &AdHandler{earnings: earnings}
}

// AdRewardRequest is the reward event reported by the ad SDK
type AdRewardRequest struct {
	Amount string `json:"amount" binding:"required,decimal" example:"0.25"`
}

// StartSession registers an ad view
// @Summary Start ad session
// @Tags ads
// @Produce json
// @Security BearerAuth
// @Success 201 {object} domain.AdSession
// @Router /ads/sessions [post]
func (h *AdHandler) StartSession(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	session, err := h.earnings.StartAdSession(c.Request.Context(), userID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Reward credits the reward of a watched ad
// @Summary Reward ad view
// @Tags ads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ad session ID"
// @Param request body AdRewardRequest true "Reward event"
// @Success 200 {object} domain.AdRewardResult
// @Failure 404 {object} ErrorResponse
// @Router /ads/sessions/{id}/reward [post]
func (h *AdHandler) Reward(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	var req AdRewardRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, err := parseDecimal(req.Amount)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	result, err := h.earnings.RewardAd(c.Request.Context(), userID, c.Param("id"), amount)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
