package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
)

// MachineHandler handles machine catalog, activation and claims
type MachineHandler struct {
	earnings domain.EarningsUseCase
}

// NewMachineHandler creates a new machine handler
func NewMachineHandler(earnings domain.EarningsUseCase) *MachineHandler {
	return &MachineHandler{earnings: earnings}
}

// ListTypes lists the machine catalog
// @Summary List machine types
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MachineType
// @Router /machines/types [get]
func (h *MachineHandler) ListTypes(c *gin.Context) {
	types, err := h.earnings.ListMachineTypes(c.Request.Context())
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// ListMachines lists the machines of the current user with their server-side timers
// @Summary List owned machines
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MachineProjection
// @Router /machines [get]
func (h *MachineHandler) ListMachines(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	machines, err := h.earnings.ListMachines(c.Request.Context(), userID)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, machines)
}

// Activate starts a new earning period
// @Summary Activate machine
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param id path string true "User machine ID"
// @Success 200 {object} domain.MachineProjection
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /machines/{id}/activate [post]
func (h *MachineHandler) Activate(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	projection, err := h.earnings.Activate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// Claim credits the earnings of a finished period
// @Summary Claim machine earnings
// @Tags machines
// @Produce json
// @Security BearerAuth
// @Param id path string true "User machine ID"
// @Success 200 {object} domain.ClaimResult
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /machines/{id}/claim [post]
func (h *MachineHandler) Claim(c *gin.Context) {
	userID, ok := getAuthenticatedUserID(c)
	if !ok {
		return
	}

	result, err := h.earnings.Claim(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
