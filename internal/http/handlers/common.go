package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/http/middleware"
	"github.com/shopspring/decimal"
)

// RegisterValidators adds the custom binding tags used by request bodies
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})
}

// getAuthenticatedUserID extracts the authenticated user ID from the context
func getAuthenticatedUserID(c *gin.Context) (string, bool) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		middleware.Abort(c, domain.NewUnauthorizedError("User not authenticated"))
		return "", false
	}
	return userID, true
}

// bindJSON binds the body and answers 400 on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.Abort(c, domain.NewAppError(domain.ErrCodeInvalidFormat, "Invalid request body", 400, err))
		return false
	}
	return true
}

// pagination reads limit and offset query parameters
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// parseDecimal parses a string amount validated by the decimal tag
func parseDecimal(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, domain.NewAppError(domain.ErrCodeInvalidAmount, "Invalid amount", 400, err)
	}
	return amount, nil
}

// ErrorResponse documents the error body for swagger
type ErrorResponse = domain.ErrorResponse
