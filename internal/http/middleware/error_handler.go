package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/saradorri/edrewards/internal/domain"
	"github.com/saradorri/edrewards/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger *logger.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.Named("http"),
	}
}

// ErrorHandlerMiddleware recovers panics into a 500 error response
func (h *ErrorHandler) ErrorHandlerMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		h.handlePanic(c, recovered)
	})
}

// handlePanic handles panic recovery
func (h *ErrorHandler) handlePanic(c *gin.Context, recovered interface{}) {
	requestID := GetRequestID(c)
	userID := GetUserID(c)

	h.logger.Error("Panic recovered",
		zap.String("X-TRACE-ID", requestID),
		zap.String("user_id", userID),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Any("error", recovered),
		zap.String("stack", string(debug.Stack())))

	err := domain.NewInternalError("Internal server error", fmt.Errorf("panic: %v", recovered))
	Abort(c, err)
}

// RequestIDMiddleware adds a unique request ID to each request and its context
func (h *ErrorHandler) RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// TimeoutMiddleware bounds the request context. Handlers observe the deadline
// through their context; a handler that returns without writing gets a 408.
func (h *ErrorHandler) TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			h.logger.Warn("Request timeout",
				zap.String("X-TRACE-ID", GetRequestID(c)),
				zap.String("user_id", GetUserID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
			Abort(c, domain.NewAppError("TIMEOUT", "Request timeout", http.StatusRequestTimeout, ctx.Err()))
		}
	}
}

// Abort writes err as the standard error response and stops the chain
func Abort(c *gin.Context, err error) {
	appErr, ok := domain.IsAppError(err)
	if !ok {
		appErr = domain.NewInternalError("", err)
	}

	response := *appErr
	response.RequestID = GetRequestID(c)
	response.UserID = GetUserID(c)
	response.Path = c.Request.URL.Path
	response.Method = c.Request.Method

	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, domain.NewErrorResponse(&response))
}

// GetRequestID returns the request id set by RequestIDMiddleware
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// GetUserID returns the authenticated user id set by JWTMiddleware
func GetUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
