package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/routing_console/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	// RequiresConfirmation is set when resubmitting with confirmSmallFee=true
	// would let the request through.
	RequiresConfirmation bool `json:"requiresConfirmation,omitempty"`
}

// respondServiceError maps a service error onto an HTTP status. action names
// the failed operation in logs and in 5xx bodies.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, action string) {
	var appErr *apperrors.AppError
	switch {
	case errors.Is(err, apperrors.ErrSmallFeeNotConfirmed):
		logger.Info("Small fee needs confirmation", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), RequiresConfirmation: true})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Validation error", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate):
		logger.Warn("Duplicate resource", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.As(err, &appErr) && appErr.Code >= 400 && appErr.Code < 600:
		logger.Warn("Request rejected", slog.String("action", action), slog.Int("status", appErr.Code), slog.String("error", err.Error()))
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
	case errors.Is(err, apperrors.ErrBackendUnavailable):
		logger.Error("Backend unavailable", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Platform backend unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("Backend timed out", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "Platform backend timed out"})
	default:
		logger.Error("Service call failed", slog.String("action", action), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to " + action})
	}
}

func respondBindError(c *gin.Context, logger *slog.Logger, err error, what string) {
	logger.Warn("Failed to bind "+what, slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid " + what + ": " + err.Error()})
}
