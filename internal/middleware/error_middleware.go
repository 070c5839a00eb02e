package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursebot/internal/app/models/dto"
	"github.com/yigit/coursebot/internal/pkg/apperrors"
)

// HandleAPIError maps service errors onto HTTP status codes and error envelopes
func HandleAPIError(c *gin.Context, err error) {
	var detail *dto.ErrorDetail
	status := http.StatusInternalServerError

	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound, apperrors.ErrCourseNotFound, apperrors.ErrRegistrationNotFound):
		status = http.StatusNotFound
		detail = dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrInvalidRegistrationID):
		status = http.StatusBadRequest
		detail = dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		detail = dto.NewErrorDetail(dto.ErrorCodeTimeout, "Request timed out").
			WithSeverity(dto.ErrorSeverityWarning)
	default:
		_ = c.Error(err)
		c.JSON(status, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
		return
	}

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) {
		detail = detail.WithDetails(customErr.Message)
	}
	c.JSON(status, dto.NewErrorResponse(detail))
}
