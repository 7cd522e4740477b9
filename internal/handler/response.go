package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetpay/internal/commission"
	"fleetpay/internal/repository"
	"fleetpay/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, commission.ErrInvalidAmount),
		errors.Is(err, commission.ErrInvalidPercentage),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidUserName),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrInvalidRedirect),
		errors.Is(err, service.ErrInvalidMinCommission),
		errors.Is(err, service.ErrInvalidDriverName),
		errors.Is(err, service.ErrInvalidEarningsRange):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, repository.ErrPaymentFinalized),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrCheckoutInProgress):
		return http.StatusConflict

	// Upstream provider errors
	case errors.Is(err, service.ErrCheckoutProvider):
		return http.StatusBadGateway

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
