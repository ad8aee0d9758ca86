package server

import (
	"errors"
	"net/http"

	checkoutdomain "github.com/coursely/payrelay/internal/checkout/domain"
	"github.com/coursely/payrelay/internal/gateway"
	"github.com/gin-gonic/gin"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func missingFieldError(field string) error {
	return newValidationError(field, "missing_field", field+" is required")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case errors.Is(err, checkoutdomain.ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
		}
	case errors.Is(err, checkoutdomain.ErrInvalidSignature):
		return http.StatusUnauthorized, errorPayload{
			Type:    "invalid_signature",
			Message: "invalid signature",
		}
	case errors.Is(err, gateway.ErrInvalidPayload):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_payload",
			Message: "invalid payload",
		}
	case errors.Is(err, gateway.ErrVerificationFailed):
		return http.StatusBadRequest, errorPayload{
			Type:    "verification_failed",
			Message: "transaction not successful",
		}
	case errors.Is(err, gateway.ErrUpstream):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: "payment gateway unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func classifyErrorForLog(err error) (string, string) {
	switch {
	case asValidationErrors(err) != nil, errors.Is(err, checkoutdomain.ErrInvalidRequest):
		return "validation_error", "invalid_request"
	case errors.Is(err, checkoutdomain.ErrInvalidSignature):
		return "authenticity_error", "invalid_signature"
	case errors.Is(err, gateway.ErrInvalidPayload):
		return "validation_error", "invalid_payload"
	case errors.Is(err, gateway.ErrVerificationFailed):
		return "verification_failed", "transaction_not_successful"
	case errors.Is(err, gateway.ErrUpstream):
		return "upstream_error", "gateway_unavailable"
	default:
		return "internal_error", "unknown"
	}
}
