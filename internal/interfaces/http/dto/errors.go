package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeUserDeactivated    = "ERR_USER_DEACTIVATED"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock  = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInvariantViolation = "ERR_INVARIANT_VIOLATION"
)

// Operational error codes
const (
	ErrCodeRateLimited       = "ERR_RATE_LIMITED"
	ErrCodeRenderFailed      = "ERR_RENDER_FAILED"
	ErrCodeSweepInProgress   = "ERR_SWEEP_IN_PROGRESS"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps normalized error codes to HTTP status codes.
// Domain codes not listed here are mapped by domainCodeStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeUserDeactivated:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:       http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	ErrCodeInvariantViolation: http.StatusInternalServerError,

	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeRenderFailed:       http.StatusBadGateway,
	ErrCodeSweepInProgress:    http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
}

// domainCodeStatus maps the specific codes raised by domain objects and services
var domainCodeStatus = map[string]int{
	// validation of individual fields
	"INVALID_USERNAME":          http.StatusBadRequest,
	"INVALID_PASSWORD":          http.StatusBadRequest,
	"INVALID_PERMISSION_CODE":   http.StatusBadRequest,
	"INVALID_OVERRIDE_EFFECT":   http.StatusBadRequest,
	"INVALID_NAME":              http.StatusBadRequest,
	"INVALID_PRICE":             http.StatusBadRequest,
	"INVALID_TAX_RATE":          http.StatusBadRequest,
	"INVALID_SKU":               http.StatusBadRequest,
	"INVALID_WARRANTY_TYPE":     http.StatusBadRequest,
	"INVALID_WARRANTY_DURATION": http.StatusBadRequest,
	"INVALID_MIN_STOCK":         http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD":    http.StatusBadRequest,
	"INVALID_PAYMENT":           http.StatusBadRequest,
	"INVALID_DISCOUNT":          http.StatusBadRequest,
	"INVALID_ADJUSTMENT_TYPE":   http.StatusBadRequest,
	"CANNOT_DEACTIVATE_SELF":    http.StatusBadRequest,

	// uniqueness
	"USERNAME_EXISTS":  http.StatusConflict,
	"ROLE_NAME_EXISTS": http.StatusConflict,
	"SKU_EXISTS":       http.StatusConflict,

	// state and business rules
	"DEFAULT_ROLE_PROTECTED":     http.StatusUnprocessableEntity,
	"ROLE_IN_USE":                http.StatusUnprocessableEntity,
	"PERMISSION_ALREADY_GRANTED": http.StatusUnprocessableEntity,
	"PERMISSION_NOT_FOUND":       http.StatusNotFound,
	"PRODUCT_INACTIVE":           http.StatusUnprocessableEntity,
	"ALREADY_ACTIVE":             http.StatusUnprocessableEntity,
	"ALREADY_INACTIVE":           http.StatusUnprocessableEntity,
	"RETURN_QUANTITY_EXCEEDED":   http.StatusUnprocessableEntity,
	"INSUFFICIENT_PAYMENT":       http.StatusUnprocessableEntity,

	"PASSWORD_HASH_FAILED": http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a normalized error code.
// Unknown codes are treated as internal errors.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := domainCodeStatus[strings.TrimPrefix(code, "ERR_")]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode prefixes a domain code with ERR_. Codes already in that
// form are returned as-is.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
