package handler

import "github.com/shopdesk/backend/internal/interfaces/http/dto"

// APIResponse documents the success envelope with a concrete data type.
// Handlers write dto.Response; this type exists for the OpenAPI annotations.
type APIResponse[T any] struct {
	Success bool           `json:"success" example:"true"`
	Data    T              `json:"data,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse documents the failure envelope. error.code is one of the
// dto.ErrCode* values or a domain code such as INSUFFICIENT_STOCK.
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}

// CountData is the payload of count-only endpoints
type CountData struct {
	Count int64 `json:"count"`
}
