package handler

import "github.com/deyjyotipriya/Shopabell-sub001/internal/interfaces/http/dto"

// APIResponse is the success envelope of the enveloped endpoints. Courier
// routes answer in the aggregator's native shapes instead.
// @Description Success envelope with a typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// ErrorResponse is the error envelope every route uses, courier routes included
// @Description Error envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
