package shipping

import "github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"

// Shipping errors
var (
	ErrInvalidPincode = shared.NewValidationError("shipping: pincode must be exactly 6 digits")
	ErrInvalidWeight  = shared.NewValidationError("shipping: weight must be greater than zero")
	ErrInvalidAmount  = shared.NewValidationError("shipping: order value must not be negative")
)
