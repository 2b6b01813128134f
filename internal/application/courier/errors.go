package courier

import "github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"

// Courier aggregator errors
var (
	ErrAuthFailure       = shared.NewUnauthorizedError("courier: identity and secret are required")
	ErrInvalidToken      = shared.NewUnauthorizedError("courier: token is invalid or expired")
	ErrOrderNotFound     = shared.NewNotFoundError("courier: order not found")
	ErrShipmentNotFound  = shared.NewNotFoundError("courier: no shipment with this AWB")
	ErrUnknownCourier    = shared.NewValidationError("courier: unknown courier id")
	ErrInvalidPickupTime = shared.NewValidationError("courier: pickup time is required")
	ErrAWBNotAllowed     = shared.NewInvalidStateError("courier: AWB can only be assigned to a new order")
	ErrPickupNotAllowed  = shared.NewInvalidStateError("courier: pickup can only be scheduled after AWB assignment")
	ErrCancelNotAllowed  = shared.NewInvalidStateError("courier: shipment can no longer be cancelled")
	ErrClosed            = shared.NewUnavailableError("courier: emulator is closed")
)
