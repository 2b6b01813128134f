package payrail

import "github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shared"

// Payment rail errors. Each belongs to one of the shared categories, so callers
// can branch on shared.IsValidation / shared.IsNotFound as well as on the sentinel.
var (
	ErrInvalidAmount       = shared.NewValidationError("payrail: amount must be greater than zero")
	ErrAmountMismatch      = shared.NewValidationError("payrail: amount does not match the payment link amount")
	ErrInvalidCurrency     = shared.NewValidationError("payrail: currency must be a 3-letter ISO code")
	ErrInvalidExpiry       = shared.NewValidationError("payrail: expiry must not be negative")
	ErrAccountNotFound     = shared.NewNotFoundError("payrail: collection account not found")
	ErrLinkNotFound        = shared.NewNotFoundError("payrail: payment link not found")
	ErrTransactionNotFound = shared.NewNotFoundError("payrail: transaction not found")
	ErrLinkNotActive       = shared.NewInvalidStateError("payrail: payment link is not active")
	ErrLinkSettling        = shared.NewInvalidStateError("payrail: payment link has a settlement in flight")
	ErrInvalidCredentials  = shared.NewUnauthorizedError("payrail: invalid client credentials")
	ErrClosed              = shared.NewUnavailableError("payrail: emulator is closed")
)
