package courier

import (
	"context"

	"github.com/deyjyotipriya/Shopabell-sub001/internal/domain/shipping"
)

// QuoteRates quotes this aggregator's couriers for a shipment, cheapest first
func (e *Emulator) QuoteRates(ctx context.Context, pickupPincode, deliveryPincode string, weightKg float64, cod bool) ([]shipping.CourierQuote, error) {
	return e.rates.Quote(pickupPincode, deliveryPincode, weightKg, cod)
}

// Couriers lists the courier profiles this aggregator books with
func (e *Emulator) Couriers() []shipping.CourierProfile {
	return e.rates.Profiles()
}
